package gesture

import "github.com/ayusman/mirrorpaint/internal/detector"

// Role is the part a detected hand plays in the current frame.
type Role string

const (
	RoleNone    Role = ""
	RoleControl Role = "control"
	RoleDraw    Role = "draw"
)

// Roles holds at most one control hand and one draw hand for a frame.
// Both point into the slice passed to AssignRoles.
type Roles struct {
	Control *detector.HandLandmarks
	Draw    *detector.HandLandmarks
}

// AssignRoles picks the control and draw hands from one frame of detections.
//
// The first "Left" hand controls the brush and the first "Right" hand draws.
// The feed is mirrored, so the model's Left hand appears on the right of the
// screen. Assignment is stateless: nothing ties a hand to the previous frame
// beyond its label. Duplicated labels leave the later hands without a role and
// hands with any other label are skipped.
func AssignRoles(hands []detector.HandLandmarks) Roles {
	var r Roles
	for i := range hands {
		switch hands[i].Handedness {
		case detector.HandLeft:
			if r.Control == nil {
				r.Control = &hands[i]
			}
		case detector.HandRight:
			if r.Draw == nil {
				r.Draw = &hands[i]
			}
		}
	}
	return r
}

// RoleOf reports the role of hand, which must point into the slice r was assigned from.
func (r Roles) RoleOf(hand *detector.HandLandmarks) Role {
	switch {
	case hand == nil:
		return RoleNone
	case hand == r.Control:
		return RoleControl
	case hand == r.Draw:
		return RoleDraw
	}
	return RoleNone
}
