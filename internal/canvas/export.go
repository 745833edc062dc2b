package canvas

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// ExportPrefix starts every exported file name.
const ExportPrefix = "handDrawing_"

// Export describes the files written by one export.
type Export struct {
	Name    string
	PNGPath string
	PDFPath string
	Width   int
	Height  int
	At      time.Time
}

// FileName returns the base name for an export taken at now,
// e.g. handDrawing_20240305_090705.
func FileName(now time.Time) string {
	return ExportPrefix + now.Format("20060102_150405")
}

// ExportOptions controls where and how a snapshot is written.
type ExportOptions struct {
	Dir string
	// PDF also wraps the PNG in a single-page PDF of the same size.
	PDF bool
}

// Export writes a PNG snapshot of the surface into opts.Dir. The surface is
// not modified.
func (s *Surface) Export(now time.Time, opts ExportOptions) (Export, error) {
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return Export{}, fmt.Errorf("create export dir: %w", err)
	}

	exp := Export{
		Name:   FileName(now),
		Width:  s.Width(),
		Height: s.Height(),
		At:     now,
	}
	exp.PNGPath = filepath.Join(opts.Dir, exp.Name+".png")

	if err := s.SavePNG(exp.PNGPath); err != nil {
		return Export{}, fmt.Errorf("save png: %w", err)
	}

	if opts.PDF {
		exp.PDFPath = filepath.Join(opts.Dir, exp.Name+".pdf")
		if err := writePDF(exp.PNGPath, exp.PDFPath, float64(exp.Width), float64(exp.Height)); err != nil {
			return Export{}, err
		}
	}

	return exp, nil
}

// writePDF places the PNG on one page sized to the image, in points.
func writePDF(pngPath, pdfPath string, width, height float64) error {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.ImageOptions(pngPath, 0, 0, width, height, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	if err := pdf.OutputFileAndClose(pdfPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
