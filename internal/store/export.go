package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Export is the history record of one saved drawing.
type Export struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	PNGPath string    `json:"png_path"`
	PDFPath string    `json:"pdf_path,omitempty"`
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	Source  string    `json:"source"`
	Created time.Time `json:"created_at"`
}

// ExportRepository provides CRUD operations for export records.
type ExportRepository struct {
	db *sql.DB
}

// Exports returns the export repository for this store.
func (s *Store) Exports() *ExportRepository {
	return &ExportRepository{db: s.db}
}

// Create inserts a new export record. An empty ID is filled with a new UUID
// and a zero Created time with the current time.
func (r *ExportRepository) Create(e *Export) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Created.IsZero() {
		e.Created = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO exports (id, name, png_path, pdf_path, width, height, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.PNGPath, e.PDFPath, e.Width, e.Height, e.Source, e.Created,
	)
	return err
}

// GetByID retrieves an export record by its ID.
func (r *ExportRepository) GetByID(id string) (*Export, error) {
	e := &Export{}
	err := r.db.QueryRow(
		`SELECT id, name, png_path, pdf_path, width, height, source, created_at
		 FROM exports WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.Name, &e.PNGPath, &e.PDFPath, &e.Width, &e.Height, &e.Source, &e.Created)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// List retrieves export records, newest first. A limit of zero or less
// returns every record.
func (r *ExportRepository) List(limit int) ([]*Export, error) {
	query := `SELECT id, name, png_path, pdf_path, width, height, source, created_at
		 FROM exports ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exports []*Export
	for rows.Next() {
		e := &Export{}
		if err := rows.Scan(&e.ID, &e.Name, &e.PNGPath, &e.PDFPath, &e.Width, &e.Height, &e.Source, &e.Created); err != nil {
			return nil, err
		}
		exports = append(exports, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return exports, nil
}

// Latest returns the most recent export record.
func (r *ExportRepository) Latest() (*Export, error) {
	exports, err := r.List(1)
	if err != nil {
		return nil, err
	}
	if len(exports) == 0 {
		return nil, ErrNotFound
	}
	return exports[0], nil
}

// Delete removes an export record by its ID. The files are left on disk.
func (r *ExportRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM exports WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
