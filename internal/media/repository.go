package media

import (
	"database/sql"
	"fmt"
)

type Repository interface {
	Create(rec *MediaRecord) error
	List() ([]*MediaRecord, error)
	UpdateStatus(id string, status Status) error
	MarkCompleted(id, thumbnail string, kind Kind) error
	MarkFailed(id string) error
}

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(rec *MediaRecord) error {
	query := `INSERT INTO media (id, filename, owner, kind, status, thumbnail, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	var thumbnail sql.NullString
	if rec.Thumbnail != "" {
		thumbnail = sql.NullString{String: rec.Thumbnail, Valid: true}
	}

	_, err := r.db.Exec(query, rec.ID, rec.Filename, rec.Owner, string(rec.Kind), string(rec.Status), thumbnail, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create media record: %w", err)
	}
	return nil
}

func (r *postgresRepository) List() ([]*MediaRecord, error) {
	query := `SELECT id, filename, owner, kind, status, thumbnail, created_at
			  FROM media ORDER BY created_at DESC, id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*MediaRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *postgresRepository) UpdateStatus(id string, status Status) error {
	return r.execWithRowCheck(`UPDATE media SET status = $1 WHERE id = $2`, string(status), id)
}

// MarkCompleted records the terminal success state in a single atomic
// update so the thumbnail is never observable without the completed status.
func (r *postgresRepository) MarkCompleted(id, thumbnail string, kind Kind) error {
	return r.execWithRowCheck(
		`UPDATE media SET status = $1, thumbnail = $2, kind = $3 WHERE id = $4`,
		string(StatusCompleted), thumbnail, string(kind), id,
	)
}

func (r *postgresRepository) MarkFailed(id string) error {
	return r.execWithRowCheck(`UPDATE media SET status = $1 WHERE id = $2`, string(StatusFailed), id)
}

func (r *postgresRepository) execWithRowCheck(query string, args ...interface{}) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("media record not found")
	}

	return nil
}

func scanRecord(scan func(dest ...interface{}) error) (*MediaRecord, error) {
	rec := &MediaRecord{}
	var kind, status string
	var thumbnail sql.NullString

	err := scan(&rec.ID, &rec.Filename, &rec.Owner, &kind, &status, &thumbnail, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	rec.Kind = Kind(kind)
	rec.Status = Status(status)
	if thumbnail.Valid {
		rec.Thumbnail = thumbnail.String
	}
	return rec, nil
}
