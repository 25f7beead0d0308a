package repository

import (
	"context"
	"database/sql"
)

// SubjectRepo persists rows in the 'subjects' table.
type SubjectRepo struct{ DB *sql.DB }

func NewSubjectRepo(db *sql.DB) *SubjectRepo { return &SubjectRepo{DB: db} }

// GetOrCreate resolves a subject id by exact name, inserting the subject when
// it does not exist yet. Two concurrent uploads can race on the same new
// name; the unique index on subjects.name makes the losing insert fail with
// a duplicate key, which is retried as a lookup rather than surfaced.
func (r *SubjectRepo) GetOrCreate(ctx context.Context, name string) (uint64, error) {
	id, err := r.getByName(ctx, name)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx, "INSERT INTO subjects (name) VALUES (?)", name)
	if err != nil {
		if isDuplicate(err) {
			return r.getByName(ctx, name)
		}
		return 0, err
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(newID), nil
}

func (r *SubjectRepo) getByName(ctx context.Context, name string) (uint64, error) {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM subjects WHERE name=? LIMIT 1", name).Scan(&id)
	return id, err
}
