package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/school-records/internal/model"
)

// StudentRepo reads rows from the 'student_profile' table and the joined
// student listing used by the admin endpoints.
type StudentRepo struct{ DB *sql.DB }

func NewStudentRepo(db *sql.DB) *StudentRepo { return &StudentRepo{DB: db} }

// GetByRoll fetches a student profile by exact roll number.
func (r *StudentRepo) GetByRoll(ctx context.Context, roll string) (model.StudentProfile, error) {
	var p model.StudentProfile
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, roll_number, class, section FROM student_profile WHERE roll_number=? LIMIT 1",
		roll).Scan(&p.ID, &p.RollNumber, &p.Class, &p.Section)
	if err == sql.ErrNoRows {
		return model.StudentProfile{}, ErrNotFound
	}
	return p, err
}

// StudentRow is one entry of the admin student listing.
type StudentRow struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	RollNumber string `json:"roll_number"`
	Class      string `json:"class"`
	Section    string `json:"section"`
}

// List returns all student accounts joined with their profiles, newest first.
func (r *StudentRepo) List(ctx context.Context) ([]StudentRow, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT u.id, u.name, u.email, sp.roll_number, sp.class, sp.section
        FROM users u
        INNER JOIN student_profile sp ON u.id = sp.id
        WHERE u.role = 'student'
        ORDER BY u.id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []StudentRow{}
	for rows.Next() {
		var s StudentRow
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.RollNumber, &s.Class, &s.Section); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
