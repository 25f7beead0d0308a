package repository

import (
	"context"
	"database/sql"
)

// ResultRepo persists rows in the 'results' table.
type ResultRepo struct{ DB *sql.DB }

func NewResultRepo(db *sql.DB) *ResultRepo { return &ResultRepo{DB: db} }

// Upsert writes a marks value keyed on (exam_id, student_id, subject_id).
// Re-ingesting the same file updates marks in place instead of duplicating
// result rows.
func (r *ResultRepo) Upsert(ctx context.Context, examID, studentID, subjectID uint64, marks float64) error {
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO results (exam_id, student_id, subject_id, marks)
        VALUES (?,?,?,?)
        ON DUPLICATE KEY UPDATE marks = ?`,
		examID, studentID, subjectID, marks, marks)
	return err
}

// SubjectMarks is one line of a student report: a subject name paired with
// the marks scored.
type SubjectMarks struct {
	Subject string  `json:"subject"`
	Marks   float64 `json:"marks"`
}

// ListForStudent returns every recorded result of one student joined with
// the subject name.
func (r *ResultRepo) ListForStudent(ctx context.Context, studentID uint64) ([]SubjectMarks, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT subjects.name, results.marks
        FROM results
        INNER JOIN subjects ON results.subject_id = subjects.id
        WHERE results.student_id = ?`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SubjectMarks{}
	for rows.Next() {
		var m SubjectMarks
		if err := rows.Scan(&m.Subject, &m.Marks); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// AverageMarks returns the mean of all stored marks, zero when no results
// exist yet.
func (r *ResultRepo) AverageMarks(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	err := r.DB.QueryRowContext(ctx, "SELECT AVG(marks) FROM results").Scan(&avg)
	if err != nil {
		return 0, err
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}
