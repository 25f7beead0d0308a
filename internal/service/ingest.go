package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/iliyamo/school-records/internal/model"
	"github.com/iliyamo/school-records/internal/repository"
)

// StudentResolver resolves an uploaded roll number to a student profile.
type StudentResolver interface {
	GetByRoll(ctx context.Context, roll string) (model.StudentProfile, error)
}

// SubjectStore resolves a subject name to an id, creating the subject on
// first sight.
type SubjectStore interface {
	GetOrCreate(ctx context.Context, name string) (uint64, error)
}

// ResultStore writes one marks value keyed on (exam, student, subject).
type ResultStore interface {
	Upsert(ctx context.Context, examID, studentID, subjectID uint64, marks float64) error
}

// Ingestor runs the bulk result ingestion pipeline. MaxRows caps how many
// data rows a single batch may carry; rows past the cap are not processed
// and the summary reports the batch as truncated.
type Ingestor struct {
	Students StudentResolver
	Subjects SubjectStore
	Results  ResultStore
	MaxRows  int
}

func NewIngestor(students StudentResolver, subjects SubjectStore, results ResultStore, maxRows int) *Ingestor {
	return &Ingestor{Students: students, Subjects: subjects, Results: results, MaxRows: maxRows}
}

// IngestSummary reports the outcome of one batch. Row-level problems are
// counted, never fatal; a batch is only ever rejected wholesale before this
// pipeline runs (bad file extension, unparseable file).
type IngestSummary struct {
	Processed int
	Errors    int
	Truncated bool
}

// Ingest walks the rows of one upload in file order. Index 0 is assumed to
// be a header and skipped. Per row: extract roll number, subject name and
// marks from fixed columns; a blank field, an unknown roll number or
// non-numeric marks counts as a row error and the loop moves on. Subjects
// are created lazily, so later rows in the same batch can reuse a subject an
// earlier row introduced. Result writes are upserts, making a re-ingested
// file idempotent.
func (g *Ingestor) Ingest(ctx context.Context, rows [][]string, examID uint64) (IngestSummary, error) {
	var sum IngestSummary
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if g.MaxRows > 0 && i > g.MaxRows {
			sum.Truncated = true
			break
		}

		roll := strings.TrimSpace(cell(row, 0))
		subject := strings.TrimSpace(cell(row, 1))
		marksStr := strings.TrimSpace(cell(row, 2))
		if roll == "" || subject == "" || marksStr == "" {
			sum.Errors++
			continue
		}
		marks, err := strconv.ParseFloat(marksStr, 64)
		if err != nil {
			sum.Errors++
			continue
		}

		student, err := g.Students.GetByRoll(ctx, roll)
		if errors.Is(err, repository.ErrNotFound) {
			sum.Errors++
			continue
		}
		if err != nil {
			sum.Errors++
			continue
		}

		subjectID, err := g.Subjects.GetOrCreate(ctx, subject)
		if err != nil {
			sum.Errors++
			continue
		}

		if err := g.Results.Upsert(ctx, examID, student.ID, subjectID, marks); err != nil {
			sum.Errors++
			continue
		}
		sum.Processed++
	}
	return sum, nil
}

// cell returns column idx of a row, or "" when the row is too short.
func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}
