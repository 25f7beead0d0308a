package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/school-records/internal/model"
)

// AuditRepo appends and lists rows in the 'audit_logs' table.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// Append records one action. Audit writes are best-effort; callers log the
// returned error instead of failing the request over it.
func (r *AuditRepo) Append(ctx context.Context, actorID uint64, action, detail string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO audit_logs (actor_id, action, detail) VALUES (?,?,?)",
		actorID, action, detail)
	return err
}

// List returns all audit entries, newest first.
func (r *AuditRepo) List(ctx context.Context) ([]model.AuditLog, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, actor_id, action, detail, created_at FROM audit_logs ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.AuditLog{}
	for rows.Next() {
		var e model.AuditLog
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
