package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/school-records/internal/model"
)

// AccountRepo provides persistence for rows in the 'users' table.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

const accountCols = "id,name,email,username,password,role,creator_id,parent_of,created_at"

// isDuplicate reports whether err is a MySQL duplicate-key violation (1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

func scanAccount(row *sql.Row) (model.Account, error) {
	var (
		a       model.Account
		role    string
		creator sql.NullInt64
		parent  sql.NullInt64
	)
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Username, &a.PasswordHash,
		&role, &creator, &parent, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Account{}, ErrNotFound
	}
	if err != nil {
		return model.Account{}, err
	}
	a.Role = model.Role(role)
	if creator.Valid {
		v := uint64(creator.Int64)
		a.CreatorID = &v
	}
	if parent.Valid {
		v := uint64(parent.Int64)
		a.ParentOf = &v
	}
	return a, nil
}

// Count returns the total number of accounts. A zero count puts the
// provisioner into its bootstrap mode.
func (r *AccountRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (model.Account, error) {
	return scanAccount(r.DB.QueryRowContext(ctx,
		"SELECT "+accountCols+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByEmail fetches an account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanAccount(r.DB.QueryRowContext(ctx,
		"SELECT "+accountCols+" FROM users WHERE email=? LIMIT 1", email))
}

// UsernameTaken reports whether a username is already in use.
func (r *AccountRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE username=?", username).Scan(&n)
	return n > 0, err
}

// EmailTaken reports whether an email is already in use.
func (r *AccountRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email=?", email).Scan(&n)
	return n > 0, err
}

// CountByRole returns the number of accounts holding the given role.
func (r *AccountRepo) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	var n int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE role=?", role).Scan(&n)
	return n, err
}

// Create inserts an account together with its optional student profile and
// optional cascaded guardian account inside one transaction. A duplicate key
// on any of the inserts rolls the whole unit back and returns ErrConflict,
// so a guardian-username collision never leaves a half-provisioned student
// behind. The guardian's ParentOf is pointed at the freshly created account.
// It returns the new account's id and, when a guardian was created, its id.
func (r *AccountRepo) Create(ctx context.Context, a model.Account, profile *model.StudentProfile, guardian *model.Account) (uint64, uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = tx.Rollback() }()

	id, err := insertAccount(ctx, tx, a)
	if err != nil {
		return 0, 0, err
	}
	if profile != nil {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO student_profile (id, roll_number, class, section) VALUES (?,?,?,?)",
			id, profile.RollNumber, profile.Class, profile.Section)
		if err != nil {
			if isDuplicate(err) {
				return 0, 0, ErrConflict
			}
			return 0, 0, err
		}
	}
	var parentID uint64
	if guardian != nil {
		g := *guardian
		g.ParentOf = &id
		parentID, err = insertAccount(ctx, tx, g)
		if err != nil {
			return 0, 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	return id, parentID, nil
}

func insertAccount(ctx context.Context, tx *sql.Tx, a model.Account) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (name, email, username, password, role, creator_id, parent_of) VALUES (?,?,?,?,?,?,?)",
		a.Name, a.Email, a.Username, a.PasswordHash, a.Role, nullableID(a.CreatorID), nullableID(a.ParentOf))
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func nullableID(v *uint64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
