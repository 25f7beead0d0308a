package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/school-records/internal/auth"
	"github.com/iliyamo/school-records/internal/model"
	"github.com/iliyamo/school-records/internal/repository"
)

// AccountStore is the slice of the account repository the provisioner needs.
type AccountStore interface {
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id uint64) (model.Account, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	// Create inserts the account, its optional student profile and optional
	// guardian in one transactional unit and returns (accountID, guardianID).
	Create(ctx context.Context, a model.Account, profile *model.StudentProfile, guardian *model.Account) (uint64, uint64, error)
}

// Provisioner creates accounts under the role-hierarchy rules.
type Provisioner struct {
	Store      AccountStore
	BcryptCost int
}

func NewProvisioner(store AccountStore, bcryptCost int) *Provisioner {
	return &Provisioner{Store: store, BcryptCost: bcryptCost}
}

// ProvisionInput carries the fields of a provisioning request. RollNumber,
// Class and Section only apply when the requested role is student; a student
// provisioned with a roll number gets a student_profile row alongside the
// account.
type ProvisionInput struct {
	Name       string
	Email      string
	Password   string
	Role       string
	Username   string
	CreatorID  *uint64
	RollNumber string
	Class      string
	Section    string
}

// ProvisionResult reports what was created. ParentID is non-zero only when a
// guardian account was cascaded.
type ProvisionResult struct {
	UserID   uint64
	ParentID uint64
	Role     model.Role
}

// Provision validates a request against the role-creation rules and writes
// the account. A teacher provisioning a student additionally cascades a
// guardian account; both rows are committed in one transaction, so a
// guardian-username collision rolls the student back too and the store is
// left untouched.
func (p *Provisioner) Provision(ctx context.Context, in ProvisionInput) (ProvisionResult, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	if name == "" || email == "" || in.Password == "" || strings.TrimSpace(in.Role) == "" || username == "" {
		return ProvisionResult{}, failf(KindValidation, "All fields required")
	}
	role, ok := model.ParseRole(in.Role)
	if !ok {
		return ProvisionResult{}, failf(KindValidation, "Unknown role")
	}

	total, err := p.Store.Count(ctx)
	if err != nil {
		return ProvisionResult{}, failf(KindInternal, "count users failed")
	}

	var creator *model.Account
	if total == 0 {
		// Bootstrap: the very first account must be the admin and has no creator.
		if role != model.RoleAdmin {
			return ProvisionResult{}, failf(KindValidation, "First user must be admin")
		}
		in.CreatorID = nil
	} else {
		if in.CreatorID == nil {
			return ProvisionResult{}, failf(KindValidation, "creator_id required")
		}
		c, err := p.Store.GetByID(ctx, *in.CreatorID)
		if errors.Is(err, repository.ErrNotFound) {
			return ProvisionResult{}, failf(KindValidation, "Invalid creator")
		}
		if err != nil {
			return ProvisionResult{}, failf(KindInternal, "load creator failed")
		}
		creator = &c
		if !creator.Role.CanCreate(role) {
			if creator.Role == model.RoleTeacher {
				return ProvisionResult{}, failf(KindPermission, "Teacher can only create students")
			}
			return ProvisionResult{}, failf(KindPermission, "Permission denied")
		}
	}

	if taken, err := p.Store.UsernameTaken(ctx, username); err != nil {
		return ProvisionResult{}, failf(KindInternal, "uniqueness check failed")
	} else if taken {
		return ProvisionResult{}, failf(KindConflict, "Username already exists")
	}
	if taken, err := p.Store.EmailTaken(ctx, email); err != nil {
		return ProvisionResult{}, failf(KindInternal, "uniqueness check failed")
	} else if taken {
		return ProvisionResult{}, failf(KindConflict, "Email already exists")
	}

	hash, err := auth.HashPassword(in.Password, p.BcryptCost)
	if err != nil {
		return ProvisionResult{}, failf(KindInternal, "hash password failed")
	}
	account := model.Account{
		Name:         name,
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatorID:    in.CreatorID,
	}

	var profile *model.StudentProfile
	if role == model.RoleStudent && strings.TrimSpace(in.RollNumber) != "" {
		profile = &model.StudentProfile{
			RollNumber: strings.TrimSpace(in.RollNumber),
			Class:      strings.TrimSpace(in.Class),
			Section:    strings.TrimSpace(in.Section),
		}
	}

	var guardian *model.Account
	if creator != nil && creator.Role == model.RoleTeacher && role == model.RoleStudent {
		parentUsername := "P" + username
		if taken, err := p.Store.UsernameTaken(ctx, parentUsername); err != nil {
			return ProvisionResult{}, failf(KindInternal, "uniqueness check failed")
		} else if taken {
			return ProvisionResult{}, failf(KindConflict, "Parent username exists")
		}
		// The guardian gets its own hash of the same plaintext; ParentOf is
		// filled in by the store once the student id is known.
		parentHash, err := auth.HashPassword(in.Password, p.BcryptCost)
		if err != nil {
			return ProvisionResult{}, failf(KindInternal, "hash password failed")
		}
		guardian = &model.Account{
			Name:         name + "'s Parent",
			Email:        "parent_" + email,
			Username:     parentUsername,
			PasswordHash: parentHash,
			Role:         model.RoleParent,
			CreatorID:    in.CreatorID,
		}
	}

	userID, parentID, err := p.Store.Create(ctx, account, profile, guardian)
	if errors.Is(err, repository.ErrConflict) {
		// Lost a race with a concurrent signup; nothing was committed.
		return ProvisionResult{}, failf(KindConflict, "Username or email already exists")
	}
	if err != nil {
		return ProvisionResult{}, failf(KindInternal, "create user failed")
	}
	return ProvisionResult{UserID: userID, ParentID: parentID, Role: role}, nil
}
