package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mfigueroa/openshelf-backend/pkg/config"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	pkgerrors "github.com/mfigueroa/openshelf-backend/pkg/errors"
	"github.com/mfigueroa/openshelf-backend/pkg/db/models"
	"github.com/mfigueroa/openshelf-backend/pkg/pagination"
	"github.com/mfigueroa/openshelf-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const tempPasswordLength = 16

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes member self-service and administrative account management.
type Service interface {
	GetSelf(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	UpdateSelf(ctx context.Context, input UpdateSelfInput) (*ProfileDTO, error)
	Stats(ctx context.Context, userID uuid.UUID) (*BorrowingStats, error)

	CreateUser(ctx context.Context, input CreateUserInput) (*CreateUserOutput, error)
	UpdateUser(ctx context.Context, input AdminUpdateInput) (*ProfileDTO, error)
	DeleteUser(ctx context.Context, actorRole enums.UserRole, userID uuid.UUID) error
	GetUser(ctx context.Context, actorRole enums.UserRole, userID uuid.UUID) (*ProfileDTO, error)
	ListUsers(ctx context.Context, actorRole enums.UserRole, filter ProfileListFilter, params pagination.Params) (*ProfilePage, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	password config.PasswordConfig
}

// ServiceParams bundles the profiles service dependencies.
type ServiceParams struct {
	Repo     Repository
	TxRunner txRunner
	Password config.PasswordConfig
}

// NewService constructs the profiles service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("profiles repository required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     params.Repo,
		tx:       params.TxRunner,
		password: params.Password,
	}, nil
}

func (s *service) GetSelf(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	profile, err := s.repo.FindProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return FromModel(profile), nil
}

func (s *service) UpdateSelf(ctx context.Context, input UpdateSelfInput) (*ProfileDTO, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if len(updates) == 0 {
		return s.GetSelf(ctx, input.UserID)
	}
	if err := s.repo.UpdateProfile(ctx, input.UserID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return s.GetSelf(ctx, input.UserID)
}

func (s *service) Stats(ctx context.Context, userID uuid.UUID) (*BorrowingStats, error) {
	stats, err := s.repo.BorrowStats(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load borrowing stats")
	}
	return stats, nil
}

func (s *service) CreateUser(ctx context.Context, input CreateUserInput) (*CreateUserOutput, error) {
	if !input.ActorRole.CanManageUsers() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot manage accounts")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid email required")
	}
	role := input.Role
	if role == "" {
		role = enums.UserRoleStudent
	}
	if !role.IsValid() || role == enums.UserRoleGuest {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role for an account")
	}

	tempPassword, err := security.GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "generate temp password")
	}
	hash, err := security.HashPassword(tempPassword, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "hash temp password")
	}

	profile := &models.Profile{
		ID:            uuid.New(),
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		Role:          role,
		Phone:         input.Phone,
		Address:       input.Address,
		EmailVerified: true,
		IsActive:      true,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindProfileByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
		}
		return repo.CreateProfile(ctx, profile)
	})
	if err != nil {
		return nil, err
	}

	return &CreateUserOutput{
		Profile:      *FromModel(profile),
		TempPassword: tempPassword,
	}, nil
}

func (s *service) UpdateUser(ctx context.Context, input AdminUpdateInput) (*ProfileDTO, error) {
	if !input.ActorRole.CanManageUsers() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot manage accounts")
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Role != nil {
		if !input.Role.IsValid() || *input.Role == enums.UserRoleGuest {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role for an account")
		}
		updates["role"] = *input.Role
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindProfile(ctx, input.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
		}
		if len(updates) == 0 {
			return nil
		}
		return repo.UpdateProfile(ctx, input.UserID, updates)
	})
	if err != nil {
		return nil, err
	}
	return s.GetSelf(ctx, input.UserID)
}

// DeleteUser removes an account. Accounts holding borrowed or overdue items
// cannot be removed until every copy comes back.
func (s *service) DeleteUser(ctx context.Context, actorRole enums.UserRole, userID uuid.UUID) error {
	if actorRole != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can remove accounts")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindProfile(ctx, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
		}
		active, err := repo.CountActiveBorrows(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active borrows")
		}
		if active > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "account still holds borrowed items")
		}
		return repo.DeleteProfile(ctx, userID)
	})
}

func (s *service) GetUser(ctx context.Context, actorRole enums.UserRole, userID uuid.UUID) (*ProfileDTO, error) {
	if !actorRole.CanManageUsers() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot manage accounts")
	}
	return s.GetSelf(ctx, userID)
}

func (s *service) ListUsers(ctx context.Context, actorRole enums.UserRole, filter ProfileListFilter, params pagination.Params) (*ProfilePage, error) {
	if !actorRole.CanManageUsers() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot manage accounts")
	}
	page, err := s.repo.ListProfiles(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list profiles")
	}
	return page, nil
}
