package profiles

import (
	"time"

	"github.com/mfigueroa/openshelf-backend/pkg/db/models"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	"github.com/google/uuid"
)

// ProfileDTO is the transport shape that omits credentials.
type ProfileDTO struct {
	ID               uuid.UUID      `json:"id"`
	Name             string         `json:"name"`
	Email            string         `json:"email"`
	Role             enums.UserRole `json:"role"`
	Phone            *string        `json:"phone,omitempty"`
	Address          *string        `json:"address,omitempty"`
	EmailVerified    bool           `json:"email_verified"`
	IsActive         bool           `json:"is_active"`
	RegistrationDate time.Time      `json:"registration_date"`
	LastLoginAt      *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// BorrowingStats summarizes a member's circulation history.
type BorrowingStats struct {
	CurrentlyBorrowed int64 `json:"currently_borrowed"`
	Overdue           int64 `json:"overdue"`
	Returned          int64 `json:"returned"`
	Total             int64 `json:"total"`
}

// UpdateSelfInput carries the fields a member may change on their own account.
type UpdateSelfInput struct {
	UserID  uuid.UUID
	Name    *string
	Phone   *string
	Address *string
}

// CreateUserInput is the admin path for provisioning an account directly.
type CreateUserInput struct {
	ActorRole enums.UserRole
	Name      string
	Email     string
	Role      enums.UserRole
	Phone     *string
	Address   *string
}

// CreateUserOutput returns the new account plus its generated credential.
// The temporary password is shown exactly once.
type CreateUserOutput struct {
	Profile      ProfileDTO `json:"profile"`
	TempPassword string     `json:"temp_password"`
}

// AdminUpdateInput carries an administrative account edit.
type AdminUpdateInput struct {
	ActorRole enums.UserRole
	UserID    uuid.UUID
	Name      *string
	Role      *enums.UserRole
	Phone     *string
	Address   *string
	IsActive  *bool
}

// ProfileListFilter narrows admin user listings.
type ProfileListFilter struct {
	Role   *enums.UserRole
	Search string
}

// ProfilePage is a cursor page of accounts.
type ProfilePage struct {
	Profiles   []ProfileDTO `json:"profiles"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}

func FromModel(p *models.Profile) *ProfileDTO {
	if p == nil {
		return nil
	}
	return &ProfileDTO{
		ID:               p.ID,
		Name:             p.Name,
		Email:            p.Email,
		Role:             p.Role,
		Phone:            p.Phone,
		Address:          p.Address,
		EmailVerified:    p.EmailVerified,
		IsActive:         p.IsActive,
		RegistrationDate: p.RegistrationDate,
		LastLoginAt:      p.LastLoginAt,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
