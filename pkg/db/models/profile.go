package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mfigueroa/openshelf-backend/pkg/enums"
)

// Profile mirrors an identity-provider account inside the library: the role
// recorded here drives every authorization check in the API.
type Profile struct {
	ID               uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string         `gorm:"column:name;not null"`
	Email            string         `gorm:"column:email;not null;uniqueIndex:profiles_email_key"`
	PasswordHash     string         `gorm:"column:password_hash;not null"`
	Role             enums.UserRole `gorm:"column:role;type:user_role_enum;not null;default:'student'"`
	Phone            *string        `gorm:"column:phone"`
	Address          *string        `gorm:"column:address"`
	EmailVerified    bool           `gorm:"column:email_verified;not null;default:false"`
	IsActive         bool           `gorm:"column:is_active;not null;default:true"`
	RegistrationDate time.Time      `gorm:"column:registration_date;autoCreateTime"`
	LastLoginAt      *time.Time     `gorm:"column:last_login_at"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
