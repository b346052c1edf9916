package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mfigueroa/openshelf-backend/pkg/enums"
)

// Feedback is a support or bug-report message submitted by a user.
type Feedback struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index:feedback_user_id_idx"`
	Type          enums.FeedbackType   `gorm:"column:type;type:feedback_type_enum;not null"`
	Subject       string               `gorm:"column:subject;not null"`
	Message       string               `gorm:"column:message;not null"`
	Status        enums.FeedbackStatus `gorm:"column:status;type:feedback_status_enum;not null;default:pending"`
	AdminResponse *string              `gorm:"column:admin_response"`
	ResolvedAt    *time.Time           `gorm:"column:resolved_at"`
	ResolvedBy    *uuid.UUID           `gorm:"column:resolved_by;type:uuid"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (Feedback) TableName() string { return "feedback" }
