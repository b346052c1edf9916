package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mfigueroa/openshelf-backend/pkg/enums"
)

// Reservation is a time-boxed claim on a content item. A pending reservation
// outranks every waitlist entry when the copy frees up.
//
// The schema carries a partial unique index on (user_id, content_id) WHERE
// status = 'pending'.
type Reservation struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index:reservations_user_id_idx"`
	ContentID       uuid.UUID               `gorm:"column:content_id;type:uuid;not null;index:reservations_content_id_idx"`
	ReservationDate time.Time               `gorm:"column:reservation_date;not null"`
	ExpiryDate      time.Time               `gorm:"column:expiry_date;not null;index:reservations_expiry_date_idx"`
	Status          enums.ReservationStatus `gorm:"column:status;type:reservation_status_enum;not null;default:'pending'"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
