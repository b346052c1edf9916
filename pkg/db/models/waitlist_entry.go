package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mfigueroa/openshelf-backend/pkg/enums"
)

// WaitlistEntry is an ordered queue slot for a content item. Waiting positions
// per content item are 1-based and gapless; the availability service
// re-sequences them whenever the head is promoted.
//
// The schema carries a partial unique index on (user_id, content_id) WHERE
// status = 'waiting'.
type WaitlistEntry struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index:waitlist_entries_user_id_idx"`
	ContentID uuid.UUID            `gorm:"column:content_id;type:uuid;not null;index:waitlist_entries_content_id_idx"`
	JoinDate  time.Time            `gorm:"column:join_date;not null"`
	Position  int                  `gorm:"column:position;not null"`
	Status    enums.WaitlistStatus `gorm:"column:status;type:waitlist_status_enum;not null;default:'waiting'"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
