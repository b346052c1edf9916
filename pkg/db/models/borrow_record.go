package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mfigueroa/openshelf-backend/pkg/enums"
)

// BorrowRecord is one borrow-to-return cycle. Rows are append-only apart from
// the return/overdue transition; they form the audit trail for reporting.
//
// The schema carries a partial unique index on (content_id) WHERE
// status = 'borrowed' so two concurrent borrows of the same copy cannot both
// commit.
type BorrowRecord struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index:borrow_records_user_id_idx"`
	ContentID  uuid.UUID          `gorm:"column:content_id;type:uuid;not null;index:borrow_records_content_id_idx"`
	BorrowDate time.Time          `gorm:"column:borrow_date;not null"`
	DueDate    time.Time          `gorm:"column:due_date;not null;index:borrow_records_due_date_idx"`
	ReturnDate *time.Time         `gorm:"column:return_date"`
	Status     enums.BorrowStatus `gorm:"column:status;type:borrow_status_enum;not null;default:'borrowed'"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
