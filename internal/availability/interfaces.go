package availability

import (
	"context"
	"time"

	"github.com/mfigueroa/openshelf-backend/pkg/db/models"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	"github.com/mfigueroa/openshelf-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the circulation ledgers.
// Mutating calls are expected to run inside a transaction where the content
// row has been taken with LockContentItem, which serializes per-item work.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindContentItem(ctx context.Context, contentID uuid.UUID) (*models.ContentItem, error)
	LockContentItem(ctx context.Context, contentID uuid.UUID) (*models.ContentItem, error)
	UpdateContentStatus(ctx context.Context, contentID uuid.UUID, status enums.ContentStatus) error

	CreateBorrowRecord(ctx context.Context, record *models.BorrowRecord) error
	FindBorrowRecord(ctx context.Context, borrowID uuid.UUID) (*models.BorrowRecord, error)
	FindActiveBorrowByContent(ctx context.Context, contentID uuid.UUID) (*models.BorrowRecord, error)
	MarkBorrowReturned(ctx context.Context, borrowID uuid.UUID, returnedAt time.Time) error
	UpdateBorrowStatus(ctx context.Context, borrowID uuid.UUID, status enums.BorrowStatus) error
	CountActiveBorrowsByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	ListBorrowRecords(ctx context.Context, filter BorrowListFilter, params pagination.Params) (*BorrowRecordList, error)
	ListOverdueBorrows(ctx context.Context, cutoff time.Time) ([]models.BorrowRecord, error)

	CreateReservation(ctx context.Context, reservation *models.Reservation) error
	FindReservation(ctx context.Context, reservationID uuid.UUID) (*models.Reservation, error)
	FindPendingReservation(ctx context.Context, userID, contentID uuid.UUID) (*models.Reservation, error)
	FindEarliestPendingReservation(ctx context.Context, contentID uuid.UUID) (*models.Reservation, error)
	UpdateReservationStatus(ctx context.Context, reservationID uuid.UUID, status enums.ReservationStatus) error
	ListExpiredPendingReservations(ctx context.Context, cutoff time.Time) ([]models.Reservation, error)

	CreateWaitlistEntry(ctx context.Context, entry *models.WaitlistEntry) error
	FindWaitingEntry(ctx context.Context, userID, contentID uuid.UUID) (*models.WaitlistEntry, error)
	FindWaitlistHead(ctx context.Context, contentID uuid.UUID) (*models.WaitlistEntry, error)
	MaxWaitingPosition(ctx context.Context, contentID uuid.UUID) (int, error)
	CountWaiting(ctx context.Context, contentID uuid.UUID) (int64, error)
	UpdateWaitlistStatus(ctx context.Context, entryID uuid.UUID, status enums.WaitlistStatus) error
	ShiftWaitingPositions(ctx context.Context, contentID uuid.UUID, abovePosition int) error
}
