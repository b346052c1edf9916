package availability

import (
	"context"
	"time"

	"github.com/mfigueroa/openshelf-backend/pkg/db/models"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	"github.com/mfigueroa/openshelf-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an availability repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindContentItem(ctx context.Context, contentID uuid.UUID) (*models.ContentItem, error) {
	var content models.ContentItem
	if err := r.db.WithContext(ctx).First(&content, "id = ?", contentID).Error; err != nil {
		return nil, err
	}
	return &content, nil
}

// LockContentItem takes the content row FOR UPDATE. All circulation mutations
// for one item funnel through this lock.
func (r *repository) LockContentItem(ctx context.Context, contentID uuid.UUID) (*models.ContentItem, error) {
	var content models.ContentItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&content, "id = ?", contentID).Error
	if err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *repository) UpdateContentStatus(ctx context.Context, contentID uuid.UUID, status enums.ContentStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.ContentItem{}).
		Where("id = ?", contentID).
		Update("status", status).Error
}

func (r *repository) CreateBorrowRecord(ctx context.Context, record *models.BorrowRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) FindBorrowRecord(ctx context.Context, borrowID uuid.UUID) (*models.BorrowRecord, error) {
	var record models.BorrowRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", borrowID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) FindActiveBorrowByContent(ctx context.Context, contentID uuid.UUID) (*models.BorrowRecord, error) {
	var record models.BorrowRecord
	err := r.db.WithContext(ctx).
		Where("content_id = ? AND status IN ?", contentID, []enums.BorrowStatus{enums.BorrowStatusBorrowed, enums.BorrowStatusOverdue}).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) MarkBorrowReturned(ctx context.Context, borrowID uuid.UUID, returnedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Where("id = ?", borrowID).
		Updates(map[string]any{
			"return_date": returnedAt,
			"status":      enums.BorrowStatusReturned,
		}).Error
}

func (r *repository) UpdateBorrowStatus(ctx context.Context, borrowID uuid.UUID, status enums.BorrowStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Where("id = ?", borrowID).
		Update("status", status).Error
}

func (r *repository) CountActiveBorrowsByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Where("user_id = ? AND status IN ?", userID, []enums.BorrowStatus{enums.BorrowStatusBorrowed, enums.BorrowStatusOverdue}).
		Count(&count).Error
	return count, err
}

func (r *repository) ListBorrowRecords(ctx context.Context, filter BorrowListFilter, params pagination.Params) (*BorrowRecordList, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.BorrowRecord{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.ContentID != nil {
		query = query.Where("content_id = ?", *filter.ContentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.BorrowRecord
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &BorrowRecordList{Records: make([]BorrowRecordDTO, 0, len(rows))}
	hasMore := len(rows) > normalizedLimit
	if hasMore {
		rows = rows[:normalizedLimit]
	}
	for i := range rows {
		list.Records = append(list.Records, *borrowRecordFromModel(&rows[i]))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		list.NextCursor = &next
	}
	return list, nil
}

func (r *repository) ListOverdueBorrows(ctx context.Context, cutoff time.Time) ([]models.BorrowRecord, error) {
	var rows []models.BorrowRecord
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", enums.BorrowStatusBorrowed, cutoff).
		Order("due_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) CreateReservation(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

func (r *repository) FindReservation(ctx context.Context, reservationID uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).First(&reservation, "id = ?", reservationID).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) FindPendingReservation(ctx context.Context, userID, contentID uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND content_id = ? AND status = ?", userID, contentID, enums.ReservationStatusPending).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) FindEarliestPendingReservation(ctx context.Context, contentID uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Where("content_id = ? AND status = ?", contentID, enums.ReservationStatusPending).
		Order("reservation_date ASC, id ASC").
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) UpdateReservationStatus(ctx context.Context, reservationID uuid.UUID, status enums.ReservationStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", reservationID).
		Update("status", status).Error
}

func (r *repository) ListExpiredPendingReservations(ctx context.Context, cutoff time.Time) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.db.WithContext(ctx).
		Where("status = ? AND expiry_date < ?", enums.ReservationStatusPending, cutoff).
		Order("expiry_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) CreateWaitlistEntry(ctx context.Context, entry *models.WaitlistEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindWaitingEntry(ctx context.Context, userID, contentID uuid.UUID) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND content_id = ? AND status = ?", userID, contentID, enums.WaitlistStatusWaiting).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) FindWaitlistHead(ctx context.Context, contentID uuid.UUID) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	err := r.db.WithContext(ctx).
		Where("content_id = ? AND status = ?", contentID, enums.WaitlistStatusWaiting).
		Order("position ASC").
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) MaxWaitingPosition(ctx context.Context, contentID uuid.UUID) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Select("MAX(position)").
		Where("content_id = ? AND status = ?", contentID, enums.WaitlistStatusWaiting).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *repository) CountWaiting(ctx context.Context, contentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("content_id = ? AND status = ?", contentID, enums.WaitlistStatusWaiting).
		Count(&count).Error
	return count, err
}

func (r *repository) UpdateWaitlistStatus(ctx context.Context, entryID uuid.UUID, status enums.WaitlistStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("id = ?", entryID).
		Update("status", status).Error
}

// ShiftWaitingPositions closes the gap left by a promoted entry so the
// remaining waiting positions stay 1..N.
func (r *repository) ShiftWaitingPositions(ctx context.Context, contentID uuid.UUID, abovePosition int) error {
	return r.db.WithContext(ctx).
		Exec(`UPDATE waitlist_entries
			SET position = position - 1, updated_at = CURRENT_TIMESTAMP
			WHERE content_id = ? AND status = ? AND position > ?`,
			contentID, enums.WaitlistStatusWaiting, abovePosition).Error
}
