package reports

import (
	"context"
	"time"

	"github.com/mfigueroa/openshelf-backend/pkg/db/models"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes the aggregate queries behind the reporting views.
type Repository interface {
	CountProfiles(ctx context.Context) (int64, error)
	CountContent(ctx context.Context) (int64, error)
	CountBorrows(ctx context.Context) (int64, error)
	CountBorrowsByStatus(ctx context.Context, statuses ...enums.BorrowStatus) (int64, error)
	CountReservationsByStatus(ctx context.Context, status enums.ReservationStatus) (int64, error)
	CountWaitlistByStatus(ctx context.Context, status enums.WaitlistStatus) (int64, error)
	UsersByRole(ctx context.Context) (map[string]int64, error)
	ContentByStatus(ctx context.Context) (map[string]int64, error)
	ContentByGenre(ctx context.Context) (map[string]int64, error)
	BorrowsByMonth(ctx context.Context, year int) ([]MonthlyCount, error)
	AvgBorrowDays(ctx context.Context) (float64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs a reports repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountProfiles(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Profile{}).Count(&count).Error
	return count, err
}

func (r *repository) CountContent(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ContentItem{}).Count(&count).Error
	return count, err
}

func (r *repository) CountBorrows(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BorrowRecord{}).Count(&count).Error
	return count, err
}

func (r *repository) CountBorrowsByStatus(ctx context.Context, statuses ...enums.BorrowStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Where("status IN ?", statuses).
		Count(&count).Error
	return count, err
}

func (r *repository) CountReservationsByStatus(ctx context.Context, status enums.ReservationStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *repository) CountWaitlistByStatus(ctx context.Context, status enums.WaitlistStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WaitlistEntry{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

type bucketRow struct {
	Key   string
	Count int64
}

func (r *repository) UsersByRole(ctx context.Context) (map[string]int64, error) {
	var rows []bucketRow
	err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Select("role AS key, count(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return bucketsToMap(rows), nil
}

func (r *repository) ContentByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []bucketRow
	err := r.db.WithContext(ctx).
		Model(&models.ContentItem{}).
		Select("status AS key, count(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return bucketsToMap(rows), nil
}

func (r *repository) ContentByGenre(ctx context.Context) (map[string]int64, error) {
	var rows []bucketRow
	err := r.db.WithContext(ctx).
		Model(&models.ContentItem{}).
		Select("COALESCE(genres.name, 'uncategorized') AS key, count(*) AS count").
		Joins("LEFT JOIN genres ON genres.id = content_items.genre_id").
		Group("genres.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return bucketsToMap(rows), nil
}

func (r *repository) BorrowsByMonth(ctx context.Context, year int) ([]MonthlyCount, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	type monthRow struct {
		Month int
		Count int64
	}
	var rows []monthRow
	err := r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Select("EXTRACT(MONTH FROM borrow_date)::int AS month, count(*) AS count").
		Where("borrow_date >= ? AND borrow_date < ?", start, end).
		Group("month").
		Order("month ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byMonth := make(map[int]int64, len(rows))
	for _, row := range rows {
		byMonth[row.Month] = row.Count
	}
	out := make([]MonthlyCount, 0, 12)
	for month := 1; month <= 12; month++ {
		out = append(out, MonthlyCount{
			Month: time.Month(month).String(),
			Count: byMonth[month],
		})
	}
	return out, nil
}

func (r *repository) AvgBorrowDays(ctx context.Context) (float64, error) {
	var avg *float64
	err := r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Select("AVG(EXTRACT(EPOCH FROM (returned_at - borrow_date)) / 86400.0)").
		Where("status = ? AND returned_at IS NOT NULL", enums.BorrowStatusReturned).
		Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

func bucketsToMap(rows []bucketRow) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Count
	}
	return out
}
