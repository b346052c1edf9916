package catalog

import (
	"context"
	"strings"

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

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateContentItem(ctx context.Context, item *models.ContentItem) error {
	return r.db.WithContext(ctx).Omit("Genre", "Authors", "Tags").Create(item).Error
}

func (r *repository) FindContentItem(ctx context.Context, contentID uuid.UUID) (*models.ContentItem, error) {
	var item models.ContentItem
	err := r.db.WithContext(ctx).
		Preload("Genre").
		Preload("Authors").
		Preload("Tags").
		First(&item, "id = ?", contentID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) UpdateContentItem(ctx context.Context, contentID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.ContentItem{}).
		Where("id = ?", contentID).
		Updates(updates).Error
}

// DeleteContentItem removes the content row and every dependent ledger and
// association row. Callers own the enclosing transaction.
func (r *repository) DeleteContentItem(ctx context.Context, contentID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("content_id = ?", contentID).Delete(&models.BorrowRecord{}).Error; err != nil {
		return err
	}
	if err := db.Where("content_id = ?", contentID).Delete(&models.Reservation{}).Error; err != nil {
		return err
	}
	if err := db.Where("content_id = ?", contentID).Delete(&models.WaitlistEntry{}).Error; err != nil {
		return err
	}
	if err := db.Where("content_id = ?", contentID).Delete(&models.ExternalContentMapping{}).Error; err != nil {
		return err
	}
	if err := db.Where("content_id = ?", contentID).Delete(&models.ContentAuthor{}).Error; err != nil {
		return err
	}
	if err := db.Where("content_id = ?", contentID).Delete(&models.ContentTag{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", contentID).Delete(&models.ContentItem{}).Error
}

func (r *repository) ListContentItems(ctx context.Context, filter ContentListFilter, params pagination.Params) (*ContentPage, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.ContentItem{}).
		Preload("Genre").
		Preload("Authors").
		Preload("Tags")
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.GenreID != nil {
		query = query.Where("genre_id = ?", *filter.GenreID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.ContentItem
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	page := &ContentPage{Items: make([]ContentItemDTO, 0, len(rows))}
	hasMore := len(rows) > normalizedLimit
	if hasMore {
		rows = rows[:normalizedLimit]
	}
	for i := range rows {
		page.Items = append(page.Items, *contentFromModel(&rows[i]))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		page.NextCursor = &next
	}
	return page, nil
}

func (r *repository) FindOrCreateGenre(ctx context.Context, name string) (*models.Genre, error) {
	genre := models.Genre{Name: strings.TrimSpace(name)}
	err := r.db.WithContext(ctx).
		Where("name = ?", genre.Name).
		FirstOrCreate(&genre).Error
	if err != nil {
		return nil, err
	}
	return &genre, nil
}

func (r *repository) FindOrCreateAuthors(ctx context.Context, names []string) ([]models.Author, error) {
	authors := make([]models.Author, 0, len(names))
	for _, name := range names {
		author := models.Author{Name: strings.TrimSpace(name)}
		if author.Name == "" {
			continue
		}
		err := r.db.WithContext(ctx).
			Where("name = ?", author.Name).
			FirstOrCreate(&author).Error
		if err != nil {
			return nil, err
		}
		authors = append(authors, author)
	}
	return authors, nil
}

func (r *repository) FindOrCreateTags(ctx context.Context, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tag := models.Tag{Name: strings.TrimSpace(name)}
		if tag.Name == "" {
			continue
		}
		err := r.db.WithContext(ctx).
			Where("name = ?", tag.Name).
			FirstOrCreate(&tag).Error
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (r *repository) ReplaceAuthors(ctx context.Context, contentID uuid.UUID, authorIDs []uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("content_id = ?", contentID).Delete(&models.ContentAuthor{}).Error; err != nil {
		return err
	}
	if len(authorIDs) == 0 {
		return nil
	}
	rows := make([]models.ContentAuthor, 0, len(authorIDs))
	for _, authorID := range authorIDs {
		rows = append(rows, models.ContentAuthor{ContentID: contentID, AuthorID: authorID})
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (r *repository) ReplaceTags(ctx context.Context, contentID uuid.UUID, tagIDs []uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("content_id = ?", contentID).Delete(&models.ContentTag{}).Error; err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	rows := make([]models.ContentTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		rows = append(rows, models.ContentTag{ContentID: contentID, TagID: tagID})
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (r *repository) ListGenres(ctx context.Context) ([]models.Genre, error) {
	var genres []models.Genre
	err := r.db.WithContext(ctx).Order("name ASC").Find(&genres).Error
	return genres, err
}

func (r *repository) ListAuthors(ctx context.Context) ([]models.Author, error) {
	var authors []models.Author
	err := r.db.WithContext(ctx).Order("name ASC").Find(&authors).Error
	return authors, err
}

func (r *repository) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}

func (r *repository) HasActiveBorrow(ctx context.Context, contentID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BorrowRecord{}).
		Where("content_id = ? AND status IN ?", contentID,
			[]enums.BorrowStatus{enums.BorrowStatusBorrowed, enums.BorrowStatusOverdue}).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) HasPendingReservation(ctx context.Context, contentID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("content_id = ? AND status = ?", contentID, enums.ReservationStatusPending).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindActiveBorrowByUserContent(ctx context.Context, userID, contentID uuid.UUID) (*models.BorrowRecord, error) {
	var record models.BorrowRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND content_id = ? AND status IN ?", userID, contentID,
			[]enums.BorrowStatus{enums.BorrowStatusBorrowed, enums.BorrowStatusOverdue}).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}
