package catalog

import (
	"context"

	"github.com/mfigueroa/openshelf-backend/pkg/db/models"
	"github.com/mfigueroa/openshelf-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the catalog tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateContentItem(ctx context.Context, item *models.ContentItem) error
	FindContentItem(ctx context.Context, contentID uuid.UUID) (*models.ContentItem, error)
	UpdateContentItem(ctx context.Context, contentID uuid.UUID, updates map[string]any) error
	DeleteContentItem(ctx context.Context, contentID uuid.UUID) error
	ListContentItems(ctx context.Context, filter ContentListFilter, params pagination.Params) (*ContentPage, error)

	FindOrCreateGenre(ctx context.Context, name string) (*models.Genre, error)
	FindOrCreateAuthors(ctx context.Context, names []string) ([]models.Author, error)
	FindOrCreateTags(ctx context.Context, names []string) ([]models.Tag, error)
	ReplaceAuthors(ctx context.Context, contentID uuid.UUID, authorIDs []uuid.UUID) error
	ReplaceTags(ctx context.Context, contentID uuid.UUID, tagIDs []uuid.UUID) error

	ListGenres(ctx context.Context) ([]models.Genre, error)
	ListAuthors(ctx context.Context) ([]models.Author, error)
	ListTags(ctx context.Context) ([]models.Tag, error)

	FindActiveBorrowByUserContent(ctx context.Context, userID, contentID uuid.UUID) (*models.BorrowRecord, error)
	HasActiveBorrow(ctx context.Context, contentID uuid.UUID) (bool, error)
	HasPendingReservation(ctx context.Context, contentID uuid.UUID) (bool, error)
}
