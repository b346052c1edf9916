package profiles

import (
	"context"

	"github.com/mfigueroa/openshelf-backend/pkg/db/models"
	"github.com/mfigueroa/openshelf-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes profile persistence plus the borrow lookups the
// account views need.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateProfile(ctx context.Context, profile *models.Profile) error
	FindProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	FindProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteProfile(ctx context.Context, id uuid.UUID) error
	ListProfiles(ctx context.Context, filter ProfileListFilter, params pagination.Params) (*ProfilePage, error)

	CountActiveBorrows(ctx context.Context, userID uuid.UUID) (int64, error)
	BorrowStats(ctx context.Context, userID uuid.UUID) (*BorrowingStats, error)
}
