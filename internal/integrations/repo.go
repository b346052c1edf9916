package integrations

import (
	"context"
	"strings"

	"github.com/mfigueroa/openshelf-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes external system persistence.
type Repository interface {
	Create(ctx context.Context, system *models.ExternalSystem) error
	Find(ctx context.Context, id uuid.UUID) (*models.ExternalSystem, error)
	FindByName(ctx context.Context, name string) (*models.ExternalSystem, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]models.ExternalSystem, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository constructs an integrations repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, system *models.ExternalSystem) error {
	return r.db.WithContext(ctx).Create(system).Error
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.ExternalSystem, error) {
	var system models.ExternalSystem
	if err := r.db.WithContext(ctx).First(&system, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &system, nil
}

func (r *repository) FindByName(ctx context.Context, name string) (*models.ExternalSystem, error) {
	var system models.ExternalSystem
	err := r.db.WithContext(ctx).
		Where("lower(name) = lower(?)", strings.TrimSpace(name)).
		First(&system).Error
	if err != nil {
		return nil, err
	}
	return &system, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.ExternalSystem{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("external_system_id = ?", id).Delete(&models.ExternalContentMapping{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.ExternalSystem{}).Error
	})
}

func (r *repository) List(ctx context.Context) ([]models.ExternalSystem, error) {
	var systems []models.ExternalSystem
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&systems).Error
	return systems, err
}
