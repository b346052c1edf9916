package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mfigueroa/openshelf-backend/pkg/enums"
)

// ContentItem is a single digital work with one borrowable copy. Status is a
// cached summary of the circulation ledgers; only the availability service
// writes it.
type ContentItem struct {
	ID               uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title            string                   `gorm:"column:title;not null;index:content_items_title_idx"`
	Description      *string                  `gorm:"column:description"`
	FileType         string                   `gorm:"column:file_type;not null"`
	FileObjectPath   string                   `gorm:"column:file_object_path;not null"`
	CoverObjectPath  *string                  `gorm:"column:cover_object_path"`
	Status           enums.ContentStatus      `gorm:"column:status;type:content_status_enum;not null;default:'available';index:content_items_status_idx"`
	GenreID          *uuid.UUID               `gorm:"column:genre_id;type:uuid;index:content_items_genre_id_idx"`
	Publisher        *string                  `gorm:"column:publisher"`
	AccessLevel      enums.ContentAccessLevel `gorm:"column:access_level;type:access_level_enum;not null;default:'public'"`
	ViewMode         enums.ContentViewMode    `gorm:"column:view_mode;type:view_mode_enum;not null;default:'full_access'"`
	WatermarkEnabled bool                     `gorm:"column:watermark_enabled;not null;default:false"`
	DRMEnabled       bool                     `gorm:"column:drm_enabled;not null;default:false"`
	UploadDate       time.Time                `gorm:"column:upload_date;autoCreateTime"`
	CreatedBy        *uuid.UUID               `gorm:"column:created_by;type:uuid"`
	UpdatedBy        *uuid.UUID               `gorm:"column:updated_by;type:uuid"`
	CreatedAt        time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                `gorm:"column:updated_at;autoUpdateTime"`

	Genre   *Genre   `gorm:"foreignKey:GenreID"`
	Authors []Author `gorm:"many2many:content_authors;joinForeignKey:ContentID;joinReferences:AuthorID"`
	Tags    []Tag    `gorm:"many2many:content_tags;joinForeignKey:ContentID;joinReferences:TagID"`
}

// Author is a creator associated with one or more content items.
type Author struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string     `gorm:"column:name;not null;uniqueIndex:authors_name_key"`
	Bio         *string    `gorm:"column:bio"`
	BirthDate   *time.Time `gorm:"column:birth_date"`
	Nationality *string    `gorm:"column:nationality"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// Genre is a coarse subject classification.
type Genre struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null;uniqueIndex:genres_name_key"`
	Description *string   `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// Tag is a free-form label attached to content items.
type Tag struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null;uniqueIndex:tags_name_key"`
	Description *string   `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// ContentAuthor is the content/author join row.
type ContentAuthor struct {
	ContentID uuid.UUID `gorm:"column:content_id;type:uuid;primaryKey"`
	AuthorID  uuid.UUID `gorm:"column:author_id;type:uuid;primaryKey"`
}

// ContentTag is the content/tag join row.
type ContentTag struct {
	ContentID uuid.UUID `gorm:"column:content_id;type:uuid;primaryKey"`
	TagID     uuid.UUID `gorm:"column:tag_id;type:uuid;primaryKey"`
}
