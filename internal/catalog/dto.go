package catalog

import (
	"time"

	"github.com/mfigueroa/openshelf-backend/pkg/db/models"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	"github.com/google/uuid"
)

// GenreDTO is the transport shape for a genre.
type GenreDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
}

// AuthorDTO is the transport shape for an author.
type AuthorDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Bio         *string   `json:"bio,omitempty"`
	Nationality *string   `json:"nationality,omitempty"`
}

// TagDTO is the transport shape for a tag.
type TagDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ContentItemDTO is the transport shape for a catalog entry. Object paths are
// never exposed; clients go through the view endpoint for signed access.
type ContentItemDTO struct {
	ID               uuid.UUID                `json:"id"`
	Title            string                   `json:"title"`
	Description      *string                  `json:"description,omitempty"`
	FileType         string                   `json:"file_type"`
	Status           enums.ContentStatus      `json:"status"`
	Genre            *GenreDTO                `json:"genre,omitempty"`
	Authors          []AuthorDTO              `json:"authors"`
	Tags             []TagDTO                 `json:"tags"`
	Publisher        *string                  `json:"publisher,omitempty"`
	AccessLevel      enums.ContentAccessLevel `json:"access_level"`
	ViewMode         enums.ContentViewMode    `json:"view_mode"`
	WatermarkEnabled bool                     `json:"watermark_enabled"`
	DRMEnabled       bool                     `json:"drm_enabled"`
	UploadDate       time.Time                `json:"upload_date"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

// CreateContentInput carries a new catalog entry plus the upload mime types
// used to presign the object PUTs.
type CreateContentInput struct {
	ActorID          uuid.UUID
	ActorRole        enums.UserRole
	Title            string
	Description      *string
	FileType         string
	FileMimeType     string
	CoverMimeType    *string
	GenreName        *string
	AuthorNames      []string
	TagNames         []string
	Publisher        *string
	AccessLevel      enums.ContentAccessLevel
	ViewMode         enums.ContentViewMode
	WatermarkEnabled bool
	DRMEnabled       bool
}

// CreateContentOutput pairs the stored entry with signed upload URLs.
type CreateContentOutput struct {
	Content        ContentItemDTO `json:"content"`
	FileUploadURL  string         `json:"file_upload_url"`
	CoverUploadURL *string        `json:"cover_upload_url,omitempty"`
}

// UpdateContentInput carries a partial catalog edit. Nil fields are left
// untouched; a Status of archived routes through the archive path.
type UpdateContentInput struct {
	ActorID          uuid.UUID
	ActorRole        enums.UserRole
	ContentID        uuid.UUID
	Title            *string
	Description      *string
	GenreName        *string
	AuthorNames      *[]string
	TagNames         *[]string
	Publisher        *string
	AccessLevel      *enums.ContentAccessLevel
	ViewMode         *enums.ContentViewMode
	WatermarkEnabled *bool
	DRMEnabled       *bool
	Status           *enums.ContentStatus
}

// ContentListFilter narrows List results.
type ContentListFilter struct {
	Status  *enums.ContentStatus
	GenreID *uuid.UUID
	Search  string
}

// ContentPage is a cursor page of catalog entries.
type ContentPage struct {
	Items      []ContentItemDTO `json:"items"`
	NextCursor *string          `json:"next_cursor,omitempty"`
}

func contentFromModel(item *models.ContentItem) *ContentItemDTO {
	if item == nil {
		return nil
	}
	dto := &ContentItemDTO{
		ID:               item.ID,
		Title:            item.Title,
		Description:      item.Description,
		FileType:         item.FileType,
		Status:           item.Status,
		Authors:          make([]AuthorDTO, 0, len(item.Authors)),
		Tags:             make([]TagDTO, 0, len(item.Tags)),
		Publisher:        item.Publisher,
		AccessLevel:      item.AccessLevel,
		ViewMode:         item.ViewMode,
		WatermarkEnabled: item.WatermarkEnabled,
		DRMEnabled:       item.DRMEnabled,
		UploadDate:       item.UploadDate,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
	if item.Genre != nil {
		dto.Genre = &GenreDTO{ID: item.Genre.ID, Name: item.Genre.Name, Description: item.Genre.Description}
	}
	for _, author := range item.Authors {
		dto.Authors = append(dto.Authors, AuthorDTO{ID: author.ID, Name: author.Name, Bio: author.Bio, Nationality: author.Nationality})
	}
	for _, tag := range item.Tags {
		dto.Tags = append(dto.Tags, TagDTO{ID: tag.ID, Name: tag.Name})
	}
	return dto
}
