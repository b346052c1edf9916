package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mfigueroa/openshelf-backend/pkg/db/models"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	pkgerrors "github.com/mfigueroa/openshelf-backend/pkg/errors"
	"github.com/mfigueroa/openshelf-backend/pkg/logger"
	"github.com/mfigueroa/openshelf-backend/pkg/outbox"
	"github.com/mfigueroa/openshelf-backend/pkg/outbox/payloads"
	"github.com/mfigueroa/openshelf-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type gcsClient interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, bucket, object string) error
}

var fileExtensionByMime = map[string]string{
	"application/pdf":  "pdf",
	"application/epub": "epub",
	"video/mp4":        "mp4",
	"audio/mpeg":       "mp3",
}

var coverExtensionByMime = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

// Service exposes catalog management. Circulation status transitions stay
// with the availability service; the only status write here is archive.
type Service interface {
	Create(ctx context.Context, input CreateContentInput) (*CreateContentOutput, error)
	Update(ctx context.Context, input UpdateContentInput) (*ContentItemDTO, error)
	Delete(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, contentID uuid.UUID) error
	Get(ctx context.Context, contentID uuid.UUID) (*ContentItemDTO, error)
	List(ctx context.Context, filter ContentListFilter, params pagination.Params) (*ContentPage, error)
	ViewURL(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, contentID uuid.UUID) (string, error)
	ListGenres(ctx context.Context) ([]GenreDTO, error)
	ListAuthors(ctx context.Context) ([]AuthorDTO, error)
	ListTags(ctx context.Context) ([]TagDTO, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxEmitter
	gcs       gcsClient
	logg      *logger.Logger
	bucket    string
	uploadTTL time.Duration
	viewTTL   time.Duration
	now       func() time.Time
}

// ServiceParams bundles the catalog service dependencies.
type ServiceParams struct {
	Repo      Repository
	TxRunner  txRunner
	Outbox    outboxEmitter
	GCS       gcsClient
	Logger    *logger.Logger
	Bucket    string
	UploadTTL time.Duration
	ViewTTL   time.Duration
}

// NewService constructs the catalog service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if params.GCS == nil {
		return nil, fmt.Errorf("gcs client required")
	}
	if params.Bucket == "" {
		return nil, fmt.Errorf("gcs bucket required")
	}
	uploadTTL := params.UploadTTL
	if uploadTTL <= 0 {
		uploadTTL = 15 * time.Minute
	}
	viewTTL := params.ViewTTL
	if viewTTL <= 0 {
		viewTTL = time.Hour
	}
	return &service{
		repo:      params.Repo,
		tx:        params.TxRunner,
		outbox:    params.Outbox,
		gcs:       params.GCS,
		logg:      params.Logger,
		bucket:    params.Bucket,
		uploadTTL: uploadTTL,
		viewTTL:   viewTTL,
		now:       time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateContentInput) (*CreateContentOutput, error) {
	if !input.ActorRole.CanManageCatalog() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot manage the catalog")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	fileExt, ok := fileExtensionByMime[input.FileMimeType]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported file mime type")
	}
	var coverExt string
	if input.CoverMimeType != nil {
		coverExt, ok = coverExtensionByMime[*input.CoverMimeType]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported cover mime type")
		}
	}
	accessLevel := input.AccessLevel
	if accessLevel == "" {
		accessLevel = enums.AccessLevelPublic
	}
	if !accessLevel.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid access level")
	}
	viewMode := input.ViewMode
	if viewMode == "" {
		viewMode = enums.ViewModeFullAccess
	}
	if !viewMode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid view mode")
	}

	contentID := uuid.New()
	filePath := fmt.Sprintf("content/%s/file.%s", contentID, fileExt)
	var coverPath *string
	if coverExt != "" {
		path := fmt.Sprintf("content/%s/cover.%s", contentID, coverExt)
		coverPath = &path
	}

	item := &models.ContentItem{
		ID:               contentID,
		Title:            title,
		Description:      input.Description,
		FileType:         fileTypeLabel(input.FileType, fileExt),
		FileObjectPath:   filePath,
		CoverObjectPath:  coverPath,
		Status:           enums.ContentStatusAvailable,
		Publisher:        input.Publisher,
		AccessLevel:      accessLevel,
		ViewMode:         viewMode,
		WatermarkEnabled: input.WatermarkEnabled,
		DRMEnabled:       input.DRMEnabled,
		UploadDate:       s.now().UTC(),
		CreatedBy:        &input.ActorID,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if input.GenreName != nil && strings.TrimSpace(*input.GenreName) != "" {
			genre, err := repo.FindOrCreateGenre(ctx, *input.GenreName)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve genre")
			}
			item.GenreID = &genre.ID
		}

		if err := repo.CreateContentItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create content item")
		}

		authors, err := repo.FindOrCreateAuthors(ctx, input.AuthorNames)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve authors")
		}
		authorIDs := make([]uuid.UUID, 0, len(authors))
		for _, author := range authors {
			authorIDs = append(authorIDs, author.ID)
		}
		if err := repo.ReplaceAuthors(ctx, item.ID, authorIDs); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach authors")
		}

		tags, err := repo.FindOrCreateTags(ctx, input.TagNames)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve tags")
		}
		tagIDs := make([]uuid.UUID, 0, len(tags))
		for _, tag := range tags {
			tagIDs = append(tagIDs, tag.ID)
		}
		return repo.ReplaceTags(ctx, item.ID, tagIDs)
	})
	if err != nil {
		return nil, err
	}

	fileURL, err := s.gcs.SignedURL(s.bucket, filePath, input.FileMimeType, s.uploadTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign file upload url")
	}
	out := &CreateContentOutput{FileUploadURL: fileURL}
	if coverPath != nil && input.CoverMimeType != nil {
		coverURL, err := s.gcs.SignedURL(s.bucket, *coverPath, *input.CoverMimeType, s.uploadTTL)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign cover upload url")
		}
		out.CoverUploadURL = &coverURL
	}

	stored, err := s.repo.FindContentItem(ctx, item.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload content item")
	}
	out.Content = *contentFromModel(stored)
	return out, nil
}

func (s *service) Update(ctx context.Context, input UpdateContentInput) (*ContentItemDTO, error) {
	if !input.ActorRole.CanManageCatalog() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot manage the catalog")
	}
	if input.ContentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content id required")
	}
	if input.Status != nil && *input.Status != enums.ContentStatusArchived && *input.Status != enums.ContentStatusAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status may only be set to archived or available")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindContentItem(ctx, input.ContentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "content item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load content item")
		}

		updates := map[string]any{"updated_by": input.ActorID}
		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
			}
			updates["title"] = title
		}
		if input.Description != nil {
			updates["description"] = *input.Description
		}
		if input.Publisher != nil {
			updates["publisher"] = *input.Publisher
		}
		if input.AccessLevel != nil {
			if !input.AccessLevel.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid access level")
			}
			updates["access_level"] = *input.AccessLevel
		}
		if input.ViewMode != nil {
			if !input.ViewMode.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid view mode")
			}
			updates["view_mode"] = *input.ViewMode
		}
		if input.WatermarkEnabled != nil {
			updates["watermark_enabled"] = *input.WatermarkEnabled
		}
		if input.DRMEnabled != nil {
			updates["drm_enabled"] = *input.DRMEnabled
		}
		if input.GenreName != nil {
			if strings.TrimSpace(*input.GenreName) == "" {
				updates["genre_id"] = nil
			} else {
				genre, err := repo.FindOrCreateGenre(ctx, *input.GenreName)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve genre")
				}
				updates["genre_id"] = genre.ID
			}
		}

		archiving := false
		if input.Status != nil && *input.Status != existing.Status {
			switch *input.Status {
			case enums.ContentStatusArchived:
				archiving = true
				updates["status"] = enums.ContentStatusArchived
			case enums.ContentStatusAvailable:
				if existing.Status != enums.ContentStatusArchived {
					return pkgerrors.New(pkgerrors.CodeStateConflict, "only archived items can be restored")
				}
				restored, err := restoredStatus(ctx, repo, input.ContentID)
				if err != nil {
					return err
				}
				updates["status"] = restored
			}
		}

		if err := repo.UpdateContentItem(ctx, input.ContentID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update content item")
		}

		if input.AuthorNames != nil {
			authors, err := repo.FindOrCreateAuthors(ctx, *input.AuthorNames)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve authors")
			}
			ids := make([]uuid.UUID, 0, len(authors))
			for _, author := range authors {
				ids = append(ids, author.ID)
			}
			if err := repo.ReplaceAuthors(ctx, input.ContentID, ids); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace authors")
			}
		}
		if input.TagNames != nil {
			tags, err := repo.FindOrCreateTags(ctx, *input.TagNames)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve tags")
			}
			ids := make([]uuid.UUID, 0, len(tags))
			for _, tag := range tags {
				ids = append(ids, tag.ID)
			}
			if err := repo.ReplaceTags(ctx, input.ContentID, ids); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace tags")
			}
		}

		if archiving {
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventContentArchived,
				AggregateType: enums.AggregateContentItem,
				AggregateID:   input.ContentID,
				Version:       1,
				Actor:         &outbox.ActorRef{UserID: input.ActorID, Role: string(input.ActorRole)},
				Data: payloads.ContentArchivedEvent{
					ContentID:  input.ContentID,
					ArchivedBy: input.ActorID,
					ArchivedAt: s.now().UTC(),
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, input.ContentID)
}

func (s *service) Delete(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, contentID uuid.UUID) error {
	if actorRole != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can delete content")
	}
	if contentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "content id required")
	}

	var filePath string
	var coverPath *string
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.FindContentItem(ctx, contentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "content item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load content item")
		}
		filePath = item.FileObjectPath
		coverPath = item.CoverObjectPath
		if err := repo.DeleteContentItem(ctx, contentID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete content item")
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Object cleanup is best-effort; a failed delete leaves an orphan in the
	// bucket, not a broken catalog.
	if filePath != "" {
		if err := s.gcs.DeleteObject(ctx, s.bucket, filePath); err != nil && s.logg != nil {
			s.logg.Warn(ctx, "content file cleanup failed")
		}
	}
	if coverPath != nil {
		if err := s.gcs.DeleteObject(ctx, s.bucket, *coverPath); err != nil && s.logg != nil {
			s.logg.Warn(ctx, "cover cleanup failed")
		}
	}
	return nil
}

func (s *service) Get(ctx context.Context, contentID uuid.UUID) (*ContentItemDTO, error) {
	if contentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content id required")
	}
	item, err := s.repo.FindContentItem(ctx, contentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "content item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load content item")
	}
	return contentFromModel(item), nil
}

func (s *service) List(ctx context.Context, filter ContentListFilter, params pagination.Params) (*ContentPage, error) {
	page, err := s.repo.ListContentItems(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list content items")
	}
	return page, nil
}

// ViewURL returns a short-lived signed read URL. Restricted items require an
// active borrow unless the caller is staff.
func (s *service) ViewURL(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, contentID uuid.UUID) (string, error) {
	if contentID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "content id required")
	}
	item, err := s.repo.FindContentItem(ctx, contentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "content item not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load content item")
	}
	if item.Status == enums.ContentStatusArchived && !actorRole.CanManageCatalog() {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "this item has been archived")
	}

	if item.AccessLevel != enums.AccessLevelPublic && !actorRole.CanBypassOwnership() {
		_, err := s.repo.FindActiveBorrowByUserContent(ctx, actorID, contentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", pkgerrors.New(pkgerrors.CodeForbidden, "borrow this item to view it")
			}
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active borrow")
		}
	}

	url, err := s.gcs.SignedReadURL(s.bucket, item.FileObjectPath, s.viewTTL)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign read url")
	}
	return url, nil
}

func (s *service) ListGenres(ctx context.Context) ([]GenreDTO, error) {
	genres, err := s.repo.ListGenres(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list genres")
	}
	out := make([]GenreDTO, 0, len(genres))
	for _, genre := range genres {
		out = append(out, GenreDTO{ID: genre.ID, Name: genre.Name, Description: genre.Description})
	}
	return out, nil
}

func (s *service) ListAuthors(ctx context.Context) ([]AuthorDTO, error) {
	authors, err := s.repo.ListAuthors(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list authors")
	}
	out := make([]AuthorDTO, 0, len(authors))
	for _, author := range authors {
		out = append(out, AuthorDTO{ID: author.ID, Name: author.Name, Bio: author.Bio, Nationality: author.Nationality})
	}
	return out, nil
}

func (s *service) ListTags(ctx context.Context) ([]TagDTO, error) {
	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tags")
	}
	out := make([]TagDTO, 0, len(tags))
	for _, tag := range tags {
		out = append(out, TagDTO{ID: tag.ID, Name: tag.Name})
	}
	return out, nil
}

// restoredStatus recomputes circulation state from the ledgers when an
// archived item re-enters the catalog. An active borrow wins over a pending
// reservation; an empty ledger means available.
func restoredStatus(ctx context.Context, repo Repository, contentID uuid.UUID) (enums.ContentStatus, error) {
	borrowed, err := repo.HasActiveBorrow(ctx, contentID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active borrows")
	}
	if borrowed {
		return enums.ContentStatusBorrowed, nil
	}
	reserved, err := repo.HasPendingReservation(ctx, contentID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pending reservations")
	}
	if reserved {
		return enums.ContentStatusReserved, nil
	}
	return enums.ContentStatusAvailable, nil
}

// fileTypeLabel falls back to the extension derived from the upload mime type
// when no explicit label was supplied.
func fileTypeLabel(label, ext string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return ext
	}
	return label
}
