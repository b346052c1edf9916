package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mfigueroa/openshelf-backend/api/responses"
	"github.com/mfigueroa/openshelf-backend/api/validators"
	"github.com/mfigueroa/openshelf-backend/internal/availability"
	"github.com/mfigueroa/openshelf-backend/internal/catalog"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	"github.com/mfigueroa/openshelf-backend/pkg/errors"
	"github.com/mfigueroa/openshelf-backend/pkg/logger"
)

type createContentBody struct {
	Title            string   `json:"title" validate:"required,min=1,max=300"`
	Description      *string  `json:"description,omitempty"`
	FileType         string   `json:"file_type,omitempty"`
	FileMimeType     string   `json:"file_mime_type" validate:"required"`
	CoverMimeType    *string  `json:"cover_mime_type,omitempty"`
	Genre            *string  `json:"genre,omitempty"`
	Authors          []string `json:"authors,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	Publisher        *string  `json:"publisher,omitempty"`
	AccessLevel      string   `json:"access_level,omitempty"`
	ViewMode         string   `json:"view_mode,omitempty"`
	WatermarkEnabled bool     `json:"watermark_enabled,omitempty"`
	DRMEnabled       bool     `json:"drm_enabled,omitempty"`
}

type updateContentBody struct {
	Title            *string   `json:"title,omitempty"`
	Description      *string   `json:"description,omitempty"`
	Genre            *string   `json:"genre,omitempty"`
	Authors          *[]string `json:"authors,omitempty"`
	Tags             *[]string `json:"tags,omitempty"`
	Publisher        *string   `json:"publisher,omitempty"`
	AccessLevel      *string   `json:"access_level,omitempty"`
	ViewMode         *string   `json:"view_mode,omitempty"`
	WatermarkEnabled *bool     `json:"watermark_enabled,omitempty"`
	DRMEnabled       *bool     `json:"drm_enabled,omitempty"`
	Status           *string   `json:"status,omitempty"`
}

// CatalogCreate registers a new catalog entry and returns signed upload URLs
// for the file and optional cover.
func CatalogCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "catalog service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createContentBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.CreateContentInput{
			ActorID:          actorID,
			ActorRole:        role,
			Title:            validators.SanitizeString(body.Title, 300),
			Description:      body.Description,
			FileType:         body.FileType,
			FileMimeType:     body.FileMimeType,
			CoverMimeType:    body.CoverMimeType,
			GenreName:        body.Genre,
			AuthorNames:      body.Authors,
			TagNames:         body.Tags,
			Publisher:        body.Publisher,
			AccessLevel:      enums.ContentAccessLevel(body.AccessLevel),
			ViewMode:         enums.ContentViewMode(body.ViewMode),
			WatermarkEnabled: body.WatermarkEnabled,
			DRMEnabled:       body.DRMEnabled,
		}

		out, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, out)
	}
}

// CatalogUpdate applies a partial edit; a status change routes through the
// archive or restore paths.
func CatalogUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "catalog service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contentID, err := parsePathID(r, "contentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateContentBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.UpdateContentInput{
			ActorID:          actorID,
			ActorRole:        role,
			ContentID:        contentID,
			Title:            body.Title,
			Description:      body.Description,
			GenreName:        body.Genre,
			AuthorNames:      body.Authors,
			TagNames:         body.Tags,
			Publisher:        body.Publisher,
			WatermarkEnabled: body.WatermarkEnabled,
			DRMEnabled:       body.DRMEnabled,
		}
		if body.AccessLevel != nil {
			level := enums.ContentAccessLevel(*body.AccessLevel)
			input.AccessLevel = &level
		}
		if body.ViewMode != nil {
			mode := enums.ContentViewMode(*body.ViewMode)
			input.ViewMode = &mode
		}
		if body.Status != nil {
			status := enums.ContentStatus(*body.Status)
			input.Status = &status
		}

		item, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// CatalogDelete hard-deletes an entry plus its stored objects.
func CatalogDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "catalog service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contentID, err := parsePathID(r, "contentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), actorID, role, contentID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// CatalogGet returns a single catalog entry.
func CatalogGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "catalog service unavailable"))
			return
		}

		contentID, err := parsePathID(r, "contentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Get(r.Context(), contentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// CatalogList returns a cursor page of entries filtered by status, genre, and
// a free-text search over title and publisher.
func CatalogList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "catalog service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := catalog.ContentListFilter{
			Search: validators.SanitizeString(r.URL.Query().Get("search"), 200),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status := enums.ContentStatus(raw)
			filter.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("genre_id")); raw != "" {
			genreID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeValidation, "invalid identifier").WithDetails(map[string]any{"field": "genre_id"}))
				return
			}
			filter.GenreID = &genreID
		}

		page, err := svc.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// CatalogView returns a short-lived signed read URL for the content object.
func CatalogView(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "catalog service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contentID, err := parsePathID(r, "contentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		url, err := svc.ViewURL(r.Context(), actorID, role, contentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"view_url": url})
	}
}

// CatalogAvailability reports the current circulation state of an entry. The
// actor is optional so guests can check before registering.
func CatalogAvailability(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "availability service unavailable"))
			return
		}

		contentID, err := parsePathID(r, "contentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actorID, _ := optionalActorFromRequest(r)
		state, err := svc.QueryAvailability(r.Context(), contentID, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, state)
	}
}

// CatalogGenres lists every genre.
func CatalogGenres(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "catalog service unavailable"))
			return
		}
		genres, err := svc.ListGenres(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, genres)
	}
}

// CatalogAuthors lists every author.
func CatalogAuthors(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "catalog service unavailable"))
			return
		}
		authors, err := svc.ListAuthors(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, authors)
	}
}

// CatalogTags lists every tag.
func CatalogTags(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "catalog service unavailable"))
			return
		}
		tags, err := svc.ListTags(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tags)
	}
}
