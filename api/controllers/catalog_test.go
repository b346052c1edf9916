package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mfigueroa/openshelf-backend/internal/catalog"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	"github.com/mfigueroa/openshelf-backend/pkg/errors"
	"github.com/mfigueroa/openshelf-backend/pkg/pagination"
)

type stubCatalogService struct {
	createFn  func(ctx context.Context, input catalog.CreateContentInput) (*catalog.CreateContentOutput, error)
	updateFn  func(ctx context.Context, input catalog.UpdateContentInput) (*catalog.ContentItemDTO, error)
	deleteFn  func(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, contentID uuid.UUID) error
	getFn     func(ctx context.Context, contentID uuid.UUID) (*catalog.ContentItemDTO, error)
	listFn    func(ctx context.Context, filter catalog.ContentListFilter, params pagination.Params) (*catalog.ContentPage, error)
	viewURLFn func(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, contentID uuid.UUID) (string, error)
}

func (s *stubCatalogService) Create(ctx context.Context, input catalog.CreateContentInput) (*catalog.CreateContentOutput, error) {
	return s.createFn(ctx, input)
}

func (s *stubCatalogService) Update(ctx context.Context, input catalog.UpdateContentInput) (*catalog.ContentItemDTO, error) {
	return s.updateFn(ctx, input)
}

func (s *stubCatalogService) Delete(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, contentID uuid.UUID) error {
	return s.deleteFn(ctx, actorID, actorRole, contentID)
}

func (s *stubCatalogService) Get(ctx context.Context, contentID uuid.UUID) (*catalog.ContentItemDTO, error) {
	return s.getFn(ctx, contentID)
}

func (s *stubCatalogService) List(ctx context.Context, filter catalog.ContentListFilter, params pagination.Params) (*catalog.ContentPage, error) {
	return s.listFn(ctx, filter, params)
}

func (s *stubCatalogService) ViewURL(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, contentID uuid.UUID) (string, error) {
	return s.viewURLFn(ctx, actorID, actorRole, contentID)
}

func (s *stubCatalogService) ListGenres(ctx context.Context) ([]catalog.GenreDTO, error) {
	return []catalog.GenreDTO{}, nil
}

func (s *stubCatalogService) ListAuthors(ctx context.Context) ([]catalog.AuthorDTO, error) {
	return []catalog.AuthorDTO{}, nil
}

func (s *stubCatalogService) ListTags(ctx context.Context) ([]catalog.TagDTO, error) {
	return []catalog.TagDTO{}, nil
}

func TestCatalogCreate(t *testing.T) {
	actorID := uuid.New()

	var got catalog.CreateContentInput
	svc := &stubCatalogService{
		createFn: func(ctx context.Context, input catalog.CreateContentInput) (*catalog.CreateContentOutput, error) {
			got = input
			return &catalog.CreateContentOutput{
				Content:       catalog.ContentItemDTO{ID: uuid.New(), Title: input.Title},
				FileUploadURL: "https://storage.example.com/upload",
			}, nil
		},
	}

	body, _ := json.Marshal(map[string]any{
		"title":          "Intro to Databases",
		"file_mime_type": "application/pdf",
		"genre":          "computer science",
		"authors":        []string{"C. J. Date"},
		"access_level":   "restricted",
	})
	req := authedRequest(http.MethodPost, "/catalog", body, actorID, enums.UserRoleLibrarian)
	rec := httptest.NewRecorder()
	CatalogCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", rec.Code, rec.Body.String())
	}
	if got.Title != "Intro to Databases" || got.FileMimeType != "application/pdf" {
		t.Fatalf("unexpected create input: %+v", got)
	}
	if got.GenreName == nil || *got.GenreName != "computer science" {
		t.Fatalf("expected genre forwarded")
	}
	if got.AccessLevel != enums.AccessLevelRestricted {
		t.Fatalf("expected restricted access level got %s", got.AccessLevel)
	}

	var envelope struct {
		Data catalog.CreateContentOutput `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.FileUploadURL == "" {
		t.Fatalf("expected upload url in response")
	}
}

func TestCatalogCreateMissingTitle(t *testing.T) {
	svc := &stubCatalogService{}
	body := []byte(`{"file_mime_type":"application/pdf"}`)
	req := authedRequest(http.MethodPost, "/catalog", body, uuid.New(), enums.UserRoleLibrarian)
	rec := httptest.NewRecorder()
	CatalogCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCatalogCreateForbiddenPassthrough(t *testing.T) {
	svc := &stubCatalogService{
		createFn: func(ctx context.Context, input catalog.CreateContentInput) (*catalog.CreateContentOutput, error) {
			return nil, errors.New(errors.CodeForbidden, "role cannot manage the catalog")
		},
	}
	body := []byte(`{"title":"x","file_mime_type":"application/pdf"}`)
	req := authedRequest(http.MethodPost, "/catalog", body, uuid.New(), enums.UserRoleStudent)
	rec := httptest.NewRecorder()
	CatalogCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestCatalogGetInvalidID(t *testing.T) {
	svc := &stubCatalogService{}
	router := chi.NewRouter()
	router.Get("/catalog/{contentID}", CatalogGet(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/catalog/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCatalogListForwardsFilter(t *testing.T) {
	genreID := uuid.New()

	var gotFilter catalog.ContentListFilter
	var gotParams pagination.Params
	svc := &stubCatalogService{
		listFn: func(ctx context.Context, filter catalog.ContentListFilter, params pagination.Params) (*catalog.ContentPage, error) {
			gotFilter = filter
			gotParams = params
			return &catalog.ContentPage{Items: []catalog.ContentItemDTO{}}, nil
		},
	}

	target := fmt.Sprintf("/catalog?limit=10&status=available&genre_id=%s&search=databases", genreID)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	CatalogList(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
	if gotParams.Limit != 10 {
		t.Fatalf("expected limit 10 got %d", gotParams.Limit)
	}
	if gotFilter.Status == nil || *gotFilter.Status != enums.ContentStatusAvailable {
		t.Fatalf("expected available status filter")
	}
	if gotFilter.GenreID == nil || *gotFilter.GenreID != genreID {
		t.Fatalf("expected genre filter")
	}
	if gotFilter.Search != "databases" {
		t.Fatalf("expected search term got %q", gotFilter.Search)
	}
}

func TestCatalogView(t *testing.T) {
	actorID := uuid.New()
	contentID := uuid.New()

	svc := &stubCatalogService{
		viewURLFn: func(ctx context.Context, id uuid.UUID, role enums.UserRole, cid uuid.UUID) (string, error) {
			if id != actorID || cid != contentID {
				t.Fatalf("unexpected view args")
			}
			return "https://storage.example.com/read", nil
		},
	}

	router := chi.NewRouter()
	router.Get("/catalog/{contentID}/view", CatalogView(svc, nil))

	req := authedRequest(http.MethodGet, fmt.Sprintf("/catalog/%s/view", contentID), nil, actorID, enums.UserRoleStudent)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data["view_url"] != "https://storage.example.com/read" {
		t.Fatalf("unexpected view url %q", envelope.Data["view_url"])
	}
}

func TestCatalogDeleteRequiresAuth(t *testing.T) {
	svc := &stubCatalogService{}
	router := chi.NewRouter()
	router.Delete("/catalog/{contentID}", CatalogDelete(svc, nil))

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/catalog/%s", uuid.New()), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}
