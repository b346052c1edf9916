package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mfigueroa/openshelf-backend/api/middleware"
	"github.com/mfigueroa/openshelf-backend/internal/availability"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	"github.com/mfigueroa/openshelf-backend/pkg/errors"
)

type stubAvailabilityService struct {
	borrowFn       func(ctx context.Context, input availability.BorrowInput) (*availability.BorrowRecordDTO, error)
	returnFn       func(ctx context.Context, input availability.ReturnInput) (*availability.BorrowRecordDTO, error)
	reserveFn      func(ctx context.Context, input availability.ReserveInput) (*availability.ReservationDTO, error)
	joinFn         func(ctx context.Context, input availability.JoinWaitlistInput) (*availability.WaitlistEntryDTO, error)
	queryFn        func(ctx context.Context, contentID uuid.UUID, actorID *uuid.UUID) (*availability.AvailabilityDTO, error)
	listBorrowedFn func(ctx context.Context, input availability.ListBorrowedInput) (*availability.BorrowRecordList, error)
}

func (s *stubAvailabilityService) Borrow(ctx context.Context, input availability.BorrowInput) (*availability.BorrowRecordDTO, error) {
	return s.borrowFn(ctx, input)
}

func (s *stubAvailabilityService) Return(ctx context.Context, input availability.ReturnInput) (*availability.BorrowRecordDTO, error) {
	return s.returnFn(ctx, input)
}

func (s *stubAvailabilityService) Reserve(ctx context.Context, input availability.ReserveInput) (*availability.ReservationDTO, error) {
	return s.reserveFn(ctx, input)
}

func (s *stubAvailabilityService) JoinWaitlist(ctx context.Context, input availability.JoinWaitlistInput) (*availability.WaitlistEntryDTO, error) {
	return s.joinFn(ctx, input)
}

func (s *stubAvailabilityService) QueryAvailability(ctx context.Context, contentID uuid.UUID, actorID *uuid.UUID) (*availability.AvailabilityDTO, error) {
	return s.queryFn(ctx, contentID, actorID)
}

func (s *stubAvailabilityService) ListBorrowed(ctx context.Context, input availability.ListBorrowedInput) (*availability.BorrowRecordList, error) {
	return s.listBorrowedFn(ctx, input)
}

func (s *stubAvailabilityService) ExpireReservation(ctx context.Context, reservationID uuid.UUID) error {
	return nil
}

func (s *stubAvailabilityService) MarkBorrowOverdue(ctx context.Context, borrowID uuid.UUID) error {
	return nil
}

func authedRequest(method, target string, body []byte, userID uuid.UUID, role enums.UserRole) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

func TestCirculationBorrow(t *testing.T) {
	actorID := uuid.New()
	contentID := uuid.New()

	var got availability.BorrowInput
	svc := &stubAvailabilityService{
		borrowFn: func(ctx context.Context, input availability.BorrowInput) (*availability.BorrowRecordDTO, error) {
			got = input
			return &availability.BorrowRecordDTO{ID: uuid.New(), ContentID: input.ContentID, UserID: input.ActorID}, nil
		},
	}

	body, _ := json.Marshal(map[string]any{"content_id": contentID, "period_days": 7})
	req := authedRequest(http.MethodPost, "/circulation/borrow", body, actorID, enums.UserRoleStudent)
	rec := httptest.NewRecorder()
	CirculationBorrow(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", rec.Code, rec.Body.String())
	}
	if got.ActorID != actorID || got.ContentID != contentID || got.PeriodDays != 7 {
		t.Fatalf("unexpected borrow input: %+v", got)
	}
	if got.ActorRole != enums.UserRoleStudent {
		t.Fatalf("expected student role got %s", got.ActorRole)
	}
}

func TestCirculationBorrowUnauthenticated(t *testing.T) {
	svc := &stubAvailabilityService{}
	body, _ := json.Marshal(map[string]any{"content_id": uuid.New()})
	req := httptest.NewRequest(http.MethodPost, "/circulation/borrow", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	CirculationBorrow(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestCirculationBorrowStateConflict(t *testing.T) {
	svc := &stubAvailabilityService{
		borrowFn: func(ctx context.Context, input availability.BorrowInput) (*availability.BorrowRecordDTO, error) {
			return nil, errors.New(errors.CodeStateConflict, "item is not available")
		},
	}

	body, _ := json.Marshal(map[string]any{"content_id": uuid.New()})
	req := authedRequest(http.MethodPost, "/circulation/borrow", body, uuid.New(), enums.UserRoleStudent)
	rec := httptest.NewRecorder()
	CirculationBorrow(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Error.Message != "item is not available" {
		t.Fatalf("unexpected message %q", envelope.Error.Message)
	}
}

func TestCirculationReturnParsesPath(t *testing.T) {
	actorID := uuid.New()
	borrowID := uuid.New()

	var got availability.ReturnInput
	svc := &stubAvailabilityService{
		returnFn: func(ctx context.Context, input availability.ReturnInput) (*availability.BorrowRecordDTO, error) {
			got = input
			return &availability.BorrowRecordDTO{ID: input.BorrowID}, nil
		},
	}

	router := chi.NewRouter()
	router.Post("/circulation/return/{borrowID}", CirculationReturn(svc, nil))

	req := authedRequest(http.MethodPost, fmt.Sprintf("/circulation/return/%s", borrowID), nil, actorID, enums.UserRoleLibrarian)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
	if got.BorrowID != borrowID || got.ActorID != actorID {
		t.Fatalf("unexpected return input: %+v", got)
	}
}

func TestCirculationReturnInvalidID(t *testing.T) {
	svc := &stubAvailabilityService{}
	router := chi.NewRouter()
	router.Post("/circulation/return/{borrowID}", CirculationReturn(svc, nil))

	req := authedRequest(http.MethodPost, "/circulation/return/not-a-uuid", nil, uuid.New(), enums.UserRoleStudent)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCirculationBorrowedForwardsFilters(t *testing.T) {
	actorID := uuid.New()
	filterUser := uuid.New()

	var got availability.ListBorrowedInput
	svc := &stubAvailabilityService{
		listBorrowedFn: func(ctx context.Context, input availability.ListBorrowedInput) (*availability.BorrowRecordList, error) {
			got = input
			return &availability.BorrowRecordList{Records: []availability.BorrowRecordDTO{}}, nil
		},
	}

	target := fmt.Sprintf("/circulation/borrowed?limit=5&status=overdue&user_id=%s", filterUser)
	req := authedRequest(http.MethodGet, target, nil, actorID, enums.UserRoleAdmin)
	rec := httptest.NewRecorder()
	CirculationBorrowed(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
	if got.Page.Limit != 5 {
		t.Fatalf("expected limit 5 got %d", got.Page.Limit)
	}
	if got.Filter.Status == nil || *got.Filter.Status != enums.BorrowStatusOverdue {
		t.Fatalf("expected overdue status filter")
	}
	if got.Filter.UserID == nil || *got.Filter.UserID != filterUser {
		t.Fatalf("expected user filter %s", filterUser)
	}
}

func TestCatalogAvailabilityAllowsGuests(t *testing.T) {
	contentID := uuid.New()

	var gotActor *uuid.UUID
	svc := &stubAvailabilityService{
		queryFn: func(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) (*availability.AvailabilityDTO, error) {
			gotActor = actorID
			return &availability.AvailabilityDTO{ContentID: id}, nil
		},
	}

	router := chi.NewRouter()
	router.Get("/catalog/{contentID}/availability", CatalogAvailability(svc, nil))

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/catalog/%s/availability", contentID), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
	if gotActor != nil {
		t.Fatalf("expected nil actor for guest request")
	}
}
