package feedback

import (
	"context"
	"testing"
	"time"

	"github.com/mfigueroa/openshelf-backend/pkg/db/models"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	pkgerrors "github.com/mfigueroa/openshelf-backend/pkg/errors"
	"github.com/mfigueroa/openshelf-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeRepo struct {
	entries map[uuid.UUID]*models.Feedback
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{entries: make(map[uuid.UUID]*models.Feedback)}
}

func (f *fakeRepo) Create(_ context.Context, entry *models.Feedback) error {
	copied := *entry
	f.entries[entry.ID] = &copied
	return nil
}

func (f *fakeRepo) Find(_ context.Context, id uuid.UUID) (*models.Feedback, error) {
	entry, ok := f.entries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *entry
	return &copied, nil
}

func (f *fakeRepo) Update(_ context.Context, id uuid.UUID, updates map[string]any) error {
	entry, ok := f.entries[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["status"]; ok {
		entry.Status = v.(enums.FeedbackStatus)
	}
	if v, ok := updates["admin_response"]; ok {
		response := v.(string)
		entry.AdminResponse = &response
	}
	if v, ok := updates["resolved_at"]; ok {
		at := v.(time.Time)
		entry.ResolvedAt = &at
	}
	if v, ok := updates["resolved_by"]; ok {
		by := v.(uuid.UUID)
		entry.ResolvedBy = &by
	}
	return nil
}

func (f *fakeRepo) List(_ context.Context, filter ListFilter, _ pagination.Params) (*Page, error) {
	page := &Page{}
	for _, entry := range f.entries {
		if filter.UserID != nil && entry.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && entry.Status != *filter.Status {
			continue
		}
		page.Entries = append(page.Entries, *fromModel(entry))
	}
	return page, nil
}

func newTestService(t *testing.T) (Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
}

func TestSubmitDefaultsToOther(t *testing.T) {
	svc, repo := newTestService(t)

	got, err := svc.Submit(context.Background(), SubmitInput{
		UserID:  uuid.New(),
		Subject: "  Broken page  ",
		Message: "The catalog page never loads.",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got.Type != enums.FeedbackTypeOther {
		t.Fatalf("expected default type other, got %s", got.Type)
	}
	if got.Subject != "Broken page" {
		t.Fatalf("expected trimmed subject, got %q", got.Subject)
	}
	if got.Status != enums.FeedbackStatusPending {
		t.Fatalf("expected pending status, got %s", got.Status)
	}
	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry persisted, got %d", len(repo.entries))
	}
}

func TestSubmitRequiresMessage(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Submit(context.Background(), SubmitInput{
		UserID:  uuid.New(),
		Subject: "Subject only",
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestRespondResolvedStampsResolver(t *testing.T) {
	svc, repo := newTestService(t)
	entry := &models.Feedback{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Type:   enums.FeedbackTypeBug,
		Status: enums.FeedbackStatusPending,
	}
	repo.entries[entry.ID] = entry
	admin := uuid.New()
	response := "Fixed in the latest deploy."

	got, err := svc.Respond(context.Background(), RespondInput{
		ActorID:   admin,
		ActorRole: enums.UserRoleAdmin,
		ID:        entry.ID,
		Status:    enums.FeedbackStatusResolved,
		Response:  &response,
	})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if got.Status != enums.FeedbackStatusResolved {
		t.Fatalf("expected resolved, got %s", got.Status)
	}
	if got.ResolvedBy == nil || *got.ResolvedBy != admin {
		t.Fatalf("expected resolver stamped, got %v", got.ResolvedBy)
	}
	if got.ResolvedAt == nil {
		t.Fatal("expected resolved_at stamped")
	}
	if got.AdminResponse == nil || *got.AdminResponse != response {
		t.Fatalf("expected admin response stored, got %v", got.AdminResponse)
	}
}

func TestRespondRequiresAdmin(t *testing.T) {
	svc, repo := newTestService(t)
	entry := &models.Feedback{ID: uuid.New(), UserID: uuid.New(), Status: enums.FeedbackStatusPending}
	repo.entries[entry.ID] = entry

	_, err := svc.Respond(context.Background(), RespondInput{
		ActorRole: enums.UserRoleLibrarian,
		ID:        entry.ID,
		Status:    enums.FeedbackStatusClosed,
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestRespondNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Respond(context.Background(), RespondInput{
		ActorRole: enums.UserRoleAdmin,
		ID:        uuid.New(),
		Status:    enums.FeedbackStatusClosed,
	})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestListForbiddenForStudents(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.List(context.Background(), enums.UserRoleStudent, ListFilter{}, pagination.Params{})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestListOwnScopesToUser(t *testing.T) {
	svc, repo := newTestService(t)
	me := uuid.New()
	other := uuid.New()
	repo.entries[uuid.New()] = &models.Feedback{ID: uuid.New(), UserID: me}
	mine := &models.Feedback{ID: uuid.New(), UserID: me}
	repo.entries[mine.ID] = mine
	repo.entries[uuid.New()] = &models.Feedback{ID: uuid.New(), UserID: other}

	page, err := svc.ListOwn(context.Background(), me, pagination.Params{})
	if err != nil {
		t.Fatalf("ListOwn: %v", err)
	}
	for _, entry := range page.Entries {
		if entry.UserID != me {
			t.Fatalf("expected only own entries, saw %s", entry.UserID)
		}
	}
}
