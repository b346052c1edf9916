package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mfigueroa/openshelf-backend/pkg/db/models"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	pkgerrors "github.com/mfigueroa/openshelf-backend/pkg/errors"
	"github.com/mfigueroa/openshelf-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxSubjectLength = 200

// Service exposes feedback submission and admin triage.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*FeedbackDTO, error)
	ListOwn(ctx context.Context, userID uuid.UUID, params pagination.Params) (*Page, error)
	Respond(ctx context.Context, input RespondInput) (*FeedbackDTO, error)
	List(ctx context.Context, actorRole enums.UserRole, filter ListFilter, params pagination.Params) (*Page, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs the feedback service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("feedback repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*FeedbackDTO, error) {
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject required")
	}
	if len(subject) > maxSubjectLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject too long")
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message required")
	}
	kind := input.Type
	if kind == "" {
		kind = enums.FeedbackTypeOther
	}
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid feedback type")
	}

	entry := &models.Feedback{
		ID:      uuid.New(),
		UserID:  input.UserID,
		Type:    kind,
		Subject: subject,
		Message: message,
		Status:  enums.FeedbackStatusPending,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create feedback")
	}
	return fromModel(entry), nil
}

func (s *service) ListOwn(ctx context.Context, userID uuid.UUID, params pagination.Params) (*Page, error) {
	page, err := s.repo.List(ctx, ListFilter{UserID: &userID}, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list feedback")
	}
	return page, nil
}

func (s *service) Respond(ctx context.Context, input RespondInput) (*FeedbackDTO, error) {
	if input.ActorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can triage feedback")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid feedback status")
	}

	entry, err := s.repo.Find(ctx, input.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "feedback not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load feedback")
	}

	updates := map[string]any{"status": input.Status}
	if input.Response != nil {
		updates["admin_response"] = *input.Response
	}
	if input.Status == enums.FeedbackStatusResolved || input.Status == enums.FeedbackStatusClosed {
		updates["resolved_at"] = s.now().UTC()
		updates["resolved_by"] = input.ActorID
	}
	if err := s.repo.Update(ctx, entry.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update feedback")
	}

	updated, err := s.repo.Find(ctx, entry.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload feedback")
	}
	return fromModel(updated), nil
}

func (s *service) List(ctx context.Context, actorRole enums.UserRole, filter ListFilter, params pagination.Params) (*Page, error) {
	if !actorRole.CanViewReports() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot view feedback queue")
	}
	page, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list feedback")
	}
	return page, nil
}
