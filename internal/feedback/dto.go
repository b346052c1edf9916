package feedback

import (
	"time"

	"github.com/mfigueroa/openshelf-backend/pkg/db/models"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	"github.com/google/uuid"
)

// FeedbackDTO is the transport shape for a submitted message.
type FeedbackDTO struct {
	ID            uuid.UUID            `json:"id"`
	UserID        uuid.UUID            `json:"user_id"`
	Type          enums.FeedbackType   `json:"type"`
	Subject       string               `json:"subject"`
	Message       string               `json:"message"`
	Status        enums.FeedbackStatus `json:"status"`
	AdminResponse *string              `json:"admin_response,omitempty"`
	ResolvedAt    *time.Time           `json:"resolved_at,omitempty"`
	ResolvedBy    *uuid.UUID           `json:"resolved_by,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// SubmitInput carries a new feedback message.
type SubmitInput struct {
	UserID  uuid.UUID
	Type    enums.FeedbackType
	Subject string
	Message string
}

// RespondInput carries an admin triage update.
type RespondInput struct {
	ActorID   uuid.UUID
	ActorRole enums.UserRole
	ID        uuid.UUID
	Status    enums.FeedbackStatus
	Response  *string
}

// ListFilter narrows admin feedback listings.
type ListFilter struct {
	UserID *uuid.UUID
	Status *enums.FeedbackStatus
	Type   *enums.FeedbackType
}

// Page is a cursor page of feedback entries.
type Page struct {
	Entries    []FeedbackDTO `json:"entries"`
	NextCursor *string       `json:"next_cursor,omitempty"`
}

func fromModel(f *models.Feedback) *FeedbackDTO {
	if f == nil {
		return nil
	}
	return &FeedbackDTO{
		ID:            f.ID,
		UserID:        f.UserID,
		Type:          f.Type,
		Subject:       f.Subject,
		Message:       f.Message,
		Status:        f.Status,
		AdminResponse: f.AdminResponse,
		ResolvedAt:    f.ResolvedAt,
		ResolvedBy:    f.ResolvedBy,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}
