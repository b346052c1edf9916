package integrations

import (
	"time"

	"github.com/mfigueroa/openshelf-backend/pkg/db/models"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	"github.com/google/uuid"
)

// SystemDTO is the transport shape for an external system. Credentials are
// never echoed back; only their presence is reported.
type SystemDTO struct {
	ID            uuid.UUID                `json:"id"`
	Name          string                   `json:"name"`
	Type          enums.ExternalSystemType `json:"type"`
	URL           string                   `json:"url"`
	HasAPIKey     bool                     `json:"has_api_key"`
	HasOAuth      bool                     `json:"has_oauth"`
	Enabled       bool                     `json:"enabled"`
	LastSyncAt    *time.Time               `json:"last_sync_at,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

// CreateInput registers a new external system.
type CreateInput struct {
	ActorID      uuid.UUID
	ActorRole    enums.UserRole
	Name         string
	Type         enums.ExternalSystemType
	URL          string
	APIKey       *string
	ClientID     *string
	ClientSecret *string
	Enabled      *bool
}

// UpdateInput carries a partial edit. Nil fields are left untouched.
type UpdateInput struct {
	ActorID      uuid.UUID
	ActorRole    enums.UserRole
	ID           uuid.UUID
	Name         *string
	URL          *string
	APIKey       *string
	ClientID     *string
	ClientSecret *string
	Enabled      *bool
}

// SyncResult reports the outcome of a sync request.
type SyncResult struct {
	SystemID    uuid.UUID `json:"system_id"`
	RequestedAt time.Time `json:"requested_at"`
	Status      string    `json:"status"`
}

func fromModel(s *models.ExternalSystem) *SystemDTO {
	if s == nil {
		return nil
	}
	return &SystemDTO{
		ID:         s.ID,
		Name:       s.Name,
		Type:       s.Type,
		URL:        s.URL,
		HasAPIKey:  s.APIKey != nil && *s.APIKey != "",
		HasOAuth:   s.ClientID != nil && s.ClientSecret != nil,
		Enabled:    s.Enabled,
		LastSyncAt: s.LastSyncAt,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}
