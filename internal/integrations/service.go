package integrations

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mfigueroa/openshelf-backend/pkg/db/models"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	pkgerrors "github.com/mfigueroa/openshelf-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes admin management of external system connections. Actual
// synchronization is out of scope; TriggerSync only records the request.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*SystemDTO, error)
	Update(ctx context.Context, input UpdateInput) (*SystemDTO, error)
	Delete(ctx context.Context, actorRole enums.UserRole, id uuid.UUID) error
	Get(ctx context.Context, actorRole enums.UserRole, id uuid.UUID) (*SystemDTO, error)
	List(ctx context.Context, actorRole enums.UserRole) ([]SystemDTO, error)
	TriggerSync(ctx context.Context, actorRole enums.UserRole, id uuid.UUID) (*SyncResult, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs the integrations service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("integrations repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*SystemDTO, error) {
	if input.ActorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can manage integrations")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid system type")
	}
	if err := validateURL(input.URL); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a system with this name already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check system name")
	}

	enabled := true
	if input.Enabled != nil {
		enabled = *input.Enabled
	}
	system := &models.ExternalSystem{
		ID:           uuid.New(),
		Name:         name,
		Type:         input.Type,
		URL:          strings.TrimSpace(input.URL),
		APIKey:       input.APIKey,
		ClientID:     input.ClientID,
		ClientSecret: input.ClientSecret,
		Enabled:      enabled,
		CreatedBy:    &input.ActorID,
	}
	if err := s.repo.Create(ctx, system); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create external system")
	}
	return fromModel(system), nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*SystemDTO, error) {
	if input.ActorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can manage integrations")
	}
	if _, err := s.find(ctx, input.ID); err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_by": input.ActorID}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if input.URL != nil {
		if err := validateURL(*input.URL); err != nil {
			return nil, err
		}
		updates["url"] = strings.TrimSpace(*input.URL)
	}
	if input.APIKey != nil {
		updates["api_key"] = *input.APIKey
	}
	if input.ClientID != nil {
		updates["client_id"] = *input.ClientID
	}
	if input.ClientSecret != nil {
		updates["client_secret"] = *input.ClientSecret
	}
	if input.Enabled != nil {
		updates["enabled"] = *input.Enabled
	}
	if err := s.repo.Update(ctx, input.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update external system")
	}

	system, err := s.find(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return fromModel(system), nil
}

func (s *service) Delete(ctx context.Context, actorRole enums.UserRole, id uuid.UUID) error {
	if actorRole != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can manage integrations")
	}
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete external system")
	}
	return nil
}

func (s *service) Get(ctx context.Context, actorRole enums.UserRole, id uuid.UUID) (*SystemDTO, error) {
	if actorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can manage integrations")
	}
	system, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return fromModel(system), nil
}

func (s *service) List(ctx context.Context, actorRole enums.UserRole) ([]SystemDTO, error) {
	if actorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can manage integrations")
	}
	systems, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list external systems")
	}
	out := make([]SystemDTO, 0, len(systems))
	for i := range systems {
		out = append(out, *fromModel(&systems[i]))
	}
	return out, nil
}

// TriggerSync stamps last_sync_at on an enabled system. The connector that
// would actually pull records does not exist yet.
func (s *service) TriggerSync(ctx context.Context, actorRole enums.UserRole, id uuid.UUID) (*SyncResult, error) {
	if actorRole != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can manage integrations")
	}
	system, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !system.Enabled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "system is disabled")
	}

	requestedAt := s.now().UTC()
	if err := s.repo.Update(ctx, id, map[string]any{"last_sync_at": requestedAt}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record sync request")
	}
	return &SyncResult{
		SystemID:    id,
		RequestedAt: requestedAt,
		Status:      "accepted",
	}, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.ExternalSystem, error) {
	system, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "external system not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load external system")
	}
	return system, nil
}

func validateURL(raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return pkgerrors.New(pkgerrors.CodeValidation, "url must be absolute http(s)")
	}
	return nil
}
