package controllers

import (
	"net/http"

	"github.com/mfigueroa/openshelf-backend/api/responses"
	"github.com/mfigueroa/openshelf-backend/api/validators"
	"github.com/mfigueroa/openshelf-backend/internal/integrations"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	"github.com/mfigueroa/openshelf-backend/pkg/errors"
	"github.com/mfigueroa/openshelf-backend/pkg/logger"
)

type createSystemBody struct {
	Name         string  `json:"name" validate:"required,min=2,max=120"`
	Type         string  `json:"type" validate:"required"`
	URL          string  `json:"url" validate:"required,url"`
	APIKey       *string `json:"api_key,omitempty"`
	ClientID     *string `json:"client_id,omitempty"`
	ClientSecret *string `json:"client_secret,omitempty"`
	Enabled      *bool   `json:"enabled,omitempty"`
}

type updateSystemBody struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	URL          *string `json:"url,omitempty" validate:"omitempty,url"`
	APIKey       *string `json:"api_key,omitempty"`
	ClientID     *string `json:"client_id,omitempty"`
	ClientSecret *string `json:"client_secret,omitempty"`
	Enabled      *bool   `json:"enabled,omitempty"`
}

// AdminIntegrationCreate registers an external system connection.
func AdminIntegrationCreate(svc integrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "integrations service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createSystemBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		system, err := svc.Create(r.Context(), integrations.CreateInput{
			ActorID:      actorID,
			ActorRole:    role,
			Name:         validators.SanitizeString(body.Name, 120),
			Type:         enums.ExternalSystemType(body.Type),
			URL:          body.URL,
			APIKey:       body.APIKey,
			ClientID:     body.ClientID,
			ClientSecret: body.ClientSecret,
			Enabled:      body.Enabled,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, system)
	}
}

// AdminIntegrationUpdate edits an external system connection.
func AdminIntegrationUpdate(svc integrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "integrations service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		systemID, err := parsePathID(r, "systemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateSystemBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		system, err := svc.Update(r.Context(), integrations.UpdateInput{
			ActorID:      actorID,
			ActorRole:    role,
			ID:           systemID,
			Name:         body.Name,
			URL:          body.URL,
			APIKey:       body.APIKey,
			ClientID:     body.ClientID,
			ClientSecret: body.ClientSecret,
			Enabled:      body.Enabled,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, system)
	}
}

// AdminIntegrationDelete removes a system and its content mappings.
func AdminIntegrationDelete(svc integrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "integrations service unavailable"))
			return
		}

		_, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		systemID, err := parsePathID(r, "systemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), role, systemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminIntegrationGet returns a single system.
func AdminIntegrationGet(svc integrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "integrations service unavailable"))
			return
		}

		_, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		systemID, err := parsePathID(r, "systemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		system, err := svc.Get(r.Context(), role, systemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, system)
	}
}

// AdminIntegrationList lists every configured system.
func AdminIntegrationList(svc integrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "integrations service unavailable"))
			return
		}

		_, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		systems, err := svc.List(r.Context(), role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, systems)
	}
}

// AdminIntegrationSync requests a metadata sync against a system.
func AdminIntegrationSync(svc integrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "integrations service unavailable"))
			return
		}

		_, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		systemID, err := parsePathID(r, "systemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.TriggerSync(r.Context(), role, systemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusAccepted, result)
	}
}
