package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mfigueroa/openshelf-backend/api/middleware"
	"github.com/mfigueroa/openshelf-backend/api/validators"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	"github.com/mfigueroa/openshelf-backend/pkg/errors"
	"github.com/mfigueroa/openshelf-backend/pkg/pagination"
)

const defaultPageLimit = 20

// actorFromRequest pulls the authenticated user and role seeded by the auth
// middleware. Handlers behind the auth chain can rely on both being present.
func actorFromRequest(r *http.Request) (uuid.UUID, enums.UserRole, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, "", errors.New(errors.CodeUnauthorized, "missing user context")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", errors.New(errors.CodeUnauthorized, "invalid user context")
	}
	role := enums.UserRole(middleware.RoleFromContext(r.Context()))
	if !role.IsValid() {
		return uuid.Nil, "", errors.New(errors.CodeUnauthorized, "invalid role context")
	}
	return userID, role, nil
}

// optionalActorFromRequest is actorFromRequest for routes that also serve
// unauthenticated guests.
func optionalActorFromRequest(r *http.Request) (*uuid.UUID, enums.UserRole) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return nil, enums.UserRoleGuest
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return nil, enums.UserRoleGuest
	}
	role := enums.UserRole(middleware.RoleFromContext(r.Context()))
	if !role.IsValid() {
		role = enums.UserRoleGuest
	}
	return &userID, role
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", defaultPageLimit, 1, 100)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

func parsePathID(r *http.Request, key string) (uuid.UUID, error) {
	raw := chi.URLParam(r, key)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New(errors.CodeValidation, "invalid identifier").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}
