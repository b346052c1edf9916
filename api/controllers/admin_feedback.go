package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mfigueroa/openshelf-backend/api/responses"
	"github.com/mfigueroa/openshelf-backend/api/validators"
	"github.com/mfigueroa/openshelf-backend/internal/feedback"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	"github.com/mfigueroa/openshelf-backend/pkg/errors"
	"github.com/mfigueroa/openshelf-backend/pkg/logger"
)

type respondFeedbackBody struct {
	Status   string  `json:"status" validate:"required"`
	Response *string `json:"response,omitempty" validate:"omitempty,max=4000"`
}

// AdminFeedbackList pages through the feedback queue with status, type, and
// user filters.
func AdminFeedbackList(svc feedback.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "feedback service unavailable"))
			return
		}

		_, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filter feedback.ListFilter
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status := enums.FeedbackStatus(raw)
			filter.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			kind := enums.FeedbackType(raw)
			filter.Type = &kind
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("user_id")); raw != "" {
			userID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeValidation, "invalid identifier").WithDetails(map[string]any{"field": "user_id"}))
				return
			}
			filter.UserID = &userID
		}

		page, err := svc.List(r.Context(), role, filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// AdminFeedbackRespond updates the triage status and optional response text.
func AdminFeedbackRespond(svc feedback.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "feedback service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		feedbackID, err := parsePathID(r, "feedbackID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body respondFeedbackBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Respond(r.Context(), feedback.RespondInput{
			ActorID:   actorID,
			ActorRole: role,
			ID:        feedbackID,
			Status:    enums.FeedbackStatus(body.Status),
			Response:  body.Response,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, entry)
	}
}
