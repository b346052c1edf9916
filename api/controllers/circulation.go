package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mfigueroa/openshelf-backend/api/responses"
	"github.com/mfigueroa/openshelf-backend/api/validators"
	"github.com/mfigueroa/openshelf-backend/internal/availability"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	"github.com/mfigueroa/openshelf-backend/pkg/errors"
	"github.com/mfigueroa/openshelf-backend/pkg/logger"
)

type borrowBody struct {
	ContentID  uuid.UUID `json:"content_id" validate:"required"`
	PeriodDays int       `json:"period_days,omitempty" validate:"omitempty,min=1,max=90"`
}

type contentRefBody struct {
	ContentID uuid.UUID `json:"content_id" validate:"required"`
}

// CirculationBorrow checks an item out to the caller.
func CirculationBorrow(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "availability service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body borrowBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Borrow(r.Context(), availability.BorrowInput{
			ActorID:    actorID,
			ActorRole:  role,
			ContentID:  body.ContentID,
			PeriodDays: body.PeriodDays,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

// CirculationReturn closes out a borrow record. Staff may return on behalf of
// the borrower.
func CirculationReturn(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "availability service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		borrowID, err := parsePathID(r, "borrowID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Return(r.Context(), availability.ReturnInput{
			ActorID:   actorID,
			ActorRole: role,
			BorrowID:  borrowID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

// CirculationReserve places a hold on an item for the caller.
func CirculationReserve(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "availability service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body contentRefBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := svc.Reserve(r.Context(), availability.ReserveInput{
			ActorID:   actorID,
			ActorRole: role,
			ContentID: body.ContentID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, reservation)
	}
}

// CirculationJoinWaitlist queues the caller behind the existing holds.
func CirculationJoinWaitlist(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "availability service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body contentRefBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.JoinWaitlist(r.Context(), availability.JoinWaitlistInput{
			ActorID:   actorID,
			ActorRole: role,
			ContentID: body.ContentID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

// CirculationBorrowed lists borrow records. Students see only their own;
// staff may filter by user, content, and status.
func CirculationBorrowed(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeInternal, "availability service unavailable"))
			return
		}

		actorID, role, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filter availability.BorrowListFilter
		if raw := strings.TrimSpace(r.URL.Query().Get("user_id")); raw != "" {
			userID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeValidation, "invalid identifier").WithDetails(map[string]any{"field": "user_id"}))
				return
			}
			filter.UserID = &userID
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("content_id")); raw != "" {
			contentID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, errors.New(errors.CodeValidation, "invalid identifier").WithDetails(map[string]any{"field": "content_id"}))
				return
			}
			filter.ContentID = &contentID
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status := enums.BorrowStatus(raw)
			filter.Status = &status
		}

		list, err := svc.ListBorrowed(r.Context(), availability.ListBorrowedInput{
			ActorID:   actorID,
			ActorRole: role,
			Filter:    filter,
			Page:      params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}
