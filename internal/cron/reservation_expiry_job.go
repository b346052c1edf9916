package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/mfigueroa/openshelf-backend/pkg/db/models"
	"github.com/mfigueroa/openshelf-backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type reservationSweeper interface {
	ExpireReservation(ctx context.Context, reservationID uuid.UUID) error
}

type expiredReservationLister interface {
	ListExpiredPendingReservations(ctx context.Context, cutoff time.Time) ([]models.Reservation, error)
}

// ReservationExpiryJobParams configures the reservation sweep.
type ReservationExpiryJobParams struct {
	Logger       *logger.Logger
	Repository   expiredReservationLister
	Availability reservationSweeper
}

// NewReservationExpiryJob constructs the job that lapses stale reservations
// and promotes the next holder.
func NewReservationExpiryJob(params ReservationExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("availability repository required")
	}
	if params.Availability == nil {
		return nil, fmt.Errorf("availability service required")
	}
	return &reservationExpiryJob{
		logg:         params.Logger,
		repo:         params.Repository,
		availability: params.Availability,
		now:          time.Now,
	}, nil
}

type reservationExpiryJob struct {
	logg         *logger.Logger
	repo         expiredReservationLister
	availability reservationSweeper
	now          func() time.Time
}

func (j *reservationExpiryJob) Name() string { return "reservation-expiry" }

func (j *reservationExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()
	stale, err := j.repo.ListExpiredPendingReservations(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list expired reservations: %w", err)
	}

	var errs error
	expired := 0
	for _, reservation := range stale {
		if err := j.availability.ExpireReservation(ctx, reservation.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reservation %s: %w", reservation.ID, err))
			continue
		}
		expired++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"candidates":   len(stale),
		"expired":      expired,
		"failed":       len(stale) - expired,
	})
	j.logg.Info(logCtx, "reservation expiry sweep complete")
	return errs
}
