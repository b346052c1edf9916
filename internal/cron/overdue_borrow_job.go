package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/mfigueroa/openshelf-backend/pkg/db/models"
	"github.com/mfigueroa/openshelf-backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

type overdueMarker interface {
	MarkBorrowOverdue(ctx context.Context, borrowID uuid.UUID) error
}

type overdueBorrowLister interface {
	ListOverdueBorrows(ctx context.Context, cutoff time.Time) ([]models.BorrowRecord, error)
}

// OverdueBorrowJobParams configures the overdue sweep.
type OverdueBorrowJobParams struct {
	Logger       *logger.Logger
	Repository   overdueBorrowLister
	Availability overdueMarker
}

// NewOverdueBorrowJob constructs the job that flags borrows past their due
// date. The copy stays checked out; only the record status changes.
func NewOverdueBorrowJob(params OverdueBorrowJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("availability repository required")
	}
	if params.Availability == nil {
		return nil, fmt.Errorf("availability service required")
	}
	return &overdueBorrowJob{
		logg:         params.Logger,
		repo:         params.Repository,
		availability: params.Availability,
		now:          time.Now,
	}, nil
}

type overdueBorrowJob struct {
	logg         *logger.Logger
	repo         overdueBorrowLister
	availability overdueMarker
	now          func() time.Time
}

func (j *overdueBorrowJob) Name() string { return "overdue-borrows" }

func (j *overdueBorrowJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()
	candidates, err := j.repo.ListOverdueBorrows(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list overdue borrows: %w", err)
	}

	var errs error
	flagged := 0
	for _, record := range candidates {
		if err := j.availability.MarkBorrowOverdue(ctx, record.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("borrow %s: %w", record.ID, err))
			continue
		}
		flagged++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":     cutoff,
		"candidates": len(candidates),
		"flagged":    flagged,
		"failed":     len(candidates) - flagged,
	})
	j.logg.Info(logCtx, "overdue borrow sweep complete")
	return errs
}
