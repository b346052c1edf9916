package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mfigueroa/openshelf-backend/pkg/config"
	"github.com/mfigueroa/openshelf-backend/pkg/db/models"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	pkgerrors "github.com/mfigueroa/openshelf-backend/pkg/errors"
	"github.com/mfigueroa/openshelf-backend/pkg/outbox"
	"github.com/mfigueroa/openshelf-backend/pkg/outbox/payloads"
	"github.com/mfigueroa/openshelf-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service owns every transition of a content item between available, borrowed,
// reserved and archived. No other code path writes the ledger status columns.
type Service interface {
	Borrow(ctx context.Context, input BorrowInput) (*BorrowRecordDTO, error)
	Return(ctx context.Context, input ReturnInput) (*BorrowRecordDTO, error)
	Reserve(ctx context.Context, input ReserveInput) (*ReservationDTO, error)
	JoinWaitlist(ctx context.Context, input JoinWaitlistInput) (*WaitlistEntryDTO, error)
	QueryAvailability(ctx context.Context, contentID uuid.UUID, actorID *uuid.UUID) (*AvailabilityDTO, error)
	ListBorrowed(ctx context.Context, input ListBorrowedInput) (*BorrowRecordList, error)
	ExpireReservation(ctx context.Context, reservationID uuid.UUID) error
	MarkBorrowOverdue(ctx context.Context, borrowID uuid.UUID) error
}

// BorrowInput carries a checkout request. PeriodDays of zero means the
// configured default borrow period.
type BorrowInput struct {
	ActorID    uuid.UUID
	ActorRole  enums.UserRole
	ContentID  uuid.UUID
	PeriodDays int
}

// ReturnInput carries a return request. Staff roles may return on behalf of
// the borrower.
type ReturnInput struct {
	ActorID   uuid.UUID
	ActorRole enums.UserRole
	BorrowID  uuid.UUID
}

// ReserveInput carries a reservation request.
type ReserveInput struct {
	ActorID   uuid.UUID
	ActorRole enums.UserRole
	ContentID uuid.UUID
}

// JoinWaitlistInput carries a waitlist join request.
type JoinWaitlistInput struct {
	ActorID   uuid.UUID
	ActorRole enums.UserRole
	ContentID uuid.UUID
}

// ListBorrowedInput scopes a borrow listing. Non-staff actors are always
// restricted to their own records regardless of the filter.
type ListBorrowedInput struct {
	ActorID   uuid.UUID
	ActorRole enums.UserRole
	Filter    BorrowListFilter
	Page      pagination.Params
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxEmitter
	cfg    config.CirculationConfig
	now    func() time.Time
}

// ServiceParams bundles the dependencies for the availability service.
type ServiceParams struct {
	Repo        Repository
	TxRunner    txRunner
	Outbox      outboxEmitter
	Circulation config.CirculationConfig
}

// NewService constructs the availability state machine service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("availability repository required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		repo:   params.Repo,
		tx:     params.TxRunner,
		outbox: params.Outbox,
		cfg:    params.Circulation,
		now:    time.Now,
	}, nil
}

func (s *service) Borrow(ctx context.Context, input BorrowInput) (*BorrowRecordDTO, error) {
	if input.ContentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.ActorRole.CanBorrow() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot borrow content")
	}
	if input.PeriodDays < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "borrow period must be positive")
	}
	periodDays := input.PeriodDays
	if periodDays == 0 {
		periodDays = s.cfg.BorrowPeriodDays
	}

	var record *models.BorrowRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		content, err := s.lockContent(ctx, repo, input.ContentID)
		if err != nil {
			return err
		}
		if content.Status == enums.ContentStatusArchived {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "this item has been archived")
		}

		active, err := repo.FindActiveBorrowByContent(ctx, input.ContentID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active borrow")
		}
		if active != nil {
			if active.UserID == input.ActorID {
				return pkgerrors.New(pkgerrors.CodeConflict, "you already have this item")
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "someone else has this item")
		}

		if s.cfg.MaxActiveBorrows > 0 {
			count, err := repo.CountActiveBorrowsByUser(ctx, input.ActorID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active borrows")
			}
			if count >= int64(s.cfg.MaxActiveBorrows) {
				return pkgerrors.New(pkgerrors.CodeConflict, "active borrow limit reached")
			}
		}

		now := s.now().UTC()
		record = &models.BorrowRecord{
			UserID:     input.ActorID,
			ContentID:  input.ContentID,
			BorrowDate: now,
			DueDate:    now.Add(time.Duration(periodDays) * 24 * time.Hour),
			Status:     enums.BorrowStatusBorrowed,
		}
		if err := repo.CreateBorrowRecord(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create borrow record")
		}

		// A pending reservation held by the borrower is consumed by the
		// checkout it was holding the copy for.
		held, err := repo.FindPendingReservation(ctx, input.ActorID, input.ContentID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pending reservation")
		}
		if held != nil {
			if err := repo.UpdateReservationStatus(ctx, held.ID, enums.ReservationStatusFulfilled); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fulfil reservation")
			}
		}

		if err := repo.UpdateContentStatus(ctx, input.ContentID, enums.ContentStatusBorrowed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update content status")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventContentBorrowed,
			AggregateType: enums.AggregateBorrowRecord,
			AggregateID:   record.ID,
			Version:       1,
			Actor:         buildActor(input.ActorID, input.ActorRole),
			Data: payloads.ContentBorrowedEvent{
				BorrowID:  record.ID,
				ContentID: record.ContentID,
				UserID:    record.UserID,
				DueDate:   record.DueDate,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return borrowRecordFromModel(record), nil
}

func (s *service) Return(ctx context.Context, input ReturnInput) (*BorrowRecordDTO, error) {
	if input.BorrowID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "borrow id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var record *models.BorrowRecord
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		found, err := repo.FindBorrowRecord(ctx, input.BorrowID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "borrow record not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load borrow record")
		}
		if found.UserID != input.ActorID && !input.ActorRole.CanBypassOwnership() {
			return pkgerrors.New(pkgerrors.CodeForbidden, "borrow record belongs to another user")
		}

		// The content lock serializes the promotion step against concurrent
		// borrows and reservation expiry on the same item.
		if _, err := s.lockContent(ctx, repo, found.ContentID); err != nil {
			return err
		}

		// Re-read under the lock; a concurrent return may have closed it.
		found, err = repo.FindBorrowRecord(ctx, input.BorrowID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload borrow record")
		}
		if found.Status == enums.BorrowStatusReturned {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "borrow record already returned")
		}

		now := s.now().UTC()
		wasOverdue := found.Status == enums.BorrowStatusOverdue || now.After(found.DueDate)
		if err := repo.MarkBorrowReturned(ctx, found.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark borrow returned")
		}
		found.ReturnDate = &now
		found.Status = enums.BorrowStatusReturned
		record = found

		actor := buildActor(input.ActorID, input.ActorRole)
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventContentReturned,
			AggregateType: enums.AggregateBorrowRecord,
			AggregateID:   found.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.ContentReturnedEvent{
				BorrowID:   found.ID,
				ContentID:  found.ContentID,
				UserID:     found.UserID,
				ReturnDate: now,
				WasOverdue: wasOverdue,
			},
		}); err != nil {
			return err
		}

		return s.promote(ctx, tx, repo, found.ContentID, actor)
	})
	if err != nil {
		return nil, err
	}
	return borrowRecordFromModel(record), nil
}

func (s *service) Reserve(ctx context.Context, input ReserveInput) (*ReservationDTO, error) {
	if input.ContentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.ActorRole.CanBorrow() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot reserve content")
	}

	var reservation *models.Reservation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		content, err := s.lockContent(ctx, repo, input.ContentID)
		if err != nil {
			return err
		}
		if content.Status == enums.ContentStatusArchived {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "this item has been archived")
		}

		existing, err := repo.FindPendingReservation(ctx, input.ActorID, input.ContentID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pending reservation")
		}
		if existing != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "you already have a reservation for this item")
		}

		now := s.now().UTC()
		reservation = &models.Reservation{
			UserID:          input.ActorID,
			ContentID:       input.ContentID,
			ReservationDate: now,
			ExpiryDate:      now.Add(s.cfg.ReservationExpiry()),
			Status:          enums.ReservationStatusPending,
		}
		if err := repo.CreateReservation(ctx, reservation); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation")
		}

		actor := buildActor(input.ActorID, input.ActorRole)
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReservationCreated,
			AggregateType: enums.AggregateReservation,
			AggregateID:   reservation.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.ReservationCreatedEvent{
				ReservationID: reservation.ID,
				ContentID:     reservation.ContentID,
				UserID:        reservation.UserID,
				ExpiryDate:    reservation.ExpiryDate,
			},
		}); err != nil {
			return err
		}

		// Reserving a free copy claims it immediately instead of leaving a
		// pending reservation against an available item.
		if content.Status == enums.ContentStatusAvailable {
			if err := repo.UpdateContentStatus(ctx, input.ContentID, enums.ContentStatusReserved); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update content status")
			}
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventReservationReady,
				AggregateType: enums.AggregateReservation,
				AggregateID:   reservation.ID,
				Version:       1,
				Actor:         actor,
				Data: payloads.ReservationReadyEvent{
					ReservationID: reservation.ID,
					ContentID:     reservation.ContentID,
					UserID:        reservation.UserID,
					ExpiryDate:    reservation.ExpiryDate,
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reservationFromModel(reservation), nil
}

func (s *service) JoinWaitlist(ctx context.Context, input JoinWaitlistInput) (*WaitlistEntryDTO, error) {
	if input.ContentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.ActorRole.CanBorrow() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot join waitlists")
	}

	var entry *models.WaitlistEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		content, err := s.lockContent(ctx, repo, input.ContentID)
		if err != nil {
			return err
		}
		if content.Status == enums.ContentStatusArchived {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "this item has been archived")
		}

		existing, err := repo.FindWaitingEntry(ctx, input.ActorID, input.ContentID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check waitlist entry")
		}
		if existing != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "you are already on the waitlist for this item")
		}

		maxPos, err := repo.MaxWaitingPosition(ctx, input.ContentID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read waitlist tail")
		}

		entry = &models.WaitlistEntry{
			UserID:    input.ActorID,
			ContentID: input.ContentID,
			JoinDate:  s.now().UTC(),
			Position:  maxPos + 1,
			Status:    enums.WaitlistStatusWaiting,
		}
		if err := repo.CreateWaitlistEntry(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create waitlist entry")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWaitlistJoined,
			AggregateType: enums.AggregateWaitlistEntry,
			AggregateID:   entry.ID,
			Version:       1,
			Actor:         buildActor(input.ActorID, input.ActorRole),
			Data: payloads.WaitlistJoinedEvent{
				EntryID:   entry.ID,
				ContentID: entry.ContentID,
				UserID:    entry.UserID,
				Position:  entry.Position,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return waitlistEntryFromModel(entry), nil
}

func (s *service) QueryAvailability(ctx context.Context, contentID uuid.UUID, actorID *uuid.UUID) (*AvailabilityDTO, error) {
	if contentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content id required")
	}

	content, err := s.repo.FindContentItem(ctx, contentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "content item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load content item")
	}

	out := &AvailabilityDTO{
		ContentID: contentID,
		Status:    content.Status,
	}

	count, err := s.repo.CountWaiting(ctx, contentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count waitlist")
	}
	out.WaitlistCount = count

	if actorID == nil || *actorID == uuid.Nil {
		return out, nil
	}

	active, err := s.repo.FindActiveBorrowByContent(ctx, contentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active borrow")
	}
	if active != nil && active.UserID == *actorID {
		out.UserHasBorrowed = true
		id := active.ID
		due := active.DueDate
		out.BorrowID = &id
		out.DueDate = &due
	}

	reservation, err := s.repo.FindPendingReservation(ctx, *actorID, contentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pending reservation")
	}
	if reservation != nil {
		out.UserHasReserved = true
		id := reservation.ID
		expiry := reservation.ExpiryDate
		out.ReservationID = &id
		out.ExpiryDate = &expiry
	}

	waiting, err := s.repo.FindWaitingEntry(ctx, *actorID, contentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check waitlist entry")
	}
	if waiting != nil {
		pos := waiting.Position
		out.WaitlistPosition = &pos
	}

	return out, nil
}

func (s *service) ListBorrowed(ctx context.Context, input ListBorrowedInput) (*BorrowRecordList, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	filter := input.Filter
	if !input.ActorRole.CanBypassOwnership() {
		actor := input.ActorID
		filter.UserID = &actor
	}

	list, err := s.repo.ListBorrowRecords(ctx, filter, input.Page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list borrow records")
	}
	return list, nil
}

// ExpireReservation moves a lapsed pending reservation to expired and runs the
// promotion rule so the copy does not sit reserved for a dead claim. Invoked
// by the reservation-expiry sweep; a reservation that is no longer pending is
// skipped without error so the sweep can retry safely.
func (s *service) ExpireReservation(ctx context.Context, reservationID uuid.UUID) error {
	if reservationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		reservation, err := repo.FindReservation(ctx, reservationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
		}

		if _, err := s.lockContent(ctx, repo, reservation.ContentID); err != nil {
			return err
		}

		// Re-read under the lock; the holder may have borrowed meanwhile.
		reservation, err = repo.FindReservation(ctx, reservationID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload reservation")
		}
		if reservation.Status != enums.ReservationStatusPending {
			return nil
		}

		if err := repo.UpdateReservationStatus(ctx, reservation.ID, enums.ReservationStatusExpired); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire reservation")
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReservationExpired,
			AggregateType: enums.AggregateReservation,
			AggregateID:   reservation.ID,
			Version:       1,
			Data: payloads.ReservationExpiredEvent{
				ReservationID: reservation.ID,
				ContentID:     reservation.ContentID,
				UserID:        reservation.UserID,
				ExpiredAt:     s.now().UTC(),
			},
		}); err != nil {
			return err
		}

		// The copy only frees up when nobody is holding it out.
		active, err := repo.FindActiveBorrowByContent(ctx, reservation.ContentID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active borrow")
		}
		if active != nil {
			return nil
		}
		return s.promote(ctx, tx, repo, reservation.ContentID, nil)
	})
}

// MarkBorrowOverdue flips an active borrow past its due date to overdue. The
// content stays borrowed since the copy is still out.
func (s *service) MarkBorrowOverdue(ctx context.Context, borrowID uuid.UUID) error {
	if borrowID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "borrow id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		record, err := repo.FindBorrowRecord(ctx, borrowID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "borrow record not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load borrow record")
		}
		now := s.now().UTC()
		if record.Status != enums.BorrowStatusBorrowed || !now.After(record.DueDate) {
			return nil
		}

		if err := repo.UpdateBorrowStatus(ctx, record.ID, enums.BorrowStatusOverdue); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark borrow overdue")
		}

		overdueDays := int(now.Sub(record.DueDate).Hours() / 24)
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBorrowOverdue,
			AggregateType: enums.AggregateBorrowRecord,
			AggregateID:   record.ID,
			Version:       1,
			Data: payloads.BorrowOverdueEvent{
				BorrowID:    record.ID,
				ContentID:   record.ContentID,
				UserID:      record.UserID,
				DueDate:     record.DueDate,
				OverdueDays: overdueDays,
			},
		})
	})
}

// promote advances the next claimant when a copy frees up: earliest pending
// reservation first, then the waitlist head, else the item becomes available.
// Must run with the content row locked.
func (s *service) promote(ctx context.Context, tx *gorm.DB, repo Repository, contentID uuid.UUID, actor *outbox.ActorRef) error {
	content, err := repo.FindContentItem(ctx, contentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load content item")
	}
	// Archived items never re-enter circulation on their own; only an admin
	// restore lifts that state.
	if content.Status == enums.ContentStatusArchived {
		return nil
	}

	pending, err := repo.FindEarliestPendingReservation(ctx, contentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find pending reservation")
	}
	if pending != nil {
		if err := repo.UpdateContentStatus(ctx, contentID, enums.ContentStatusReserved); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update content status")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReservationReady,
			AggregateType: enums.AggregateReservation,
			AggregateID:   pending.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.ReservationReadyEvent{
				ReservationID: pending.ID,
				ContentID:     pending.ContentID,
				UserID:        pending.UserID,
				ExpiryDate:    pending.ExpiryDate,
			},
		})
	}

	head, err := repo.FindWaitlistHead(ctx, contentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find waitlist head")
	}
	if head != nil {
		now := s.now().UTC()
		reservation := &models.Reservation{
			UserID:          head.UserID,
			ContentID:       contentID,
			ReservationDate: now,
			ExpiryDate:      now.Add(s.cfg.ReservationExpiry()),
			Status:          enums.ReservationStatusPending,
		}
		if err := repo.CreateReservation(ctx, reservation); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create promoted reservation")
		}
		if err := repo.UpdateWaitlistStatus(ctx, head.ID, enums.WaitlistStatusNotified); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "notify waitlist head")
		}
		if err := repo.ShiftWaitingPositions(ctx, contentID, head.Position); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resequence waitlist")
		}
		if err := repo.UpdateContentStatus(ctx, contentID, enums.ContentStatusReserved); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update content status")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWaitlistPromoted,
			AggregateType: enums.AggregateWaitlistEntry,
			AggregateID:   head.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.WaitlistPromotedEvent{
				EntryID:       head.ID,
				ReservationID: reservation.ID,
				ContentID:     contentID,
				UserID:        head.UserID,
				ExpiryDate:    reservation.ExpiryDate,
			},
		})
	}

	if err := repo.UpdateContentStatus(ctx, contentID, enums.ContentStatusAvailable); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update content status")
	}
	return nil
}

func (s *service) lockContent(ctx context.Context, repo Repository, contentID uuid.UUID) (*models.ContentItem, error) {
	content, err := repo.LockContentItem(ctx, contentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "content item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock content item")
	}
	return content, nil
}

func buildActor(userID uuid.UUID, role enums.UserRole) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID: userID,
		Role:   string(role),
	}
}
