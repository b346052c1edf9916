package payloads

import (
	"time"

	"github.com/google/uuid"
)

// ContentBorrowedEvent signals a user checked out a catalog item.
type ContentBorrowedEvent struct {
	BorrowID  uuid.UUID `json:"borrow_id"`
	ContentID uuid.UUID `json:"content_id"`
	UserID    uuid.UUID `json:"user_id"`
	DueDate   time.Time `json:"due_date"`
}

// ContentReturnedEvent is emitted when a borrow record is closed.
type ContentReturnedEvent struct {
	BorrowID   uuid.UUID `json:"borrow_id"`
	ContentID  uuid.UUID `json:"content_id"`
	UserID     uuid.UUID `json:"user_id"`
	ReturnDate time.Time `json:"return_date"`
	WasOverdue bool      `json:"was_overdue"`
}

// ReservationCreatedEvent is emitted when a user reserves an item.
type ReservationCreatedEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	ContentID     uuid.UUID `json:"content_id"`
	UserID        uuid.UUID `json:"user_id"`
	ExpiryDate    time.Time `json:"expiry_date"`
}

// ReservationReadyEvent tells downstream systems a held item is ready for pickup.
type ReservationReadyEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	ContentID     uuid.UUID `json:"content_id"`
	UserID        uuid.UUID `json:"user_id"`
	ExpiryDate    time.Time `json:"expiry_date"`
}

// ReservationExpiredEvent describes a reservation that lapsed unclaimed.
type ReservationExpiredEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	ContentID     uuid.UUID `json:"content_id"`
	UserID        uuid.UUID `json:"user_id"`
	ExpiredAt     time.Time `json:"expired_at"`
}

// WaitlistJoinedEvent is emitted when a user queues behind existing holds.
type WaitlistJoinedEvent struct {
	EntryID   uuid.UUID `json:"entry_id"`
	ContentID uuid.UUID `json:"content_id"`
	UserID    uuid.UUID `json:"user_id"`
	Position  int       `json:"position"`
}

// WaitlistPromotedEvent signals a waitlist entry converted into a reservation.
type WaitlistPromotedEvent struct {
	EntryID       uuid.UUID `json:"entry_id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	ContentID     uuid.UUID `json:"content_id"`
	UserID        uuid.UUID `json:"user_id"`
	ExpiryDate    time.Time `json:"expiry_date"`
}

// BorrowOverdueEvent carries the payload for overdue notices.
type BorrowOverdueEvent struct {
	BorrowID    uuid.UUID `json:"borrow_id"`
	ContentID   uuid.UUID `json:"content_id"`
	UserID      uuid.UUID `json:"user_id"`
	DueDate     time.Time `json:"due_date"`
	OverdueDays int       `json:"overdue_days"`
}

// ContentArchivedEvent is emitted when staff remove an item from circulation.
type ContentArchivedEvent struct {
	ContentID  uuid.UUID `json:"content_id"`
	ArchivedBy uuid.UUID `json:"archived_by"`
	ArchivedAt time.Time `json:"archived_at"`
}
