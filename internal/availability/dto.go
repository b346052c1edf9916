package availability

import (
	"time"

	"github.com/mfigueroa/openshelf-backend/pkg/db/models"
	"github.com/mfigueroa/openshelf-backend/pkg/enums"
	"github.com/google/uuid"
)

// BorrowRecordDTO is the transport shape for a borrow ledger row.
type BorrowRecordDTO struct {
	ID         uuid.UUID          `json:"id"`
	UserID     uuid.UUID          `json:"user_id"`
	ContentID  uuid.UUID          `json:"content_id"`
	BorrowDate time.Time          `json:"borrow_date"`
	DueDate    time.Time          `json:"due_date"`
	ReturnDate *time.Time         `json:"return_date,omitempty"`
	Status     enums.BorrowStatus `json:"status"`
}

// ReservationDTO is the transport shape for a reservation.
type ReservationDTO struct {
	ID              uuid.UUID               `json:"id"`
	UserID          uuid.UUID               `json:"user_id"`
	ContentID       uuid.UUID               `json:"content_id"`
	ReservationDate time.Time               `json:"reservation_date"`
	ExpiryDate      time.Time               `json:"expiry_date"`
	Status          enums.ReservationStatus `json:"status"`
}

// WaitlistEntryDTO is the transport shape for a waitlist slot.
type WaitlistEntryDTO struct {
	ID        uuid.UUID            `json:"id"`
	UserID    uuid.UUID            `json:"user_id"`
	ContentID uuid.UUID            `json:"content_id"`
	JoinDate  time.Time            `json:"join_date"`
	Position  int                  `json:"position"`
	Status    enums.WaitlistStatus `json:"status"`
}

// AvailabilityDTO answers "can I get this item" for one content item and,
// when an actor is known, their personal standing against it.
type AvailabilityDTO struct {
	ContentID        uuid.UUID           `json:"content_id"`
	Status           enums.ContentStatus `json:"status"`
	UserHasBorrowed  bool                `json:"user_has_borrowed"`
	BorrowID         *uuid.UUID          `json:"borrow_id,omitempty"`
	DueDate          *time.Time          `json:"due_date,omitempty"`
	UserHasReserved  bool                `json:"user_has_reserved"`
	ReservationID    *uuid.UUID          `json:"reservation_id,omitempty"`
	ExpiryDate       *time.Time          `json:"expiry_date,omitempty"`
	WaitlistPosition *int                `json:"waitlist_position,omitempty"`
	WaitlistCount    int64               `json:"waitlist_count"`
}

// BorrowListFilter narrows ListBorrowRecords. A nil UserID means all users,
// which only staff callers are allowed to request.
type BorrowListFilter struct {
	UserID    *uuid.UUID
	ContentID *uuid.UUID
	Status    *enums.BorrowStatus
}

// BorrowRecordList is a cursor page of borrow records.
type BorrowRecordList struct {
	Records    []BorrowRecordDTO `json:"records"`
	NextCursor *string           `json:"next_cursor,omitempty"`
}

func borrowRecordFromModel(record *models.BorrowRecord) *BorrowRecordDTO {
	if record == nil {
		return nil
	}
	return &BorrowRecordDTO{
		ID:         record.ID,
		UserID:     record.UserID,
		ContentID:  record.ContentID,
		BorrowDate: record.BorrowDate,
		DueDate:    record.DueDate,
		ReturnDate: record.ReturnDate,
		Status:     record.Status,
	}
}

func reservationFromModel(reservation *models.Reservation) *ReservationDTO {
	if reservation == nil {
		return nil
	}
	return &ReservationDTO{
		ID:              reservation.ID,
		UserID:          reservation.UserID,
		ContentID:       reservation.ContentID,
		ReservationDate: reservation.ReservationDate,
		ExpiryDate:      reservation.ExpiryDate,
		Status:          reservation.Status,
	}
}

func waitlistEntryFromModel(entry *models.WaitlistEntry) *WaitlistEntryDTO {
	if entry == nil {
		return nil
	}
	return &WaitlistEntryDTO{
		ID:        entry.ID,
		UserID:    entry.UserID,
		ContentID: entry.ContentID,
		JoinDate:  entry.JoinDate,
		Position:  entry.Position,
		Status:    entry.Status,
	}
}
