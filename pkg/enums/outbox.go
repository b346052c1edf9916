package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateContentItem   OutboxAggregateType = "content_item"
	AggregateBorrowRecord  OutboxAggregateType = "borrow_record"
	AggregateReservation   OutboxAggregateType = "reservation"
	AggregateWaitlistEntry OutboxAggregateType = "waitlist_entry"
	AggregateProfile       OutboxAggregateType = "profile"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateContentItem,
	AggregateBorrowRecord,
	AggregateReservation,
	AggregateWaitlistEntry,
	AggregateProfile,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventContentBorrowed    OutboxEventType = "content_borrowed"
	EventContentReturned    OutboxEventType = "content_returned"
	EventReservationCreated OutboxEventType = "reservation_created"
	EventReservationReady   OutboxEventType = "reservation_ready"
	EventReservationExpired OutboxEventType = "reservation_expired"
	EventWaitlistJoined     OutboxEventType = "waitlist_joined"
	EventWaitlistPromoted   OutboxEventType = "waitlist_promoted"
	EventBorrowOverdue      OutboxEventType = "borrow_overdue"
	EventContentArchived    OutboxEventType = "content_archived"
)

var validOutboxEventTypes = []OutboxEventType{
	EventContentBorrowed,
	EventContentReturned,
	EventReservationCreated,
	EventReservationReady,
	EventReservationExpired,
	EventWaitlistJoined,
	EventWaitlistPromoted,
	EventBorrowOverdue,
	EventContentArchived,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

// OutboxDLQErrorReason maps to the outbox_dlq_error_reason enum in Postgres.
type OutboxDLQErrorReason string

const (
	DLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts_exceeded"
	DLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)

// IsValid reports whether the value matches the canonical DLQ reason enum.
func (r OutboxDLQErrorReason) IsValid() bool {
	return r == DLQReasonMaxAttempts || r == DLQReasonNonRetryable
}
