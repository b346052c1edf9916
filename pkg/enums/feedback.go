package enums

import "fmt"

// FeedbackType categorizes a user-submitted message.
type FeedbackType string

const (
	FeedbackTypeBug     FeedbackType = "bug"
	FeedbackTypeFeature FeedbackType = "feature"
	FeedbackTypeSupport FeedbackType = "support"
	FeedbackTypeOther   FeedbackType = "other"
)

var validFeedbackTypes = []FeedbackType{
	FeedbackTypeBug,
	FeedbackTypeFeature,
	FeedbackTypeSupport,
	FeedbackTypeOther,
}

// IsValid reports whether the value is a known FeedbackType.
func (t FeedbackType) IsValid() bool {
	for _, candidate := range validFeedbackTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseFeedbackType converts raw input into a FeedbackType.
func ParseFeedbackType(value string) (FeedbackType, error) {
	for _, candidate := range validFeedbackTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid feedback type %q", value)
}

// FeedbackStatus tracks a feedback item through triage.
type FeedbackStatus string

const (
	FeedbackStatusPending    FeedbackStatus = "pending"
	FeedbackStatusInProgress FeedbackStatus = "in_progress"
	FeedbackStatusResolved   FeedbackStatus = "resolved"
	FeedbackStatusClosed     FeedbackStatus = "closed"
)

var validFeedbackStatuses = []FeedbackStatus{
	FeedbackStatusPending,
	FeedbackStatusInProgress,
	FeedbackStatusResolved,
	FeedbackStatusClosed,
}

// IsValid reports whether the value is a known FeedbackStatus.
func (s FeedbackStatus) IsValid() bool {
	for _, candidate := range validFeedbackStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseFeedbackStatus converts raw input into a FeedbackStatus.
func ParseFeedbackStatus(value string) (FeedbackStatus, error) {
	for _, candidate := range validFeedbackStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid feedback status %q", value)
}
