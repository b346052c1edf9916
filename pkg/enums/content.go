package enums

import "fmt"

// ContentStatus is the cached availability summary on a content item. It is
// derived from the circulation ledgers and only ever written by the
// availability state machine.
type ContentStatus string

const (
	ContentStatusAvailable ContentStatus = "available"
	ContentStatusBorrowed  ContentStatus = "borrowed"
	ContentStatusReserved  ContentStatus = "reserved"
	ContentStatusArchived  ContentStatus = "archived"
)

var validContentStatuses = []ContentStatus{
	ContentStatusAvailable,
	ContentStatusBorrowed,
	ContentStatusReserved,
	ContentStatusArchived,
}

// String implements fmt.Stringer.
func (s ContentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ContentStatus.
func (s ContentStatus) IsValid() bool {
	for _, candidate := range validContentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseContentStatus converts raw input into a ContentStatus.
func ParseContentStatus(value string) (ContentStatus, error) {
	for _, candidate := range validContentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid content status %q", value)
}

// ContentAccessLevel scopes who may open a content item.
type ContentAccessLevel string

const (
	AccessLevelPublic           ContentAccessLevel = "public"
	AccessLevelRestricted       ContentAccessLevel = "restricted"
	AccessLevelInstitutionOnly  ContentAccessLevel = "institution_only"
	AccessLevelSubscriptionOnly ContentAccessLevel = "subscription_only"
)

var validAccessLevels = []ContentAccessLevel{
	AccessLevelPublic,
	AccessLevelRestricted,
	AccessLevelInstitutionOnly,
	AccessLevelSubscriptionOnly,
}

// IsValid reports whether the value is a known ContentAccessLevel.
func (a ContentAccessLevel) IsValid() bool {
	for _, candidate := range validAccessLevels {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseContentAccessLevel converts raw input into a ContentAccessLevel.
func ParseContentAccessLevel(value string) (ContentAccessLevel, error) {
	for _, candidate := range validAccessLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid access level %q", value)
}

// ContentViewMode controls whether a borrower gets the full file or a
// view-only rendition.
type ContentViewMode string

const (
	ViewModeFullAccess ContentViewMode = "full_access"
	ViewModeViewOnly   ContentViewMode = "view_only"
)

// IsValid reports whether the value is a known ContentViewMode.
func (v ContentViewMode) IsValid() bool {
	return v == ViewModeFullAccess || v == ViewModeViewOnly
}

// ParseContentViewMode converts raw input into a ContentViewMode.
func ParseContentViewMode(value string) (ContentViewMode, error) {
	mode := ContentViewMode(value)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid view mode %q", value)
	}
	return mode, nil
}
