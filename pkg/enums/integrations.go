package enums

import "fmt"

// ExternalSystemType identifies the kind of third-party platform an
// integration record points at.
type ExternalSystemType string

const (
	ExternalSystemMoodle   ExternalSystemType = "moodle"
	ExternalSystemJSTOR    ExternalSystemType = "jstor"
	ExternalSystemProQuest ExternalSystemType = "proquest"
	ExternalSystemOther    ExternalSystemType = "other"
)

var validExternalSystemTypes = []ExternalSystemType{
	ExternalSystemMoodle,
	ExternalSystemJSTOR,
	ExternalSystemProQuest,
	ExternalSystemOther,
}

// IsValid reports whether the value is a known ExternalSystemType.
func (t ExternalSystemType) IsValid() bool {
	for _, candidate := range validExternalSystemTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseExternalSystemType converts raw input into an ExternalSystemType.
func ParseExternalSystemType(value string) (ExternalSystemType, error) {
	for _, candidate := range validExternalSystemTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid external system type %q", value)
}
