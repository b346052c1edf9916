package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mfigueroa/openshelf-backend/pkg/enums"
)

// ExternalSystem stores credentials and configuration for a third-party
// platform (LMS, academic database). Synchronization itself is not
// implemented; the record only tracks the last time a sync was requested.
type ExternalSystem struct {
	ID           uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string                   `gorm:"column:name;not null;uniqueIndex:external_systems_name_key"`
	Type         enums.ExternalSystemType `gorm:"column:type;type:external_system_type_enum;not null"`
	URL          string                   `gorm:"column:url;not null"`
	APIKey       *string                  `gorm:"column:api_key"`
	ClientID     *string                  `gorm:"column:client_id"`
	ClientSecret *string                  `gorm:"column:client_secret"`
	Enabled      bool                     `gorm:"column:enabled;not null;default:true"`
	LastSyncAt   *time.Time               `gorm:"column:last_sync_at"`
	CreatedBy    *uuid.UUID               `gorm:"column:created_by;type:uuid"`
	UpdatedBy    *uuid.UUID               `gorm:"column:updated_by;type:uuid"`
	CreatedAt    time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// ExternalContentMapping links a catalog item to its counterpart in an
// external system.
type ExternalContentMapping struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ContentID          uuid.UUID       `gorm:"column:content_id;type:uuid;not null;index:external_content_mappings_content_id_idx"`
	ExternalSystemID   uuid.UUID       `gorm:"column:external_system_id;type:uuid;not null;index:external_content_mappings_system_id_idx"`
	ExternalResourceID string          `gorm:"column:external_resource_id;not null"`
	ExternalURL        *string         `gorm:"column:external_url"`
	Metadata           json.RawMessage `gorm:"column:metadata;type:jsonb"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
