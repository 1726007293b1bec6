package domain

import (
	"encoding/json"
	"time"
)

// ActivityType tags an activity log entry. Values match the storage
// enum labels.
type ActivityType string

const (
	ActivityAssetCreated         ActivityType = "Asset Created"
	ActivityAssetUpdated         ActivityType = "Asset Updated"
	ActivityAssetAssigned        ActivityType = "Asset Assigned"
	ActivityAssetUnassigned      ActivityType = "Asset Unassigned"
	ActivityAssetRetired         ActivityType = "Asset Retired"
	ActivityMaintenanceScheduled ActivityType = "Maintenance Scheduled"
	ActivityMaintenanceCompleted ActivityType = "Maintenance Completed"
	ActivityAssetDisposed        ActivityType = "Asset Disposed"
)

// ActivityLogEntry is an append-only audit record. It is a side log,
// not a source of truth: metadata is serialized write-only and never
// parsed back into business decisions.
type ActivityLogEntry struct {
	ID          int64           `json:"id"`
	Type        ActivityType    `json:"activity_type"`
	EntityType  string          `json:"entity_type"`
	EntityID    string          `json:"entity_id"`
	UserID      string          `json:"user_id"`
	Description string          `json:"description"`
	Metadata    json.RawMessage `json:"metadata"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Typed metadata shapes, one per activity type that carries any.

// RetireMetadata records what the asset looked like before retirement.
type RetireMetadata struct {
	PreviousStatus     AssetStatus `json:"previous_status"`
	PreviousAssignedTo *string     `json:"previous_assigned_to"`
}

// AssignmentMetadata records the parties of an assignment change.
type AssignmentMetadata struct {
	AssignmentID int64  `json:"assignment_id"`
	UserID       string `json:"user_id"`
}

// MaintenanceScheduledMetadata records the scheduling context.
type MaintenanceScheduledMetadata struct {
	AssetID             int64     `json:"asset_id"`
	ScheduledDate       time.Time `json:"scheduled_date"`
	MaintenanceRecordID int64     `json:"maintenance_record_id"`
}

// MaintenanceUpdatedMetadata records the updated completion fields.
type MaintenanceUpdatedMetadata struct {
	Status      MaintenanceStatus `json:"status"`
	Cost        *string           `json:"cost"`
	PerformedBy *string           `json:"performed_by"`
}

// DisposalMetadata records the disposal terms.
type DisposalMetadata struct {
	DisposalDate time.Time `json:"disposal_date"`
	Method       string    `json:"disposal_method"`
	Cost         *string   `json:"cost"`
}

// AssetModelMetadata records the catalog entry fields.
type AssetModelMetadata struct {
	Manufacturer string        `json:"manufacturer"`
	ModelNumber  string        `json:"model_number"`
	Category     AssetCategory `json:"category"`
}

// MarshalMetadata serializes a typed metadata shape for storage.
// A nil shape yields nil metadata.
func MarshalMetadata(shape any) (json.RawMessage, error) {
	if shape == nil {
		return nil, nil
	}
	raw, err := json.Marshal(shape)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
