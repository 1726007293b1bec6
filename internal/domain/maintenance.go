package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaintenanceStatus is the state of a maintenance work item. Values
// match the storage enum labels.
type MaintenanceStatus string

const (
	MaintenanceStatusScheduled  MaintenanceStatus = "Scheduled"
	MaintenanceStatusInProgress MaintenanceStatus = "In Progress"
	MaintenanceStatusCompleted  MaintenanceStatus = "Completed"
	MaintenanceStatusCancelled  MaintenanceStatus = "Cancelled"
)

// Valid reports whether the status is a known enum value.
func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenanceStatusScheduled, MaintenanceStatusInProgress, MaintenanceStatusCompleted, MaintenanceStatusCancelled:
		return true
	}
	return false
}

// MaintenanceRecord is one work item for an asset, independent of the
// asset's assignment state. An asset may hold many records in any mix
// of statuses; maintenance never changes the asset's own status.
type MaintenanceRecord struct {
	ID            int64             `json:"id"`
	AssetID       int64             `json:"asset_id"`
	ScheduledDate time.Time         `json:"scheduled_date"`
	CompletedDate *time.Time        `json:"completed_date"`
	Description   string            `json:"description"`
	PerformedBy   *string           `json:"performed_by"`
	Cost          *decimal.Decimal  `json:"cost"`
	Status        MaintenanceStatus `json:"status"`
	Notes         *string           `json:"notes"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ScheduleMaintenanceInput carries the fields for a new work item.
// New records start Scheduled with no completion data.
type ScheduleMaintenanceInput struct {
	AssetID       int64     `json:"asset_id"`
	ScheduledDate time.Time `json:"scheduled_date"`
	Description   string    `json:"description"`
	Notes         *string   `json:"notes"`
}

// UpdateMaintenanceInput overwrites the completion columns of an
// existing record. This is a single free-form update, not a guarded
// transition table: any status may be set directly, including moving
// backward, and nil fields overwrite their columns with null.
type UpdateMaintenanceInput struct {
	ID            int64             `json:"id"`
	CompletedDate *time.Time        `json:"completed_date"`
	PerformedBy   *string           `json:"performed_by"`
	Cost          *decimal.Decimal  `json:"cost"`
	Status        MaintenanceStatus `json:"status"`
	Notes         *string           `json:"notes"`
}
