package domain

import "time"

// AssetStatus is the lifecycle status of an asset. The string values
// match the storage enum labels.
type AssetStatus string

const (
	AssetStatusInStock          AssetStatus = "In Stock"
	AssetStatusAssigned         AssetStatus = "Assigned"
	AssetStatusUnderMaintenance AssetStatus = "Under Maintenance"
	AssetStatusRetired          AssetStatus = "Retired"
)

// Valid reports whether the status is one of the known enum values.
func (s AssetStatus) Valid() bool {
	switch s {
	case AssetStatusInStock, AssetStatusAssigned, AssetStatusUnderMaintenance, AssetStatusRetired:
		return true
	}
	return false
}

// Asset is the aggregate root for lifecycle state. Tag is the
// caller-chosen business identifier ("LAPTOP-001"), unique across all
// assets including retired ones. AssignedTo is non-nil exactly when
// Status is Assigned, and always nil once the asset is Retired.
type Asset struct {
	ID             int64       `json:"id"`
	Tag            string      `json:"asset_id"`
	ModelID        int64       `json:"model_id"`
	Status         AssetStatus `json:"status"`
	AssignedTo     *string     `json:"assigned_to"`
	PurchaseDate   *time.Time  `json:"purchase_date"`
	WarrantyExpiry *time.Time  `json:"warranty_expiry"`
	Location       *string     `json:"location"`
	Notes          *string     `json:"notes"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// CreateAssetInput carries the caller-supplied fields for a new asset.
type CreateAssetInput struct {
	Tag            string     `json:"asset_id"`
	ModelID        int64      `json:"model_id"`
	PurchaseDate   *time.Time `json:"purchase_date"`
	WarrantyExpiry *time.Time `json:"warranty_expiry"`
	Location       *string    `json:"location"`
	Notes          *string    `json:"notes"`
}

// UpdateAssetInput is a partial update. Plain pointer fields are
// applied when non-nil. Patch fields distinguish absent from
// explicitly cleared.
type UpdateAssetInput struct {
	ID             int64
	Tag            *string
	ModelID        *int64
	Status         *AssetStatus
	PurchaseDate   Patch[time.Time]
	WarrantyExpiry Patch[time.Time]
	Location       Patch[string]
	Notes          Patch[string]
}

// Empty reports whether the input changes nothing beyond the
// updated-at stamp.
func (in UpdateAssetInput) Empty() bool {
	return in.Tag == nil && in.ModelID == nil && in.Status == nil &&
		!in.PurchaseDate.Present() && !in.WarrantyExpiry.Present() &&
		!in.Location.Present() && !in.Notes.Present()
}
