package domain

import "time"

// AssetCategory classifies an asset model. Values match the storage
// enum labels.
type AssetCategory string

const (
	AssetCategoryLaptops     AssetCategory = "Laptops"
	AssetCategoryMonitors    AssetCategory = "Monitors"
	AssetCategoryKeyboards   AssetCategory = "Keyboards"
	AssetCategoryAccessories AssetCategory = "Accessories"
)

// Valid reports whether the category is a known enum value.
func (c AssetCategory) Valid() bool {
	switch c {
	case AssetCategoryLaptops, AssetCategoryMonitors, AssetCategoryKeyboards, AssetCategoryAccessories:
		return true
	}
	return false
}

// AssetModel is a catalog entry shared by many assets.
type AssetModel struct {
	ID           int64         `json:"id"`
	Manufacturer string        `json:"manufacturer"`
	ModelNumber  string        `json:"model_number"`
	Category     AssetCategory `json:"category"`
	Specs        *string       `json:"specs"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// CreateAssetModelInput carries the fields for a new catalog entry.
type CreateAssetModelInput struct {
	Manufacturer string        `json:"manufacturer"`
	ModelNumber  string        `json:"model_number"`
	Category     AssetCategory `json:"category"`
	Specs        *string       `json:"specs"`
}
