package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Disposal is the single terminal disposal record for an asset. Its
// existence implies the asset's status is Retired, and an asset may
// acquire at most one disposal row ever.
type Disposal struct {
	ID           int64            `json:"id"`
	AssetID      int64            `json:"asset_id"`
	DisposalDate time.Time        `json:"disposal_date"`
	Method       string           `json:"disposal_method"`
	Cost         *decimal.Decimal `json:"cost"`
	DisposedBy   string           `json:"disposed_by"`
	Notes        *string          `json:"notes"`
	CreatedAt    time.Time        `json:"created_at"`
}

// DisposeAssetInput carries the disposal metadata for retiring an
// asset permanently.
type DisposeAssetInput struct {
	AssetID      int64            `json:"asset_id"`
	DisposalDate time.Time        `json:"disposal_date"`
	Method       string           `json:"disposal_method"`
	Cost         *decimal.Decimal `json:"cost"`
	Notes        *string          `json:"notes"`
}
