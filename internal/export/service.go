// Package export renders the asset register as an xlsx workbook.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/rpattn/assettrack/internal/domain"
	"github.com/rpattn/assettrack/internal/view"
)

const sheetName = "Assets"

var headerRow = []string{
	"Asset ID", "Manufacturer", "Model Number", "Category", "Status",
	"Assigned To", "Location", "Purchase Date", "Warranty Expiry",
	"Open Maintenance", "Disposal Date", "Notes",
}

// Service builds asset register workbooks.
type Service struct {
	views  *view.Builder
	logger *zap.Logger
}

// NewService creates a new export service.
func NewService(views *view.Builder, logger *zap.Logger) *Service {
	return &Service{views: views, logger: logger}
}

// AssetRegister renders every asset, one row per asset, into a new
// workbook. The caller owns closing the file.
func (s *Service) AssetRegister(ctx context.Context) (*excelize.File, error) {
	assets, _, err := s.views.SearchAssets(ctx, domain.AssetFilter{}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load assets for export: %w", err)
	}

	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), sheetName)

	for col, title := range headerRow {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return nil, fmt.Errorf("failed to write header cell: %w", err)
		}
	}

	for i, asset := range assets {
		values := assetRow(asset)
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	s.logger.Info("asset register exported", zap.Int("rows", len(assets)))
	return f, nil
}

func assetRow(asset domain.AssetWithRelations) []any {
	assignedTo := ""
	if asset.AssignedUser != nil {
		assignedTo = asset.AssignedUser.Name
	}
	openMaintenance := 0
	for _, record := range asset.MaintenanceRecords {
		if record.Status == domain.MaintenanceStatusScheduled || record.Status == domain.MaintenanceStatusInProgress {
			openMaintenance++
		}
	}
	disposalDate := ""
	if asset.Disposal != nil {
		disposalDate = asset.Disposal.DisposalDate.Format("2006-01-02")
	}
	return []any{
		asset.Tag,
		asset.Model.Manufacturer,
		asset.Model.ModelNumber,
		string(asset.Model.Category),
		string(asset.Status),
		assignedTo,
		deref(asset.Location),
		formatDate(asset.PurchaseDate),
		formatDate(asset.WarrantyExpiry),
		openMaintenance,
		disposalDate,
		deref(asset.Notes),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
