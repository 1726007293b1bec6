// Package lifecycle implements the asset lifecycle state machine and
// the ledgers hanging off it. Every mutating operation runs as one
// transaction: the row change, the ledger write and the activity entry
// commit together or not at all.
package lifecycle

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rpattn/assettrack/internal/domain"
	"github.com/rpattn/assettrack/internal/repository"
)

// Service orchestrates lifecycle transitions over a Store.
type Service struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new lifecycle service.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the timestamp source for deterministic tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// CreateAsset registers a new asset in status In Stock. The tag must
// be unique across all assets, including retired ones.
func (s *Service) CreateAsset(ctx context.Context, input domain.CreateAssetInput, actor string) (domain.Asset, error) {
	if input.Tag == "" {
		return domain.Asset{}, domain.ValidationError("asset_id is required")
	}
	if input.ModelID == 0 {
		return domain.Asset{}, domain.ValidationError("model_id is required")
	}

	var created domain.Asset
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		exists, err := tx.Assets().TagExists(ctx, input.Tag, 0)
		if err != nil {
			return err
		}
		if exists {
			return domain.ConflictError("asset", input.Tag, "asset with this asset_id already exists")
		}
		if _, err := tx.AssetModels().GetByID(ctx, input.ModelID); err != nil {
			return err
		}
		if _, err := tx.Users().GetByID(ctx, actor); err != nil {
			return err
		}

		created, err = tx.Assets().Create(ctx, domain.Asset{
			Tag:            input.Tag,
			ModelID:        input.ModelID,
			Status:         domain.AssetStatusInStock,
			PurchaseDate:   input.PurchaseDate,
			WarrantyExpiry: input.WarrantyExpiry,
			Location:       input.Location,
			Notes:          input.Notes,
		})
		if err != nil {
			return err
		}

		return s.logActivity(ctx, tx, domain.ActivityLogEntry{
			Type:        domain.ActivityAssetCreated,
			EntityType:  "Asset",
			EntityID:    strconv.FormatInt(created.ID, 10),
			UserID:      actor,
			Description: fmt.Sprintf("Asset %s created", created.Tag),
		}, nil)
	})
	if err != nil {
		return domain.Asset{}, err
	}

	s.logger.Info("asset created", zap.Int64("id", created.ID), zap.String("asset_id", created.Tag))
	return created, nil
}

// UpdateAsset applies a partial update to an asset's descriptive
// fields. An empty input still stamps updated_at and logs an entry.
func (s *Service) UpdateAsset(ctx context.Context, input domain.UpdateAssetInput, actor string) (domain.Asset, error) {
	if input.Status != nil && !input.Status.Valid() {
		return domain.Asset{}, domain.ValidationError(fmt.Sprintf("invalid status %q", *input.Status))
	}
	if input.Empty() {
		// Still stamps updated_at and records activity below.
		s.logger.Debug("asset update carries no field changes", zap.Int64("asset_id", input.ID))
	}

	var updated domain.Asset
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		asset, err := tx.Assets().GetByIDForUpdate(ctx, input.ID)
		if err != nil {
			return err
		}

		if input.Tag != nil && *input.Tag != asset.Tag {
			taken, err := tx.Assets().TagExists(ctx, *input.Tag, asset.ID)
			if err != nil {
				return err
			}
			if taken {
				return domain.ConflictError("asset", *input.Tag, "asset with this asset_id already exists")
			}
			asset.Tag = *input.Tag
		}
		if input.ModelID != nil && *input.ModelID != asset.ModelID {
			if _, err := tx.AssetModels().GetByID(ctx, *input.ModelID); err != nil {
				return err
			}
			asset.ModelID = *input.ModelID
		}
		if input.Status != nil {
			asset.Status = *input.Status
		}
		asset.PurchaseDate = input.PurchaseDate.Apply(asset.PurchaseDate)
		asset.WarrantyExpiry = input.WarrantyExpiry.Apply(asset.WarrantyExpiry)
		asset.Location = input.Location.Apply(asset.Location)
		asset.Notes = input.Notes.Apply(asset.Notes)

		updated, err = tx.Assets().Update(ctx, asset)
		if err != nil {
			return err
		}

		return s.logActivity(ctx, tx, domain.ActivityLogEntry{
			Type:        domain.ActivityAssetUpdated,
			EntityType:  "Asset",
			EntityID:    strconv.FormatInt(updated.ID, 10),
			UserID:      actor,
			Description: fmt.Sprintf("Asset %s updated", updated.Tag),
		}, nil)
	})
	if err != nil {
		return domain.Asset{}, err
	}
	return updated, nil
}

// AssignAsset opens an assignment period for an In Stock asset and
// moves it to Assigned. The actor is recorded as the assigner.
func (s *Service) AssignAsset(ctx context.Context, assetID int64, userID, actor string, notes *string) (domain.Assignment, error) {
	var assignment domain.Assignment
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		asset, err := tx.Assets().GetByIDForUpdate(ctx, assetID)
		if err != nil {
			return err
		}
		if _, err := tx.Users().GetByID(ctx, userID); err != nil {
			return err
		}
		if _, err := tx.Users().GetByID(ctx, actor); err != nil {
			return err
		}
		if asset.Status != domain.AssetStatusInStock {
			return domain.InvalidStateError("asset", strconv.FormatInt(assetID, 10),
				"asset is not available for assignment")
		}

		assignment, err = tx.Assignments().Open(ctx, assetID, userID, actor, notes)
		if err != nil {
			return err
		}
		if _, err := tx.Assets().SetAssignmentState(ctx, assetID, domain.AssetStatusAssigned, &userID); err != nil {
			return err
		}

		return s.logActivity(ctx, tx, domain.ActivityLogEntry{
			Type:        domain.ActivityAssetAssigned,
			EntityType:  "Asset",
			EntityID:    strconv.FormatInt(assetID, 10),
			UserID:      actor,
			Description: fmt.Sprintf("Asset %s assigned to user %s", asset.Tag, userID),
		}, domain.AssignmentMetadata{AssignmentID: assignment.ID, UserID: userID})
	})
	if err != nil {
		return domain.Assignment{}, err
	}

	s.logger.Info("asset assigned",
		zap.Int64("asset_id", assetID),
		zap.String("user_id", userID),
		zap.Int64("assignment_id", assignment.ID))
	return assignment, nil
}

// UnassignAsset closes the open assignment period and returns the
// asset to In Stock. A non-nil notes value replaces the period's
// notes; nil preserves what was written at assignment time.
func (s *Service) UnassignAsset(ctx context.Context, assetID int64, actor string, notes *string) (domain.Assignment, error) {
	var assignment domain.Assignment
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		asset, err := tx.Assets().GetByIDForUpdate(ctx, assetID)
		if err != nil {
			return err
		}
		if asset.Status != domain.AssetStatusAssigned || asset.AssignedTo == nil {
			return domain.InvalidStateError("asset", strconv.FormatInt(assetID, 10),
				"asset is not currently assigned")
		}

		open, err := tx.Assignments().GetOpenByAsset(ctx, assetID)
		if err != nil {
			if domain.IsNotFound(err) {
				s.logger.Error("assigned asset has no open assignment period", zap.Int64("asset_id", assetID))
				return domain.IntegrityError("asset", strconv.FormatInt(assetID, 10),
					"assigned asset has no open assignment period")
			}
			return err
		}

		assignment, err = tx.Assignments().Close(ctx, open.ID, s.now(), notes)
		if err != nil {
			return err
		}
		if _, err := tx.Assets().SetAssignmentState(ctx, assetID, domain.AssetStatusInStock, nil); err != nil {
			return err
		}

		return s.logActivity(ctx, tx, domain.ActivityLogEntry{
			Type:        domain.ActivityAssetUnassigned,
			EntityType:  "Asset",
			EntityID:    strconv.FormatInt(assetID, 10),
			UserID:      actor,
			Description: fmt.Sprintf("Asset %s unassigned from user %s", asset.Tag, open.UserID),
		}, domain.AssignmentMetadata{AssignmentID: open.ID, UserID: open.UserID})
	})
	if err != nil {
		return domain.Assignment{}, err
	}

	s.logger.Info("asset unassigned", zap.Int64("asset_id", assetID))
	return assignment, nil
}

// RetireAsset moves an asset to Retired from any non-Retired status
// and clears its assignee. An open assignment period, if any, is left
// open in the ledger; the prior holder is captured in the activity
// metadata instead.
func (s *Service) RetireAsset(ctx context.Context, assetID int64, actor string) (domain.Asset, error) {
	var retired domain.Asset
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		asset, err := tx.Assets().GetByIDForUpdate(ctx, assetID)
		if err != nil {
			return err
		}
		if asset.Status == domain.AssetStatusRetired {
			return domain.InvalidStateError("asset", strconv.FormatInt(assetID, 10),
				"asset is already retired")
		}

		metadata := domain.RetireMetadata{
			PreviousStatus:     asset.Status,
			PreviousAssignedTo: asset.AssignedTo,
		}

		retired, err = tx.Assets().SetAssignmentState(ctx, assetID, domain.AssetStatusRetired, nil)
		if err != nil {
			return err
		}

		return s.logActivity(ctx, tx, domain.ActivityLogEntry{
			Type:        domain.ActivityAssetRetired,
			EntityType:  "Asset",
			EntityID:    strconv.FormatInt(assetID, 10),
			UserID:      actor,
			Description: fmt.Sprintf("Asset %s has been retired", asset.Tag),
		}, metadata)
	})
	if err != nil {
		return domain.Asset{}, err
	}

	s.logger.Info("asset retired", zap.Int64("asset_id", assetID))
	return retired, nil
}

// DisposeAsset records the single terminal disposal for an asset and
// forces it to Retired. A second disposal attempt is a conflict.
func (s *Service) DisposeAsset(ctx context.Context, input domain.DisposeAssetInput, actor string) (domain.Disposal, error) {
	if input.Method == "" {
		return domain.Disposal{}, domain.ValidationError("disposal_method is required")
	}

	var disposal domain.Disposal
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		asset, err := tx.Assets().GetByIDForUpdate(ctx, input.AssetID)
		if err != nil {
			return err
		}

		exists, err := tx.Disposals().ExistsByAsset(ctx, input.AssetID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ConflictError("asset", strconv.FormatInt(input.AssetID, 10),
				"asset already has a disposal record")
		}

		disposal, err = tx.Disposals().Create(ctx, domain.Disposal{
			AssetID:      input.AssetID,
			DisposalDate: input.DisposalDate,
			Method:       input.Method,
			Cost:         input.Cost,
			DisposedBy:   actor,
			Notes:        input.Notes,
		})
		if err != nil {
			return err
		}
		if _, err := tx.Assets().SetAssignmentState(ctx, input.AssetID, domain.AssetStatusRetired, nil); err != nil {
			return err
		}

		return s.logActivity(ctx, tx, domain.ActivityLogEntry{
			Type:        domain.ActivityAssetDisposed,
			EntityType:  "Asset",
			EntityID:    strconv.FormatInt(input.AssetID, 10),
			UserID:      actor,
			Description: fmt.Sprintf("Asset %s has been disposed", asset.Tag),
		}, domain.DisposalMetadata{
			DisposalDate: input.DisposalDate,
			Method:       input.Method,
			Cost:         decimalText(input.Cost),
		})
	})
	if err != nil {
		return domain.Disposal{}, err
	}

	s.logger.Info("asset disposed", zap.Int64("asset_id", input.AssetID), zap.String("method", input.Method))
	return disposal, nil
}

// ScheduleMaintenance creates a Scheduled work item for an asset. The
// asset's own status is not touched.
func (s *Service) ScheduleMaintenance(ctx context.Context, input domain.ScheduleMaintenanceInput, actor string) (domain.MaintenanceRecord, error) {
	if input.Description == "" {
		return domain.MaintenanceRecord{}, domain.ValidationError("description is required")
	}
	if input.ScheduledDate.IsZero() {
		return domain.MaintenanceRecord{}, domain.ValidationError("scheduled_date is required")
	}

	var record domain.MaintenanceRecord
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		asset, err := tx.Assets().GetByID(ctx, input.AssetID)
		if err != nil {
			return err
		}

		record, err = tx.Maintenance().Create(ctx, domain.MaintenanceRecord{
			AssetID:       input.AssetID,
			ScheduledDate: input.ScheduledDate,
			Description:   input.Description,
			Status:        domain.MaintenanceStatusScheduled,
			Notes:         input.Notes,
		})
		if err != nil {
			return err
		}

		return s.logActivity(ctx, tx, domain.ActivityLogEntry{
			Type:        domain.ActivityMaintenanceScheduled,
			EntityType:  "MaintenanceRecord",
			EntityID:    strconv.FormatInt(record.ID, 10),
			UserID:      actor,
			Description: fmt.Sprintf("Maintenance scheduled for asset %s: %s", asset.Tag, input.Description),
		}, domain.MaintenanceScheduledMetadata{
			AssetID:             input.AssetID,
			ScheduledDate:       input.ScheduledDate,
			MaintenanceRecordID: record.ID,
		})
	})
	if err != nil {
		return domain.MaintenanceRecord{}, err
	}
	return record, nil
}

// UpdateMaintenance overwrites the completion fields of a work item.
// This is a free-form update: any status may be written, and omitted
// fields clear their columns.
func (s *Service) UpdateMaintenance(ctx context.Context, input domain.UpdateMaintenanceInput, actor string) (domain.MaintenanceRecord, error) {
	if !input.Status.Valid() {
		return domain.MaintenanceRecord{}, domain.ValidationError(fmt.Sprintf("invalid status %q", input.Status))
	}

	var record domain.MaintenanceRecord
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		record, err = tx.Maintenance().UpdateCompletion(ctx, input)
		if err != nil {
			return err
		}

		return s.logActivity(ctx, tx, domain.ActivityLogEntry{
			Type:        domain.ActivityMaintenanceCompleted,
			EntityType:  "MaintenanceRecord",
			EntityID:    strconv.FormatInt(record.ID, 10),
			UserID:      actor,
			Description: fmt.Sprintf("Maintenance record updated for asset ID %d", record.AssetID),
		}, domain.MaintenanceUpdatedMetadata{
			Status:      record.Status,
			Cost:        decimalText(record.Cost),
			PerformedBy: record.PerformedBy,
		})
	})
	if err != nil {
		return domain.MaintenanceRecord{}, err
	}
	return record, nil
}

// CreateAssetModel registers a new catalog entry.
func (s *Service) CreateAssetModel(ctx context.Context, input domain.CreateAssetModelInput, actor string) (domain.AssetModel, error) {
	if input.Manufacturer == "" || input.ModelNumber == "" {
		return domain.AssetModel{}, domain.ValidationError("manufacturer and model_number are required")
	}
	if !input.Category.Valid() {
		return domain.AssetModel{}, domain.ValidationError(fmt.Sprintf("invalid category %q", input.Category))
	}

	var model domain.AssetModel
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		model, err = tx.AssetModels().Create(ctx, domain.AssetModel{
			Manufacturer: input.Manufacturer,
			ModelNumber:  input.ModelNumber,
			Category:     input.Category,
			Specs:        input.Specs,
		})
		if err != nil {
			return err
		}

		return s.logActivity(ctx, tx, domain.ActivityLogEntry{
			Type:        domain.ActivityAssetCreated,
			EntityType:  "AssetModel",
			EntityID:    strconv.FormatInt(model.ID, 10),
			UserID:      actor,
			Description: fmt.Sprintf("Asset model created: %s %s", model.Manufacturer, model.ModelNumber),
		}, domain.AssetModelMetadata{
			Manufacturer: model.Manufacturer,
			ModelNumber:  model.ModelNumber,
			Category:     model.Category,
		})
	})
	if err != nil {
		return domain.AssetModel{}, err
	}
	return model, nil
}

// CreateUser adds a directory entry with a generated id. An empty role
// defaults to User.
func (s *Service) CreateUser(ctx context.Context, input domain.CreateUserInput) (domain.User, error) {
	if input.Email == "" || input.Name == "" {
		return domain.User{}, domain.ValidationError("email and name are required")
	}
	role := input.Role
	if role == "" {
		role = domain.UserRoleUser
	}
	if !role.Valid() {
		return domain.User{}, domain.ValidationError(fmt.Sprintf("invalid role %q", role))
	}

	user, err := s.store.Users().Create(ctx, domain.User{
		ID:    uuid.NewString(),
		Email: input.Email,
		Name:  input.Name,
		Role:  role,
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *Service) logActivity(ctx context.Context, tx repository.Store, entry domain.ActivityLogEntry, metadata any) error {
	raw, err := domain.MarshalMetadata(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal activity metadata: %w", err)
	}
	entry.Metadata = raw
	if _, err := tx.Activity().Append(ctx, entry); err != nil {
		return err
	}
	return nil
}

func decimalText(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}
