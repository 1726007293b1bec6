// Package view builds denormalized read-side projections by joining
// assets with their model, open assignment, maintenance history and
// disposal record.
package view

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rpattn/assettrack/internal/domain"
	"github.com/rpattn/assettrack/internal/repository"
)

// Builder hydrates assets into AssetWithRelations projections.
type Builder struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewBuilder creates a new view builder.
func NewBuilder(store repository.Store, logger *zap.Logger) *Builder {
	return &Builder{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the timestamp source for deterministic tests.
func (b *Builder) SetClock(now func() time.Time) { b.now = now }

// GetAssetWithRelations returns the hydrated view of one asset, or nil
// without error when the asset does not exist.
func (b *Builder) GetAssetWithRelations(ctx context.Context, assetID int64) (*domain.AssetWithRelations, error) {
	asset, err := b.store.Assets().GetByID(ctx, assetID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	views, err := b.hydrate(ctx, []domain.Asset{asset})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// GetAssetByTag returns the hydrated view of the asset carrying the
// given business tag, or nil without error when no asset does.
func (b *Builder) GetAssetByTag(ctx context.Context, tag string) (*domain.AssetWithRelations, error) {
	asset, err := b.store.Assets().GetByTag(ctx, tag)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	views, err := b.hydrate(ctx, []domain.Asset{asset})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListAssets returns the hydrated view of every asset ordered by id.
func (b *Builder) ListAssets(ctx context.Context) ([]domain.AssetWithRelations, error) {
	assets, err := b.store.Assets().List(ctx)
	if err != nil {
		return nil, err
	}
	return b.hydrate(ctx, assets)
}

// SearchAssets returns one hydrated page of assets matching the filter
// plus the total matching count. A non-positive limit disables
// pagination.
func (b *Builder) SearchAssets(ctx context.Context, filter domain.AssetFilter, limit, offset int) ([]domain.AssetWithRelations, int, error) {
	assets, total, err := b.store.Assets().Search(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	views, err := b.hydrate(ctx, assets)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// GetUserAssets returns the per-user projection: currently held assets
// plus the user's closed assignment history.
func (b *Builder) GetUserAssets(ctx context.Context, userID string) (domain.UserAssets, error) {
	user, err := b.store.Users().GetByID(ctx, userID)
	if err != nil {
		return domain.UserAssets{}, err
	}

	current, err := b.store.Assets().ListByAssignee(ctx, userID)
	if err != nil {
		return domain.UserAssets{}, err
	}
	currentViews, err := b.hydrate(ctx, current)
	if err != nil {
		return domain.UserAssets{}, err
	}

	closed, err := b.store.Assignments().ListClosedByUser(ctx, userID)
	if err != nil {
		return domain.UserAssets{}, err
	}
	past := []domain.AssignmentWithAsset{}
	for _, assignment := range closed {
		asset, err := b.store.Assets().GetByID(ctx, assignment.AssetID)
		if err != nil {
			if domain.IsNotFound(err) {
				b.logger.Warn("closed assignment references missing asset",
					zap.Int64("assignment_id", assignment.ID),
					zap.Int64("asset_id", assignment.AssetID))
				continue
			}
			return domain.UserAssets{}, err
		}
		views, err := b.hydrate(ctx, []domain.Asset{asset})
		if err != nil {
			return domain.UserAssets{}, err
		}
		// The view describes a past period, so the asset's present
		// open assignment does not belong in it.
		views[0].CurrentAssignment = nil
		views[0].AssignedUser = nil
		past = append(past, domain.AssignmentWithAsset{
			Assignment: assignment,
			Asset:      views[0],
		})
	}

	return domain.UserAssets{
		User:            user,
		CurrentAssets:   currentViews,
		PastAssignments: past,
	}, nil
}

// GetExpiringWarranties returns hydrated non-disposed assets whose
// warranty expires within the next windowDays, soonest first.
func (b *Builder) GetExpiringWarranties(ctx context.Context, windowDays int) ([]domain.AssetWithRelations, error) {
	cutoff := b.now().AddDate(0, 0, windowDays)
	assets, err := b.store.Assets().ListExpiringWarranties(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	return b.hydrate(ctx, assets)
}

// GetUpcomingMaintenance returns Scheduled work items due within the
// next windowDays, soonest first.
func (b *Builder) GetUpcomingMaintenance(ctx context.Context, windowDays int) ([]domain.MaintenanceRecord, error) {
	now := b.now()
	return b.store.Maintenance().ListScheduledBetween(ctx, now, now.AddDate(0, 0, windowDays))
}

// ActivityLog returns one page of audit entries newest-first plus the
// total count.
func (b *Builder) ActivityLog(ctx context.Context, limit, offset int) ([]domain.ActivityLogEntry, int, error) {
	return b.store.Activity().List(ctx, limit, offset)
}

// hydrate joins a batch of assets with their relations using one
// lookup per relation kind rather than per asset.
func (b *Builder) hydrate(ctx context.Context, assets []domain.Asset) ([]domain.AssetWithRelations, error) {
	if len(assets) == 0 {
		return []domain.AssetWithRelations{}, nil
	}

	assetIDs := make([]int64, 0, len(assets))
	modelIDs := make([]int64, 0, len(assets))
	seenModels := map[int64]bool{}
	for _, asset := range assets {
		assetIDs = append(assetIDs, asset.ID)
		if !seenModels[asset.ModelID] {
			seenModels[asset.ModelID] = true
			modelIDs = append(modelIDs, asset.ModelID)
		}
	}

	models, err := b.store.AssetModels().GetByIDs(ctx, modelIDs)
	if err != nil {
		return nil, err
	}
	openAssignments, err := b.store.Assignments().OpenByAssets(ctx, assetIDs)
	if err != nil {
		return nil, err
	}
	maintenance, err := b.store.Maintenance().ListByAssets(ctx, assetIDs)
	if err != nil {
		return nil, err
	}
	disposals, err := b.store.Disposals().GetByAssets(ctx, assetIDs)
	if err != nil {
		return nil, err
	}

	userIDs := []string{}
	seenUsers := map[string]bool{}
	for _, asset := range assets {
		if asset.AssignedTo != nil && !seenUsers[*asset.AssignedTo] {
			seenUsers[*asset.AssignedTo] = true
			userIDs = append(userIDs, *asset.AssignedTo)
		}
	}
	users, err := b.store.Users().GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	views := make([]domain.AssetWithRelations, 0, len(assets))
	for _, asset := range assets {
		model, ok := models[asset.ModelID]
		if !ok {
			b.logger.Error("asset references missing model",
				zap.Int64("asset_id", asset.ID),
				zap.Int64("model_id", asset.ModelID))
			return nil, domain.IntegrityError("asset", strconv.FormatInt(asset.ID, 10),
				"asset references a model that does not exist")
		}

		view := domain.AssetWithRelations{
			Asset:              asset,
			Model:              model,
			MaintenanceRecords: maintenance[asset.ID],
		}
		if view.MaintenanceRecords == nil {
			view.MaintenanceRecords = []domain.MaintenanceRecord{}
		}
		if assignment, ok := openAssignments[asset.ID]; ok {
			a := assignment
			view.CurrentAssignment = &a
		}
		if asset.AssignedTo != nil {
			if user, ok := users[*asset.AssignedTo]; ok {
				view.AssignedUser = &user
			}
		}
		if disposal, ok := disposals[asset.ID]; ok {
			d := disposal
			view.Disposal = &d
		}
		views = append(views, view)
	}
	return views, nil
}
