package repository

import (
	"context"
	"time"

	"github.com/rpattn/assettrack/internal/domain"
)

// AssetRepository defines the interface for canonical asset rows
type AssetRepository interface {
	Create(ctx context.Context, asset domain.Asset) (domain.Asset, error)
	GetByID(ctx context.Context, id int64) (domain.Asset, error)
	// GetByIDForUpdate locks the asset row for the remainder of the
	// enclosing transaction, serializing concurrent lifecycle
	// operations on the same asset.
	GetByIDForUpdate(ctx context.Context, id int64) (domain.Asset, error)
	GetByTag(ctx context.Context, tag string) (domain.Asset, error)
	TagExists(ctx context.Context, tag string, excludeID int64) (bool, error)
	Update(ctx context.Context, asset domain.Asset) (domain.Asset, error)
	// SetAssignmentState updates the denormalized status/assignee pair
	// and stamps updated_at.
	SetAssignmentState(ctx context.Context, id int64, status domain.AssetStatus, assignedTo *string) (domain.Asset, error)
	List(ctx context.Context) ([]domain.Asset, error)
	ListByAssignee(ctx context.Context, userID string) ([]domain.Asset, error)
	// Search applies the filter conjunctively and returns one
	// offset/limit page plus the total matching count. A non-positive
	// limit disables pagination.
	Search(ctx context.Context, filter domain.AssetFilter, limit, offset int) ([]domain.Asset, int, error)
	// ListExpiringWarranties returns non-disposed assets whose warranty
	// expires at or before the cutoff, ordered by expiry ascending.
	ListExpiringWarranties(ctx context.Context, cutoff time.Time) ([]domain.Asset, error)
}

// AssetModelRepository defines the interface for the model catalog
type AssetModelRepository interface {
	Create(ctx context.Context, model domain.AssetModel) (domain.AssetModel, error)
	GetByID(ctx context.Context, id int64) (domain.AssetModel, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.AssetModel, error)
	List(ctx context.Context) ([]domain.AssetModel, error)
}

// UserRepository defines the interface for the user directory
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// AssignmentRepository defines the interface for assignment periods.
// Periods are append-only: they are opened, closed once, and never
// deleted or reopened.
type AssignmentRepository interface {
	Open(ctx context.Context, assetID int64, userID, assignedBy string, notes *string) (domain.Assignment, error)
	// Close stamps the end of the open period. A non-nil notes value
	// replaces the period's notes; nil preserves them.
	Close(ctx context.Context, id int64, unassignedAt time.Time, notes *string) (domain.Assignment, error)
	GetOpenByAsset(ctx context.Context, assetID int64) (domain.Assignment, error)
	OpenByAssets(ctx context.Context, assetIDs []int64) (map[int64]domain.Assignment, error)
	ListByAsset(ctx context.Context, assetID int64) ([]domain.Assignment, error)
	ListClosedByUser(ctx context.Context, userID string) ([]domain.Assignment, error)
}

// MaintenanceRepository defines the interface for maintenance work
// items
type MaintenanceRepository interface {
	Create(ctx context.Context, record domain.MaintenanceRecord) (domain.MaintenanceRecord, error)
	GetByID(ctx context.Context, id int64) (domain.MaintenanceRecord, error)
	// UpdateCompletion overwrites the completion columns of a record;
	// nil input fields null out their columns.
	UpdateCompletion(ctx context.Context, input domain.UpdateMaintenanceInput) (domain.MaintenanceRecord, error)
	List(ctx context.Context) ([]domain.MaintenanceRecord, error)
	ListByAsset(ctx context.Context, assetID int64) ([]domain.MaintenanceRecord, error)
	ListByAssets(ctx context.Context, assetIDs []int64) (map[int64][]domain.MaintenanceRecord, error)
	// ListScheduledBetween returns records with status Scheduled whose
	// scheduled date falls within [from, to] inclusive, ordered by
	// scheduled date ascending.
	ListScheduledBetween(ctx context.Context, from, to time.Time) ([]domain.MaintenanceRecord, error)
}

// DisposalRepository defines the interface for terminal disposal
// records
type DisposalRepository interface {
	Create(ctx context.Context, disposal domain.Disposal) (domain.Disposal, error)
	GetByAsset(ctx context.Context, assetID int64) (domain.Disposal, error)
	GetByAssets(ctx context.Context, assetIDs []int64) (map[int64]domain.Disposal, error)
	ExistsByAsset(ctx context.Context, assetID int64) (bool, error)
}

// ActivityRepository appends to and reads the immutable activity log
type ActivityRepository interface {
	Append(ctx context.Context, entry domain.ActivityLogEntry) (domain.ActivityLogEntry, error)
	// List returns one page of entries newest-first plus the total
	// count.
	List(ctx context.Context, limit, offset int) ([]domain.ActivityLogEntry, int, error)
}

// Store bundles the repositories over one backing store. WithinTx runs
// fn against a store whose repositories share a single transaction;
// either every write inside fn commits or none does.
type Store interface {
	Assets() AssetRepository
	AssetModels() AssetModelRepository
	Users() UserRepository
	Assignments() AssignmentRepository
	Maintenance() MaintenanceRepository
	Disposals() DisposalRepository
	Activity() ActivityRepository
	WithinTx(ctx context.Context, fn func(Store) error) error
}
