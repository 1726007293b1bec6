package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rpattn/assettrack/internal/db"
	"github.com/rpattn/assettrack/internal/domain"
)

// assetRepository implements AssetRepository interface
type assetRepository struct {
	q db.Querier
}

const assetColumns = `id, asset_id, model_id, status, assigned_to, purchase_date, warranty_expiry, location, notes, created_at, updated_at`

func scanAsset(row pgx.Row) (domain.Asset, error) {
	var asset domain.Asset
	var status string
	err := row.Scan(
		&asset.ID,
		&asset.Tag,
		&asset.ModelID,
		&status,
		&asset.AssignedTo,
		&asset.PurchaseDate,
		&asset.WarrantyExpiry,
		&asset.Location,
		&asset.Notes,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)
	if err != nil {
		return domain.Asset{}, err
	}
	asset.Status = domain.AssetStatus(status)
	return asset, nil
}

func collectAssets(rows pgx.Rows) ([]domain.Asset, error) {
	defer rows.Close()
	assets := []domain.Asset{}
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset row: %w", err)
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read asset rows: %w", err)
	}
	return assets, nil
}

// Create inserts a new asset row
func (r *assetRepository) Create(ctx context.Context, asset domain.Asset) (domain.Asset, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO assets (asset_id, model_id, status, assigned_to, purchase_date, warranty_expiry, location, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+assetColumns,
		asset.Tag,
		asset.ModelID,
		string(asset.Status),
		asset.AssignedTo,
		asset.PurchaseDate,
		asset.WarrantyExpiry,
		asset.Location,
		asset.Notes,
	)
	created, err := scanAsset(row)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("failed to create asset: %w", err)
	}
	return created, nil
}

// GetByID retrieves an asset by its numeric identity
func (r *assetRepository) GetByID(ctx context.Context, id int64) (domain.Asset, error) {
	row := r.q.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id)
	asset, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Asset{}, domain.NotFoundError("asset", strconv.FormatInt(id, 10))
		}
		return domain.Asset{}, fmt.Errorf("failed to get asset: %w", err)
	}
	return asset, nil
}

// GetByIDForUpdate retrieves an asset with a row lock held until the
// enclosing transaction ends.
func (r *assetRepository) GetByIDForUpdate(ctx context.Context, id int64) (domain.Asset, error) {
	row := r.q.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1 FOR UPDATE`, id)
	asset, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Asset{}, domain.NotFoundError("asset", strconv.FormatInt(id, 10))
		}
		return domain.Asset{}, fmt.Errorf("failed to lock asset: %w", err)
	}
	return asset, nil
}

// GetByTag retrieves an asset by its business tag
func (r *assetRepository) GetByTag(ctx context.Context, tag string) (domain.Asset, error) {
	row := r.q.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE asset_id = $1`, tag)
	asset, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Asset{}, domain.NotFoundError("asset", tag)
		}
		return domain.Asset{}, fmt.Errorf("failed to get asset by tag: %w", err)
	}
	return asset, nil
}

// TagExists reports whether another asset already uses the tag
func (r *assetRepository) TagExists(ctx context.Context, tag string, excludeID int64) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM assets WHERE asset_id = $1 AND id <> $2)`,
		tag, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check asset tag: %w", err)
	}
	return exists, nil
}

// Update rewrites the mutable columns of an asset row
func (r *assetRepository) Update(ctx context.Context, asset domain.Asset) (domain.Asset, error) {
	row := r.q.QueryRow(ctx, `
		UPDATE assets
		SET asset_id = $2, model_id = $3, status = $4, assigned_to = $5,
		    purchase_date = $6, warranty_expiry = $7, location = $8, notes = $9,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+assetColumns,
		asset.ID,
		asset.Tag,
		asset.ModelID,
		string(asset.Status),
		asset.AssignedTo,
		asset.PurchaseDate,
		asset.WarrantyExpiry,
		asset.Location,
		asset.Notes,
	)
	updated, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Asset{}, domain.NotFoundError("asset", strconv.FormatInt(asset.ID, 10))
		}
		return domain.Asset{}, fmt.Errorf("failed to update asset: %w", err)
	}
	return updated, nil
}

// SetAssignmentState updates the denormalized status/assignee pair
func (r *assetRepository) SetAssignmentState(ctx context.Context, id int64, status domain.AssetStatus, assignedTo *string) (domain.Asset, error) {
	row := r.q.QueryRow(ctx, `
		UPDATE assets
		SET status = $2, assigned_to = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+assetColumns,
		id, string(status), assignedTo,
	)
	updated, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Asset{}, domain.NotFoundError("asset", strconv.FormatInt(id, 10))
		}
		return domain.Asset{}, fmt.Errorf("failed to set asset assignment state: %w", err)
	}
	return updated, nil
}

// List retrieves all assets ordered by identity
func (r *assetRepository) List(ctx context.Context) ([]domain.Asset, error) {
	rows, err := r.q.Query(ctx, `SELECT `+assetColumns+` FROM assets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return collectAssets(rows)
}

// ListByAssignee retrieves assets currently assigned to the user
func (r *assetRepository) ListByAssignee(ctx context.Context, userID string) ([]domain.Asset, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE assigned_to = $1 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets by assignee: %w", err)
	}
	return collectAssets(rows)
}

// Search applies the filter conjunctively and returns one page plus
// the total matching count. Ordered by asset id so pagination is
// reproducible.
func (r *assetRepository) Search(ctx context.Context, filter domain.AssetFilter, limit, offset int) ([]domain.Asset, int, error) {
	where := ""
	args := []any{}
	addCondition := func(condition string, value any) {
		args = append(args, value)
		clause := fmt.Sprintf(condition, len(args))
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
	}

	if filter.Category != nil {
		addCondition("m.category = $%d", string(*filter.Category))
	}
	if filter.Status != nil {
		addCondition("a.status = $%d", string(*filter.Status))
	}
	if filter.Manufacturer != "" {
		addCondition("m.manufacturer ILIKE $%d", "%"+filter.Manufacturer+"%")
	}
	if filter.ModelNumber != "" {
		addCondition("m.model_number ILIKE $%d", "%"+filter.ModelNumber+"%")
	}
	if filter.AssignedTo != nil {
		addCondition("a.assigned_to = $%d", *filter.AssignedTo)
	}
	if filter.Search != "" {
		addCondition("a.asset_id ILIKE $%d", "%"+filter.Search+"%")
	}

	// The model join only serves the m.* conditions; skip it when the
	// filter is empty.
	from := `FROM assets a
		JOIN asset_models m ON m.id = a.model_id`
	if filter.Empty() {
		from = `FROM assets a`
	}

	query := `
		SELECT a.id, a.asset_id, a.model_id, a.status, a.assigned_to, a.purchase_date,
		       a.warranty_expiry, a.location, a.notes, a.created_at, a.updated_at,
		       COUNT(*) OVER () AS total_count
		` + from + where + `
		ORDER BY a.id`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search assets: %w", err)
	}
	defer rows.Close()

	assets := []domain.Asset{}
	totalCount := 0
	for rows.Next() {
		var asset domain.Asset
		var status string
		if err := rows.Scan(
			&asset.ID,
			&asset.Tag,
			&asset.ModelID,
			&status,
			&asset.AssignedTo,
			&asset.PurchaseDate,
			&asset.WarrantyExpiry,
			&asset.Location,
			&asset.Notes,
			&asset.CreatedAt,
			&asset.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan asset search row: %w", err)
		}
		asset.Status = domain.AssetStatus(status)
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read asset search rows: %w", err)
	}

	// The window count is absent when the page is empty; fall back to a
	// plain count with the same conditions.
	if len(assets) == 0 {
		countQuery := `
			SELECT COUNT(*)
			` + from + where
		countArgs := args
		if limit > 0 {
			countArgs = args[:len(args)-2]
		}
		if err := r.q.QueryRow(ctx, countQuery, countArgs...).Scan(&totalCount); err != nil {
			return nil, 0, fmt.Errorf("failed to count assets: %w", err)
		}
	}

	return assets, totalCount, nil
}

// ListExpiringWarranties returns non-disposed assets whose warranty
// expires at or before the cutoff, ordered by expiry ascending.
func (r *assetRepository) ListExpiringWarranties(ctx context.Context, cutoff time.Time) ([]domain.Asset, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+assetColumns+`
		FROM assets a
		WHERE a.warranty_expiry IS NOT NULL
		  AND a.warranty_expiry <= $1
		  AND NOT EXISTS (SELECT 1 FROM asset_disposals d WHERE d.asset_id = a.id)
		ORDER BY a.warranty_expiry`,
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring warranties: %w", err)
	}
	return collectAssets(rows)
}
