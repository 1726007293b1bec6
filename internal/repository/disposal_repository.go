package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rpattn/assettrack/internal/db"
	"github.com/rpattn/assettrack/internal/domain"
)

// disposalRepository implements DisposalRepository interface
type disposalRepository struct {
	q db.Querier
}

const disposalColumns = `id, asset_id, disposal_date, disposal_method, cost::text, disposed_by, notes, created_at`

func scanDisposal(row pgx.Row) (domain.Disposal, error) {
	var disposal domain.Disposal
	var cost *string
	err := row.Scan(
		&disposal.ID,
		&disposal.AssetID,
		&disposal.DisposalDate,
		&disposal.Method,
		&cost,
		&disposal.DisposedBy,
		&disposal.Notes,
		&disposal.CreatedAt,
	)
	if err != nil {
		return domain.Disposal{}, err
	}
	disposal.Cost, err = textToDecimal(cost)
	if err != nil {
		return domain.Disposal{}, err
	}
	return disposal, nil
}

// Create inserts the terminal disposal row for an asset. The unique
// constraint on asset_id backs the at-most-one-disposal invariant.
func (r *disposalRepository) Create(ctx context.Context, disposal domain.Disposal) (domain.Disposal, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO asset_disposals (asset_id, disposal_date, disposal_method, cost, disposed_by, notes)
		VALUES ($1, $2, $3, $4::numeric, $5, $6)
		RETURNING `+disposalColumns,
		disposal.AssetID,
		disposal.DisposalDate,
		disposal.Method,
		decimalToText(disposal.Cost),
		disposal.DisposedBy,
		disposal.Notes,
	)
	created, err := scanDisposal(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.Disposal{}, domain.ConflictError(
				"asset", strconv.FormatInt(disposal.AssetID, 10),
				"asset already has a disposal record",
			)
		}
		return domain.Disposal{}, fmt.Errorf("failed to create disposal: %w", err)
	}
	return created, nil
}

// GetByAsset retrieves the disposal record for an asset
func (r *disposalRepository) GetByAsset(ctx context.Context, assetID int64) (domain.Disposal, error) {
	row := r.q.QueryRow(ctx, `SELECT `+disposalColumns+` FROM asset_disposals WHERE asset_id = $1`, assetID)
	disposal, err := scanDisposal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Disposal{}, domain.NotFoundError("disposal for asset", strconv.FormatInt(assetID, 10))
		}
		return domain.Disposal{}, fmt.Errorf("failed to get disposal: %w", err)
	}
	return disposal, nil
}

// GetByAssets retrieves disposal records for multiple assets keyed by
// asset id
func (r *disposalRepository) GetByAssets(ctx context.Context, assetIDs []int64) (map[int64]domain.Disposal, error) {
	disposals := map[int64]domain.Disposal{}
	if len(assetIDs) == 0 {
		return disposals, nil
	}

	rows, err := r.q.Query(ctx, `SELECT `+disposalColumns+` FROM asset_disposals WHERE asset_id = ANY($1)`, assetIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get disposals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		disposal, err := scanDisposal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan disposal row: %w", err)
		}
		disposals[disposal.AssetID] = disposal
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read disposal rows: %w", err)
	}
	return disposals, nil
}

// ExistsByAsset reports whether the asset already has a disposal row
func (r *disposalRepository) ExistsByAsset(ctx context.Context, assetID int64) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM asset_disposals WHERE asset_id = $1)`, assetID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check disposal: %w", err)
	}
	return exists, nil
}
