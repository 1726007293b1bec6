package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/rpattn/assettrack/internal/db"
	"github.com/rpattn/assettrack/internal/domain"
)

// assetModelRepository implements AssetModelRepository interface
type assetModelRepository struct {
	q db.Querier
}

const assetModelColumns = `id, manufacturer, model_number, category, specs, created_at, updated_at`

func scanAssetModel(row pgx.Row) (domain.AssetModel, error) {
	var model domain.AssetModel
	var category string
	err := row.Scan(
		&model.ID,
		&model.Manufacturer,
		&model.ModelNumber,
		&category,
		&model.Specs,
		&model.CreatedAt,
		&model.UpdatedAt,
	)
	if err != nil {
		return domain.AssetModel{}, err
	}
	model.Category = domain.AssetCategory(category)
	return model, nil
}

// Create inserts a new catalog entry
func (r *assetModelRepository) Create(ctx context.Context, model domain.AssetModel) (domain.AssetModel, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO asset_models (manufacturer, model_number, category, specs)
		VALUES ($1, $2, $3, $4)
		RETURNING `+assetModelColumns,
		model.Manufacturer,
		model.ModelNumber,
		string(model.Category),
		model.Specs,
	)
	created, err := scanAssetModel(row)
	if err != nil {
		return domain.AssetModel{}, fmt.Errorf("failed to create asset model: %w", err)
	}
	return created, nil
}

// GetByID retrieves a catalog entry by id
func (r *assetModelRepository) GetByID(ctx context.Context, id int64) (domain.AssetModel, error) {
	row := r.q.QueryRow(ctx, `SELECT `+assetModelColumns+` FROM asset_models WHERE id = $1`, id)
	model, err := scanAssetModel(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AssetModel{}, domain.NotFoundError("asset model", strconv.FormatInt(id, 10))
		}
		return domain.AssetModel{}, fmt.Errorf("failed to get asset model: %w", err)
	}
	return model, nil
}

// GetByIDs retrieves multiple catalog entries keyed by id
func (r *assetModelRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.AssetModel, error) {
	models := map[int64]domain.AssetModel{}
	if len(ids) == 0 {
		return models, nil
	}

	rows, err := r.q.Query(ctx, `SELECT `+assetModelColumns+` FROM asset_models WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get asset models: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		model, err := scanAssetModel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset model row: %w", err)
		}
		models[model.ID] = model
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read asset model rows: %w", err)
	}
	return models, nil
}

// List retrieves all catalog entries
func (r *assetModelRepository) List(ctx context.Context) ([]domain.AssetModel, error) {
	rows, err := r.q.Query(ctx, `SELECT `+assetModelColumns+` FROM asset_models ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list asset models: %w", err)
	}
	defer rows.Close()

	models := []domain.AssetModel{}
	for rows.Next() {
		model, err := scanAssetModel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset model row: %w", err)
		}
		models = append(models, model)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read asset model rows: %w", err)
	}
	return models, nil
}
