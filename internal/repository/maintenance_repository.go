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

// maintenanceRepository implements MaintenanceRepository interface
type maintenanceRepository struct {
	q db.Querier
}

const maintenanceColumns = `id, asset_id, scheduled_date, completed_date, description, performed_by, cost::text, status, notes, created_at, updated_at`

func scanMaintenanceRecord(row pgx.Row) (domain.MaintenanceRecord, error) {
	var record domain.MaintenanceRecord
	var status string
	var cost *string
	err := row.Scan(
		&record.ID,
		&record.AssetID,
		&record.ScheduledDate,
		&record.CompletedDate,
		&record.Description,
		&record.PerformedBy,
		&cost,
		&status,
		&record.Notes,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return domain.MaintenanceRecord{}, err
	}
	record.Status = domain.MaintenanceStatus(status)
	record.Cost, err = textToDecimal(cost)
	if err != nil {
		return domain.MaintenanceRecord{}, err
	}
	return record, nil
}

func collectMaintenanceRecords(rows pgx.Rows) ([]domain.MaintenanceRecord, error) {
	defer rows.Close()
	records := []domain.MaintenanceRecord{}
	for rows.Next() {
		record, err := scanMaintenanceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan maintenance row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read maintenance rows: %w", err)
	}
	return records, nil
}

// Create inserts a new work item
func (r *maintenanceRepository) Create(ctx context.Context, record domain.MaintenanceRecord) (domain.MaintenanceRecord, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO maintenance_records (asset_id, scheduled_date, description, status, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+maintenanceColumns,
		record.AssetID,
		record.ScheduledDate,
		record.Description,
		string(record.Status),
		record.Notes,
	)
	created, err := scanMaintenanceRecord(row)
	if err != nil {
		return domain.MaintenanceRecord{}, fmt.Errorf("failed to create maintenance record: %w", err)
	}
	return created, nil
}

// GetByID retrieves a work item by id
func (r *maintenanceRepository) GetByID(ctx context.Context, id int64) (domain.MaintenanceRecord, error) {
	row := r.q.QueryRow(ctx, `SELECT `+maintenanceColumns+` FROM maintenance_records WHERE id = $1`, id)
	record, err := scanMaintenanceRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.MaintenanceRecord{}, domain.NotFoundError("maintenance record", strconv.FormatInt(id, 10))
		}
		return domain.MaintenanceRecord{}, fmt.Errorf("failed to get maintenance record: %w", err)
	}
	return record, nil
}

// UpdateCompletion overwrites the completion columns of a record; nil
// input fields null out their columns.
func (r *maintenanceRepository) UpdateCompletion(ctx context.Context, input domain.UpdateMaintenanceInput) (domain.MaintenanceRecord, error) {
	row := r.q.QueryRow(ctx, `
		UPDATE maintenance_records
		SET completed_date = $2, performed_by = $3, cost = $4::numeric, status = $5, notes = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+maintenanceColumns,
		input.ID,
		input.CompletedDate,
		input.PerformedBy,
		decimalToText(input.Cost),
		string(input.Status),
		input.Notes,
	)
	record, err := scanMaintenanceRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.MaintenanceRecord{}, domain.NotFoundError("maintenance record", strconv.FormatInt(input.ID, 10))
		}
		return domain.MaintenanceRecord{}, fmt.Errorf("failed to update maintenance record: %w", err)
	}
	return record, nil
}

// List retrieves all work items
func (r *maintenanceRepository) List(ctx context.Context) ([]domain.MaintenanceRecord, error) {
	rows, err := r.q.Query(ctx, `SELECT `+maintenanceColumns+` FROM maintenance_records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list maintenance records: %w", err)
	}
	return collectMaintenanceRecords(rows)
}

// ListByAsset retrieves all work items for an asset
func (r *maintenanceRepository) ListByAsset(ctx context.Context, assetID int64) ([]domain.MaintenanceRecord, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+maintenanceColumns+` FROM maintenance_records WHERE asset_id = $1 ORDER BY id`,
		assetID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list maintenance records by asset: %w", err)
	}
	return collectMaintenanceRecords(rows)
}

// ListByAssets retrieves work items for multiple assets keyed by asset
// id
func (r *maintenanceRepository) ListByAssets(ctx context.Context, assetIDs []int64) (map[int64][]domain.MaintenanceRecord, error) {
	grouped := map[int64][]domain.MaintenanceRecord{}
	if len(assetIDs) == 0 {
		return grouped, nil
	}

	rows, err := r.q.Query(ctx,
		`SELECT `+maintenanceColumns+` FROM maintenance_records WHERE asset_id = ANY($1) ORDER BY id`,
		assetIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list maintenance records by assets: %w", err)
	}
	records, err := collectMaintenanceRecords(rows)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		grouped[record.AssetID] = append(grouped[record.AssetID], record)
	}
	return grouped, nil
}

// ListScheduledBetween returns Scheduled records whose scheduled date
// falls within [from, to] inclusive, ordered by scheduled date
// ascending.
func (r *maintenanceRepository) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]domain.MaintenanceRecord, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+maintenanceColumns+`
		FROM maintenance_records
		WHERE status = 'Scheduled' AND scheduled_date >= $1 AND scheduled_date <= $2
		ORDER BY scheduled_date`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled maintenance: %w", err)
	}
	return collectMaintenanceRecords(rows)
}
