package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rpattn/assettrack/internal/db"
	"github.com/rpattn/assettrack/internal/domain"
)

// activityRepository implements ActivityRepository interface. Entries
// are append-only; there is no update or delete path.
type activityRepository struct {
	q db.Querier
}

const activityColumns = `id, activity_type, entity_type, entity_id, user_id, description, metadata, created_at`

func scanActivityEntry(row pgx.Row) (domain.ActivityLogEntry, error) {
	var entry domain.ActivityLogEntry
	var activityType string
	err := row.Scan(
		&entry.ID,
		&activityType,
		&entry.EntityType,
		&entry.EntityID,
		&entry.UserID,
		&entry.Description,
		&entry.Metadata,
		&entry.CreatedAt,
	)
	if err != nil {
		return domain.ActivityLogEntry{}, err
	}
	entry.Type = domain.ActivityType(activityType)
	return entry, nil
}

// Append inserts an audit entry
func (r *activityRepository) Append(ctx context.Context, entry domain.ActivityLogEntry) (domain.ActivityLogEntry, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO activity_log (activity_type, entity_type, entity_id, user_id, description, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+activityColumns,
		string(entry.Type),
		entry.EntityType,
		entry.EntityID,
		entry.UserID,
		entry.Description,
		entry.Metadata,
	)
	created, err := scanActivityEntry(row)
	if err != nil {
		return domain.ActivityLogEntry{}, fmt.Errorf("failed to append activity entry: %w", err)
	}
	return created, nil
}

// List returns one page of entries newest-first plus the total count
func (r *activityRepository) List(ctx context.Context, limit, offset int) ([]domain.ActivityLogEntry, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM activity_log`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count activity entries: %w", err)
	}

	rows, err := r.q.Query(ctx,
		`SELECT `+activityColumns+` FROM activity_log ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activity entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.ActivityLogEntry{}
	for rows.Next() {
		entry, err := scanActivityEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan activity row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read activity rows: %w", err)
	}

	return entries, total, nil
}
