package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rpattn/assettrack/internal/db"
	"github.com/rpattn/assettrack/internal/domain"
)

// assignmentRepository implements AssignmentRepository interface
type assignmentRepository struct {
	q db.Querier
}

const assignmentColumns = `id, asset_id, user_id, assigned_by, assigned_at, unassigned_at, notes`

func scanAssignment(row pgx.Row) (domain.Assignment, error) {
	var assignment domain.Assignment
	err := row.Scan(
		&assignment.ID,
		&assignment.AssetID,
		&assignment.UserID,
		&assignment.AssignedBy,
		&assignment.AssignedAt,
		&assignment.UnassignedAt,
		&assignment.Notes,
	)
	if err != nil {
		return domain.Assignment{}, err
	}
	return assignment, nil
}

func collectAssignments(rows pgx.Rows) ([]domain.Assignment, error) {
	defer rows.Close()
	assignments := []domain.Assignment{}
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment row: %w", err)
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read assignment rows: %w", err)
	}
	return assignments, nil
}

// Open creates a new open assignment period. The partial unique index
// on open periods turns a lost race into a Conflict here even if the
// caller's status check passed.
func (r *assignmentRepository) Open(ctx context.Context, assetID int64, userID, assignedBy string, notes *string) (domain.Assignment, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO asset_assignments (asset_id, user_id, assigned_by, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING `+assignmentColumns,
		assetID, userID, assignedBy, notes,
	)
	assignment, err := scanAssignment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.Assignment{}, domain.ConflictError(
				"asset", strconv.FormatInt(assetID, 10),
				"asset is already assigned to another user",
			)
		}
		return domain.Assignment{}, fmt.Errorf("failed to open assignment: %w", err)
	}
	return assignment, nil
}

// Close stamps the end of a period. A non-nil notes value replaces the
// period's notes; nil preserves them.
func (r *assignmentRepository) Close(ctx context.Context, id int64, unassignedAt time.Time, notes *string) (domain.Assignment, error) {
	row := r.q.QueryRow(ctx, `
		UPDATE asset_assignments
		SET unassigned_at = $2, notes = COALESCE($3, notes)
		WHERE id = $1
		RETURNING `+assignmentColumns,
		id, unassignedAt, notes,
	)
	assignment, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Assignment{}, domain.NotFoundError("assignment", strconv.FormatInt(id, 10))
		}
		return domain.Assignment{}, fmt.Errorf("failed to close assignment: %w", err)
	}
	return assignment, nil
}

// GetOpenByAsset retrieves the open period for an asset
func (r *assignmentRepository) GetOpenByAsset(ctx context.Context, assetID int64) (domain.Assignment, error) {
	row := r.q.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM asset_assignments WHERE asset_id = $1 AND unassigned_at IS NULL`,
		assetID,
	)
	assignment, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Assignment{}, domain.NotFoundError("open assignment for asset", strconv.FormatInt(assetID, 10))
		}
		return domain.Assignment{}, fmt.Errorf("failed to get open assignment: %w", err)
	}
	return assignment, nil
}

// OpenByAssets retrieves the open periods for multiple assets keyed by
// asset id
func (r *assignmentRepository) OpenByAssets(ctx context.Context, assetIDs []int64) (map[int64]domain.Assignment, error) {
	assignments := map[int64]domain.Assignment{}
	if len(assetIDs) == 0 {
		return assignments, nil
	}

	rows, err := r.q.Query(ctx,
		`SELECT `+assignmentColumns+` FROM asset_assignments WHERE asset_id = ANY($1) AND unassigned_at IS NULL`,
		assetIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get open assignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment row: %w", err)
		}
		assignments[assignment.AssetID] = assignment
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read assignment rows: %w", err)
	}
	return assignments, nil
}

// ListByAsset retrieves the full assignment history for an asset
func (r *assignmentRepository) ListByAsset(ctx context.Context, assetID int64) ([]domain.Assignment, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+assignmentColumns+` FROM asset_assignments WHERE asset_id = $1 ORDER BY assigned_at`,
		assetID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments by asset: %w", err)
	}
	return collectAssignments(rows)
}

// ListClosedByUser retrieves a user's closed assignment periods
func (r *assignmentRepository) ListClosedByUser(ctx context.Context, userID string) ([]domain.Assignment, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+assignmentColumns+` FROM asset_assignments WHERE user_id = $1 AND unassigned_at IS NOT NULL ORDER BY assigned_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list closed assignments: %w", err)
	}
	return collectAssignments(rows)
}
