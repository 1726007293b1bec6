package memory

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/rpattn/assettrack/internal/domain"
)

type assignmentStore struct {
	s *Store
}

func (r *assignmentStore) Open(ctx context.Context, assetID int64, userID, assignedBy string, notes *string) (domain.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// Mirrors the partial unique index on open periods.
	for _, existing := range r.s.assignments {
		if existing.AssetID == assetID && existing.Open() {
			return domain.Assignment{}, domain.ConflictError(
				"asset", strconv.FormatInt(assetID, 10),
				"asset is already assigned to another user",
			)
		}
	}

	r.s.nextAssignmentID++
	assignment := domain.Assignment{
		ID:         r.s.nextAssignmentID,
		AssetID:    assetID,
		UserID:     userID,
		AssignedBy: assignedBy,
		AssignedAt: r.s.now(),
		Notes:      notes,
	}
	r.s.assignments[assignment.ID] = assignment
	return assignment, nil
}

func (r *assignmentStore) Close(ctx context.Context, id int64, unassignedAt time.Time, notes *string) (domain.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	assignment, ok := r.s.assignments[id]
	if !ok {
		return domain.Assignment{}, domain.NotFoundError("assignment", strconv.FormatInt(id, 10))
	}
	assignment.UnassignedAt = &unassignedAt
	if notes != nil {
		assignment.Notes = notes
	}
	r.s.assignments[id] = assignment
	return assignment, nil
}

func (r *assignmentStore) GetOpenByAsset(ctx context.Context, assetID int64) (domain.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, assignment := range r.s.assignments {
		if assignment.AssetID == assetID && assignment.Open() {
			return assignment, nil
		}
	}
	return domain.Assignment{}, domain.NotFoundError("open assignment for asset", strconv.FormatInt(assetID, 10))
}

func (r *assignmentStore) OpenByAssets(ctx context.Context, assetIDs []int64) (map[int64]domain.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := map[int64]bool{}
	for _, id := range assetIDs {
		wanted[id] = true
	}
	open := map[int64]domain.Assignment{}
	for _, assignment := range r.s.assignments {
		if wanted[assignment.AssetID] && assignment.Open() {
			open[assignment.AssetID] = assignment
		}
	}
	return open, nil
}

func (r *assignmentStore) ListByAsset(ctx context.Context, assetID int64) ([]domain.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sortedLocked(func(a domain.Assignment) bool { return a.AssetID == assetID }), nil
}

func (r *assignmentStore) ListClosedByUser(ctx context.Context, userID string) ([]domain.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sortedLocked(func(a domain.Assignment) bool {
		return a.UserID == userID && !a.Open()
	}), nil
}

func (r *assignmentStore) sortedLocked(keep func(domain.Assignment) bool) []domain.Assignment {
	assignments := []domain.Assignment{}
	for _, assignment := range r.s.assignments {
		if keep(assignment) {
			assignments = append(assignments, assignment)
		}
	}
	sort.Slice(assignments, func(i, j int) bool {
		if assignments[i].AssignedAt.Equal(assignments[j].AssignedAt) {
			return assignments[i].ID < assignments[j].ID
		}
		return assignments[i].AssignedAt.Before(assignments[j].AssignedAt)
	})
	return assignments
}
