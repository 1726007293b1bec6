package memory

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/rpattn/assettrack/internal/domain"
)

type maintenanceStore struct {
	s *Store
}

func (r *maintenanceStore) Create(ctx context.Context, record domain.MaintenanceRecord) (domain.MaintenanceRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextMaintenanceID++
	record.ID = r.s.nextMaintenanceID
	now := r.s.now()
	record.CreatedAt = now
	record.UpdatedAt = now
	r.s.maintenance[record.ID] = record
	return record, nil
}

func (r *maintenanceStore) GetByID(ctx context.Context, id int64) (domain.MaintenanceRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	record, ok := r.s.maintenance[id]
	if !ok {
		return domain.MaintenanceRecord{}, domain.NotFoundError("maintenance record", strconv.FormatInt(id, 10))
	}
	return record, nil
}

func (r *maintenanceStore) UpdateCompletion(ctx context.Context, input domain.UpdateMaintenanceInput) (domain.MaintenanceRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	record, ok := r.s.maintenance[input.ID]
	if !ok {
		return domain.MaintenanceRecord{}, domain.NotFoundError("maintenance record", strconv.FormatInt(input.ID, 10))
	}
	record.CompletedDate = input.CompletedDate
	record.PerformedBy = input.PerformedBy
	record.Cost = input.Cost
	record.Status = input.Status
	record.Notes = input.Notes
	record.UpdatedAt = r.s.now()
	r.s.maintenance[record.ID] = record
	return record, nil
}

func (r *maintenanceStore) List(ctx context.Context) ([]domain.MaintenanceRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sortedLocked(func(domain.MaintenanceRecord) bool { return true }), nil
}

func (r *maintenanceStore) ListByAsset(ctx context.Context, assetID int64) ([]domain.MaintenanceRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sortedLocked(func(m domain.MaintenanceRecord) bool { return m.AssetID == assetID }), nil
}

func (r *maintenanceStore) ListByAssets(ctx context.Context, assetIDs []int64) (map[int64][]domain.MaintenanceRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := map[int64]bool{}
	for _, id := range assetIDs {
		wanted[id] = true
	}
	grouped := map[int64][]domain.MaintenanceRecord{}
	for _, record := range r.sortedLocked(func(m domain.MaintenanceRecord) bool { return wanted[m.AssetID] }) {
		grouped[record.AssetID] = append(grouped[record.AssetID], record)
	}
	return grouped, nil
}

func (r *maintenanceStore) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]domain.MaintenanceRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	records := r.sortedLocked(func(m domain.MaintenanceRecord) bool {
		return m.Status == domain.MaintenanceStatusScheduled &&
			!m.ScheduledDate.Before(from) && !m.ScheduledDate.After(to)
	})
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ScheduledDate.Before(records[j].ScheduledDate)
	})
	return records, nil
}

func (r *maintenanceStore) sortedLocked(keep func(domain.MaintenanceRecord) bool) []domain.MaintenanceRecord {
	records := []domain.MaintenanceRecord{}
	for _, record := range r.s.maintenance {
		if keep(record) {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records
}
