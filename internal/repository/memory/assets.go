package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rpattn/assettrack/internal/domain"
)

type assetStore struct {
	s *Store
}

func (r *assetStore) Create(ctx context.Context, asset domain.Asset) (domain.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextAssetID++
	asset.ID = r.s.nextAssetID
	now := r.s.now()
	asset.CreatedAt = now
	asset.UpdatedAt = now
	r.s.assets[asset.ID] = asset
	return asset, nil
}

func (r *assetStore) GetByID(ctx context.Context, id int64) (domain.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	asset, ok := r.s.assets[id]
	if !ok {
		return domain.Asset{}, domain.NotFoundError("asset", strconv.FormatInt(id, 10))
	}
	return asset, nil
}

func (r *assetStore) GetByIDForUpdate(ctx context.Context, id int64) (domain.Asset, error) {
	// Transactions are fully serialized here, so a plain read suffices.
	return r.GetByID(ctx, id)
}

func (r *assetStore) GetByTag(ctx context.Context, tag string) (domain.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, asset := range r.s.assets {
		if asset.Tag == tag {
			return asset, nil
		}
	}
	return domain.Asset{}, domain.NotFoundError("asset", tag)
}

func (r *assetStore) TagExists(ctx context.Context, tag string, excludeID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, asset := range r.s.assets {
		if asset.Tag == tag && asset.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *assetStore) Update(ctx context.Context, asset domain.Asset) (domain.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.assets[asset.ID]
	if !ok {
		return domain.Asset{}, domain.NotFoundError("asset", strconv.FormatInt(asset.ID, 10))
	}
	asset.CreatedAt = current.CreatedAt
	asset.UpdatedAt = r.s.now()
	r.s.assets[asset.ID] = asset
	return asset, nil
}

func (r *assetStore) SetAssignmentState(ctx context.Context, id int64, status domain.AssetStatus, assignedTo *string) (domain.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	asset, ok := r.s.assets[id]
	if !ok {
		return domain.Asset{}, domain.NotFoundError("asset", strconv.FormatInt(id, 10))
	}
	asset.Status = status
	asset.AssignedTo = assignedTo
	asset.UpdatedAt = r.s.now()
	r.s.assets[id] = asset
	return asset, nil
}

func (r *assetStore) List(ctx context.Context) ([]domain.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sortedLocked(func(domain.Asset) bool { return true }), nil
}

func (r *assetStore) ListByAssignee(ctx context.Context, userID string) ([]domain.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sortedLocked(func(a domain.Asset) bool {
		return a.AssignedTo != nil && *a.AssignedTo == userID
	}), nil
}

func (r *assetStore) Search(ctx context.Context, filter domain.AssetFilter, limit, offset int) ([]domain.Asset, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	match := func(a domain.Asset) bool {
		model := r.s.models[a.ModelID]
		if filter.Category != nil && model.Category != *filter.Category {
			return false
		}
		if filter.Status != nil && a.Status != *filter.Status {
			return false
		}
		if filter.Manufacturer != "" && !containsFold(model.Manufacturer, filter.Manufacturer) {
			return false
		}
		if filter.ModelNumber != "" && !containsFold(model.ModelNumber, filter.ModelNumber) {
			return false
		}
		if filter.AssignedTo != nil && (a.AssignedTo == nil || *a.AssignedTo != *filter.AssignedTo) {
			return false
		}
		if filter.Search != "" && !containsFold(a.Tag, filter.Search) {
			return false
		}
		return true
	}
	if filter.Empty() {
		match = func(domain.Asset) bool { return true }
	}
	matched := r.sortedLocked(match)

	total := len(matched)
	if limit <= 0 {
		return matched, total, nil
	}
	if offset >= total {
		return []domain.Asset{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *assetStore) ListExpiringWarranties(ctx context.Context, cutoff time.Time) ([]domain.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	assets := r.sortedLocked(func(a domain.Asset) bool {
		if a.WarrantyExpiry == nil || a.WarrantyExpiry.After(cutoff) {
			return false
		}
		_, disposed := r.s.disposals[a.ID]
		return !disposed
	})
	sort.SliceStable(assets, func(i, j int) bool {
		return assets[i].WarrantyExpiry.Before(*assets[j].WarrantyExpiry)
	})
	return assets, nil
}

func (r *assetStore) sortedLocked(keep func(domain.Asset) bool) []domain.Asset {
	assets := []domain.Asset{}
	for _, asset := range r.s.assets {
		if keep(asset) {
			assets = append(assets, asset)
		}
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].ID < assets[j].ID })
	return assets
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
