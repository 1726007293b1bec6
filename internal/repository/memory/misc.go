package memory

import (
	"context"
	"sort"
	"strconv"

	"github.com/rpattn/assettrack/internal/domain"
)

type modelStore struct {
	s *Store
}

func (r *modelStore) Create(ctx context.Context, model domain.AssetModel) (domain.AssetModel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextModelID++
	model.ID = r.s.nextModelID
	now := r.s.now()
	model.CreatedAt = now
	model.UpdatedAt = now
	r.s.models[model.ID] = model
	return model, nil
}

func (r *modelStore) GetByID(ctx context.Context, id int64) (domain.AssetModel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	model, ok := r.s.models[id]
	if !ok {
		return domain.AssetModel{}, domain.NotFoundError("asset model", strconv.FormatInt(id, 10))
	}
	return model, nil
}

func (r *modelStore) GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.AssetModel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	models := map[int64]domain.AssetModel{}
	for _, id := range ids {
		if model, ok := r.s.models[id]; ok {
			models[id] = model
		}
	}
	return models, nil
}

func (r *modelStore) List(ctx context.Context) ([]domain.AssetModel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	models := []domain.AssetModel{}
	for _, model := range r.s.models {
		models = append(models, model)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

type userStore struct {
	s *Store
}

func (r *userStore) Create(ctx context.Context, user domain.User) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = user
	return user, nil
}

func (r *userStore) GetByID(ctx context.Context, id string) (domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return domain.User{}, domain.NotFoundError("user", id)
	}
	return user, nil
}

func (r *userStore) GetByIDs(ctx context.Context, ids []string) (map[string]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	users := map[string]domain.User{}
	for _, id := range ids {
		if user, ok := r.s.users[id]; ok {
			users[id] = user
		}
	}
	return users, nil
}

func (r *userStore) List(ctx context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	users := []domain.User{}
	for _, user := range r.s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

type disposalStore struct {
	s *Store
}

func (r *disposalStore) Create(ctx context.Context, disposal domain.Disposal) (domain.Disposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.disposals[disposal.AssetID]; exists {
		return domain.Disposal{}, domain.ConflictError(
			"asset", strconv.FormatInt(disposal.AssetID, 10),
			"asset already has a disposal record",
		)
	}
	r.s.nextDisposalID++
	disposal.ID = r.s.nextDisposalID
	disposal.CreatedAt = r.s.now()
	r.s.disposals[disposal.AssetID] = disposal
	return disposal, nil
}

func (r *disposalStore) GetByAsset(ctx context.Context, assetID int64) (domain.Disposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	disposal, ok := r.s.disposals[assetID]
	if !ok {
		return domain.Disposal{}, domain.NotFoundError("disposal for asset", strconv.FormatInt(assetID, 10))
	}
	return disposal, nil
}

func (r *disposalStore) GetByAssets(ctx context.Context, assetIDs []int64) (map[int64]domain.Disposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	disposals := map[int64]domain.Disposal{}
	for _, id := range assetIDs {
		if disposal, ok := r.s.disposals[id]; ok {
			disposals[id] = disposal
		}
	}
	return disposals, nil
}

func (r *disposalStore) ExistsByAsset(ctx context.Context, assetID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.disposals[assetID]
	return ok, nil
}

type activityStore struct {
	s *Store
}

func (r *activityStore) Append(ctx context.Context, entry domain.ActivityLogEntry) (domain.ActivityLogEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextActivityID++
	entry.ID = r.s.nextActivityID
	entry.CreatedAt = r.s.now()
	r.s.activity = append(r.s.activity, entry)
	return entry, nil
}

func (r *activityStore) List(ctx context.Context, limit, offset int) ([]domain.ActivityLogEntry, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	total := len(r.s.activity)
	// Newest first.
	reversed := make([]domain.ActivityLogEntry, 0, total)
	for i := total - 1; i >= 0; i-- {
		reversed = append(reversed, r.s.activity[i])
	}
	if offset >= total {
		return []domain.ActivityLogEntry{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return reversed[offset:end], total, nil
}
