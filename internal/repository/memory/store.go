// Package memory provides an in-memory Store implementation for tests.
// It mirrors the behavior of the Postgres store, including the unique
// open-assignment constraint and transactional rollback.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rpattn/assettrack/internal/domain"
	"github.com/rpattn/assettrack/internal/repository"
)

// Store holds all tables in maps guarded by a single mutex. Repository
// methods always replace whole values, never mutate through shared
// pointers, so a shallow map copy is a valid transaction snapshot.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	assets      map[int64]domain.Asset
	models      map[int64]domain.AssetModel
	users       map[string]domain.User
	assignments map[int64]domain.Assignment
	maintenance map[int64]domain.MaintenanceRecord
	disposals   map[int64]domain.Disposal // keyed by asset id
	activity    []domain.ActivityLogEntry

	nextAssetID       int64
	nextModelID       int64
	nextAssignmentID  int64
	nextMaintenanceID int64
	nextDisposalID    int64
	nextActivityID    int64

	now func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		assets:      map[int64]domain.Asset{},
		models:      map[int64]domain.AssetModel{},
		users:       map[string]domain.User{},
		assignments: map[int64]domain.Assignment{},
		maintenance: map[int64]domain.MaintenanceRecord{},
		disposals:   map[int64]domain.Disposal{},
		now:         time.Now,
	}
}

// SetClock overrides the timestamp source for deterministic tests.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

func (s *Store) Assets() repository.AssetRepository           { return &assetStore{s} }
func (s *Store) AssetModels() repository.AssetModelRepository { return &modelStore{s} }
func (s *Store) Users() repository.UserRepository             { return &userStore{s} }
func (s *Store) Assignments() repository.AssignmentRepository { return &assignmentStore{s} }
func (s *Store) Maintenance() repository.MaintenanceRepository {
	return &maintenanceStore{s}
}
func (s *Store) Disposals() repository.DisposalRepository { return &disposalStore{s} }
func (s *Store) Activity() repository.ActivityRepository  { return &activityStore{s} }

// WithinTx runs fn with all other transactions excluded and restores a
// snapshot of every table if fn fails, so partial writes never leak.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := s.snapshot()
	s.mu.Unlock()

	if err := fn(&txStore{root: s}); err != nil {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
		return err
	}
	return nil
}

// txStore is the store handed to WithinTx callbacks. A nested
// WithinTx joins the enclosing transaction.
type txStore struct {
	root *Store
}

func (t *txStore) Assets() repository.AssetRepository           { return t.root.Assets() }
func (t *txStore) AssetModels() repository.AssetModelRepository { return t.root.AssetModels() }
func (t *txStore) Users() repository.UserRepository             { return t.root.Users() }
func (t *txStore) Assignments() repository.AssignmentRepository { return t.root.Assignments() }
func (t *txStore) Maintenance() repository.MaintenanceRepository {
	return t.root.Maintenance()
}
func (t *txStore) Disposals() repository.DisposalRepository { return t.root.Disposals() }
func (t *txStore) Activity() repository.ActivityRepository  { return t.root.Activity() }

func (t *txStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(t)
}

type snapshotState struct {
	assets      map[int64]domain.Asset
	models      map[int64]domain.AssetModel
	users       map[string]domain.User
	assignments map[int64]domain.Assignment
	maintenance map[int64]domain.MaintenanceRecord
	disposals   map[int64]domain.Disposal
	activity    []domain.ActivityLogEntry

	nextAssetID       int64
	nextModelID       int64
	nextAssignmentID  int64
	nextMaintenanceID int64
	nextDisposalID    int64
	nextActivityID    int64
}

func (s *Store) snapshot() snapshotState {
	return snapshotState{
		assets:            copyMap(s.assets),
		models:            copyMap(s.models),
		users:             copyMap(s.users),
		assignments:       copyMap(s.assignments),
		maintenance:       copyMap(s.maintenance),
		disposals:         copyMap(s.disposals),
		activity:          append([]domain.ActivityLogEntry(nil), s.activity...),
		nextAssetID:       s.nextAssetID,
		nextModelID:       s.nextModelID,
		nextAssignmentID:  s.nextAssignmentID,
		nextMaintenanceID: s.nextMaintenanceID,
		nextDisposalID:    s.nextDisposalID,
		nextActivityID:    s.nextActivityID,
	}
}

func (s *Store) restore(snap snapshotState) {
	s.assets = snap.assets
	s.models = snap.models
	s.users = snap.users
	s.assignments = snap.assignments
	s.maintenance = snap.maintenance
	s.disposals = snap.disposals
	s.activity = snap.activity
	s.nextAssetID = snap.nextAssetID
	s.nextModelID = snap.nextModelID
	s.nextAssignmentID = snap.nextAssignmentID
	s.nextMaintenanceID = snap.nextMaintenanceID
	s.nextDisposalID = snap.nextDisposalID
	s.nextActivityID = snap.nextActivityID
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
