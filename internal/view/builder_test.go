package view

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rpattn/assettrack/internal/domain"
	"github.com/rpattn/assettrack/internal/lifecycle"
	"github.com/rpattn/assettrack/internal/repository/memory"
)

const (
	adminID = "admin-1"
	aliceID = "alice-1"
)

type fixture struct {
	store     *memory.Store
	lifecycle *lifecycle.Service
	builder   *Builder
	laptopID  int64
	monitorID int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	for _, user := range []domain.User{
		{ID: adminID, Email: "admin@example.com", Name: "Admin", Role: domain.UserRoleAdmin},
		{ID: aliceID, Email: "alice@example.com", Name: "Alice", Role: domain.UserRoleUser},
	} {
		if _, err := store.Users().Create(ctx, user); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	laptop, err := store.AssetModels().Create(ctx, domain.AssetModel{
		Manufacturer: "Dell",
		ModelNumber:  "XPS-13",
		Category:     domain.AssetCategoryLaptops,
	})
	if err != nil {
		t.Fatalf("seed laptop model: %v", err)
	}
	monitor, err := store.AssetModels().Create(ctx, domain.AssetModel{
		Manufacturer: "LG",
		ModelNumber:  "27UK850",
		Category:     domain.AssetCategoryMonitors,
	})
	if err != nil {
		t.Fatalf("seed monitor model: %v", err)
	}

	return &fixture{
		store:     store,
		lifecycle: lifecycle.NewService(store, zap.NewNop()),
		builder:   NewBuilder(store, zap.NewNop()),
		laptopID:  laptop.ID,
		monitorID: monitor.ID,
	}
}

func (f *fixture) createAsset(t *testing.T, tag string, modelID int64, warranty *time.Time) domain.Asset {
	t.Helper()
	asset, err := f.lifecycle.CreateAsset(context.Background(), domain.CreateAssetInput{
		Tag:            tag,
		ModelID:        modelID,
		WarrantyExpiry: warranty,
	}, adminID)
	if err != nil {
		t.Fatalf("create asset %s: %v", tag, err)
	}
	return asset
}

func TestGetAssetWithRelationsMissingAsset(t *testing.T) {
	f := newFixture(t)

	got, err := f.builder.GetAssetWithRelations(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil view for missing asset, got %+v", got)
	}
}

func TestGetAssetWithRelationsHydrated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asset := f.createAsset(t, "LAPTOP-001", f.laptopID, nil)

	if _, err := f.lifecycle.AssignAsset(ctx, asset.ID, aliceID, adminID, nil); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := f.lifecycle.ScheduleMaintenance(ctx, domain.ScheduleMaintenanceInput{
		AssetID:       asset.ID,
		ScheduledDate: time.Now().AddDate(0, 0, 7),
		Description:   "battery swap",
	}, adminID); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	view, err := f.builder.GetAssetWithRelations(ctx, asset.ID)
	if err != nil {
		t.Fatalf("get view: %v", err)
	}
	if view == nil {
		t.Fatalf("expected view")
	}
	if view.Model.ModelNumber != "XPS-13" {
		t.Fatalf("expected model hydrated, got %+v", view.Model)
	}
	if view.AssignedUser == nil || view.AssignedUser.ID != aliceID {
		t.Fatalf("expected assigned user hydrated, got %+v", view.AssignedUser)
	}
	if view.CurrentAssignment == nil || view.CurrentAssignment.UserID != aliceID {
		t.Fatalf("expected current assignment hydrated, got %+v", view.CurrentAssignment)
	}
	if len(view.MaintenanceRecords) != 1 {
		t.Fatalf("expected 1 maintenance record, got %d", len(view.MaintenanceRecords))
	}
	if view.Disposal != nil {
		t.Fatalf("expected no disposal, got %+v", view.Disposal)
	}
}

func TestGetAssetWithRelationsDisposal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asset := f.createAsset(t, "LAPTOP-001", f.laptopID, nil)

	if _, err := f.lifecycle.DisposeAsset(ctx, domain.DisposeAssetInput{
		AssetID:      asset.ID,
		DisposalDate: time.Now(),
		Method:       "Recycled",
	}, adminID); err != nil {
		t.Fatalf("dispose: %v", err)
	}

	view, err := f.builder.GetAssetWithRelations(ctx, asset.ID)
	if err != nil {
		t.Fatalf("get view: %v", err)
	}
	if view.Disposal == nil || view.Disposal.Method != "Recycled" {
		t.Fatalf("expected disposal hydrated, got %+v", view.Disposal)
	}
	if view.Status != domain.AssetStatusRetired {
		t.Fatalf("expected Retired, got %s", view.Status)
	}
}

func TestGetUserAssets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.createAsset(t, "LAPTOP-001", f.laptopID, nil)
	second := f.createAsset(t, "MONITOR-001", f.monitorID, nil)

	// A closed period on the first asset, then a live one on the second.
	if _, err := f.lifecycle.AssignAsset(ctx, first.ID, aliceID, adminID, nil); err != nil {
		t.Fatalf("assign first: %v", err)
	}
	if _, err := f.lifecycle.UnassignAsset(ctx, first.ID, adminID, nil); err != nil {
		t.Fatalf("unassign first: %v", err)
	}
	if _, err := f.lifecycle.AssignAsset(ctx, second.ID, aliceID, adminID, nil); err != nil {
		t.Fatalf("assign second: %v", err)
	}

	got, err := f.builder.GetUserAssets(ctx, aliceID)
	if err != nil {
		t.Fatalf("get user assets: %v", err)
	}
	if got.User.ID != aliceID {
		t.Fatalf("expected user %s, got %s", aliceID, got.User.ID)
	}
	if len(got.CurrentAssets) != 1 || got.CurrentAssets[0].Tag != "MONITOR-001" {
		t.Fatalf("expected current asset MONITOR-001, got %+v", got.CurrentAssets)
	}
	if len(got.PastAssignments) != 1 {
		t.Fatalf("expected 1 past assignment, got %d", len(got.PastAssignments))
	}
	past := got.PastAssignments[0]
	if past.Asset.Tag != "LAPTOP-001" {
		t.Fatalf("expected past asset LAPTOP-001, got %s", past.Asset.Tag)
	}
	if past.Asset.CurrentAssignment != nil || past.Asset.AssignedUser != nil {
		t.Fatalf("past view must not carry a current assignment, got %+v", past.Asset)
	}
}

func TestGetUserAssetsUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.builder.GetUserAssets(context.Background(), "ghost")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSearchAssetsFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	laptop := f.createAsset(t, "LAPTOP-001", f.laptopID, nil)
	f.createAsset(t, "LAPTOP-002", f.laptopID, nil)
	f.createAsset(t, "MONITOR-001", f.monitorID, nil)

	if _, err := f.lifecycle.AssignAsset(ctx, laptop.ID, aliceID, adminID, nil); err != nil {
		t.Fatalf("assign: %v", err)
	}

	category := domain.AssetCategoryLaptops
	views, total, err := f.builder.SearchAssets(ctx, domain.AssetFilter{Category: &category}, 0, 0)
	if err != nil {
		t.Fatalf("search by category: %v", err)
	}
	if total != 2 || len(views) != 2 {
		t.Fatalf("expected 2 laptops, got %d", total)
	}

	status := domain.AssetStatusAssigned
	views, total, err = f.builder.SearchAssets(ctx, domain.AssetFilter{Category: &category, Status: &status}, 0, 0)
	if err != nil {
		t.Fatalf("search by category+status: %v", err)
	}
	if total != 1 || views[0].Tag != "LAPTOP-001" {
		t.Fatalf("expected the assigned laptop, got %+v", views)
	}

	views, total, err = f.builder.SearchAssets(ctx, domain.AssetFilter{Search: "monitor"}, 0, 0)
	if err != nil {
		t.Fatalf("search by tag substring: %v", err)
	}
	if total != 1 || views[0].Tag != "MONITOR-001" {
		t.Fatalf("expected tag substring match, got %+v", views)
	}

	views, total, err = f.builder.SearchAssets(ctx, domain.AssetFilter{Manufacturer: "lg"}, 0, 0)
	if err != nil {
		t.Fatalf("search by manufacturer: %v", err)
	}
	if total != 1 || views[0].Model.Manufacturer != "LG" {
		t.Fatalf("expected case-insensitive manufacturer match, got %+v", views)
	}
}

func TestSearchAssetsPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tags := []string{"LAPTOP-001", "LAPTOP-002", "LAPTOP-003", "LAPTOP-004", "LAPTOP-005"}
	for _, tag := range tags {
		f.createAsset(t, tag, f.laptopID, nil)
	}

	seen := map[string]bool{}
	for offset := 0; offset < len(tags); offset += 2 {
		views, total, err := f.builder.SearchAssets(ctx, domain.AssetFilter{}, 2, offset)
		if err != nil {
			t.Fatalf("page at offset %d: %v", offset, err)
		}
		if total != len(tags) {
			t.Fatalf("expected total %d, got %d", len(tags), total)
		}
		for _, v := range views {
			if seen[v.Tag] {
				t.Fatalf("tag %s appeared on two pages", v.Tag)
			}
			seen[v.Tag] = true
		}
	}
	if len(seen) != len(tags) {
		t.Fatalf("pages did not cover all assets: %v", seen)
	}
}

func TestGetExpiringWarranties(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	soon := time.Now().AddDate(0, 0, 10)
	later := time.Now().AddDate(0, 0, 60)
	sooner := time.Now().AddDate(0, 0, 3)

	f.createAsset(t, "LAPTOP-001", f.laptopID, &soon)
	f.createAsset(t, "LAPTOP-002", f.laptopID, &later)
	f.createAsset(t, "LAPTOP-003", f.laptopID, nil)
	disposed := f.createAsset(t, "LAPTOP-004", f.laptopID, &sooner)
	f.createAsset(t, "LAPTOP-005", f.laptopID, &sooner)

	if _, err := f.lifecycle.DisposeAsset(ctx, domain.DisposeAssetInput{
		AssetID:      disposed.ID,
		DisposalDate: time.Now(),
		Method:       "Recycled",
	}, adminID); err != nil {
		t.Fatalf("dispose: %v", err)
	}

	views, err := f.builder.GetExpiringWarranties(ctx, 30)
	if err != nil {
		t.Fatalf("expiring warranties: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 assets in window, got %d", len(views))
	}
	if views[0].Tag != "LAPTOP-005" || views[1].Tag != "LAPTOP-001" {
		t.Fatalf("expected soonest-first order, got %s then %s", views[0].Tag, views[1].Tag)
	}

	views, err = f.builder.GetExpiringWarranties(ctx, 90)
	if err != nil {
		t.Fatalf("expiring warranties wide window: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 assets in 90 day window, got %d", len(views))
	}
}

func TestGetUpcomingMaintenance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asset := f.createAsset(t, "LAPTOP-001", f.laptopID, nil)

	within, err := f.lifecycle.ScheduleMaintenance(ctx, domain.ScheduleMaintenanceInput{
		AssetID:       asset.ID,
		ScheduledDate: time.Now().AddDate(0, 0, 7),
		Description:   "battery swap",
	}, adminID)
	if err != nil {
		t.Fatalf("schedule within: %v", err)
	}
	if _, err := f.lifecycle.ScheduleMaintenance(ctx, domain.ScheduleMaintenanceInput{
		AssetID:       asset.ID,
		ScheduledDate: time.Now().AddDate(0, 0, 45),
		Description:   "screen replacement",
	}, adminID); err != nil {
		t.Fatalf("schedule beyond: %v", err)
	}
	completed, err := f.lifecycle.ScheduleMaintenance(ctx, domain.ScheduleMaintenanceInput{
		AssetID:       asset.ID,
		ScheduledDate: time.Now().AddDate(0, 0, 5),
		Description:   "keyboard fix",
	}, adminID)
	if err != nil {
		t.Fatalf("schedule completed: %v", err)
	}
	if _, err := f.lifecycle.UpdateMaintenance(ctx, domain.UpdateMaintenanceInput{
		ID:     completed.ID,
		Status: domain.MaintenanceStatusCompleted,
	}, adminID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	records, err := f.builder.GetUpcomingMaintenance(ctx, 30)
	if err != nil {
		t.Fatalf("upcoming maintenance: %v", err)
	}
	if len(records) != 1 || records[0].ID != within.ID {
		t.Fatalf("expected only the scheduled record inside the window, got %+v", records)
	}
}

func TestActivityLogPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.createAsset(t, "LAPTOP-001", f.laptopID, nil)
	f.createAsset(t, "LAPTOP-002", f.laptopID, nil)
	f.createAsset(t, "LAPTOP-003", f.laptopID, nil)

	entries, total, err := f.builder.ActivityLog(ctx, 2, 0)
	if err != nil {
		t.Fatalf("activity page: %v", err)
	}
	if total != 3 || len(entries) != 2 {
		t.Fatalf("expected total 3 page 2, got total %d page %d", total, len(entries))
	}
	// Newest first.
	if entries[0].Description != "Asset LAPTOP-003 created" {
		t.Fatalf("expected newest entry first, got %s", entries[0].Description)
	}

	rest, _, err := f.builder.ActivityLog(ctx, 2, 2)
	if err != nil {
		t.Fatalf("activity second page: %v", err)
	}
	if len(rest) != 1 || rest[0].Description != "Asset LAPTOP-001 created" {
		t.Fatalf("expected oldest entry last, got %+v", rest)
	}
}
