package lifecycle

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rpattn/assettrack/internal/domain"
	"github.com/rpattn/assettrack/internal/repository/memory"
)

const (
	adminID = "admin-1"
	aliceID = "alice-1"
	bobID   = "bob-1"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	service := NewService(store, zap.NewNop())

	ctx := context.Background()
	for _, user := range []domain.User{
		{ID: adminID, Email: "admin@example.com", Name: "Admin", Role: domain.UserRoleAdmin},
		{ID: aliceID, Email: "alice@example.com", Name: "Alice", Role: domain.UserRoleUser},
		{ID: bobID, Email: "bob@example.com", Name: "Bob", Role: domain.UserRoleUser},
	} {
		if _, err := store.Users().Create(ctx, user); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	if _, err := store.AssetModels().Create(ctx, domain.AssetModel{
		Manufacturer: "Dell",
		ModelNumber:  "XPS-13",
		Category:     domain.AssetCategoryLaptops,
	}); err != nil {
		t.Fatalf("seed model: %v", err)
	}
	return service, store
}

func createAsset(t *testing.T, service *Service, tag string) domain.Asset {
	t.Helper()
	asset, err := service.CreateAsset(context.Background(), domain.CreateAssetInput{
		Tag:     tag,
		ModelID: 1,
	}, adminID)
	if err != nil {
		t.Fatalf("create asset %s: %v", tag, err)
	}
	return asset
}

func TestCreateAsset(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	asset := createAsset(t, service, "LAPTOP-001")
	if asset.Status != domain.AssetStatusInStock {
		t.Fatalf("expected status In Stock, got %s", asset.Status)
	}
	if asset.AssignedTo != nil {
		t.Fatalf("expected no assignee on creation")
	}

	entries, total, err := store.Activity().List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if total != 1 || len(entries) != 1 {
		t.Fatalf("expected 1 activity entry, got %d", total)
	}
	if entries[0].Type != domain.ActivityAssetCreated {
		t.Fatalf("expected Asset Created entry, got %s", entries[0].Type)
	}
	if entries[0].UserID != adminID {
		t.Fatalf("expected actor %s, got %s", adminID, entries[0].UserID)
	}
}

func TestCreateAssetDuplicateTag(t *testing.T) {
	service, _ := newTestService(t)

	createAsset(t, service, "LAPTOP-001")
	_, err := service.CreateAsset(context.Background(), domain.CreateAssetInput{
		Tag:     "LAPTOP-001",
		ModelID: 1,
	}, adminID)
	if !domain.IsKind(err, domain.ErrorKindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateAssetUnknownModel(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.CreateAsset(context.Background(), domain.CreateAssetInput{
		Tag:     "LAPTOP-001",
		ModelID: 99,
	}, adminID)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateAssetUnknownActor(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	_, err := service.CreateAsset(ctx, domain.CreateAssetInput{
		Tag:     "LAPTOP-001",
		ModelID: 1,
	}, "ghost")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found for unknown actor, got %v", err)
	}

	// Nothing may land: no asset row and no activity entry carrying an
	// unresolvable user id.
	if _, err := store.Assets().GetByTag(ctx, "LAPTOP-001"); !domain.IsNotFound(err) {
		t.Fatalf("expected no asset created, got %v", err)
	}
	_, total, err := store.Activity().List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected no activity entries, got %d", total)
	}
}

func TestAssignUnassignRoundTrip(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()
	asset := createAsset(t, service, "LAPTOP-001")

	notes := "handed over at desk"
	assignment, err := service.AssignAsset(ctx, asset.ID, aliceID, adminID, &notes)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if !assignment.Open() {
		t.Fatalf("expected open assignment")
	}
	if assignment.AssignedBy != adminID || assignment.UserID != aliceID {
		t.Fatalf("unexpected assignment parties: %+v", assignment)
	}

	got, err := store.Assets().GetByID(ctx, asset.ID)
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if got.Status != domain.AssetStatusAssigned {
		t.Fatalf("expected Assigned, got %s", got.Status)
	}
	if got.AssignedTo == nil || *got.AssignedTo != aliceID {
		t.Fatalf("expected assignee %s, got %v", aliceID, got.AssignedTo)
	}

	closed, err := service.UnassignAsset(ctx, asset.ID, adminID, nil)
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if closed.Open() {
		t.Fatalf("expected closed assignment")
	}
	if closed.Notes == nil || *closed.Notes != notes {
		t.Fatalf("expected original notes preserved, got %v", closed.Notes)
	}

	got, err = store.Assets().GetByID(ctx, asset.ID)
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if got.Status != domain.AssetStatusInStock || got.AssignedTo != nil {
		t.Fatalf("expected In Stock with no assignee, got %s %v", got.Status, got.AssignedTo)
	}

	entries, _, err := store.Activity().List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	// Newest first: unassigned, assigned, created.
	if entries[0].Type != domain.ActivityAssetUnassigned || entries[1].Type != domain.ActivityAssetAssigned {
		t.Fatalf("unexpected activity order: %s, %s", entries[0].Type, entries[1].Type)
	}
}

func TestUnassignReplacesNotesWhenProvided(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	asset := createAsset(t, service, "LAPTOP-001")

	initial := "initial"
	if _, err := service.AssignAsset(ctx, asset.ID, aliceID, adminID, &initial); err != nil {
		t.Fatalf("assign: %v", err)
	}
	override := "returned damaged"
	closed, err := service.UnassignAsset(ctx, asset.ID, adminID, &override)
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if closed.Notes == nil || *closed.Notes != override {
		t.Fatalf("expected notes override, got %v", closed.Notes)
	}
}

func TestAssignRejectsUnavailableAsset(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	asset := createAsset(t, service, "LAPTOP-001")

	if _, err := service.AssignAsset(ctx, asset.ID, aliceID, adminID, nil); err != nil {
		t.Fatalf("assign: %v", err)
	}
	_, err := service.AssignAsset(ctx, asset.ID, bobID, adminID, nil)
	if !domain.IsKind(err, domain.ErrorKindInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestAssignUnknownUser(t *testing.T) {
	service, _ := newTestService(t)
	asset := createAsset(t, service, "LAPTOP-001")

	_, err := service.AssignAsset(context.Background(), asset.ID, "ghost", adminID, nil)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAssignFailureLeavesNoTrace(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()
	asset := createAsset(t, service, "LAPTOP-001")

	if _, err := service.AssignAsset(ctx, asset.ID, "ghost", adminID, nil); err == nil {
		t.Fatalf("expected assign to fail")
	}

	if _, err := store.Assignments().GetOpenByAsset(ctx, asset.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected no open assignment, got %v", err)
	}
	_, total, err := store.Activity().List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected only the creation entry, got %d", total)
	}
}

func TestUnassignRejectsUnassignedAsset(t *testing.T) {
	service, _ := newTestService(t)
	asset := createAsset(t, service, "LAPTOP-001")

	_, err := service.UnassignAsset(context.Background(), asset.ID, adminID, nil)
	if !domain.IsKind(err, domain.ErrorKindInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestConcurrentAssignSingleWinner(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()
	asset := createAsset(t, service, "LAPTOP-001")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, userID := range []string{aliceID, bobID} {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			_, errs[i] = service.AssignAsset(ctx, asset.ID, userID, adminID, nil)
		}(i, userID)
	}
	wg.Wait()

	var succeeded, failed int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			failed++
		}
	}
	if succeeded != 1 || failed != 1 {
		t.Fatalf("expected exactly one winner, got %d winners %d losers (%v)", succeeded, failed, errs)
	}

	open, err := store.Assignments().GetOpenByAsset(ctx, asset.ID)
	if err != nil {
		t.Fatalf("expected one open assignment: %v", err)
	}
	got, err := store.Assets().GetByID(ctx, asset.ID)
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if got.AssignedTo == nil || *got.AssignedTo != open.UserID {
		t.Fatalf("status assignee %v does not match open period holder %s", got.AssignedTo, open.UserID)
	}
}

func TestRetireAsset(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()
	asset := createAsset(t, service, "LAPTOP-001")

	if _, err := service.AssignAsset(ctx, asset.ID, aliceID, adminID, nil); err != nil {
		t.Fatalf("assign: %v", err)
	}

	retired, err := service.RetireAsset(ctx, asset.ID, adminID)
	if err != nil {
		t.Fatalf("retire: %v", err)
	}
	if retired.Status != domain.AssetStatusRetired || retired.AssignedTo != nil {
		t.Fatalf("expected Retired with no assignee, got %s %v", retired.Status, retired.AssignedTo)
	}

	// Retirement clears the status pair but leaves the ledger alone;
	// the period stays open and keeps its own record of the holder.
	open, err := store.Assignments().GetOpenByAsset(ctx, asset.ID)
	if err != nil {
		t.Fatalf("expected open period to survive retirement: %v", err)
	}
	if open.UserID != aliceID {
		t.Fatalf("expected open period holder %s, got %s", aliceID, open.UserID)
	}

	if _, err := service.RetireAsset(ctx, asset.ID, adminID); !domain.IsKind(err, domain.ErrorKindInvalidState) {
		t.Fatalf("expected invalid state on second retire, got %v", err)
	}
	if _, err := service.AssignAsset(ctx, asset.ID, bobID, adminID, nil); !domain.IsKind(err, domain.ErrorKindInvalidState) {
		t.Fatalf("expected invalid state assigning retired asset, got %v", err)
	}
}

func TestDisposeAsset(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()
	asset := createAsset(t, service, "LAPTOP-001")

	disposal, err := service.DisposeAsset(ctx, domain.DisposeAssetInput{
		AssetID:      asset.ID,
		DisposalDate: time.Now(),
		Method:       "Recycled",
	}, adminID)
	if err != nil {
		t.Fatalf("dispose: %v", err)
	}
	if disposal.DisposedBy != adminID {
		t.Fatalf("expected disposer %s, got %s", adminID, disposal.DisposedBy)
	}

	got, err := store.Assets().GetByID(ctx, asset.ID)
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if got.Status != domain.AssetStatusRetired {
		t.Fatalf("expected Retired after disposal, got %s", got.Status)
	}

	_, err = service.DisposeAsset(ctx, domain.DisposeAssetInput{
		AssetID:      asset.ID,
		DisposalDate: time.Now(),
		Method:       "Sold",
	}, adminID)
	if !domain.IsKind(err, domain.ErrorKindConflict) {
		t.Fatalf("expected conflict on second disposal, got %v", err)
	}
}

func TestDisposeRetiredAsset(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	asset := createAsset(t, service, "LAPTOP-001")

	if _, err := service.RetireAsset(ctx, asset.ID, adminID); err != nil {
		t.Fatalf("retire: %v", err)
	}
	if _, err := service.DisposeAsset(ctx, domain.DisposeAssetInput{
		AssetID:      asset.ID,
		DisposalDate: time.Now(),
		Method:       "Recycled",
	}, adminID); err != nil {
		t.Fatalf("expected disposal of retired asset to succeed: %v", err)
	}
}

func TestScheduleMaintenanceLeavesStatusAlone(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()
	asset := createAsset(t, service, "LAPTOP-001")

	if _, err := service.AssignAsset(ctx, asset.ID, aliceID, adminID, nil); err != nil {
		t.Fatalf("assign: %v", err)
	}

	record, err := service.ScheduleMaintenance(ctx, domain.ScheduleMaintenanceInput{
		AssetID:       asset.ID,
		ScheduledDate: time.Now().AddDate(0, 0, 7),
		Description:   "battery swap",
	}, adminID)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if record.Status != domain.MaintenanceStatusScheduled {
		t.Fatalf("expected Scheduled, got %s", record.Status)
	}

	got, err := store.Assets().GetByID(ctx, asset.ID)
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if got.Status != domain.AssetStatusAssigned {
		t.Fatalf("maintenance must not change asset status, got %s", got.Status)
	}
}

func TestScheduleMaintenanceUnknownAsset(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.ScheduleMaintenance(context.Background(), domain.ScheduleMaintenanceInput{
		AssetID:       42,
		ScheduledDate: time.Now(),
		Description:   "ghost work",
	}, adminID)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateMaintenanceOverwritesCompletionFields(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	asset := createAsset(t, service, "LAPTOP-001")

	record, err := service.ScheduleMaintenance(ctx, domain.ScheduleMaintenanceInput{
		AssetID:       asset.ID,
		ScheduledDate: time.Now().AddDate(0, 0, 7),
		Description:   "battery swap",
	}, adminID)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	completed := time.Now()
	tech := "TechCorp"
	updated, err := service.UpdateMaintenance(ctx, domain.UpdateMaintenanceInput{
		ID:            record.ID,
		CompletedDate: &completed,
		PerformedBy:   &tech,
		Status:        domain.MaintenanceStatusCompleted,
	}, adminID)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.MaintenanceStatusCompleted {
		t.Fatalf("expected Completed, got %s", updated.Status)
	}
	if updated.PerformedBy == nil || *updated.PerformedBy != tech {
		t.Fatalf("expected performed_by %s, got %v", tech, updated.PerformedBy)
	}

	// A second update with omitted fields clears them.
	updated, err = service.UpdateMaintenance(ctx, domain.UpdateMaintenanceInput{
		ID:     record.ID,
		Status: domain.MaintenanceStatusInProgress,
	}, adminID)
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if updated.PerformedBy != nil || updated.CompletedDate != nil {
		t.Fatalf("expected completion fields cleared, got %+v", updated)
	}
}

func TestUpdateMaintenanceInvalidStatus(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.UpdateMaintenance(context.Background(), domain.UpdateMaintenanceInput{
		ID:     1,
		Status: "Broken",
	}, adminID)
	if !domain.IsKind(err, domain.ErrorKindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateAssetPartial(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	notes := "original notes"
	asset, err := service.CreateAsset(ctx, domain.CreateAssetInput{
		Tag:     "LAPTOP-001",
		ModelID: 1,
		Notes:   &notes,
	}, adminID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	location := "Warehouse B"
	updated, err := service.UpdateAsset(ctx, domain.UpdateAssetInput{
		ID:       asset.ID,
		Location: domain.PatchValue(location),
		Notes:    domain.PatchNull[string](),
	}, adminID)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Location == nil || *updated.Location != location {
		t.Fatalf("expected location set, got %v", updated.Location)
	}
	if updated.Notes != nil {
		t.Fatalf("expected notes cleared, got %v", updated.Notes)
	}
	if updated.Tag != asset.Tag {
		t.Fatalf("untouched fields must survive, tag became %s", updated.Tag)
	}

	entries, _, err := store.Activity().List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if entries[0].Type != domain.ActivityAssetUpdated {
		t.Fatalf("expected Asset Updated entry, got %s", entries[0].Type)
	}
}

func TestUpdateAssetTagConflict(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	first := createAsset(t, service, "LAPTOP-001")
	createAsset(t, service, "LAPTOP-002")

	taken := "LAPTOP-002"
	_, err := service.UpdateAsset(ctx, domain.UpdateAssetInput{ID: first.ID, Tag: &taken}, adminID)
	if !domain.IsKind(err, domain.ErrorKindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Renaming to its own tag is not a conflict.
	same := "LAPTOP-001"
	if _, err := service.UpdateAsset(ctx, domain.UpdateAssetInput{ID: first.ID, Tag: &same}, adminID); err != nil {
		t.Fatalf("self-rename: %v", err)
	}
}

func TestUpdateAssetEmptyStillStamps(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()
	asset := createAsset(t, service, "LAPTOP-001")

	if _, err := service.UpdateAsset(ctx, domain.UpdateAssetInput{ID: asset.ID}, adminID); err != nil {
		t.Fatalf("empty update: %v", err)
	}

	_, total, err := store.Activity().List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected update entry even for empty input, got %d entries", total)
	}
}

func TestCreateUserDefaultsRole(t *testing.T) {
	service, _ := newTestService(t)

	user, err := service.CreateUser(context.Background(), domain.CreateUserInput{
		Email: "carol@example.com",
		Name:  "Carol",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected generated id")
	}
	if user.Role != domain.UserRoleUser {
		t.Fatalf("expected default role User, got %s", user.Role)
	}
}

func TestCreateAssetModelValidation(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.CreateAssetModel(ctx, domain.CreateAssetModelInput{
		Manufacturer: "Dell",
	}, adminID)
	if !domain.IsKind(err, domain.ErrorKindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = service.CreateAssetModel(ctx, domain.CreateAssetModelInput{
		Manufacturer: "Dell",
		ModelNumber:  "U2720Q",
		Category:     "Desks",
	}, adminID)
	if !domain.IsKind(err, domain.ErrorKindValidation) {
		t.Fatalf("expected validation error for category, got %v", err)
	}
}
