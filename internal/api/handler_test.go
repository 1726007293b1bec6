package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/rpattn/assettrack/internal/auth"
	"github.com/rpattn/assettrack/internal/domain"
	"github.com/rpattn/assettrack/internal/lifecycle"
	"github.com/rpattn/assettrack/internal/repository/memory"
	"github.com/rpattn/assettrack/internal/view"
)

const (
	adminID = "admin-1"
	aliceID = "alice-1"
)

func newTestServer(t *testing.T) (http.Handler, *memory.Store) {
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
	if _, err := store.AssetModels().Create(ctx, domain.AssetModel{
		Manufacturer: "Dell",
		ModelNumber:  "XPS-13",
		Category:     domain.AssetCategoryLaptops,
	}); err != nil {
		t.Fatalf("seed model: %v", err)
	}

	logger := zap.NewNop()
	handler := NewHandler(
		lifecycle.NewService(store, logger),
		view.NewBuilder(store, logger),
		store,
		logger,
	)
	mux := http.NewServeMux()
	handler.Register(mux)
	return auth.Middleware(mux), store
}

func doRequest(t *testing.T, h http.Handler, method, path, body string, asUser string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if asUser != "" {
		req.Header.Set("X-User-ID", asUser)
		req.Header.Set("X-User-Role", "Admin")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateAssetEndpoint(t *testing.T) {
	h, _ := newTestServer(t)

	rec := doRequest(t, h, http.MethodPost, "/api/assets",
		`{"asset_id":"LAPTOP-001","model_id":1,"purchase_date":"2024-01-15"}`, adminID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var asset domain.Asset
	if err := json.Unmarshal(rec.Body.Bytes(), &asset); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if asset.Tag != "LAPTOP-001" || asset.Status != domain.AssetStatusInStock {
		t.Fatalf("unexpected asset: %+v", asset)
	}
	if asset.PurchaseDate == nil {
		t.Fatalf("expected plain date accepted")
	}
}

func TestCreateAssetRequiresIdentity(t *testing.T) {
	h, _ := newTestServer(t)

	rec := doRequest(t, h, http.MethodPost, "/api/assets",
		`{"asset_id":"LAPTOP-001","model_id":1}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	h, _ := newTestServer(t)

	// Unknown asset: 404.
	rec := doRequest(t, h, http.MethodGet, "/api/assets/99", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing asset, got %d", rec.Code)
	}

	// Missing required field: 400.
	rec = doRequest(t, h, http.MethodPost, "/api/assets", `{"model_id":1}`, adminID)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing asset_id, got %d", rec.Code)
	}

	// Duplicate tag: 409.
	doRequest(t, h, http.MethodPost, "/api/assets", `{"asset_id":"LAPTOP-001","model_id":1}`, adminID)
	rec = doRequest(t, h, http.MethodPost, "/api/assets", `{"asset_id":"LAPTOP-001","model_id":1}`, adminID)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate tag, got %d", rec.Code)
	}
}

func TestAssignFlowEndpoints(t *testing.T) {
	h, _ := newTestServer(t)

	rec := doRequest(t, h, http.MethodPost, "/api/assets",
		`{"asset_id":"LAPTOP-001","model_id":1}`, adminID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var asset domain.Asset
	if err := json.Unmarshal(rec.Body.Bytes(), &asset); err != nil {
		t.Fatalf("decode asset: %v", err)
	}

	rec = doRequest(t, h, http.MethodPost, "/api/assets/1/assign",
		`{"user_id":"`+aliceID+`"}`, adminID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("assign: %d %s", rec.Code, rec.Body.String())
	}

	// Assigning again conflicts with the lifecycle state.
	rec = doRequest(t, h, http.MethodPost, "/api/assets/1/assign",
		`{"user_id":"`+aliceID+`"}`, adminID)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on second assign, got %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/assets/1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get view: %d", rec.Code)
	}
	var viewResp domain.AssetWithRelations
	if err := json.Unmarshal(rec.Body.Bytes(), &viewResp); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if viewResp.AssignedUser == nil || viewResp.AssignedUser.ID != aliceID {
		t.Fatalf("expected hydrated assigned user, got %+v", viewResp.AssignedUser)
	}

	rec = doRequest(t, h, http.MethodPost, "/api/assets/1/unassign", `{}`, adminID)
	if rec.Code != http.StatusOK {
		t.Fatalf("unassign: %d %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateAssetNullClearsField(t *testing.T) {
	h, store := newTestServer(t)

	rec := doRequest(t, h, http.MethodPost, "/api/assets",
		`{"asset_id":"LAPTOP-001","model_id":1,"location":"Warehouse A"}`, adminID)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodPatch, "/api/assets/1",
		`{"location":null,"notes":"wiped"}`, adminID)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}

	asset, err := store.Assets().GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if asset.Location != nil {
		t.Fatalf("expected location cleared by explicit null, got %v", asset.Location)
	}
	if asset.Notes == nil || *asset.Notes != "wiped" {
		t.Fatalf("expected notes set, got %v", asset.Notes)
	}
}

func TestSearchEndpointDefaults(t *testing.T) {
	h, _ := newTestServer(t)

	doRequest(t, h, http.MethodPost, "/api/assets", `{"asset_id":"LAPTOP-001","model_id":1}`, adminID)
	doRequest(t, h, http.MethodPost, "/api/assets", `{"asset_id":"LAPTOP-002","model_id":1}`, adminID)

	rec := doRequest(t, h, http.MethodGet, "/api/assets/search?search=laptop", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("search: %d", rec.Code)
	}
	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if resp.Total != 2 || resp.Limit != 50 || len(resp.Assets) != 2 {
		t.Fatalf("unexpected search response: total %d limit %d assets %d", resp.Total, resp.Limit, len(resp.Assets))
	}

	rec = doRequest(t, h, http.MethodGet, "/api/assets/search?status=Broken", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad status, got %d", rec.Code)
	}
}
