// Package api exposes the lifecycle and view services over a JSON
// HTTP API. Identity arrives via trusted headers; every mutating
// endpoint requires one.
package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/rpattn/assettrack/internal/auth"
	"github.com/rpattn/assettrack/internal/lifecycle"
	"github.com/rpattn/assettrack/internal/repository"
	"github.com/rpattn/assettrack/internal/view"
)

// Handler routes API requests.
type Handler struct {
	lifecycle *lifecycle.Service
	views     *view.Builder
	store     repository.Store
	logger    *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(lifecycle *lifecycle.Service, views *view.Builder, store repository.Store, logger *zap.Logger) *Handler {
	return &Handler{
		lifecycle: lifecycle,
		views:     views,
		store:     store,
		logger:    logger,
	}
}

// Register attaches all routes to the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/assets", h.handleCreateAsset)
	mux.HandleFunc("GET /api/assets", h.handleListAssets)
	mux.HandleFunc("GET /api/assets/search", h.handleSearchAssets)
	mux.HandleFunc("GET /api/assets/warranties/expiring", h.handleExpiringWarranties)
	mux.HandleFunc("GET /api/assets/tag/{tag}", h.handleGetAssetByTag)
	mux.HandleFunc("GET /api/assets/{id}", h.handleGetAsset)
	mux.HandleFunc("PATCH /api/assets/{id}", h.handleUpdateAsset)
	mux.HandleFunc("POST /api/assets/{id}/assign", h.handleAssignAsset)
	mux.HandleFunc("POST /api/assets/{id}/unassign", h.handleUnassignAsset)
	mux.HandleFunc("POST /api/assets/{id}/retire", h.handleRetireAsset)
	mux.HandleFunc("POST /api/assets/{id}/dispose", h.handleDisposeAsset)

	mux.HandleFunc("POST /api/maintenance", h.handleScheduleMaintenance)
	mux.HandleFunc("GET /api/maintenance", h.handleListMaintenance)
	mux.HandleFunc("GET /api/maintenance/upcoming", h.handleUpcomingMaintenance)
	mux.HandleFunc("PATCH /api/maintenance/{id}", h.handleUpdateMaintenance)

	mux.HandleFunc("POST /api/users", h.handleCreateUser)
	mux.HandleFunc("GET /api/users", h.handleListUsers)
	mux.HandleFunc("GET /api/users/{id}", h.handleGetUser)
	mux.HandleFunc("GET /api/users/{id}/assets", h.handleUserAssets)

	mux.HandleFunc("POST /api/models", h.handleCreateAssetModel)
	mux.HandleFunc("GET /api/models", h.handleListAssetModels)

	mux.HandleFunc("GET /api/activity", h.handleActivityLog)
}

// requireActor resolves the request actor or writes a 401.
func (h *Handler) requireActor(w http.ResponseWriter, r *http.Request) (auth.Actor, bool) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing identity headers"})
		return auth.Actor{}, false
	}
	return actor, true
}
