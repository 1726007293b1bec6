package api

import (
	"net/http"

	"github.com/rpattn/assettrack/internal/domain"
)

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload domain.CreateUserInput
	if err := decodeJSON(r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}
	user, err := h.lifecycle.CreateUser(r.Context(), payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.Users().GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.Users().List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) handleUserAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.views.GetUserAssets(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

func (h *Handler) handleCreateAssetModel(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	var payload domain.CreateAssetModelInput
	if err := decodeJSON(r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}
	model, err := h.lifecycle.CreateAssetModel(r.Context(), payload, actor.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, model)
}

func (h *Handler) handleListAssetModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.store.AssetModels().List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models)
}

type activityResponse struct {
	Entries []domain.ActivityLogEntry `json:"entries"`
	Total   int                       `json:"total"`
	Limit   int                       `json:"limit"`
	Offset  int                       `json:"offset"`
}

func (h *Handler) handleActivityLog(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	entries, total, err := h.views.ActivityLog(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, activityResponse{Entries: entries, Total: total, Limit: limit, Offset: offset})
}
