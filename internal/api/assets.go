package api

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rpattn/assettrack/internal/domain"
)

type createAssetPayload struct {
	Tag            string   `json:"asset_id"`
	ModelID        int64    `json:"model_id"`
	PurchaseDate   *apiDate `json:"purchase_date"`
	WarrantyExpiry *apiDate `json:"warranty_expiry"`
	Location       *string  `json:"location"`
	Notes          *string  `json:"notes"`
}

func (h *Handler) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	var payload createAssetPayload
	if err := decodeJSON(r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}

	asset, err := h.lifecycle.CreateAsset(r.Context(), domain.CreateAssetInput{
		Tag:            payload.Tag,
		ModelID:        payload.ModelID,
		PurchaseDate:   dateTime(payload.PurchaseDate),
		WarrantyExpiry: dateTime(payload.WarrantyExpiry),
		Location:       payload.Location,
		Notes:          payload.Notes,
	}, actor.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

type updateAssetPayload struct {
	Tag            *string             `json:"asset_id"`
	ModelID        *int64              `json:"model_id"`
	Status         *domain.AssetStatus `json:"status"`
	PurchaseDate   optional[apiDate]   `json:"purchase_date"`
	WarrantyExpiry optional[apiDate]   `json:"warranty_expiry"`
	Location       optional[string]    `json:"location"`
	Notes          optional[string]    `json:"notes"`
}

func (h *Handler) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var payload updateAssetPayload
	if err := decodeJSON(r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}

	asset, err := h.lifecycle.UpdateAsset(r.Context(), domain.UpdateAssetInput{
		ID:             id,
		Tag:            payload.Tag,
		ModelID:        payload.ModelID,
		Status:         payload.Status,
		PurchaseDate:   datePatch(payload.PurchaseDate),
		WarrantyExpiry: datePatch(payload.WarrantyExpiry),
		Location:       payload.Location.patch(),
		Notes:          payload.Notes.patch(),
	}, actor.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (h *Handler) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	asset, err := h.views.GetAssetWithRelations(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if asset == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "asset not found", Kind: string(domain.ErrorKindNotFound)})
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (h *Handler) handleGetAssetByTag(w http.ResponseWriter, r *http.Request) {
	asset, err := h.views.GetAssetByTag(r.Context(), r.PathValue("tag"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if asset == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "asset not found", Kind: string(domain.ErrorKindNotFound)})
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (h *Handler) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.views.ListAssets(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

type searchResponse struct {
	Assets []domain.AssetWithRelations `json:"assets"`
	Total  int                         `json:"total"`
	Limit  int                         `json:"limit"`
	Offset int                         `json:"offset"`
}

func (h *Handler) handleSearchAssets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.AssetFilter{
		Manufacturer: q.Get("manufacturer"),
		ModelNumber:  q.Get("model_number"),
		Search:       q.Get("search"),
	}
	if raw := q.Get("category"); raw != "" {
		category := domain.AssetCategory(raw)
		if !category.Valid() {
			h.writeError(w, r, domain.ValidationError("invalid category "+raw))
			return
		}
		filter.Category = &category
	}
	if raw := q.Get("status"); raw != "" {
		status := domain.AssetStatus(raw)
		if !status.Valid() {
			h.writeError(w, r, domain.ValidationError("invalid status "+raw))
			return
		}
		filter.Status = &status
	}
	if raw := q.Get("assigned_to"); raw != "" {
		filter.AssignedTo = &raw
	}

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

	assets, total, err := h.views.SearchAssets(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Assets: assets, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) handleExpiringWarranties(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 30)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	assets, err := h.views.GetExpiringWarranties(r.Context(), days)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

type assignPayload struct {
	UserID string  `json:"user_id"`
	Notes  *string `json:"notes"`
}

func (h *Handler) handleAssignAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var payload assignPayload
	if err := decodeJSON(r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}
	if payload.UserID == "" {
		h.writeError(w, r, domain.ValidationError("user_id is required"))
		return
	}

	assignment, err := h.lifecycle.AssignAsset(r.Context(), id, payload.UserID, actor.UserID, payload.Notes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, assignment)
}

type unassignPayload struct {
	Notes *string `json:"notes"`
}

func (h *Handler) handleUnassignAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	payload := unassignPayload{}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &payload); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	assignment, err := h.lifecycle.UnassignAsset(r.Context(), id, actor.UserID, payload.Notes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assignment)
}

func (h *Handler) handleRetireAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	asset, err := h.lifecycle.RetireAsset(r.Context(), id, actor.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

type disposePayload struct {
	DisposalDate *apiDate         `json:"disposal_date"`
	Method       string           `json:"disposal_method"`
	Cost         *decimal.Decimal `json:"cost"`
	Notes        *string          `json:"notes"`
}

func (h *Handler) handleDisposeAsset(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var payload disposePayload
	if err := decodeJSON(r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}

	disposalDate := time.Now()
	if payload.DisposalDate != nil {
		disposalDate = payload.DisposalDate.Time
	}
	disposal, err := h.lifecycle.DisposeAsset(r.Context(), domain.DisposeAssetInput{
		AssetID:      id,
		DisposalDate: disposalDate,
		Method:       payload.Method,
		Cost:         payload.Cost,
		Notes:        payload.Notes,
	}, actor.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, disposal)
}

func dateTime(d *apiDate) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func datePatch(o optional[apiDate]) domain.Patch[time.Time] {
	if !o.set {
		return domain.Patch[time.Time]{}
	}
	if o.value == nil {
		return domain.PatchNull[time.Time]()
	}
	return domain.PatchValue(o.value.Time)
}
