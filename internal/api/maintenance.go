package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/rpattn/assettrack/internal/domain"
)

type scheduleMaintenancePayload struct {
	AssetID       int64    `json:"asset_id"`
	ScheduledDate *apiDate `json:"scheduled_date"`
	Description   string   `json:"description"`
	Notes         *string  `json:"notes"`
}

func (h *Handler) handleScheduleMaintenance(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	var payload scheduleMaintenancePayload
	if err := decodeJSON(r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}
	if payload.ScheduledDate == nil {
		h.writeError(w, r, domain.ValidationError("scheduled_date is required"))
		return
	}

	record, err := h.lifecycle.ScheduleMaintenance(r.Context(), domain.ScheduleMaintenanceInput{
		AssetID:       payload.AssetID,
		ScheduledDate: payload.ScheduledDate.Time,
		Description:   payload.Description,
		Notes:         payload.Notes,
	}, actor.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

type updateMaintenancePayload struct {
	CompletedDate *apiDate                 `json:"completed_date"`
	PerformedBy   *string                  `json:"performed_by"`
	Cost          *decimal.Decimal         `json:"cost"`
	Status        domain.MaintenanceStatus `json:"status"`
	Notes         *string                  `json:"notes"`
}

func (h *Handler) handleUpdateMaintenance(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var payload updateMaintenancePayload
	if err := decodeJSON(r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}

	record, err := h.lifecycle.UpdateMaintenance(r.Context(), domain.UpdateMaintenanceInput{
		ID:            id,
		CompletedDate: dateTime(payload.CompletedDate),
		PerformedBy:   payload.PerformedBy,
		Cost:          payload.Cost,
		Status:        payload.Status,
		Notes:         payload.Notes,
	}, actor.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) handleListMaintenance(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("asset_id"); raw != "" {
		id, err := queryInt(r, "asset_id", 0)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		records, err := h.store.Maintenance().ListByAsset(r.Context(), int64(id))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
		return
	}

	records, err := h.store.Maintenance().List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) handleUpcomingMaintenance(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 30)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	records, err := h.views.GetUpcomingMaintenance(r.Context(), days)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
