package export

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Handler serves the asset register download.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHTTPHandler creates the export download handler.
func NewHTTPHandler(service *Service, logger *zap.Logger) http.Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	f, err := h.service.AssetRegister(r.Context())
	if err != nil {
		h.logger.Error("failed to build asset register", zap.Error(err))
		http.Error(w, "failed to build export", http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()

	filename := fmt.Sprintf("assets-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := f.WriteTo(w); err != nil {
		h.logger.Error("failed to stream export", zap.Error(err))
	}
}
