package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// OpenDashboard serves the four analytics views. It does not record an
// event of its own.
func (h *Handler) OpenDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("building dashboard", "error", err)
		http.Error(w, "dashboard unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(dashboard)
}
