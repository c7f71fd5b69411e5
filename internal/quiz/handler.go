package quiz

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"quizme-gateway/internal/models"
)

type Handler struct {
	service   *Service
	directory *Directory
	logger    *slog.Logger
}

func NewHandler(service *Service, directory *Directory, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		directory: directory,
		logger:    logger,
	}
}

func (h *Handler) GetQuestions(w http.ResponseWriter, r *http.Request, ev *models.AnalyticsEvent) {
	query := r.URL.Query()
	req := Request{
		Difficulty: query.Get("difficulty"),
		Category:   query.Get("category"),
		Amount:     query.Get("amount"),
	}

	resp, err := h.service.Translate(r.Context(), ev, req)
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) {
			h.logger.Warn("rejecting fetch-questions request", "error", err)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		// Upstream and decode failures answer with an empty body.
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request, _ *models.AnalyticsEvent) {
	writeJSON(w, http.StatusOK, models.CategoriesResponse{
		Categories: h.directory.ListNames(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
