package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/swaggest/swgui/v5emb"

	"quizme-gateway/internal/analytics"
	"quizme-gateway/internal/quiz"
)

// Deps are the handlers the router dispatches to.
type Deps struct {
	Logger      *slog.Logger
	Quiz        *quiz.Handler
	Analytics   *analytics.Service
	Dashboard   *analytics.Handler
	LiveFeed    http.HandlerFunc
	Health      http.Handler
	CORSOrigins []string
}

// NewRouter wires the three client-facing routes plus the operational ones.
// Only fetch-questions and fetch-categories are tracked.
func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()
	r.Use(newStructuredLogger(d.Logger))
	r.Use(recoverer(d.Logger))

	r.HandleFunc("/getQuestions", d.Analytics.Track(d.Quiz.GetQuestions)).Methods(http.MethodGet)
	r.HandleFunc("/getCategories", d.Analytics.Track(d.Quiz.GetCategories)).Methods(http.MethodGet)
	r.HandleFunc("/openDashboard", d.Dashboard.OpenDashboard).Methods(http.MethodGet)

	if d.LiveFeed != nil {
		r.HandleFunc("/ws/dashboard", d.LiveFeed).Methods(http.MethodGet)
	}
	if d.Health != nil {
		r.Handle("/healthz", d.Health).Methods(http.MethodGet)
	}
	r.HandleFunc("/openapi.json", handleOpenAPI()).Methods(http.MethodGet)
	r.PathPrefix("/docs").Handler(v5emb.New("QuizMe Gateway", "/openapi.json", "/docs"))

	r.NotFoundHandler = http.HandlerFunc(handleNotFound)

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Requested-With"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	})
	return c.Handler(r)
}

// ErrorResponse is the JSON body of client errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(ErrorResponse{Error: "not found"})
}
