package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"quizme-gateway/internal/analytics"
	"quizme-gateway/internal/health"
	"quizme-gateway/internal/models"
	"quizme-gateway/internal/opentdb"
	"quizme-gateway/internal/quiz"
	"quizme-gateway/pkg/database"
)

const categoriesPayload = `{"trivia_categories":[{"id":17,"name":"Science & Nature"},{"id":21,"name":"Sports"},{"id":9,"name":"General Knowledge"}]}`

const questionsPayload = `{"response_code":0,"results":[
{"type":"multiple","difficulty":"easy","category":"Science & Nature","question":"What is H2O?","correct_answer":"Water","incorrect_answers":["Salt","Sand","Air"]},
{"type":"boolean","difficulty":"easy","category":"Science & Nature","question":"The sun is a star.","correct_answer":"True","incorrect_answers":["False"]}
]}`

type fakeOpenTDB struct {
	mu      sync.Mutex
	queries []string
}

func (f *fakeOpenTDB) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api_category.php":
		io.WriteString(w, categoriesPayload)
	case "/api.php":
		f.mu.Lock()
		f.queries = append(f.queries, r.URL.RawQuery)
		f.mu.Unlock()
		io.WriteString(w, questionsPayload)
	default:
		http.NotFound(w, r)
	}
}

type gateway struct {
	handler  http.Handler
	events   *analytics.Service
	upstream *fakeOpenTDB
}

func newGateway(t *testing.T) *gateway {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	upstream := &fakeOpenTDB{}
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	client := opentdb.NewClient(srv.URL, srv.Client())
	directory := quiz.NewDirectory(client, nil, logger)
	if err := directory.Load(context.Background()); err != nil {
		t.Fatalf("loading directory: %v", err)
	}

	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "gateway.db"))
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	repo := analytics.NewRepository(db)
	if err := repo.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	events := analytics.NewService(repo, nil, logger, analytics.Options{})

	handler := NewRouter(Deps{
		Logger:    logger,
		Quiz:      quiz.NewHandler(quiz.NewService(client, directory, logger), directory, logger),
		Analytics: events,
		Dashboard: analytics.NewHandler(events, logger),
		Health:    health.NewHandler(logger, map[string]health.Checker{}),
	})
	return &gateway{handler: handler, events: events, upstream: upstream}
}

func (g *gateway) get(t *testing.T, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)
	return rec
}

func (g *gateway) allEvents(t *testing.T) []models.AnalyticsEvent {
	t.Helper()
	g.events.Wait()
	events, err := g.events.AllEvents(context.Background())
	if err != nil {
		t.Fatalf("listing events: %v", err)
	}
	return events
}

func TestGetQuestionsEndToEnd(t *testing.T) {
	g := newGateway(t)

	rec := g.get(t, "/getQuestions?difficulty=Easy&category=Science+%26+Nature&amount=5",
		http.Header{"User-Agent": {"QuizMe/1.0 (Android 14)"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp models.QuizResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if resp.StatusCode != http.StatusOK || len(resp.Questions) != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}
	for _, q := range resp.Questions {
		if q.Score != 1 {
			t.Errorf("score = %d, want 1", q.Score)
		}
	}

	if len(g.upstream.queries) != 1 {
		t.Fatalf("upstream called %d times", len(g.upstream.queries))
	}
	q := g.upstream.queries[0]
	for _, want := range []string{"amount=5", "category=17", "difficulty=easy"} {
		if !strings.Contains(q, want) {
			t.Errorf("upstream query %q missing %q", q, want)
		}
	}

	events := g.allEvents(t)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.SelectedCategory == nil || *ev.SelectedCategory != "Science & Nature" {
		t.Errorf("selected category = %v", ev.SelectedCategory)
	}
	if ev.RequestedAmount != 5 {
		t.Errorf("requested amount = %d", ev.RequestedAmount)
	}
	if ev.ResponseStatus != http.StatusOK {
		t.Errorf("response status = %d", ev.ResponseStatus)
	}
	if ev.UserAgent != "QuizMe/1.0 (Android 14)" {
		t.Errorf("user agent = %q", ev.UserAgent)
	}
	if strings.Contains(ev.AppRequestURL, "?") || !strings.HasSuffix(ev.AppRequestURL, "/getQuestions") {
		t.Errorf("app request url = %q", ev.AppRequestURL)
	}
	if ev.ResponseSizeBytes == 0 {
		t.Errorf("response size not recorded")
	}
}

func TestGetQuestionsInvalidAmountIsRecorded(t *testing.T) {
	g := newGateway(t)

	rec := g.get(t, "/getQuestions?amount=-3", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(g.upstream.queries) != 0 {
		t.Fatalf("upstream should not be called")
	}

	events := g.allEvents(t)
	if len(events) != 1 || events[0].ResponseStatus != http.StatusBadRequest {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestGetCategories(t *testing.T) {
	g := newGateway(t)

	rec := g.get(t, "/getCategories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp models.CategoriesResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	want := []string{"All of them!", "General Knowledge", "Science & Nature", "Sports"}
	if strings.Join(resp.Categories, "|") != strings.Join(want, "|") {
		t.Fatalf("categories = %v, want %v", resp.Categories, want)
	}

	if n := len(g.allEvents(t)); n != 1 {
		t.Fatalf("expected 1 event, got %d", n)
	}
}

func TestUntrackedRoutes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
	}{
		{"unknown route", http.MethodGet, "/nope", http.StatusNotFound},
		{"wrong method", http.MethodPost, "/getQuestions", http.StatusMethodNotAllowed},
		{"dashboard", http.MethodGet, "/openDashboard", http.StatusOK},
		{"health", http.MethodGet, "/healthz", http.StatusOK},
		{"openapi", http.MethodGet, "/openapi.json", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGateway(t)

			req := httptest.NewRequest(tt.method, tt.target, nil)
			rec := httptest.NewRecorder()
			g.handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if n := len(g.allEvents(t)); n != 0 {
				t.Fatalf("expected no events, got %d", n)
			}
		})
	}
}

func TestDashboardReflectsTrackedRequests(t *testing.T) {
	g := newGateway(t)

	g.get(t, "/getQuestions?category=Sports&amount=3", http.Header{"User-Agent": {"okhttp Android"}})
	g.get(t, "/getQuestions?category=Sports", http.Header{"User-Agent": {"okhttp Android"}})
	g.get(t, "/getCategories", http.Header{"User-Agent": {"Mozilla/5.0 (iPhone)"}})

	rec := g.get(t, "/openDashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var dash models.Dashboard
	if err := json.NewDecoder(rec.Body).Decode(&dash); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(dash.Events) != 3 {
		t.Fatalf("events = %d, want 3", len(dash.Events))
	}
	if len(dash.TopCategories) != 1 || dash.TopCategories[0].Category != "Sports" ||
		dash.TopCategories[0].RequestCount != 2 || dash.TopCategories[0].TotalQuestions != 13 {
		t.Fatalf("top categories = %+v", dash.TopCategories)
	}
	if len(dash.LatencyAndSizeStats) != 2 {
		t.Fatalf("endpoint stats = %+v", dash.LatencyAndSizeStats)
	}
	if len(dash.TopUserAgents) != 1 || dash.TopUserAgents[0].UserAgent != "okhttp Android" || dash.TopUserAgents[0].Count != 2 {
		t.Fatalf("top user agents = %+v", dash.TopUserAgents)
	}
}

func TestCORSPreflight(t *testing.T) {
	g := newGateway(t)

	req := httptest.NewRequest(http.MethodOptions, "/getCategories", nil)
	req.Header.Set("Origin", "https://dashboard.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	g.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow origin = %q, want *", got)
	}
	if n := len(g.allEvents(t)); n != 0 {
		t.Fatalf("preflight recorded %d events", n)
	}
}
