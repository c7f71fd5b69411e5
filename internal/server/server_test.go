package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// headerCountingWriter counts explicit WriteHeader calls.
type headerCountingWriter struct {
	*httptest.ResponseRecorder
	headerCalls int
}

func (w *headerCountingWriter) WriteHeader(code int) {
	w.headerCalls++
	w.ResponseRecorder.WriteHeader(code)
}

func TestRecoverer(t *testing.T) {
	tests := []struct {
		name            string
		handler         http.HandlerFunc
		wantStatus      int
		wantHeaderCalls int
		wantBody        string
	}{
		{
			name:            "panic before writing",
			handler:         func(w http.ResponseWriter, r *http.Request) { panic("boom") },
			wantStatus:      http.StatusInternalServerError,
			wantHeaderCalls: 1,
		},
		{
			name: "panic after body started",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"questions":[`)
				panic("boom")
			},
			wantStatus:      http.StatusOK,
			wantHeaderCalls: 0,
			wantBody:        `{"questions":[`,
		},
		{
			name: "panic after explicit status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusAccepted)
				panic("boom")
			},
			wantStatus:      http.StatusAccepted,
			wantHeaderCalls: 1,
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &headerCountingWriter{ResponseRecorder: httptest.NewRecorder()}
			recoverer(logger)(tt.handler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/getQuestions", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if w.headerCalls != tt.wantHeaderCalls {
				t.Errorf("WriteHeader called %d times, want %d", w.headerCalls, tt.wantHeaderCalls)
			}
			if got := w.Body.String(); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}
