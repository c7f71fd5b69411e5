package analytics

import (
	"context"
	"net/http"
	"time"

	"quizme-gateway/internal/models"
)

// TrackedHandlerFunc is an HTTP handler that fills in the analytics event
// owned by the current request.
type TrackedHandlerFunc func(w http.ResponseWriter, r *http.Request, ev *models.AnalyticsEvent)

// Track begins an event, runs next and records the event with the final
// status, size and latency once next has returned. Recording happens off
// the request goroutine so the response completes without waiting on the
// store; Wait drains outstanding recordings.
func (s *Service) Track(next TrackedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev := s.Begin(r)
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next(rec, r, ev)

		ev.AppLatencyMs = time.Since(ev.TimeReceived).Milliseconds()
		ev.ResponseSizeBytes = rec.bytesWritten
		ev.ResponseStatus = rec.statusCode

		ctx := context.WithoutCancel(r.Context())
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			// Failures are logged by Record.
			_ = s.Record(ctx, ev)
		}()
	}
}

// Wait blocks until every recording started by Track has finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	wroteHeader  bool
	bytesWritten int64
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.statusCode = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	r.wroteHeader = true
	n, err := r.ResponseWriter.Write(p)
	r.bytesWritten += int64(n)
	return n, err
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
