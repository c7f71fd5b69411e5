package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"quizme-gateway/internal/models"
	"quizme-gateway/internal/opentdb"
)

const (
	DefaultAmount = 10
	// anyDifficulty marks a difficulty selection that should not filter.
	anyDifficulty = "anything"
)

type Upstream interface {
	QuestionsURL(q opentdb.Query) string
	Get(ctx context.Context, rawURL string) ([]byte, time.Duration, error)
}

// Request carries the client parameters of a fetch-questions call. Empty
// fields are treated as absent.
type Request struct {
	Difficulty string
	Category   string
	Amount     string
}

type Service struct {
	upstream  Upstream
	directory *Directory
	logger    *slog.Logger
}

func NewService(upstream Upstream, directory *Directory, logger *slog.Logger) *Service {
	return &Service{
		upstream:  upstream,
		directory: directory,
		logger:    logger,
	}
}

// Translate maps req onto an upstream query, calls the upstream once and
// normalizes the result. The request selections, upstream URL and upstream
// latency are written into ev as they become known.
func (s *Service) Translate(ctx context.Context, ev *models.AnalyticsEvent, req Request) (*models.QuizResponse, error) {
	if ev == nil {
		ev = &models.AnalyticsEvent{}
	}

	amount, err := ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	query := opentdb.Query{Amount: amount}
	if category := strings.TrimSpace(req.Category); category != "" {
		ev.SelectedCategory = &category
		if id, ok := s.directory.Resolve(category); ok {
			query.Category = &id
		}
	}
	if difficulty := strings.TrimSpace(req.Difficulty); difficulty != "" {
		ev.SelectedDifficulty = &difficulty
		if !strings.Contains(strings.ToLower(difficulty), anyDifficulty) {
			query.Difficulty = strings.ToLower(difficulty)
		}
	}

	upstreamURL := s.upstream.QuestionsURL(query)
	ev.UpstreamRequestURL = upstreamURL
	ev.RequestedAmount = amount

	body, latency, err := s.upstream.Get(ctx, upstreamURL)
	ev.UpstreamLatencyMs = latency.Milliseconds()
	if err != nil {
		s.logger.Error("upstream call failed", "url", upstreamURL, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	resp, err := Normalize(body)
	if err != nil {
		s.logger.Error("normalizing upstream payload", "url", upstreamURL, "error", err)
		return nil, err
	}
	return resp, nil
}

// ParseAmount returns DefaultAmount for blank input and otherwise requires
// a positive integer.
func ParseAmount(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultAmount, nil
	}
	amount, err := strconv.Atoi(raw)
	if err != nil || amount <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	return amount, nil
}
