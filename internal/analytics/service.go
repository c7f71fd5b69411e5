package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"quizme-gateway/internal/models"
)

// ErrStore reports a failed analytics read or write.
var ErrStore = errors.New("analytics store failure")

const (
	DefaultTopCategories  = 15
	DefaultTopUserAgents  = 5
	DefaultPlatformMarker = "Android"
	DefaultStoreTimeout   = 5 * time.Second
)

type Store interface {
	Insert(ctx context.Context, ev *models.AnalyticsEvent) error
	All(ctx context.Context) ([]models.AnalyticsEvent, error)
	TopCategories(ctx context.Context, limit int) ([]models.CategoryCount, error)
	EndpointStats(ctx context.Context) ([]models.EndpointStats, error)
	TopUserAgents(ctx context.Context, marker string, limit int) ([]models.UserAgentCount, error)
}

// Publisher receives every event after it has been persisted.
type Publisher interface {
	Publish(kind string, data any)
}

type Options struct {
	StoreTimeout       time.Duration
	PlatformMarker     string
	TopCategoriesLimit int
	TopUserAgentsLimit int
}

type Service struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
	opts      Options
	now       func() time.Time
	pending   sync.WaitGroup
}

// NewService builds the recorder. publisher may be nil; zero options take
// the package defaults.
func NewService(store Store, publisher Publisher, logger *slog.Logger, opts Options) *Service {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = DefaultStoreTimeout
	}
	if opts.PlatformMarker == "" {
		opts.PlatformMarker = DefaultPlatformMarker
	}
	if opts.TopCategoriesLimit <= 0 {
		opts.TopCategoriesLimit = DefaultTopCategories
	}
	if opts.TopUserAgentsLimit <= 0 {
		opts.TopUserAgentsLimit = DefaultTopUserAgents
	}
	return &Service{
		store:     store,
		publisher: publisher,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// Begin starts the event for r, capturing receipt time, user agent and
// the request URL without its query string.
func (s *Service) Begin(r *http.Request) *models.AnalyticsEvent {
	return &models.AnalyticsEvent{
		ID:            uuid.NewString(),
		AppRequestURL: requestURL(r),
		TimeReceived:  s.now(),
		UserAgent:     r.UserAgent(),
	}
}

// Record persists ev. Cancellation of ctx is ignored; the write is bounded
// by the store timeout instead. ev must not be modified afterwards.
func (s *Service) Record(ctx context.Context, ev *models.AnalyticsEvent) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.StoreTimeout)
	defer cancel()

	if err := s.store.Insert(ctx, ev); err != nil {
		s.logger.Error("recording analytics event", "id", ev.ID, "url", ev.AppRequestURL, "error", err)
		return fmt.Errorf("%w: %v", ErrStore, err)
	}

	if s.publisher != nil {
		s.publisher.Publish("event", ev)
	}
	return nil
}

func (s *Service) AllEvents(ctx context.Context) ([]models.AnalyticsEvent, error) {
	events, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing events: %v", ErrStore, err)
	}
	return events, nil
}

// TopCategories returns the most requested categories. A non-positive
// limit uses the configured default.
func (s *Service) TopCategories(ctx context.Context, limit int) ([]models.CategoryCount, error) {
	if limit <= 0 {
		limit = s.opts.TopCategoriesLimit
	}
	rows, err := s.store.TopCategories(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: top categories: %v", ErrStore, err)
	}
	return rows, nil
}

func (s *Service) LatencyAndSizeStats(ctx context.Context) ([]models.EndpointStats, error) {
	rows, err := s.store.EndpointStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: endpoint stats: %v", ErrStore, err)
	}
	return rows, nil
}

func (s *Service) TopUserAgents(ctx context.Context, limit int) ([]models.UserAgentCount, error) {
	if limit <= 0 {
		limit = s.opts.TopUserAgentsLimit
	}
	rows, err := s.store.TopUserAgents(ctx, s.opts.PlatformMarker, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: top user agents: %v", ErrStore, err)
	}
	return rows, nil
}

// Dashboard collects all four analytics views.
func (s *Service) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	var (
		d   models.Dashboard
		err error
	)
	if d.Events, err = s.AllEvents(ctx); err != nil {
		return nil, err
	}
	if d.TopCategories, err = s.TopCategories(ctx, 0); err != nil {
		return nil, err
	}
	if d.LatencyAndSizeStats, err = s.LatencyAndSizeStats(ctx); err != nil {
		return nil, err
	}
	if d.TopUserAgents, err = s.TopUserAgents(ctx, 0); err != nil {
		return nil, err
	}
	d.Events = nonNil(d.Events)
	d.TopCategories = nonNil(d.TopCategories)
	d.LatencyAndSizeStats = nonNil(d.LatencyAndSizeStats)
	d.TopUserAgents = nonNil(d.TopUserAgents)
	return &d, nil
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + r.URL.Path
}
