package analytics

import (
	"context"

	"gorm.io/gorm"

	"quizme-gateway/internal/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates or updates the analytics_events table.
func (r *Repository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&models.AnalyticsEvent{})
}

func (r *Repository) Insert(ctx context.Context, ev *models.AnalyticsEvent) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

func (r *Repository) All(ctx context.Context) ([]models.AnalyticsEvent, error) {
	var events []models.AnalyticsEvent
	err := r.db.WithContext(ctx).
		Order("time_received asc").
		Order("id asc").
		Find(&events).Error
	return events, err
}

// TopCategories groups events by selected category. Ties on request count
// are ordered by category name.
func (r *Repository) TopCategories(ctx context.Context, limit int) ([]models.CategoryCount, error) {
	var rows []models.CategoryCount
	err := r.db.WithContext(ctx).Raw(`
		SELECT selected_category AS category,
		       COUNT(*) AS request_count,
		       COALESCE(SUM(requested_amount), 0) AS total_questions
		FROM analytics_events
		WHERE selected_category IS NOT NULL
		GROUP BY selected_category
		ORDER BY request_count DESC, category ASC
		LIMIT ?
	`, limit).Scan(&rows).Error
	return rows, err
}

func (r *Repository) EndpointStats(ctx context.Context) ([]models.EndpointStats, error) {
	var rows []models.EndpointStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT app_request_url AS endpoint,
		       MAX(upstream_latency_ms) AS max_api_latency,
		       MAX(response_size_bytes) AS max_size,
		       MAX(app_latency_ms) AS max_app_latency,
		       MIN(upstream_latency_ms) AS min_api_latency,
		       MIN(response_size_bytes) AS min_size,
		       MIN(app_latency_ms) AS min_app_latency,
		       AVG(upstream_latency_ms) AS avg_api_latency,
		       AVG(response_size_bytes) AS avg_size,
		       AVG(app_latency_ms) AS avg_app_latency
		FROM analytics_events
		GROUP BY app_request_url
		ORDER BY app_request_url ASC
	`).Scan(&rows).Error
	return rows, err
}

// TopUserAgents counts user agents containing marker. The match is case
// sensitive on every dialect: sqlite's LIKE folds ASCII case, so GLOB is
// used there instead.
func (r *Repository) TopUserAgents(ctx context.Context, marker string, limit int) ([]models.UserAgentCount, error) {
	match := "user_agent LIKE ?"
	pattern := "%" + escapeLike(marker) + "%"
	if r.db.Dialector.Name() == "sqlite" {
		match = "user_agent GLOB ?"
		pattern = "*" + escapeGlob(marker) + "*"
	}

	var rows []models.UserAgentCount
	err := r.db.WithContext(ctx).Raw(`
		SELECT user_agent, COUNT(*) AS total
		FROM analytics_events
		WHERE `+match+`
		GROUP BY user_agent
		ORDER BY total DESC, user_agent ASC
		LIMIT ?
	`, pattern, limit).Scan(&rows).Error
	return rows, err
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, c := range s {
		if c == '%' || c == '_' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}

func escapeGlob(s string) string {
	out := make([]rune, 0, len(s))
	for _, c := range s {
		switch c {
		case '*', '?', '[':
			out = append(out, '[', c, ']')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
