package models

import "time"

// AnalyticsEvent describes one served request. It is created when the
// request arrives, filled in while the request is processed and persisted
// once when the request ends.
type AnalyticsEvent struct {
	ID                 string    `json:"id" gorm:"primaryKey;column:id"`
	AppRequestURL      string    `json:"appRequestUrl" gorm:"column:app_request_url;index"`
	TimeReceived       time.Time `json:"timeReceived" gorm:"column:time_received;index"`
	SelectedCategory   *string   `json:"selectedCategory" gorm:"column:selected_category"`
	SelectedDifficulty *string   `json:"selectedDifficulty" gorm:"column:selected_difficulty"`
	RequestedAmount    int       `json:"requestedAmount" gorm:"column:requested_amount"`
	UserAgent          string    `json:"userAgent" gorm:"column:user_agent"`
	UpstreamRequestURL string    `json:"upstreamRequestUrl" gorm:"column:upstream_request_url"`
	UpstreamLatencyMs  int64     `json:"upstreamLatencyMs" gorm:"column:upstream_latency_ms"`
	ResponseSizeBytes  int64     `json:"responseSizeBytes" gorm:"column:response_size_bytes"`
	AppLatencyMs       int64     `json:"appLatencyMs" gorm:"column:app_latency_ms"`
	ResponseStatus     int       `json:"responseStatus" gorm:"column:response_status"`
}

func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}

type CategoryCount struct {
	Category       string `json:"category" gorm:"column:category"`
	RequestCount   int64  `json:"requestCount" gorm:"column:request_count"`
	TotalQuestions int64  `json:"totalQuestions" gorm:"column:total_questions"`
}

// EndpointStats holds latency and size statistics for one app endpoint.
type EndpointStats struct {
	Endpoint      string  `json:"endpoint" gorm:"column:endpoint"`
	MaxAPILatency int64   `json:"maxApiLatency" gorm:"column:max_api_latency"`
	MaxSize       int64   `json:"maxSize" gorm:"column:max_size"`
	MaxAppLatency int64   `json:"maxAppLatency" gorm:"column:max_app_latency"`
	MinAPILatency int64   `json:"minApiLatency" gorm:"column:min_api_latency"`
	MinSize       int64   `json:"minSize" gorm:"column:min_size"`
	MinAppLatency int64   `json:"minAppLatency" gorm:"column:min_app_latency"`
	AvgAPILatency float64 `json:"avgApiLatency" gorm:"column:avg_api_latency"`
	AvgSize       float64 `json:"avgSize" gorm:"column:avg_size"`
	AvgAppLatency float64 `json:"avgAppLatency" gorm:"column:avg_app_latency"`
}

type UserAgentCount struct {
	UserAgent string `json:"userAgent" gorm:"column:user_agent"`
	Count     int64  `json:"count" gorm:"column:total"`
}

// Dashboard bundles the four analytics views shown on the dashboard.
type Dashboard struct {
	Events              []AnalyticsEvent `json:"events"`
	TopCategories       []CategoryCount  `json:"topCategories"`
	LatencyAndSizeStats []EndpointStats  `json:"latencyAndSizeStats"`
	TopUserAgents       []UserAgentCount `json:"topUserAgents"`
}
