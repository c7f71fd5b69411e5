package opentdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"quizme-gateway/internal/models"
)

const (
	DefaultBaseURL = "https://opentdb.com"

	questionsPath  = "/api.php"
	categoriesPath = "/api_category.php"
)

// ErrBadStatus is returned when the upstream answers with a non-200 status.
var ErrBadStatus = errors.New("opentdb: unexpected status")

// RawQuestion mirrors the OpenTriviaDB question payload.
type RawQuestion struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type categoriesResponse struct {
	Categories []models.Category `json:"trivia_categories"`
}

// Query holds the filters accepted by the questions endpoint. A nil
// Category and an empty Difficulty leave the query unfiltered.
type Query struct {
	Amount     int
	Category   *int
	Difficulty string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// QuestionsURL builds the upstream URL for q.
func (c *Client) QuestionsURL(q Query) string {
	params := url.Values{}
	params.Set("amount", strconv.Itoa(q.Amount))
	if q.Category != nil {
		params.Set("category", strconv.Itoa(*q.Category))
	}
	if q.Difficulty != "" {
		params.Set("difficulty", q.Difficulty)
	}
	return c.baseURL + questionsPath + "?" + params.Encode()
}

// Get issues a single GET against rawURL and returns the body together
// with the time spent waiting for the upstream status line. The latency is
// reported even when the call fails.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, time.Duration, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return nil, latency, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, latency, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, latency, fmt.Errorf("reading opentdb body: %w", err)
	}
	return body, latency, nil
}

// FetchCategories returns the upstream category list.
func (c *Client) FetchCategories(ctx context.Context) ([]models.Category, error) {
	body, _, err := c.Get(ctx, c.baseURL+categoriesPath)
	if err != nil {
		return nil, err
	}

	var payload categoriesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding opentdb categories: %w", err)
	}
	return payload.Categories, nil
}
