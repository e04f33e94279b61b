// Package greenhouse adapts the Greenhouse public job board API to the
// posting source interface. The board endpoint needs no authentication:
// https://boards-api.greenhouse.io/v1/boards/{board_token}/jobs
package greenhouse

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jshao/jobtrackiq/internal/source"
)

const defaultBaseURL = "https://boards-api.greenhouse.io/v1"

// Adapter fetches postings from one Greenhouse board.
type Adapter struct {
	client     *resty.Client
	boardToken string
	// companyName overrides the company recorded for fetched postings; the
	// board API does not return one, so it defaults to the board token.
	companyName string

	mu     sync.Mutex
	cached []source.PostingItem
}

// Config holds configuration for the Greenhouse adapter.
type Config struct {
	BoardToken  string
	CompanyName string
	BaseURL     string
	Timeout     time.Duration
}

// NewAdapter creates a Greenhouse board adapter.
func NewAdapter(cfg *Config) *Adapter {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")

	company := cfg.CompanyName
	if company == "" {
		company = cfg.BoardToken
	}

	return &Adapter{
		client:      client,
		boardToken:  cfg.BoardToken,
		companyName: company,
	}
}

// GetSourceID returns the unique identifier for this source.
func (a *Adapter) GetSourceID() string {
	return "greenhouse:" + a.boardToken
}

// GetDisplayName returns a human-readable name for this source.
func (a *Adapter) GetDisplayName() string {
	return "Greenhouse board " + a.boardToken
}

type boardResponse struct {
	Jobs []boardJob `json:"jobs"`
}

type boardJob struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	AbsoluteURL string `json:"absolute_url"`
	UpdatedAt   string `json:"updated_at"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
}

// FetchBatch pages through the board's jobs. The API returns the whole board
// in one response, so the first call fetches and caches it and the cursor is
// an offset into the cached list.
func (a *Adapter) FetchBatch(ctx context.Context, cursor string, limit int) ([]source.PostingItem, string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cached == nil {
		items, err := a.fetchAll(ctx)
		if err != nil {
			return nil, "", err
		}
		a.cached = items
	}

	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor %q: %w", cursor, err)
		}
		offset = n
	}
	if offset >= len(a.cached) {
		return nil, "", nil
	}

	end := offset + limit
	if limit <= 0 || end > len(a.cached) {
		end = len(a.cached)
	}

	nextCursor := ""
	if end < len(a.cached) {
		nextCursor = strconv.Itoa(end)
	}
	return a.cached[offset:end], nextCursor, nil
}

func (a *Adapter) fetchAll(ctx context.Context) ([]source.PostingItem, error) {
	var body boardResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/boards/" + a.boardToken + "/jobs")
	if err != nil {
		return nil, fmt.Errorf("greenhouse fetch failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("greenhouse fetch failed: %s returned %s", a.boardToken, resp.Status())
	}

	items := make([]source.PostingItem, 0, len(body.Jobs))
	for _, job := range body.Jobs {
		// The list endpoint has no full JD; only metadata is recorded.
		if job.Title == "" {
			continue
		}
		item := source.PostingItem{
			CompanyName: a.companyName,
			RoleTitle:   job.Title,
		}
		if job.Location.Name != "" {
			loc := job.Location.Name
			item.Location = &loc
		}
		if job.AbsoluteURL != "" {
			url := job.AbsoluteURL
			item.URL = &url
		}
		if job.UpdatedAt != "" {
			if t, err := time.Parse(time.RFC3339, job.UpdatedAt); err == nil {
				item.PostedAt = &t
			}
		}
		items = append(items, item)
	}
	return items, nil
}
