package source

import (
	"context"
	"time"
)

// PostingItem represents one job posting fetched from an external board.
type PostingItem struct {
	CompanyName string
	RoleTitle   string
	Location    *string
	URL         *string
	PostedAt    *time.Time
	JDText      *string
}

// Source defines the interface for external job posting sources.
type Source interface {
	// GetSourceID returns the unique identifier for this source.
	GetSourceID() string

	// GetDisplayName returns a human-readable name for this source.
	GetDisplayName() string

	// FetchBatch fetches a batch of posting items starting from the given
	// cursor.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - cursor: pagination cursor or empty for first page.
	//   - limit: maximum number of items to fetch.
	// Returns:
	//   - items: batch of posting items.
	//   - nextCursor: cursor for the next batch or empty if done.
	//   - err: non-nil if fetching fails.
	FetchBatch(ctx context.Context, cursor string, limit int) (items []PostingItem, nextCursor string, err error)
}
