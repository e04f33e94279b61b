package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jshao/jobtrackiq/internal/domain"
	"github.com/jshao/jobtrackiq/internal/logger"
	"github.com/jshao/jobtrackiq/internal/source"
)

// IngestService pulls postings from external board sources into the inbox.
// Fetching runs through a fixed-size worker pool; the core state (postings,
// company index) is only mutated through the posting and company services,
// sequentially per item.
type IngestService struct {
	postings  *PostingService
	companies *CompanyService
	log       *logger.Logger
	workers   int
	batchSize int
}

// IngestConfig holds configuration for the ingest service.
type IngestConfig struct {
	Workers   int
	BatchSize int
}

// NewIngestService creates a new ingest service.
func NewIngestService(postings *PostingService, companies *CompanyService, log *logger.Logger, cfg *IngestConfig) *IngestService {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	return &IngestService{
		postings:  postings,
		companies: companies,
		log:       log,
		workers:   workers,
		batchSize: batchSize,
	}
}

// IngestStats holds counts for an ingestion run.
type IngestStats struct {
	Fetched   int64     `json:"fetched"`
	Upserted  int64     `json:"upserted"`
	Failed    int64     `json:"failed"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// IngestFromSource fetches postings from a source and upserts them into the
// inbox, feeding the company index with crawler provenance. Items that fail
// are counted and logged; items upserted before a failure stay upserted.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - src: posting source to drain.
//   - limit: maximum number of items to fetch; <= 0 means no cap.
//
// Returns:
//   - *IngestStats: counts of fetched/upserted/failed items.
//   - error: non-nil if the very first fetch fails.
func (s *IngestService) IngestFromSource(ctx context.Context, src source.Source, limit int) (*IngestStats, error) {
	stats := &IngestStats{StartTime: time.Now()}

	s.log.WithFields(logger.Fields{
		"source": src.GetSourceID(),
		"limit":  limit,
	}).Info("Starting ingestion")

	itemsChan := make(chan source.PostingItem, s.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx, itemsChan, stats)
		}()
	}

	// Drain the source on this goroutine; only fetching is concurrent with
	// processing, and the first failed fetch aborts the run.
	var fetchErr error
	cursor := ""
	totalFetched := 0
	for {
		if ctx.Err() != nil {
			break
		}

		batchLimit := s.batchSize
		if limit > 0 {
			remaining := limit - totalFetched
			if remaining <= 0 {
				break
			}
			if batchLimit > remaining {
				batchLimit = remaining
			}
		}

		items, nextCursor, err := src.FetchBatch(ctx, cursor, batchLimit)
		if err != nil {
			if totalFetched == 0 {
				fetchErr = err
			} else {
				s.log.WithError(err).Error("Failed to fetch batch")
			}
			break
		}
		if len(items) == 0 {
			break
		}

		atomic.AddInt64(&stats.Fetched, int64(len(items)))
		totalFetched += len(items)

		for _, item := range items {
			select {
			case itemsChan <- item:
			case <-ctx.Done():
			}
		}

		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	close(itemsChan)
	wg.Wait()

	stats.EndTime = time.Now()

	if fetchErr != nil {
		return nil, fetchErr
	}

	s.log.WithFields(logger.Fields{
		"source":   src.GetSourceID(),
		"fetched":  stats.Fetched,
		"upserted": stats.Upserted,
		"failed":   stats.Failed,
		"duration": stats.EndTime.Sub(stats.StartTime).String(),
	}).Info("Ingestion completed")

	return stats, nil
}

func (s *IngestService) worker(ctx context.Context, items <-chan source.PostingItem, stats *IngestStats) {
	for item := range items {
		select {
		case <-ctx.Done():
			return
		default:
		}

		posting, err := s.postings.Upsert(ctx, domain.PostingSourceGreenhouse, PostingInput{
			CompanyName: item.CompanyName,
			RoleTitle:   item.RoleTitle,
			Location:    item.Location,
			URL:         item.URL,
			PostedAt:    item.PostedAt,
			JDText:      item.JDText,
		})
		if err != nil {
			atomic.AddInt64(&stats.Failed, 1)
			s.log.WithError(err).WithFields(logger.Fields{
				"company": item.CompanyName,
				"role":    item.RoleTitle,
			}).Error("Failed to upsert posting")
			continue
		}
		atomic.AddInt64(&stats.Upserted, 1)

		if _, err := s.companies.Upsert(ctx, posting.CompanyName, domain.CompanySourceCrawler); err != nil {
			s.log.WithError(err).WithField("company", posting.CompanyName).Warn("Failed to update company index")
		}
	}
}
