package service

import (
	"context"

	"github.com/jshao/jobtrackiq/internal/domain"
	"github.com/jshao/jobtrackiq/internal/repository"
)

const hoursPerDay = 24.0

// MetricsService computes read-only derived views over applications and the
// event log. It performs no mutation and relies on the status engine's
// invariants holding.
type MetricsService struct {
	metrics           *repository.MetricsRepository
	channelMinSamples int
}

// NewMetricsService creates a new metrics service.
// Parameters:
//   - metrics: aggregate query repository.
//   - channelMinSamples: minimum applications a channel needs to appear in
//     the conversion report.
func NewMetricsService(metrics *repository.MetricsRepository, channelMinSamples int) *MetricsService {
	if channelMinSamples < 1 {
		channelMinSamples = 1
	}
	return &MetricsService{metrics: metrics, channelMinSamples: channelMinSamples}
}

// Overview summarizes the whole tracker: totals, status distribution and
// offer/rejection rates.
type Overview struct {
	TotalApplications int64            `json:"total_applications"`
	ByStatus          map[string]int64 `json:"by_status"`
	OfferRate         float64          `json:"offer_rate"`
	RejectionRate     float64          `json:"rejection_rate"`
}

// Overview returns the tracker-wide summary. Rates are 0.0 on an empty
// tracker, never a division fault.
func (s *MetricsService) Overview(ctx context.Context) (*Overview, error) {
	total, err := s.metrics.CountApplications(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.metrics.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	out := &Overview{
		TotalApplications: total,
		ByStatus:          byStatus,
	}
	if total > 0 {
		out.OfferRate = float64(byStatus[string(domain.StatusOffer)]) / float64(total)
		out.RejectionRate = float64(byStatus[string(domain.StatusRejected)]) / float64(total)
	}
	return out, nil
}

// Funnel is the stage distribution of all applications.
type Funnel struct {
	TotalApplications int64            `json:"total_applications"`
	ByStage           map[string]int64 `json:"by_stage"`
}

// Funnel returns application counts grouped by current stage.
func (s *MetricsService) Funnel(ctx context.Context) (*Funnel, error) {
	total, err := s.metrics.CountApplications(ctx)
	if err != nil {
		return nil, err
	}
	byStage, err := s.metrics.CountByStage(ctx)
	if err != nil {
		return nil, err
	}
	return &Funnel{TotalApplications: total, ByStage: byStage}, nil
}

// Milestones reports average days from application creation to the earliest
// interview event and to the earliest offer event. A nil field means no
// application has reached that milestone; applications without it are
// excluded from the average, not counted as zero.
type Milestones struct {
	AvgDaysToInterview *float64 `json:"avg_days_to_interview"`
	AvgDaysToOffer     *float64 `json:"avg_days_to_offer"`
}

// TimeToMilestones computes the milestone averages.
func (s *MetricsService) TimeToMilestones(ctx context.Context) (*Milestones, error) {
	interview, err := s.metrics.EarliestEventDeltas(ctx, []domain.EventType{domain.EventInterview1, domain.EventInterview2})
	if err != nil {
		return nil, err
	}
	offer, err := s.metrics.EarliestEventDeltas(ctx, []domain.EventType{domain.EventOffer})
	if err != nil {
		return nil, err
	}
	return &Milestones{
		AvgDaysToInterview: avgDays(interview),
		AvgDaysToOffer:     avgDays(offer),
	}, nil
}

func avgDays(deltas []repository.MilestoneDelta) *float64 {
	if len(deltas) == 0 {
		return nil
	}
	var sum float64
	for _, d := range deltas {
		sum += d.MilestoneAt.Sub(d.CreatedAt).Hours() / hoursPerDay
	}
	avg := sum / float64(len(deltas))
	return &avg
}

// ChannelConversion is one channel's row in the conversion report.
type ChannelConversion struct {
	Channel   string  `json:"channel"`
	Total     int64   `json:"total"`
	Offers    int64   `json:"offers"`
	OfferRate float64 `json:"offer_rate"`
}

// ByChannel returns per-channel conversion, null channels bucketed as
// "unknown", channels below the sample threshold dropped, largest first.
func (s *MetricsService) ByChannel(ctx context.Context) ([]ChannelConversion, error) {
	rows, err := s.metrics.CountByChannel(ctx, s.channelMinSamples)
	if err != nil {
		return nil, err
	}

	out := make([]ChannelConversion, 0, len(rows))
	for _, row := range rows {
		channel := "unknown"
		if row.Channel != nil && *row.Channel != "" {
			channel = *row.Channel
		}
		conv := ChannelConversion{
			Channel: channel,
			Total:   row.Total,
			Offers:  row.Offers,
		}
		if row.Total > 0 {
			conv.OfferRate = float64(row.Offers) / float64(row.Total)
		}
		out = append(out, conv)
	}
	return out, nil
}
