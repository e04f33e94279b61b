package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jshao/jobtrackiq/internal/domain"
	"github.com/jshao/jobtrackiq/internal/repository"
	"gorm.io/gorm"
)

func seedApplication(t *testing.T, db *gorm.DB, status domain.ApplicationStatus, stage domain.Stage, channel *string, createdAt time.Time) *domain.Application {
	t.Helper()
	app := &domain.Application{
		ID:           uuid.New().String(),
		CompanyName:  "Acme",
		RoleTitle:    "Backend Engineer",
		Channel:      channel,
		Status:       status,
		CurrentStage: stage,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	if err := db.Create(app).Error; err != nil {
		t.Fatalf("seeding application: %v", err)
	}
	return app
}

func seedEvent(t *testing.T, db *gorm.DB, appID string, eventType domain.EventType, eventTime time.Time) {
	t.Helper()
	event := &domain.Event{
		ID:            uuid.New().String(),
		ApplicationID: appID,
		EventType:     eventType,
		EventTime:     eventTime,
		CreatedAt:     eventTime,
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("seeding event: %v", err)
	}
}

// TestMetricsOverviewEmpty verifies an empty tracker yields zeroed metrics,
// never a division fault
func TestMetricsOverviewEmpty(t *testing.T) {
	db := newTestDB(t)
	metrics := NewMetricsService(repository.NewMetricsRepository(db), 1)
	ctx := context.Background()

	overview, err := metrics.Overview(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if overview.TotalApplications != 0 {
		t.Errorf("total: got %d, want 0", overview.TotalApplications)
	}
	if overview.OfferRate != 0 || overview.RejectionRate != 0 {
		t.Errorf("rates on empty tracker: got %f/%f, want 0/0", overview.OfferRate, overview.RejectionRate)
	}

	milestones, err := metrics.TimeToMilestones(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if milestones.AvgDaysToInterview != nil || milestones.AvgDaysToOffer != nil {
		t.Errorf("milestones on empty tracker should be nil, got %+v", milestones)
	}

	channels, err := metrics.ByChannel(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(channels) != 0 {
		t.Errorf("channels on empty tracker: got %d rows, want 0", len(channels))
	}
}

func TestMetricsOverview(t *testing.T) {
	db := newTestDB(t)
	metrics := NewMetricsService(repository.NewMetricsRepository(db), 1)
	now := time.Now().UTC()

	seedApplication(t, db, domain.StatusActive, domain.StageApplied, nil, now)
	seedApplication(t, db, domain.StatusActive, domain.StageInterview1, nil, now)
	seedApplication(t, db, domain.StatusOffer, domain.StageOffer, nil, now)
	seedApplication(t, db, domain.StatusRejected, domain.StageRejection, nil, now)

	overview, err := metrics.Overview(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if overview.TotalApplications != 4 {
		t.Errorf("total: got %d, want 4", overview.TotalApplications)
	}
	if got := overview.ByStatus["active"]; got != 2 {
		t.Errorf("active count: got %d, want 2", got)
	}
	if overview.OfferRate != 0.25 {
		t.Errorf("offer rate: got %f, want 0.25", overview.OfferRate)
	}
	if overview.RejectionRate != 0.25 {
		t.Errorf("rejection rate: got %f, want 0.25", overview.RejectionRate)
	}
}

func TestMetricsFunnel(t *testing.T) {
	db := newTestDB(t)
	metrics := NewMetricsService(repository.NewMetricsRepository(db), 1)
	now := time.Now().UTC()

	seedApplication(t, db, domain.StatusActive, domain.StageApplied, nil, now)
	seedApplication(t, db, domain.StatusActive, domain.StageApplied, nil, now)
	seedApplication(t, db, domain.StatusActive, domain.StageInterview1, nil, now)
	seedApplication(t, db, domain.StatusOffer, domain.StageOffer, nil, now)

	funnel, err := metrics.Funnel(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if funnel.TotalApplications != 4 {
		t.Errorf("total: got %d, want 4", funnel.TotalApplications)
	}
	if got := funnel.ByStage["applied"]; got != 2 {
		t.Errorf("applied count: got %d, want 2", got)
	}
	if got := funnel.ByStage["interview_1"]; got != 1 {
		t.Errorf("interview_1 count: got %d, want 1", got)
	}
	if got := funnel.ByStage["offer"]; got != 1 {
		t.Errorf("offer count: got %d, want 1", got)
	}
}

// TestMetricsTimeToMilestones checks the averages only cover applications
// that reached the milestone and use each application's earliest event.
func TestMetricsTimeToMilestones(t *testing.T) {
	db := newTestDB(t)
	metrics := NewMetricsService(repository.NewMetricsRepository(db), 1)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	// Reached interview after 2 days, a later interview is ignored
	a := seedApplication(t, db, domain.StatusActive, domain.StageInterview2, nil, base)
	seedEvent(t, db, a.ID, domain.EventInterview1, base.Add(2*24*time.Hour))
	seedEvent(t, db, a.ID, domain.EventInterview2, base.Add(9*24*time.Hour))

	// Reached interview after 4 days and an offer after 10
	b := seedApplication(t, db, domain.StatusOffer, domain.StageOffer, nil, base)
	seedEvent(t, db, b.ID, domain.EventInterview1, base.Add(4*24*time.Hour))
	seedEvent(t, db, b.ID, domain.EventOffer, base.Add(10*24*time.Hour))

	// Never interviewed; excluded from both averages
	seedApplication(t, db, domain.StatusActive, domain.StageApplied, nil, base)

	milestones, err := metrics.TimeToMilestones(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if milestones.AvgDaysToInterview == nil {
		t.Fatal("expected an interview average")
	}
	if got := *milestones.AvgDaysToInterview; math.Abs(got-3.0) > 1e-9 {
		t.Errorf("avg days to interview: got %f, want 3.0", got)
	}
	if milestones.AvgDaysToOffer == nil {
		t.Fatal("expected an offer average")
	}
	if got := *milestones.AvgDaysToOffer; math.Abs(got-10.0) > 1e-9 {
		t.Errorf("avg days to offer: got %f, want 10.0", got)
	}
}

// TestMetricsByChannel checks the unknown bucket, the sample threshold and
// the per-channel offer rate.
func TestMetricsByChannel(t *testing.T) {
	db := newTestDB(t)
	now := time.Now().UTC()

	referral := strPtr("referral")
	board := strPtr("job_board")
	seedApplication(t, db, domain.StatusOffer, domain.StageOffer, referral, now)
	seedApplication(t, db, domain.StatusRejected, domain.StageRejection, referral, now)
	seedApplication(t, db, domain.StatusActive, domain.StageApplied, board, now)
	seedApplication(t, db, domain.StatusActive, domain.StageApplied, nil, now)

	t.Run("threshold one keeps every channel", func(t *testing.T) {
		metrics := NewMetricsService(repository.NewMetricsRepository(db), 1)
		rows, err := metrics.ByChannel(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("row count: got %d, want 3", len(rows))
		}
		if rows[0].Channel != "referral" || rows[0].Total != 2 {
			t.Errorf("largest channel first: got %s/%d", rows[0].Channel, rows[0].Total)
		}
		if rows[0].Offers != 1 || rows[0].OfferRate != 0.5 {
			t.Errorf("referral conversion: got %d offers, rate %f", rows[0].Offers, rows[0].OfferRate)
		}

		foundUnknown := false
		for _, row := range rows {
			if row.Channel == "unknown" {
				foundUnknown = true
			}
		}
		if !foundUnknown {
			t.Error("null channel should be bucketed as unknown")
		}
	})

	t.Run("threshold two drops small channels", func(t *testing.T) {
		metrics := NewMetricsService(repository.NewMetricsRepository(db), 2)
		rows, err := metrics.ByChannel(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("row count: got %d, want 1", len(rows))
		}
		if rows[0].Channel != "referral" {
			t.Errorf("surviving channel: got %s, want referral", rows[0].Channel)
		}
	})
}
