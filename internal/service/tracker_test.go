package service

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/jshao/jobtrackiq/internal/domain"
	"github.com/jshao/jobtrackiq/internal/logger"
	"github.com/jshao/jobtrackiq/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a throwaway SQLite database in the test's temp directory
// and migrates the schema. A single connection keeps SQLite happy under the
// transactional tests.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := repository.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newTestLogger() *logger.Logger {
	return logger.New(&logger.Config{
		Level:       "error",
		Format:      "text",
		Output:      io.Discard,
		ServiceName: "test",
	})
}

func newTestTracker(t *testing.T, dupeWindow time.Duration) (*TrackerService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	companies := NewCompanyService(repository.NewCompanyRepository(db))
	tracker := NewTrackerService(db, companies, newTestLogger(), &TrackerConfig{
		DuplicateWindow: dupeWindow,
	})
	return tracker, db
}

func strPtr(s string) *string {
	return &s
}

func TestCreateApplication(t *testing.T) {
	tracker, db := newTestTracker(t, 0)
	ctx := context.Background()

	app, err := tracker.CreateApplication(ctx, CreateApplicationInput{
		CompanyName: "Acme Corp",
		RoleTitle:   "Backend Engineer",
		Channel:     strPtr("referral"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app.Status != domain.StatusActive {
		t.Errorf("status: got %s, want %s", app.Status, domain.StatusActive)
	}
	if app.CurrentStage != domain.StageApplied {
		t.Errorf("stage: got %s, want %s", app.CurrentStage, domain.StageApplied)
	}
	if app.ID == "" {
		t.Error("expected a generated ID")
	}

	// Creation feeds the company index
	var entry domain.CompanyIndexEntry
	if err := db.Where("normalized_name = ?", "acme corp").First(&entry).Error; err != nil {
		t.Fatalf("expected a company index entry: %v", err)
	}
	if entry.Popularity != 1 {
		t.Errorf("popularity: got %d, want 1", entry.Popularity)
	}
}

func TestCreateApplicationValidation(t *testing.T) {
	tracker, _ := newTestTracker(t, 0)
	ctx := context.Background()

	testCases := []struct {
		name  string
		input CreateApplicationInput
	}{
		{name: "empty company", input: CreateApplicationInput{CompanyName: "  ", RoleTitle: "SRE"}},
		{name: "empty role", input: CreateApplicationInput{CompanyName: "Acme", RoleTitle: ""}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tracker.CreateApplication(ctx, tc.input); !domain.IsValidationError(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

// TestAddEventProgression drives an application through interviews to an
// offer, then checks the final-status lock and the reopen escape hatch.
func TestAddEventProgression(t *testing.T) {
	tracker, _ := newTestTracker(t, 0)
	ctx := context.Background()

	app, err := tracker.CreateApplication(ctx, CreateApplicationInput{
		CompanyName: "Acme",
		RoleTitle:   "Backend Engineer",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, et := range []domain.EventType{domain.EventInterview1, domain.EventInterview2, domain.EventOffer} {
		if _, err := tracker.AddEvent(ctx, app.ID, EventInput{EventType: et}); err != nil {
			t.Fatalf("adding %s: %v", et, err)
		}
	}

	got, err := tracker.GetApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.StatusOffer || got.CurrentStage != domain.StageOffer {
		t.Fatalf("after offer: got %s/%s, want offer/offer", got.Status, got.CurrentStage)
	}

	// The offer locks the application
	if _, err := tracker.AddEvent(ctx, app.ID, EventInput{EventType: domain.EventFollowUp}); !domain.IsValidationError(err) {
		t.Fatalf("expected validation error on locked application, got %v", err)
	}

	// Reopen is the only escape hatch
	if _, err := tracker.AddEvent(ctx, app.ID, EventInput{EventType: domain.EventReopen}); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err = tracker.GetApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != domain.StatusActive || got.CurrentStage != domain.StageApplied {
		t.Fatalf("after reopen: got %s/%s, want active/applied", got.Status, got.CurrentStage)
	}
}

// TestAddEventRejectionWritesNothing verifies the all-or-nothing contract: a
// rejected event leaves both the event log and the application untouched.
func TestAddEventRejectionWritesNothing(t *testing.T) {
	tracker, _ := newTestTracker(t, 0)
	ctx := context.Background()

	app, err := tracker.CreateApplication(ctx, CreateApplicationInput{
		CompanyName: "Acme",
		RoleTitle:   "Backend Engineer",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tracker.AddEvent(ctx, app.ID, EventInput{EventType: domain.EventInterview2}); err != nil {
		t.Fatalf("interview_2: %v", err)
	}

	// Backwards move is rejected
	if _, err := tracker.AddEvent(ctx, app.ID, EventInput{EventType: domain.EventInterview1}); !domain.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	events, err := tracker.ListEvents(ctx, app.ID, 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("event count: got %d, want 1", len(events))
	}
	got, err := tracker.GetApplication(ctx, app.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CurrentStage != domain.StageInterview2 {
		t.Errorf("stage: got %s, want %s", got.CurrentStage, domain.StageInterview2)
	}
}

// TestAddEventDuplicateWindow verifies that a same-type event landing inside
// the window is rejected and accepted again once the window passes.
func TestAddEventDuplicateWindow(t *testing.T) {
	tracker, _ := newTestTracker(t, 150*time.Millisecond)
	ctx := context.Background()

	app, err := tracker.CreateApplication(ctx, CreateApplicationInput{
		CompanyName: "Acme",
		RoleTitle:   "Backend Engineer",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := tracker.AddEvent(ctx, app.ID, EventInput{EventType: domain.EventFollowUp}); err != nil {
		t.Fatalf("first follow_up: %v", err)
	}

	// Immediate same-type retry falls inside the window
	if _, err := tracker.AddEvent(ctx, app.ID, EventInput{EventType: domain.EventFollowUp}); !domain.IsValidationError(err) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}

	// A different event type is unaffected by the window
	if _, err := tracker.AddEvent(ctx, app.ID, EventInput{EventType: domain.EventInterview1}); err != nil {
		t.Fatalf("interview_1 inside follow_up window: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	if _, err := tracker.AddEvent(ctx, app.ID, EventInput{EventType: domain.EventFollowUp}); err != nil {
		t.Fatalf("follow_up after window: %v", err)
	}
}

// TestAddEventDuplicateWindowIgnoresEventTime checks the window is measured
// against persistence time, so a caller backdating event_time cannot slip a
// rapid duplicate through.
func TestAddEventDuplicateWindowIgnoresEventTime(t *testing.T) {
	tracker, _ := newTestTracker(t, time.Minute)
	ctx := context.Background()

	app, err := tracker.CreateApplication(ctx, CreateApplicationInput{
		CompanyName: "Acme",
		RoleTitle:   "Backend Engineer",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	past := time.Now().UTC().Add(-48 * time.Hour)
	if _, err := tracker.AddEvent(ctx, app.ID, EventInput{EventType: domain.EventFollowUp, EventTime: &past}); err != nil {
		t.Fatalf("first follow_up: %v", err)
	}

	earlier := past.Add(-time.Hour)
	if _, err := tracker.AddEvent(ctx, app.ID, EventInput{EventType: domain.EventFollowUp, EventTime: &earlier}); !domain.IsValidationError(err) {
		t.Fatalf("expected duplicate rejection despite backdated event_time, got %v", err)
	}
}

func TestAddEventUnknownApplication(t *testing.T) {
	tracker, _ := newTestTracker(t, 0)

	_, err := tracker.AddEvent(context.Background(), "no-such-id", EventInput{EventType: domain.EventApplied})
	if err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteApplicationRemovesEvents(t *testing.T) {
	tracker, db := newTestTracker(t, 0)
	ctx := context.Background()

	app, err := tracker.CreateApplication(ctx, CreateApplicationInput{
		CompanyName: "Acme",
		RoleTitle:   "Backend Engineer",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tracker.AddEvent(ctx, app.ID, EventInput{EventType: domain.EventInterview1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := tracker.DeleteApplication(ctx, app.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := tracker.GetApplication(ctx, app.ID); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	var count int64
	if err := db.Model(&domain.Event{}).Where("application_id = ?", app.ID).Count(&count).Error; err != nil {
		t.Fatalf("counting events: %v", err)
	}
	if count != 0 {
		t.Errorf("orphaned events: got %d, want 0", count)
	}
}

func TestListApplicationsFiltering(t *testing.T) {
	tracker, _ := newTestTracker(t, 0)
	ctx := context.Background()

	for _, in := range []CreateApplicationInput{
		{CompanyName: "Acme", RoleTitle: "Backend Engineer"},
		{CompanyName: "Globex", RoleTitle: "Data Engineer"},
		{CompanyName: "Initech", RoleTitle: "Frontend Engineer"},
	} {
		if _, err := tracker.CreateApplication(ctx, in); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	total, apps, err := tracker.ListApplications(ctx, repository.ApplicationListParams{
		Search: "engineer",
		Limit:  2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 {
		t.Errorf("total: got %d, want 3", total)
	}
	if len(apps) != 2 {
		t.Errorf("page size: got %d, want 2", len(apps))
	}

	total, _, err = tracker.ListApplications(ctx, repository.ApplicationListParams{
		Search: "globex",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 {
		t.Errorf("company search total: got %d, want 1", total)
	}
}
