package service

import (
	"context"
	"testing"

	"github.com/jshao/jobtrackiq/internal/domain"
	"github.com/jshao/jobtrackiq/internal/repository"
	"gorm.io/gorm"
)

func newTestPostings(t *testing.T) (*PostingService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	companies := NewCompanyService(repository.NewCompanyRepository(db))
	return NewPostingService(db, companies, newTestLogger()), db
}

// TestBuildFingerprint verifies the identity key is stable under formatting
// noise and sensitive to every part
func TestBuildFingerprint(t *testing.T) {
	company := "Acme Corp"
	role := "Backend Engineer"
	location := "Berlin"
	url := "https://acme.example/jobs/1"

	base := BuildFingerprint(&company, &role, &location, &url)

	t.Run("stable across calls", func(t *testing.T) {
		if got := BuildFingerprint(&company, &role, &location, &url); got != base {
			t.Errorf("fingerprint not stable: %s vs %s", got, base)
		}
	})

	t.Run("normalization folds case and whitespace", func(t *testing.T) {
		noisyCompany := "  ACME   corp "
		if got := BuildFingerprint(&noisyCompany, &role, &location, &url); got != base {
			t.Errorf("formatting noise changed the fingerprint")
		}
	})

	t.Run("each part contributes", func(t *testing.T) {
		otherRole := "Data Engineer"
		otherLocation := "Munich"
		otherURL := "https://acme.example/jobs/2"
		variants := []string{
			BuildFingerprint(&company, &otherRole, &location, &url),
			BuildFingerprint(&company, &role, &otherLocation, &url),
			BuildFingerprint(&company, &role, &location, &otherURL),
		}
		for i, v := range variants {
			if v == base {
				t.Errorf("variant %d collided with base fingerprint", i)
			}
		}
	})

	t.Run("nil parts are skipped", func(t *testing.T) {
		if got := BuildFingerprint(&company, &role, nil, nil); got == base {
			t.Errorf("dropping parts should change the fingerprint")
		}
	})
}

func TestPostingUpsertIdempotent(t *testing.T) {
	postings, db := newTestPostings(t)
	ctx := context.Background()

	input := PostingInput{
		CompanyName: "Acme Corp",
		RoleTitle:   "Backend Engineer",
		Location:    strPtr("Berlin"),
		URL:         strPtr("https://acme.example/jobs/1"),
	}

	first, err := postings.Upsert(ctx, domain.PostingSourceGreenhouse, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Re-ingesting the same posting, formatting noise included, is a no-op
	input.CompanyName = "  ACME   CORP "
	second, err := postings.Upsert(ctx, domain.PostingSourceGreenhouse, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected existing posting, got a new one: %s vs %s", second.ID, first.ID)
	}

	var count int64
	if err := db.Model(&domain.JobPosting{}).Count(&count).Error; err != nil {
		t.Fatalf("counting postings: %v", err)
	}
	if count != 1 {
		t.Errorf("posting count: got %d, want 1", count)
	}
}

func TestPostingUpsertValidation(t *testing.T) {
	postings, _ := newTestPostings(t)
	ctx := context.Background()

	if _, err := postings.Upsert(ctx, domain.PostingSourceManual, PostingInput{CompanyName: " ", RoleTitle: "SRE"}); !domain.IsValidationError(err) {
		t.Errorf("empty company: expected validation error, got %v", err)
	}
	if _, err := postings.Upsert(ctx, domain.PostingSourceManual, PostingInput{CompanyName: "Acme", RoleTitle: ""}); !domain.IsValidationError(err) {
		t.Errorf("empty role: expected validation error, got %v", err)
	}
}

// TestPromote verifies promotion consumes the posting and leaves a tracked
// application at active/applied with its initial event recorded.
func TestPromote(t *testing.T) {
	postings, db := newTestPostings(t)
	ctx := context.Background()

	posting, err := postings.Create(ctx, PostingInput{
		CompanyName: "Acme Corp",
		RoleTitle:   "Backend Engineer",
		Location:    strPtr("Berlin"),
		JDText:      strPtr("Build things."),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	app, err := postings.Promote(ctx, posting.ID, strPtr("job_board"))
	if err != nil {
		t.Fatalf("promote: %v", err)
	}

	if app.CompanyName != "Acme Corp" || app.RoleTitle != "Backend Engineer" {
		t.Errorf("carried fields: got %s/%s", app.CompanyName, app.RoleTitle)
	}
	if app.Status != domain.StatusActive || app.CurrentStage != domain.StageApplied {
		t.Errorf("new application: got %s/%s, want active/applied", app.Status, app.CurrentStage)
	}
	if app.Channel == nil || *app.Channel != "job_board" {
		t.Errorf("channel not carried: %v", app.Channel)
	}
	if app.Location == nil || *app.Location != "Berlin" {
		t.Errorf("location not carried: %v", app.Location)
	}

	// The initial applied event exists
	var events []domain.Event
	if err := db.Where("application_id = ?", app.ID).Find(&events).Error; err != nil {
		t.Fatalf("loading events: %v", err)
	}
	if len(events) != 1 || events[0].EventType != domain.EventApplied {
		t.Fatalf("initial event: got %+v", events)
	}

	// The posting left the inbox
	if _, err := postings.Get(ctx, posting.ID); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound for consumed posting, got %v", err)
	}
}

func TestPromoteUnknownPosting(t *testing.T) {
	postings, _ := newTestPostings(t)

	if _, err := postings.Promote(context.Background(), "no-such-id", nil); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPostingListSearch(t *testing.T) {
	postings, _ := newTestPostings(t)
	ctx := context.Background()

	seed := []PostingInput{
		{CompanyName: "Acme", RoleTitle: "Backend Engineer", Location: strPtr("Berlin")},
		{CompanyName: "Globex", RoleTitle: "Data Engineer", Location: strPtr("Munich")},
		{CompanyName: "Initech", RoleTitle: "Product Manager", Location: strPtr("Berlin")},
	}
	for _, in := range seed {
		if _, err := postings.Create(ctx, in); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	total, _, err := postings.List(ctx, "engineer", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("role search total: got %d, want 2", total)
	}

	total, _, err = postings.List(ctx, "berlin", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("location search total: got %d, want 2", total)
	}
}
