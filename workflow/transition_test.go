package workflow

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/c360studio/vendoriq/catalog"
)

// fakeCatalog is a deterministic Source for transition tests.
type fakeCatalog struct {
	categories map[string][]catalog.Vendor
}

func (f *fakeCatalog) Lookup(category string) []catalog.Vendor {
	return f.categories[category]
}

func (f *fakeCatalog) Categories() []string {
	var out []string
	for name := range f.categories {
		out = append(out, name)
	}
	return out
}

// fakeRatings rates listed vendors and defaults everyone else.
type fakeRatings struct {
	profiles map[string]map[string]int
}

func (f *fakeRatings) RatingsFor(vendorName string, criteriaNames []string) map[string]int {
	if p, ok := f.profiles[vendorName]; ok {
		return p
	}
	return catalog.DefaultProfile(criteriaNames)
}

func testSession(t *testing.T) *Session {
	t.Helper()
	src := &fakeCatalog{categories: map[string][]catalog.Vendor{
		"EHR": {
			{Name: "Acme", Description: "big"},
			{Name: "Beta", Description: "small"},
			{Name: "Gamma", Description: "mid"},
		},
	}}
	ratings := &fakeRatings{profiles: map[string]map[string]int{
		"Acme": {"HIPAA Compliance": 10, "Data Security": 6},
		"Beta": {"HIPAA Compliance": 4, "Data Security": 4},
	}}
	return NewSession(
		WithCatalog(src),
		WithRatings(ratings),
		WithDelays(0, 0),
		WithClock(func() time.Time { return time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC) }),
	)
}

// configure walks a session to the Discover stage with two 50% criteria.
func configure(t *testing.T, s *Session) {
	t.Helper()
	for _, name := range s.Criteria.Names() {
		if err := s.Criteria.SetWeight(name, 0); err != nil {
			t.Fatal(err)
		}
	}
	mustApply(t, s, Action{Type: ActionSetWeight, Name: "HIPAA Compliance", Weight: 50})
	mustApply(t, s, Action{Type: ActionSetWeight, Name: "Data Security", Weight: 50})
	mustApply(t, s, Action{Type: ActionSetOrganisation, Text: "St. Mary's Hospital"})
	mustApply(t, s, Action{Type: ActionSetCategory, Text: "EHR"})
	mustApply(t, s, Action{Type: ActionDiscover})
}

func mustApply(t *testing.T, s *Session, a Action) {
	t.Helper()
	if err := s.Apply(a); err != nil {
		t.Fatalf("Apply(%s): %v", a.Type, err)
	}
}

func TestApply_ConfigureGateReportsAllFailures(t *testing.T) {
	s := testSession(t)
	mustApply(t, s, Action{Type: ActionSetWeight, Name: "HIPAA Compliance", Weight: 30})

	err := s.Apply(Action{Type: ActionDiscover})
	if !IsValidation(err) {
		t.Fatalf("Apply(Discover) error = %v, want validation error", err)
	}
	var verr *ValidationError
	errors.As(err, &verr)
	if len(verr.Problems) != 3 {
		t.Fatalf("Problems = %v, want organisation, category and weight failures", verr.Problems)
	}
	if s.Stage != StageConfigure {
		t.Errorf("stage advanced despite gate failure: %s", s.Stage)
	}
}

func TestApply_DiscoverPopulatesOnce(t *testing.T) {
	s := testSession(t)
	configure(t, s)

	if s.Stage != StageDiscover {
		t.Fatalf("stage = %s, want discover", s.Stage)
	}
	if len(s.Candidates) != 3 {
		t.Fatalf("candidates = %d, want 3", len(s.Candidates))
	}
	if !s.CandidatesLoaded() {
		t.Error("CandidatesLoaded() = false after discovery")
	}

	// Manual add, then re-applying Discover must not refetch and wipe it.
	mustApply(t, s, Action{Type: ActionAddVendor, Name: "Manual Inc."})
	mustApply(t, s, Action{Type: ActionDiscover})
	if len(s.Candidates) != 4 {
		t.Errorf("candidates after idempotent rediscover = %d, want 4", len(s.Candidates))
	}
}

func TestApply_DiscoverUnknownCategoryYieldsEmptyList(t *testing.T) {
	s := testSession(t)
	for _, name := range s.Criteria.Names() {
		if err := s.Criteria.SetWeight(name, 0); err != nil {
			t.Fatal(err)
		}
	}
	mustApply(t, s, Action{Type: ActionSetWeight, Name: "HIPAA Compliance", Weight: 50})
	mustApply(t, s, Action{Type: ActionSetWeight, Name: "Data Security", Weight: 50})
	mustApply(t, s, Action{Type: ActionSetOrganisation, Text: "Clinic"})
	mustApply(t, s, Action{Type: ActionSetCategory, Text: "No Such Category"})
	mustApply(t, s, Action{Type: ActionDiscover})

	if s.Stage != StageDiscover {
		t.Fatalf("stage = %s, want discover", s.Stage)
	}
	if len(s.Candidates) != 0 {
		t.Errorf("candidates = %d, want 0", len(s.Candidates))
	}
}

func TestApply_DuplicateManualVendorsPermitted(t *testing.T) {
	s := testSession(t)
	configure(t, s)
	mustApply(t, s, Action{Type: ActionAddVendor, Name: "Twin"})
	mustApply(t, s, Action{Type: ActionAddVendor, Name: "Twin"})
	if len(s.Candidates) != 5 {
		t.Errorf("candidates = %d, want 5 (duplicates allowed)", len(s.Candidates))
	}
}

func TestApply_ApproveSnapshotsAllCandidates(t *testing.T) {
	s := testSession(t)
	configure(t, s)
	mustApply(t, s, Action{Type: ActionApprove})

	if s.Stage != StageReview {
		t.Fatalf("stage = %s, want review", s.Stage)
	}
	if len(s.Approved) != 3 {
		t.Errorf("approved = %v, want all 3 candidate names", s.Approved)
	}
}

func TestApply_ScoreRequiresSelection(t *testing.T) {
	s := testSession(t)
	configure(t, s)
	mustApply(t, s, Action{Type: ActionApprove})

	err := s.Apply(Action{Type: ActionScore, Selected: nil})
	if !IsValidation(err) {
		t.Fatalf("Score with empty selection error = %v, want validation error", err)
	}
}

func TestApply_ScoreReplacesApprovedAndRanksDescending(t *testing.T) {
	s := testSession(t)
	configure(t, s)
	mustApply(t, s, Action{Type: ActionApprove})
	mustApply(t, s, Action{Type: ActionScore, Selected: []string{"Beta", "Acme"}})

	if s.Stage != StageScore {
		t.Fatalf("stage = %s, want score", s.Stage)
	}
	if len(s.Scored) != 2 {
		t.Fatalf("scored = %d vendors, want 2", len(s.Scored))
	}
	// Acme: (10/10)*50 + (6/10)*50 = 80.0; Beta: (4/10)*50*2 = 40.0
	if s.Scored[0].Name != "Acme" || s.Scored[0].Total != 80.0 {
		t.Errorf("rank 1 = %s (%v), want Acme (80.0)", s.Scored[0].Name, s.Scored[0].Total)
	}
	if s.Scored[1].Name != "Beta" || s.Scored[1].Total != 40.0 {
		t.Errorf("rank 2 = %s (%v), want Beta (40.0)", s.Scored[1].Name, s.Scored[1].Total)
	}
}

func TestApply_ScoreIdempotentWithinSession(t *testing.T) {
	s := testSession(t)
	configure(t, s)
	mustApply(t, s, Action{Type: ActionApprove})
	mustApply(t, s, Action{Type: ActionScore, Selected: []string{"Acme"}})
	before := len(s.Log)

	mustApply(t, s, Action{Type: ActionScore})
	if len(s.Log) != before {
		t.Error("re-applying Score rescored vendors")
	}
}

func TestApply_BackFromScoreClearsScores(t *testing.T) {
	s := testSession(t)
	configure(t, s)
	mustApply(t, s, Action{Type: ActionApprove})
	mustApply(t, s, Action{Type: ActionScore, Selected: []string{"Acme", "Beta"}})

	mustApply(t, s, Action{Type: ActionBack})
	if s.Stage != StageReview {
		t.Fatalf("stage = %s, want review", s.Stage)
	}
	if s.ScoresComputed() || s.Scored != nil {
		t.Error("scores survived Back to Review")
	}

	// Returning rescores.
	mustApply(t, s, Action{Type: ActionScore, Selected: []string{"Acme"}})
	if len(s.Scored) != 1 {
		t.Errorf("rescoring produced %d vendors, want 1", len(s.Scored))
	}
}

func TestApply_PromoteAndFinalize(t *testing.T) {
	s := testSession(t)
	configure(t, s)
	mustApply(t, s, Action{Type: ActionApprove})
	mustApply(t, s, Action{Type: ActionScore, Selected: []string{"Acme", "Beta", "Gamma"}})
	mustApply(t, s, Action{Type: ActionRank})

	mustApply(t, s, Action{Type: ActionPromote, Name: "Beta"})
	if s.Scored[0].Name != "Beta" {
		t.Errorf("rank 1 after promote = %s, want Beta", s.Scored[0].Name)
	}

	mustApply(t, s, Action{Type: ActionInclude, Name: "Gamma", Keep: false})
	mustApply(t, s, Action{Type: ActionAnnotate, Name: "Acme", Text: "incumbent"})
	mustApply(t, s, Action{Type: ActionFinalize})

	if s.Stage != StageReport {
		t.Fatalf("stage = %s, want report", s.Stage)
	}
	rep := s.Report
	if len(rep.Vendors) != 2 {
		t.Fatalf("report vendors = %d, want 2", len(rep.Vendors))
	}
	if rep.Vendors[0].Name != "Beta" || rep.Vendors[1].Name != "Acme" {
		t.Errorf("report order = [%s %s], want [Beta Acme]", rep.Vendors[0].Name, rep.Vendors[1].Name)
	}
	if rep.Vendors[1].Note != "incumbent" {
		t.Errorf("note = %q, want incumbent", rep.Vendors[1].Note)
	}
}

func TestApply_FinalizeBlocksWithNothingKept(t *testing.T) {
	s := testSession(t)
	configure(t, s)
	mustApply(t, s, Action{Type: ActionApprove})
	mustApply(t, s, Action{Type: ActionScore, Selected: []string{"Acme"}})
	mustApply(t, s, Action{Type: ActionRank})
	mustApply(t, s, Action{Type: ActionInclude, Name: "Acme", Keep: false})

	err := s.Apply(Action{Type: ActionFinalize})
	if !IsValidation(err) {
		t.Fatalf("Finalize error = %v, want validation error", err)
	}
	if s.Report != nil || s.Stage != StageRank {
		t.Error("failed finalize mutated session state")
	}
}

func TestApply_BackFromReportKeepsRankingState(t *testing.T) {
	s := testSession(t)
	configure(t, s)
	mustApply(t, s, Action{Type: ActionApprove})
	mustApply(t, s, Action{Type: ActionScore, Selected: []string{"Acme", "Beta"}})
	mustApply(t, s, Action{Type: ActionRank})
	mustApply(t, s, Action{Type: ActionInclude, Name: "Beta", Keep: false})
	mustApply(t, s, Action{Type: ActionFinalize})

	mustApply(t, s, Action{Type: ActionBack})
	if s.Stage != StageRank {
		t.Fatalf("stage = %s, want rank", s.Stage)
	}
	if s.Report != nil {
		t.Error("final report survived Back to Rank")
	}
	for _, e := range s.Ranking.Entries() {
		if e.Name == "Beta" && e.Keep {
			t.Error("Beta inclusion toggle reset by Back")
		}
	}
}

func TestApply_CriteriaFrozenAfterConfigure(t *testing.T) {
	s := testSession(t)
	configure(t, s)
	err := s.Apply(Action{Type: ActionSetWeight, Name: "HIPAA Compliance", Weight: 10})
	if !errors.Is(err, ErrWrongStage) {
		t.Errorf("SetWeight outside Configure error = %v, want ErrWrongStage", err)
	}
}

func TestApply_ResetFromAnyStage(t *testing.T) {
	s := testSession(t)
	configure(t, s)
	mustApply(t, s, Action{Type: ActionApprove})
	oldID := s.ID

	mustApply(t, s, Action{Type: ActionReset})
	if s.Stage != StageConfigure {
		t.Errorf("stage after reset = %s, want configure", s.Stage)
	}
	if s.ID == oldID {
		t.Error("reset kept the old session identity")
	}
	if s.Organisation != "" || s.Candidates != nil || len(s.Log) != 0 {
		t.Error("reset did not reinitialize state")
	}
	if !s.Criteria.IsValid() {
		t.Error("reset criteria are not the valid defaults")
	}
}

func TestApply_ActivityLogFormat(t *testing.T) {
	s := testSession(t)
	configure(t, s)
	if len(s.Log) == 0 {
		t.Fatal("no log entries after discovery")
	}
	for _, entry := range s.Log {
		if !strings.HasPrefix(entry, "[09:30:00] ") {
			t.Errorf("log entry %q does not match [HH:MM:SS] prefix", entry)
		}
	}
	if s.Log[0] != "[09:30:00] Session started for St. Mary's Hospital — Category: EHR" {
		t.Errorf("first entry = %q", s.Log[0])
	}
}

func TestApply_SetRestrictions(t *testing.T) {
	s := testSession(t)
	mustApply(t, s, Action{Type: ActionSetRestrictions, Text: "Must be HIPAA compliant\n\n  Must support FHIR  \n"})
	want := []string{"Must be HIPAA compliant", "Must support FHIR"}
	if len(s.Restrictions) != len(want) {
		t.Fatalf("restrictions = %v, want %v", s.Restrictions, want)
	}
	for i := range want {
		if s.Restrictions[i] != want[i] {
			t.Errorf("restrictions[%d] = %q, want %q", i, s.Restrictions[i], want[i])
		}
	}
}

func TestApply_UnknownAction(t *testing.T) {
	s := testSession(t)
	err := s.Apply(Action{Type: ActionType("teleport")})
	if !errors.Is(err, ErrUnknownAction) {
		t.Errorf("error = %v, want ErrUnknownAction", err)
	}
}
