package workflow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/c360studio/vendoriq/catalog"
	"github.com/c360studio/vendoriq/criteria"
	"github.com/c360studio/vendoriq/ranking"
	"github.com/c360studio/vendoriq/scoring"
)

// Sentinel errors for transitions.
var (
	ErrWrongStage    = errors.New("action not valid in current stage")
	ErrUnknownAction = errors.New("unknown action type")
)

// ValidationError aggregates the gate conditions that failed for a
// transition. All failed conditions are reported together so the user can
// correct them in one pass; it is always recoverable, never fatal.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// IsValidation reports whether err is a gate validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Apply consumes one action and advances the session. Gate failures return
// a *ValidationError and leave the session unchanged; stage mismatches
// return ErrWrongStage.
func (s *Session) Apply(action Action) error {
	switch action.Type {
	case ActionReset:
		s.Reset()
		return nil
	case ActionBack:
		return s.back()
	case ActionSetWeight:
		if err := s.requireStage(action.Type, StageConfigure); err != nil {
			return err
		}
		return s.Criteria.SetWeight(action.Name, action.Weight)
	case ActionSetOrganisation:
		if err := s.requireStage(action.Type, StageConfigure); err != nil {
			return err
		}
		s.Organisation = strings.TrimSpace(action.Text)
		return nil
	case ActionSetCategory:
		if err := s.requireStage(action.Type, StageConfigure); err != nil {
			return err
		}
		s.Category = action.Text
		return nil
	case ActionSetRestrictions:
		if err := s.requireStage(action.Type, StageConfigure); err != nil {
			return err
		}
		s.Restrictions = splitRestrictions(action.Text)
		return nil
	case ActionDiscover:
		return s.discover()
	case ActionAddVendor:
		return s.addVendor(action.Name)
	case ActionApprove:
		return s.approve()
	case ActionScore:
		return s.score(action.Selected)
	case ActionRank:
		return s.rank()
	case ActionPromote:
		return s.promote(action.Name)
	case ActionInclude:
		return s.include(action.Name, action.Keep)
	case ActionAnnotate:
		return s.annotate(action.Name, action.Text)
	case ActionFinalize:
		return s.finalize()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAction, action.Type)
	}
}

func (s *Session) requireStage(action ActionType, stages ...Stage) error {
	for _, st := range stages {
		if s.Stage == st {
			return nil
		}
	}
	return fmt.Errorf("%w: %s requires stage %v, session is at %s",
		ErrWrongStage, action, stages, s.Stage)
}

// splitRestrictions parses the one-per-line restriction text area.
func splitRestrictions(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// discover gates out of Configure and populates the candidate list. Valid
// again in Discover as a no-op re-entry: the catalog is not re-fetched.
func (s *Session) discover() error {
	if err := s.requireStage(ActionDiscover, StageConfigure, StageDiscover); err != nil {
		return err
	}

	if s.Stage == StageConfigure {
		var problems []string
		if s.Organisation == "" {
			problems = append(problems, "organisation name is required")
		}
		if s.Category == "" {
			problems = append(problems, "a vendor category must be selected")
		}
		if !s.Criteria.IsValid() {
			problems = append(problems, fmt.Sprintf(
				"criteria weights total %d%%, must equal %d%%",
				s.Criteria.TotalWeight(), criteria.RequiredTotal))
		}
		if len(problems) > 0 {
			return &ValidationError{Problems: problems}
		}
		s.Stage = StageDiscover
		s.appendLog("Session started for %s — Category: %s", s.Organisation, s.Category)
	}

	if s.candidatesLoaded {
		return nil
	}
	if s.discoverDelay > 0 {
		time.Sleep(s.discoverDelay)
	}
	s.Candidates = s.source.Lookup(s.Category)
	s.candidatesLoaded = true
	s.appendLog("Discovered %d vendors in %s", len(s.Candidates), s.Category)
	return nil
}

// addVendor appends a manual candidate. No dedup: duplicate names permitted.
func (s *Session) addVendor(name string) error {
	if err := s.requireStage(ActionAddVendor, StageDiscover); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return &ValidationError{Problems: []string{"vendor name is required"}}
	}
	s.Candidates = append(s.Candidates, catalog.Vendor{Name: name, Description: "Manually added"})
	s.appendLog("Manually added vendor: %s", name)
	return nil
}

// approve snapshots all current candidate names and enters Review.
func (s *Session) approve() error {
	if err := s.requireStage(ActionApprove, StageDiscover); err != nil {
		return err
	}
	s.Approved = make([]string, len(s.Candidates))
	for i, v := range s.Candidates {
		s.Approved[i] = v.Name
	}
	s.Stage = StageReview
	s.appendLog("Moved to vendor review checkpoint")
	return nil
}

// score replaces the approved set with the checked names, then runs the
// scoring pass once per approved vendor. Re-entering Score after scores
// exist does not rescore.
func (s *Session) score(selected []string) error {
	if err := s.requireStage(ActionScore, StageReview, StageScore); err != nil {
		return err
	}

	if s.Stage == StageReview {
		if len(selected) == 0 {
			return &ValidationError{Problems: []string{"at least one vendor must be selected"}}
		}
		s.Approved = append([]string(nil), selected...)
		s.Stage = StageScore
		s.appendLog("Human approved %d vendors for scoring", len(s.Approved))
	}

	if s.scoresComputed {
		return nil
	}

	names := s.Criteria.Names()
	scored := make([]scoring.ScoredVendor, 0, len(s.Approved))
	for _, vendorName := range s.Approved {
		if s.scoreDelay > 0 {
			time.Sleep(s.scoreDelay)
		}
		sv := scoring.Score(vendorName, s.ratings.RatingsFor(vendorName, names), s.Criteria)
		scored = append(scored, sv)
		s.appendLog("Scored %s: %v/100", sv.Name, sv.Total)
	}
	s.Scored = scored
	s.scoresComputed = true
	// Ranking is built on the sorted scoring output; entries land sorted via
	// ranking.New's stable descending sort.
	s.Ranking = ranking.New(scored)
	s.Scored = sortedTotals(s.Ranking)
	s.appendLog("All vendors scored. Ready for human review.")
	return nil
}

// sortedTotals mirrors the ranking's working order back into Scored so the
// Score stage displays the descending list.
func sortedTotals(r *ranking.Ranking) []scoring.ScoredVendor {
	entries := r.Entries()
	out := make([]scoring.ScoredVendor, len(entries))
	for i, e := range entries {
		out[i] = e.ScoredVendor
	}
	return out
}

// rank enters the override checkpoint.
func (s *Session) rank() error {
	if err := s.requireStage(ActionRank, StageScore); err != nil {
		return err
	}
	s.Stage = StageRank
	return nil
}

func (s *Session) promote(name string) error {
	if err := s.requireStage(ActionPromote, StageRank); err != nil {
		return err
	}
	if err := s.Ranking.Promote(name); err != nil {
		return err
	}
	s.Scored = sortedTotals(s.Ranking)
	s.appendLog("Human promoted: %s", name)
	return nil
}

func (s *Session) include(name string, keep bool) error {
	if err := s.requireStage(ActionInclude, StageRank); err != nil {
		return err
	}
	return s.Ranking.SetKeep(name, keep)
}

func (s *Session) annotate(name, note string) error {
	if err := s.requireStage(ActionAnnotate, StageRank); err != nil {
		return err
	}
	return s.Ranking.Annotate(name, note)
}

// finalize snapshots the kept candidates into the final report. Fails with
// a validation error when nothing is kept; the ranking is untouched so the
// user can adjust and retry.
func (s *Session) finalize() error {
	if err := s.requireStage(ActionFinalize, StageRank); err != nil {
		return err
	}
	report, err := s.Ranking.Finalize(s.clock())
	if err != nil {
		if errors.Is(err, ranking.ErrNothingKept) {
			return &ValidationError{Problems: []string{"at least one vendor must be included in the report"}}
		}
		return err
	}
	s.Report = report
	s.Stage = StageReport
	s.appendLog("Final report generated with %d vendors", len(report.Vendors))
	return nil
}

// back returns to the previous stage. Leaving Score for Review clears the
// scores so a later pass rescoring reflects the edited approval set; leaving
// Report for Rank discards the final report but keeps the ranking's working
// state (promotions, inclusion toggles, notes).
func (s *Session) back() error {
	switch s.Stage {
	case StageConfigure:
		return fmt.Errorf("%w: already at the first stage", ErrWrongStage)
	case StageScore:
		s.Scored = nil
		s.scoresComputed = false
		s.Ranking = nil
	case StageReport:
		s.Report = nil
	}
	s.Stage = s.Stage.Prev()
	return nil
}
