// Package workflow implements the six-stage vendor selection process as a
// pure state machine over a single-owner Session aggregate. Presentation
// layers (HTTP API, CLI) translate user input into Actions and apply them;
// no stage logic lives outside this package.
package workflow

// Stage identifies the current step of the selection wizard.
type Stage string

const (
	// StageConfigure collects organisation, category, restrictions and
	// criteria weights.
	StageConfigure Stage = "configure"
	// StageDiscover populates vendor candidates from the catalog.
	StageDiscover Stage = "discover"
	// StageReview is the human checkpoint over the candidate longlist.
	StageReview Stage = "review"
	// StageScore runs the scoring engine over the approved vendors.
	StageScore Stage = "score"
	// StageRank is the human checkpoint for overrides, notes and exclusions.
	StageRank Stage = "rank"
	// StageReport holds the finalized report and export surface.
	StageReport Stage = "report"
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	return string(s)
}

// IsValid returns true if the stage is one of the six wizard stages.
func (s Stage) IsValid() bool {
	switch s {
	case StageConfigure, StageDiscover, StageReview, StageScore, StageRank, StageReport:
		return true
	default:
		return false
	}
}

// Number returns the 1-based position of the stage in the wizard.
func (s Stage) Number() int {
	switch s {
	case StageConfigure:
		return 1
	case StageDiscover:
		return 2
	case StageReview:
		return 3
	case StageScore:
		return 4
	case StageRank:
		return 5
	case StageReport:
		return 6
	default:
		return 0
	}
}

// Prev returns the stage a Back action moves to, or the stage itself when
// there is nowhere earlier to go.
func (s Stage) Prev() Stage {
	switch s {
	case StageDiscover:
		return StageConfigure
	case StageReview:
		return StageDiscover
	case StageScore:
		return StageReview
	case StageRank:
		return StageScore
	case StageReport:
		return StageRank
	default:
		return s
	}
}
