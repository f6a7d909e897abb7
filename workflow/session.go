package workflow

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/vendoriq/catalog"
	"github.com/c360studio/vendoriq/criteria"
	"github.com/c360studio/vendoriq/ranking"
	"github.com/c360studio/vendoriq/scoring"
)

// Pacing defaults for the progress-indicator delays. Fixed sleeps, not real
// suspension points; a pass runs to completion once started.
const (
	DefaultDiscoverDelay = 1500 * time.Millisecond
	DefaultScoreDelay    = 600 * time.Millisecond
)

// Session is the aggregate root owning all workflow state for one run.
// Single-owner: callers serialize access; the session itself holds no locks.
type Session struct {
	ID           string
	CreatedAt    time.Time
	Stage        Stage
	Organisation string
	Category     string
	Restrictions []string
	Criteria     *criteria.Set

	// Candidates and Scored are derived collections; the computed flags make
	// the stage idempotency explicit instead of relying on emptiness checks.
	Candidates       []catalog.Vendor
	candidatesLoaded bool
	Approved         []string
	Scored           []scoring.ScoredVendor
	scoresComputed   bool

	Ranking *ranking.Ranking
	Report  *ranking.Report

	// Log is the append-only activity log, entries "[HH:MM:SS] message".
	Log []string

	source        catalog.Source
	ratings       catalog.RatingSource
	discoverDelay time.Duration
	scoreDelay    time.Duration
	clock         func() time.Time
	logger        *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithCatalog sets the vendor catalog collaborator.
func WithCatalog(src catalog.Source) Option {
	return func(s *Session) { s.source = src }
}

// WithRatings sets the rating source collaborator.
func WithRatings(r catalog.RatingSource) Option {
	return func(s *Session) { s.ratings = r }
}

// WithDelays overrides the pacing delays. Zero disables pacing; tests use
// this to run synchronously.
func WithDelays(discover, score time.Duration) Option {
	return func(s *Session) {
		s.discoverDelay = discover
		s.scoreDelay = score
	}
}

// WithClock sets the time source used for log timestamps and report dates.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) { s.clock = clock }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// NewSession creates a session at the Configure stage with default criteria
// and restrictions.
func NewSession(opts ...Option) *Session {
	s := &Session{
		discoverDelay: DefaultDiscoverDelay,
		scoreDelay:    DefaultScoreDelay,
		clock:         time.Now,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.source == nil {
		s.source = catalog.MustStatic()
	}
	if s.ratings == nil {
		s.ratings = catalog.MustStaticRatings()
	}
	s.init()
	return s
}

// init seeds the mutable state; shared by NewSession and Reset.
func (s *Session) init() {
	s.ID = uuid.New().String()
	s.CreatedAt = s.clock()
	s.Stage = StageConfigure
	s.Organisation = ""
	s.Category = ""
	s.Restrictions = criteria.DefaultRestrictions()
	s.Criteria = criteria.DefaultSet()
	s.Candidates = nil
	s.candidatesLoaded = false
	s.Approved = nil
	s.Scored = nil
	s.scoresComputed = false
	s.Ranking = nil
	s.Report = nil
	s.Log = nil
}

// Reset discards the session wholesale and reinitializes defaults. Always
// available, always succeeds.
func (s *Session) Reset() {
	s.logger.Info("Session reset", "session_id", s.ID, "stage", s.Stage.String())
	s.init()
}

// CandidatesLoaded reports whether the discovery pass has run this session.
func (s *Session) CandidatesLoaded() bool {
	return s.candidatesLoaded
}

// ScoresComputed reports whether the scoring pass has run this session.
func (s *Session) ScoresComputed() bool {
	return s.scoresComputed
}

// Now returns the current time per the session clock, so timestamps derived
// from the session (log entries, report dates, export filenames) agree.
func (s *Session) Now() time.Time {
	return s.clock()
}

// appendLog records a timestamped activity log entry.
func (s *Session) appendLog(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	entry := fmt.Sprintf("[%s] %s", s.clock().Format("15:04:05"), msg)
	s.Log = append(s.Log, entry)
	s.logger.Debug("Activity", "session_id", s.ID, "message", msg)
}
