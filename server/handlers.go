package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/c360studio/vendoriq/catalog"
	"github.com/c360studio/vendoriq/criteria"
	"github.com/c360studio/vendoriq/export"
	"github.com/c360studio/vendoriq/ranking"
	"github.com/c360studio/vendoriq/rfp"
	"github.com/c360studio/vendoriq/scoring"
	"github.com/c360studio/vendoriq/workflow"
)

// sessionState is the full wizard state returned to clients.
type sessionState struct {
	ID           string                 `json:"id"`
	Stage        string                 `json:"stage"`
	StageNumber  int                    `json:"stage_number"`
	Organisation string                 `json:"organisation"`
	Category     string                 `json:"category"`
	Restrictions []string               `json:"restrictions"`
	Criteria     []criteria.Criterion   `json:"criteria"`
	TotalWeight  int                    `json:"total_weight"`
	WeightsValid bool                   `json:"weights_valid"`
	Candidates   []catalog.Vendor       `json:"candidates,omitempty"`
	Approved     []string               `json:"approved,omitempty"`
	Scored       []scoring.ScoredVendor `json:"scored,omitempty"`
	TopChoices   []ranking.Entry        `json:"top_choices,omitempty"`
	Promotable   []ranking.Entry        `json:"promotable,omitempty"`
	Report       *ranking.Report        `json:"report,omitempty"`
	Summary      *reportSummary         `json:"summary,omitempty"`
	Log          []string               `json:"log"`
}

// reportSummary carries the finalized report's headline figures.
type reportSummary struct {
	Selected     int     `json:"selected"`
	Evaluated    int     `json:"evaluated"`
	TopScore     float64 `json:"top_score"`
	AverageScore float64 `json:"average_score"`
}

func (s *Server) snapshot() sessionState {
	sess := s.session
	state := sessionState{
		ID:           sess.ID,
		Stage:        sess.Stage.String(),
		StageNumber:  sess.Stage.Number(),
		Organisation: sess.Organisation,
		Category:     sess.Category,
		Restrictions: sess.Restrictions,
		Criteria:     sess.Criteria.List(),
		TotalWeight:  sess.Criteria.TotalWeight(),
		WeightsValid: sess.Criteria.IsValid(),
		Candidates:   sess.Candidates,
		Approved:     sess.Approved,
		Scored:       sess.Scored,
		Report:       sess.Report,
		Log:          sess.Log,
	}
	if sess.Ranking != nil {
		state.TopChoices = sess.Ranking.Candidates()
		state.Promotable = sess.Ranking.Promotable()
	}
	if sess.Report != nil {
		state.Summary = &reportSummary{
			Selected:     len(sess.Report.Vendors),
			Evaluated:    len(sess.Scored),
			TopScore:     sess.Report.TopScore(),
			AverageScore: sess.Report.AverageScore(),
		}
	}
	return state
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetSession(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	state := s.snapshot()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var action workflow.Action
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		writeError(w, http.StatusBadRequest, "invalid action body: "+err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scoredBefore := s.session.ScoresComputed()
	err := s.session.Apply(action)
	if err != nil {
		var verr *workflow.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":    "validation failed",
				"problems": verr.Problems,
			})
		case errors.Is(err, workflow.ErrWrongStage):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, ranking.ErrVendorNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	s.recordActionMetrics(action, scoredBefore)
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) recordActionMetrics(action workflow.Action, scoredBefore bool) {
	s.metrics.SetStage(s.session.Stage.Number())
	switch action.Type {
	case workflow.ActionReset:
		s.metrics.SessionStarted()
	case workflow.ActionScore:
		if !scoredBefore && s.session.ScoresComputed() {
			s.metrics.VendorsScored(len(s.session.Scored))
		}
	case workflow.ActionFinalize:
		s.metrics.ReportFinalized()
	}
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	doc, err := export.Build(s.session)
	filename := export.Filename(s.session.Now())
	s.mu.Unlock()

	if err != nil {
		if errors.Is(err, export.ErrNoReport) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	data, err := doc.Marshal()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// rfpRequest is the generation request body. Fields left empty fall back to
// the active session's state.
type rfpRequest struct {
	Category     string   `json:"category"`
	Organisation string   `json:"organisation"`
	TopVendors   []string `json:"top_vendors"`
	Deadline     string   `json:"deadline"`
}

func (s *Server) handleRFP(w http.ResponseWriter, r *http.Request) {
	if s.generator == nil {
		writeError(w, http.StatusServiceUnavailable, "rfp generation is not configured")
		return
	}

	var body rfpRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid rfp body: "+err.Error())
		return
	}

	s.mu.Lock()
	req := rfp.Request{
		Category:     body.Category,
		Organisation: body.Organisation,
		TopVendors:   body.TopVendors,
		Criteria:     s.session.Criteria.Clone(),
		Restrictions: append([]string(nil), s.session.Restrictions...),
		Deadline:     rfp.Deadline(body.Deadline),
	}
	if req.Category == "" {
		req.Category = s.session.Category
	}
	if req.Organisation == "" {
		req.Organisation = s.session.Organisation
	}
	if len(req.TopVendors) == 0 && s.session.Report != nil {
		for _, v := range s.session.Report.Vendors {
			req.TopVendors = append(req.TopVendors, v.Name)
		}
	}
	s.mu.Unlock()

	result, err := s.generator.Generate(r.Context(), req)
	if err != nil {
		if errors.Is(err, rfp.ErrGeneration) || errors.Is(err, rfp.ErrNoTemplate) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.metrics.RFPGenerated(string(result.Source))
	writeJSON(w, http.StatusOK, map[string]string{
		"path":   result.Path,
		"source": string(result.Source),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
