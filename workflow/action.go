package workflow

// ActionType enumerates the user intents the state machine consumes.
type ActionType string

const (
	// ActionSetWeight updates one criterion weight (Configure only).
	ActionSetWeight ActionType = "set_weight"
	// ActionSetOrganisation sets the organisation name (Configure only).
	ActionSetOrganisation ActionType = "set_organisation"
	// ActionSetCategory selects the vendor category (Configure only).
	ActionSetCategory ActionType = "set_category"
	// ActionSetRestrictions replaces the restriction list from raw text,
	// one restriction per line (Configure only).
	ActionSetRestrictions ActionType = "set_restrictions"
	// ActionDiscover gates out of Configure and populates candidates from
	// the catalog. Idempotent within a session.
	ActionDiscover ActionType = "discover"
	// ActionAddVendor appends a manual candidate (Discover only). Duplicate
	// names are permitted.
	ActionAddVendor ActionType = "add_vendor"
	// ActionApprove snapshots all current candidate names as approved and
	// enters Review.
	ActionApprove ActionType = "approve"
	// ActionScore replaces the approved set with the checked names and runs
	// the scoring pass. Idempotent within a session.
	ActionScore ActionType = "score"
	// ActionRank enters the override checkpoint over the scored output.
	ActionRank ActionType = "rank"
	// ActionPromote moves a vendor to rank 1 (Rank only).
	ActionPromote ActionType = "promote"
	// ActionInclude toggles a candidate's inclusion gate (Rank only).
	ActionInclude ActionType = "include"
	// ActionAnnotate attaches a note to a candidate (Rank only).
	ActionAnnotate ActionType = "annotate"
	// ActionFinalize snapshots the kept candidates into the final report.
	ActionFinalize ActionType = "finalize"
	// ActionBack returns to the previous stage.
	ActionBack ActionType = "back"
	// ActionReset discards the session and reinitializes defaults.
	ActionReset ActionType = "reset"
)

// Action is one user intent with its parameters. Unused fields are ignored
// by the handler for the given type.
type Action struct {
	Type ActionType `json:"type"`

	// Name is a criterion name for set_weight, or a vendor name for
	// add_vendor, promote, include and annotate.
	Name string `json:"name,omitempty"`

	// Weight is the new criterion weight for set_weight.
	Weight int `json:"weight,omitempty"`

	// Text carries the organisation name, category, raw restriction text,
	// or an annotation note depending on the action type.
	Text string `json:"text,omitempty"`

	// Keep is the inclusion flag for include.
	Keep bool `json:"keep,omitempty"`

	// Selected lists the checked vendor names for score.
	Selected []string `json:"selected,omitempty"`
}
