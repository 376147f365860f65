package domain

// Phase names the coarse conversation state.
type Phase string

const (
	PhaseGathering  Phase = "gathering"
	PhaseModeActive Phase = "mode_active"
)

// Mode names a structured workflow.
type Mode string

const (
	ModeNone      Mode = ""
	ModeDiscovery Mode = "mode_1"
	ModeEvaluate  Mode = "mode_2"
)

// NextAction is the routing phase's chosen action for the turn.
type NextAction string

const (
	ActionAskQuestions   NextAction = "ask_questions"
	ActionMicroSynth     NextAction = "micro_synthesize"
	ActionEnterMode      NextAction = "enter_mode"
	ActionContinueMode   NextAction = "continue_mode"
	ActionFlagConflict   NextAction = "flag_conflict"
	ActionCompleteMode   NextAction = "complete_mode"
)

// RoutingDecision is the parsed output of the routing call. Every key is
// defensively defaulted: the producing model is untrusted and may omit or
// mangle any field.
type RoutingDecision struct {
	NextAction        NextAction `json:"next_action"`
	EnterMode         Mode       `json:"enter_mode"`
	Reasoning         string     `json:"reasoning"`
	ConflictFlags     []string   `json:"conflict_flags"`
	HighRiskUnprobed  []string   `json:"high_risk_unprobed"`
	SuggestedProbes   []string   `json:"suggested_probes"`
	NextProbe         string     `json:"next_probe"`
	TriggeredPatterns []string   `json:"triggered_patterns"`
	MicroSynthesisDue bool       `json:"micro_synthesis_due"`
	EnrichmentNeeded  bool       `json:"enrichment_needed"`
	EnrichmentQuery   string     `json:"enrichment_query"`
	RequiresRetrieval bool       `json:"requires_retrieval"`
}

// FallbackRoutingDecision is the fixed safe default used when the routing
// call fails or returns unparseable output. A routing failure must never
// abort the turn.
func FallbackRoutingDecision(reason string) *RoutingDecision {
	return &RoutingDecision{
		NextAction:        ActionAskQuestions,
		EnterMode:         ModeNone,
		Reasoning:         reason,
		ConflictFlags:     []string{},
		HighRiskUnprobed:  []string{},
		SuggestedProbes:   []string{},
		TriggeredPatterns: []string{},
		RequiresRetrieval: true,
	}
}

// FiredRecord notes that a probe or pattern fired on a given turn.
type FiredRecord struct {
	Name   string `json:"name"`
	Detail string `json:"detail"`
	Turn   int    `json:"turn"`
}

// RoutingContext is per-session scratch state consumed by the routing
// phase. ConversationSummary is a single cumulative string, fully
// overwritten each turn. ModeTurnCount resets on mode entry and exit.
type RoutingContext struct {
	LastDecision        *RoutingDecision `json:"last_routing_decision"`
	ProbesFired         []FiredRecord    `json:"probes_fired"`
	PatternsFired       []FiredRecord    `json:"patterns_fired"`
	MicroSynthesisDue   bool             `json:"micro_synthesis_due"`
	CriticalMassReached bool             `json:"critical_mass_reached"`
	ConversationSummary string           `json:"conversation_summary"`
	ModeTurnCount       int              `json:"mode_turn_count"`
}

// NewRoutingContext creates empty routing scratch state.
func NewRoutingContext() *RoutingContext {
	return &RoutingContext{
		ProbesFired:   []FiredRecord{},
		PatternsFired: []FiredRecord{},
	}
}
