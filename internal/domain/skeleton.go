package domain

import "fmt"

// StakeholderType classifies a stakeholder's relationship to the problem.
type StakeholderType string

const (
	StakeholderDecisionAuthority    StakeholderType = "decision_authority"
	StakeholderPainHolder           StakeholderType = "pain_holder"
	StakeholderStatusQuoBeneficiary StakeholderType = "status_quo_beneficiary"
	StakeholderExecutionDependency  StakeholderType = "execution_dependency"
)

// Stakeholder is one entry in the skeleton's stakeholder map.
type Stakeholder struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Type      StakeholderType `json:"type"`
	Validated bool            `json:"validated"`
	Notes     string          `json:"notes"`
}

// SuccessMetrics holds the leading/lagging/anti-metric triple.
type SuccessMetrics struct {
	Leading    string `json:"leading"`
	Lagging    string `json:"lagging"`
	AntiMetric string `json:"anti_metric"`
}

// Empty reports whether no metric has been set yet.
func (m SuccessMetrics) Empty() bool {
	return m.Leading == "" && m.Lagging == "" && m.AntiMetric == ""
}

// DecisionCriteria holds the proceed / do-not-proceed condition lists.
type DecisionCriteria struct {
	ProceedIf      []string `json:"proceed_if"`
	DoNotProceedIf []string `json:"do_not_proceed_if"`
}

// Empty reports whether no criterion has been added yet.
func (c DecisionCriteria) Empty() bool {
	return len(c.ProceedIf) == 0 && len(c.DoNotProceedIf) == 0
}

// RiskLevel grades one of the four risk dimensions.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskDimension names one of the four evaluation axes.
type RiskDimension string

const (
	RiskDimensionValue       RiskDimension = "value"
	RiskDimensionUsability   RiskDimension = "usability"
	RiskDimensionFeasibility RiskDimension = "feasibility"
	RiskDimensionViability   RiskDimension = "viability"
)

// RiskAssessment holds the flat per-dimension assessment fields.
type RiskAssessment struct {
	Level           RiskLevel `json:"level"`
	Summary         string    `json:"summary"`
	EvidenceFor     []string  `json:"evidence_for"`
	EvidenceAgainst []string  `json:"evidence_against"`
}

// ValidationApproach names a recognized validation technique.
type ValidationApproach string

const (
	ValidationPaintedDoor    ValidationApproach = "painted_door"
	ValidationConcierge      ValidationApproach = "concierge"
	ValidationTechnicalSpike ValidationApproach = "technical_spike"
	ValidationWizardOfOz     ValidationApproach = "wizard_of_oz"
	ValidationPrototype      ValidationApproach = "prototype"
	ValidationOther          ValidationApproach = "other"
)

// GoNoGoRecommendation is the evaluation verdict.
type GoNoGoRecommendation string

const (
	GoNoGoGo            GoNoGoRecommendation = "go"
	GoNoGoConditionalGo GoNoGoRecommendation = "conditional_go"
	GoNoGoPivot         GoNoGoRecommendation = "pivot"
	GoNoGoNoGo          GoNoGoRecommendation = "no_go"
)

// DocumentSkeleton is the flat, pre-declared accumulator of discovered
// facts that backs the rendered artifacts. The schema is fixed: unknown
// keys are never introduced dynamically, and every field sits one level
// deep. This avoids path-based addressing errors from tool calls.
//
// It is initialized empty at session start, populated incrementally by
// tool calls, and reset only on an explicit new-project action, never on
// mode completion.
type DocumentSkeleton struct {
	ProblemStatement         string                  `json:"problem_statement"`
	TargetAudience           string                  `json:"target_audience"`
	Stakeholders             map[string]*Stakeholder `json:"stakeholders"`
	StakeholderCounter       int                     `json:"stakeholder_counter"`
	SuccessMetrics           SuccessMetrics          `json:"success_metrics"`
	DecisionCriteria         DecisionCriteria        `json:"decision_criteria"`
	ValueEstimate            string                  `json:"value_estimate"`
	Constraints              []string                `json:"constraints"`
	ProposedSolution         string                  `json:"proposed_solution"`
	PrioritizationRationale  string                  `json:"prioritization_rationale"`

	SolutionName        string `json:"solution_name"`
	SolutionDescription string `json:"solution_description"`

	ValueRisk       RiskAssessment `json:"value_risk"`
	UsabilityRisk   RiskAssessment `json:"usability_risk"`
	FeasibilityRisk RiskAssessment `json:"feasibility_risk"`
	ViabilityRisk   RiskAssessment `json:"viability_risk"`

	BuildVsBuyAssessment string `json:"build_vs_buy_assessment"`

	ValidationRiskiestAssumption string             `json:"validation_riskiest_assumption"`
	ValidationApproach           ValidationApproach `json:"validation_approach"`
	ValidationDescription        string             `json:"validation_description"`
	ValidationTimeline           string             `json:"validation_timeline"`
	ValidationSuccessCriteria    string             `json:"validation_success_criteria"`

	GoNoGoRecommendation GoNoGoRecommendation `json:"go_no_go_recommendation"`
	GoNoGoConditions     []string             `json:"go_no_go_conditions"`
	GoNoGoDealbreakers   []string             `json:"go_no_go_dealbreakers"`
}

// NewDocumentSkeleton creates a skeleton with all fields empty.
func NewDocumentSkeleton() *DocumentSkeleton {
	return &DocumentSkeleton{
		Stakeholders: make(map[string]*Stakeholder),
	}
}

// AddStakeholder registers a stakeholder under a monotonic id ("S1", ...).
func (s *DocumentSkeleton) AddStakeholder(name string, typ StakeholderType, validated bool, notes string) *Stakeholder {
	s.StakeholderCounter++
	id := fmt.Sprintf("S%d", s.StakeholderCounter)
	st := &Stakeholder{ID: id, Name: name, Type: typ, Validated: validated, Notes: notes}
	s.Stakeholders[id] = st
	return st
}

// Risk returns a pointer to the assessment for the named dimension.
// Unknown dimensions return nil; callers treat that as a soft miss.
func (s *DocumentSkeleton) Risk(dim RiskDimension) *RiskAssessment {
	switch dim {
	case RiskDimensionValue:
		return &s.ValueRisk
	case RiskDimensionUsability:
		return &s.UsabilityRisk
	case RiskDimensionFeasibility:
		return &s.FeasibilityRisk
	case RiskDimensionViability:
		return &s.ViabilityRisk
	default:
		return nil
	}
}
