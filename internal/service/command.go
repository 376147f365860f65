package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gupta362/project-forge/internal/domain"
)

// Command is the closed set of state mutations the model may request via
// tool calls. Each variant carries exactly the arguments its tool schema
// declares; the unexported method seals the set so dispatch stays
// exhaustive.
type Command interface {
	ToolName() string
	isCommand()
}

// Tool names, as exposed to the model.
const (
	ToolRegisterAssumption        = "register_assumption"
	ToolUpdateAssumptionStatus    = "update_assumption_status"
	ToolUpdateAssumptionConf      = "update_assumption_confidence"
	ToolUpdateProblemStatement    = "update_problem_statement"
	ToolUpdateTargetAudience      = "update_target_audience"
	ToolAddStakeholder            = "add_stakeholder"
	ToolUpdateSuccessMetrics      = "update_success_metrics"
	ToolAddDecisionCriteria       = "add_decision_criteria"
	ToolGenerateArtifact          = "generate_artifact"
	ToolSetRiskAssessment         = "set_risk_assessment"
	ToolSetValidationPlan         = "set_validation_plan"
	ToolSetGoNoGo                 = "set_go_no_go"
	ToolSetSolutionInfo           = "set_solution_info"
	ToolRecordPatternFired        = "record_pattern_fired"
	ToolRecordProbeFired          = "record_probe_fired"
	ToolUpdateConversationSummary = "update_conversation_summary"
	ToolCompleteMode              = "complete_mode"
	ToolUpdateOrgContext          = "update_org_context"
)

type RegisterAssumptionCommand struct {
	Statement  string   `json:"statement" jsonschema:"required,description=The assumption being made"`
	Type       string   `json:"type" jsonschema:"required,enum=value,enum=technical,enum=stakeholder_dependency,enum=market,enum=organizational"`
	Impact     string   `json:"impact" jsonschema:"required,enum=high,enum=medium,enum=low,description=Consequence severity if the assumption is wrong"`
	Confidence string   `json:"confidence" jsonschema:"required,enum=validated,enum=informed,enum=guessed"`
	Basis      string   `json:"basis" jsonschema:"description=Evidence or reasoning behind the assumption"`
	DependsOn  []string `json:"depends_on,omitempty" jsonschema:"description=IDs of assumptions this one depends on"`
}

type UpdateAssumptionStatusCommand struct {
	ID     string `json:"assumption_id" jsonschema:"required,description=Assumption ID such as A3"`
	Status string `json:"status" jsonschema:"required,enum=active,enum=at_risk,enum=invalidated,enum=confirmed"`
	Reason string `json:"reason" jsonschema:"description=What prompted the change"`
}

type UpdateAssumptionConfidenceCommand struct {
	ID         string `json:"assumption_id" jsonschema:"required"`
	Confidence string `json:"confidence" jsonschema:"required,enum=validated,enum=informed,enum=guessed"`
}

type UpdateProblemStatementCommand struct {
	Statement string `json:"statement" jsonschema:"required,description=The current best framing of the problem"`
}

type UpdateTargetAudienceCommand struct {
	Audience string `json:"audience" jsonschema:"required"`
}

type AddStakeholderCommand struct {
	Name      string `json:"name" jsonschema:"required"`
	Type      string `json:"type" jsonschema:"required,enum=decision_authority,enum=pain_holder,enum=status_quo_beneficiary,enum=execution_dependency"`
	Validated bool   `json:"validated" jsonschema:"description=Whether this stakeholder's position is confirmed"`
	Notes     string `json:"notes"`
}

type UpdateSuccessMetricsCommand struct {
	Leading    string `json:"leading" jsonschema:"description=Early signal metric"`
	Lagging    string `json:"lagging" jsonschema:"description=Outcome metric"`
	AntiMetric string `json:"anti_metric" jsonschema:"description=What must not get worse"`
}

type AddDecisionCriteriaCommand struct {
	ProceedIf      []string `json:"proceed_if,omitempty"`
	DoNotProceedIf []string `json:"do_not_proceed_if,omitempty"`
}

type GenerateArtifactCommand struct {
	ArtifactType string `json:"artifact_type" jsonschema:"required,enum=problem_brief,enum=solution_evaluation_brief"`
}

type SetRiskAssessmentCommand struct {
	Dimension       string   `json:"dimension" jsonschema:"required,enum=value,enum=usability,enum=feasibility,enum=viability"`
	Level           string   `json:"level" jsonschema:"required,enum=low,enum=medium,enum=high"`
	Summary         string   `json:"summary" jsonschema:"required"`
	EvidenceFor     []string `json:"evidence_for,omitempty"`
	EvidenceAgainst []string `json:"evidence_against,omitempty"`
}

type SetValidationPlanCommand struct {
	RiskiestAssumption string `json:"riskiest_assumption" jsonschema:"required"`
	Approach           string `json:"approach" jsonschema:"required,enum=painted_door,enum=concierge,enum=technical_spike,enum=wizard_of_oz,enum=prototype,enum=other"`
	Description        string `json:"description" jsonschema:"required"`
	Timeline           string `json:"timeline"`
	SuccessCriteria    string `json:"success_criteria"`
}

type SetGoNoGoCommand struct {
	Recommendation string   `json:"recommendation" jsonschema:"required,enum=go,enum=conditional_go,enum=pivot,enum=no_go"`
	Conditions     []string `json:"conditions,omitempty"`
	Dealbreakers   []string `json:"dealbreakers,omitempty"`
}

type SetSolutionInfoCommand struct {
	Name        string `json:"name" jsonschema:"required"`
	Description string `json:"description"`
}

type RecordPatternFiredCommand struct {
	Pattern string `json:"pattern" jsonschema:"required,description=Pattern name from the knowledge base"`
	Detail  string `json:"detail"`
}

type RecordProbeFiredCommand struct {
	Probe  string `json:"probe" jsonschema:"required,description=Probe name from the knowledge base"`
	Detail string `json:"detail"`
}

type UpdateConversationSummaryCommand struct {
	Summary string `json:"summary" jsonschema:"required,description=Cumulative summary replacing the previous one"`
}

type CompleteModeCommand struct {
	Notes string `json:"notes"`
}

type UpdateOrgContextCommand struct {
	Company         string `json:"company"`
	Domain          string `json:"domain"`
	PublicContext   string `json:"public_context"`
	InternalContext string `json:"internal_context"`
}

func (RegisterAssumptionCommand) ToolName() string         { return ToolRegisterAssumption }
func (UpdateAssumptionStatusCommand) ToolName() string     { return ToolUpdateAssumptionStatus }
func (UpdateAssumptionConfidenceCommand) ToolName() string { return ToolUpdateAssumptionConf }
func (UpdateProblemStatementCommand) ToolName() string     { return ToolUpdateProblemStatement }
func (UpdateTargetAudienceCommand) ToolName() string       { return ToolUpdateTargetAudience }
func (AddStakeholderCommand) ToolName() string             { return ToolAddStakeholder }
func (UpdateSuccessMetricsCommand) ToolName() string       { return ToolUpdateSuccessMetrics }
func (AddDecisionCriteriaCommand) ToolName() string        { return ToolAddDecisionCriteria }
func (GenerateArtifactCommand) ToolName() string           { return ToolGenerateArtifact }
func (SetRiskAssessmentCommand) ToolName() string          { return ToolSetRiskAssessment }
func (SetValidationPlanCommand) ToolName() string          { return ToolSetValidationPlan }
func (SetGoNoGoCommand) ToolName() string                  { return ToolSetGoNoGo }
func (SetSolutionInfoCommand) ToolName() string            { return ToolSetSolutionInfo }
func (RecordPatternFiredCommand) ToolName() string         { return ToolRecordPatternFired }
func (RecordProbeFiredCommand) ToolName() string           { return ToolRecordProbeFired }
func (UpdateConversationSummaryCommand) ToolName() string  { return ToolUpdateConversationSummary }
func (CompleteModeCommand) ToolName() string               { return ToolCompleteMode }
func (UpdateOrgContextCommand) ToolName() string           { return ToolUpdateOrgContext }

func (RegisterAssumptionCommand) isCommand()         {}
func (UpdateAssumptionStatusCommand) isCommand()     {}
func (UpdateAssumptionConfidenceCommand) isCommand() {}
func (UpdateProblemStatementCommand) isCommand()     {}
func (UpdateTargetAudienceCommand) isCommand()       {}
func (AddStakeholderCommand) isCommand()             {}
func (UpdateSuccessMetricsCommand) isCommand()       {}
func (AddDecisionCriteriaCommand) isCommand()        {}
func (GenerateArtifactCommand) isCommand()           {}
func (SetRiskAssessmentCommand) isCommand()          {}
func (SetValidationPlanCommand) isCommand()          {}
func (SetGoNoGoCommand) isCommand()                  {}
func (SetSolutionInfoCommand) isCommand()            {}
func (RecordPatternFiredCommand) isCommand()         {}
func (RecordProbeFiredCommand) isCommand()           {}
func (UpdateConversationSummaryCommand) isCommand()  {}
func (CompleteModeCommand) isCommand()               {}
func (UpdateOrgContextCommand) isCommand()           {}

// ParseCommand decodes a tool call into its command variant. Unknown tool
// names and malformed arguments return errors; the caller feeds those back
// to the model as the tool result instead of failing the turn.
func ParseCommand(name string, args json.RawMessage) (Command, error) {
	decode := func(v Command) (Command, error) {
		if len(args) == 0 {
			return v, nil
		}
		if err := json.Unmarshal(args, v); err != nil {
			return nil, fmt.Errorf("invalid arguments for %s: %w", name, err)
		}
		return v, nil
	}

	switch name {
	case ToolRegisterAssumption:
		return decode(&RegisterAssumptionCommand{})
	case ToolUpdateAssumptionStatus:
		return decode(&UpdateAssumptionStatusCommand{})
	case ToolUpdateAssumptionConf:
		return decode(&UpdateAssumptionConfidenceCommand{})
	case ToolUpdateProblemStatement:
		return decode(&UpdateProblemStatementCommand{})
	case ToolUpdateTargetAudience:
		return decode(&UpdateTargetAudienceCommand{})
	case ToolAddStakeholder:
		return decode(&AddStakeholderCommand{})
	case ToolUpdateSuccessMetrics:
		return decode(&UpdateSuccessMetricsCommand{})
	case ToolAddDecisionCriteria:
		return decode(&AddDecisionCriteriaCommand{})
	case ToolGenerateArtifact:
		return decode(&GenerateArtifactCommand{})
	case ToolSetRiskAssessment:
		return decode(&SetRiskAssessmentCommand{})
	case ToolSetValidationPlan:
		return decode(&SetValidationPlanCommand{})
	case ToolSetGoNoGo:
		return decode(&SetGoNoGoCommand{})
	case ToolSetSolutionInfo:
		return decode(&SetSolutionInfoCommand{})
	case ToolRecordPatternFired:
		return decode(&RecordPatternFiredCommand{})
	case ToolRecordProbeFired:
		return decode(&RecordProbeFiredCommand{})
	case ToolUpdateConversationSummary:
		return decode(&UpdateConversationSummaryCommand{})
	case ToolCompleteMode:
		return decode(&CompleteModeCommand{})
	case ToolUpdateOrgContext:
		return decode(&UpdateOrgContextCommand{})
	default:
		return nil, fmt.Errorf("unknown tool %q", name)
	}
}

// toInput validates the register command's claim and string enums against
// the domain types and converts to registration input.
func (c *RegisterAssumptionCommand) toInput() (domain.RegisterAssumptionInput, error) {
	if strings.TrimSpace(c.Statement) == "" {
		return domain.RegisterAssumptionInput{}, fmt.Errorf("%w: statement", domain.ErrMissingRequiredField)
	}
	typ := domain.AssumptionType(c.Type)
	switch typ {
	case domain.AssumptionTypeValue, domain.AssumptionTypeTechnical, domain.AssumptionTypeStakeholderDep,
		domain.AssumptionTypeMarket, domain.AssumptionTypeOrganizational:
	default:
		return domain.RegisterAssumptionInput{}, fmt.Errorf("%w: %q", domain.ErrInvalidAssumptionType, c.Type)
	}
	impact := domain.Impact(c.Impact)
	switch impact {
	case domain.ImpactHigh, domain.ImpactMedium, domain.ImpactLow:
	default:
		return domain.RegisterAssumptionInput{}, fmt.Errorf("%w: %q", domain.ErrInvalidImpact, c.Impact)
	}
	conf := domain.Confidence(c.Confidence)
	switch conf {
	case domain.ConfidenceValidated, domain.ConfidenceInformed, domain.ConfidenceGuessed:
	default:
		return domain.RegisterAssumptionInput{}, fmt.Errorf("%w: %q", domain.ErrInvalidConfidence, c.Confidence)
	}
	return domain.RegisterAssumptionInput{
		Claim:      c.Statement,
		Type:       typ,
		Impact:     impact,
		Confidence: conf,
		Basis:      c.Basis,
		DependsOn:  c.DependsOn,
	}, nil
}
