package service

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	openai "github.com/sashabaranov/go-openai"
)

// toolSchema reflects a command struct into the JSON schema its tool
// definition advertises. Schemas are strict: no additional properties,
// required fields taken from struct tags.
func toolSchema[T any]() json.RawMessage {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	b, err := schema.MarshalJSON()
	if err != nil {
		// Reflection over our own static types; a failure is a build defect.
		panic(err)
	}
	return b
}

func toolDef[T any](name, description string) openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters:  toolSchema[T](),
		},
	}
}

// ToolDefinitions returns the full tool surface offered to the model
// during the response phase.
func ToolDefinitions() []openai.Tool {
	return []openai.Tool{
		toolDef[RegisterAssumptionCommand](ToolRegisterAssumption,
			"Record an unvalidated claim the conversation is relying on. Use whenever the user states something as fact without evidence."),
		toolDef[UpdateAssumptionStatusCommand](ToolUpdateAssumptionStatus,
			"Change an assumption's lifecycle status. Invalidating an assumption flags its active dependents as at risk."),
		toolDef[UpdateAssumptionConfidenceCommand](ToolUpdateAssumptionConf,
			"Change how well-grounded an assumption is, e.g. after the user provides evidence."),
		toolDef[UpdateProblemStatementCommand](ToolUpdateProblemStatement,
			"Set or revise the current best framing of the problem."),
		toolDef[UpdateTargetAudienceCommand](ToolUpdateTargetAudience,
			"Set or revise who the problem affects."),
		toolDef[AddStakeholderCommand](ToolAddStakeholder,
			"Add a stakeholder to the map with their relationship to the problem."),
		toolDef[UpdateSuccessMetricsCommand](ToolUpdateSuccessMetrics,
			"Set the leading, lagging and anti-metric for success. Omitted fields keep their current values."),
		toolDef[AddDecisionCriteriaCommand](ToolAddDecisionCriteria,
			"Append proceed / do-not-proceed conditions to the decision criteria."),
		toolDef[GenerateArtifactCommand](ToolGenerateArtifact,
			"Render the current state as a document artifact and deliver it to the user."),
		toolDef[SetRiskAssessmentCommand](ToolSetRiskAssessment,
			"Record the assessment for one of the four risk dimensions: value, usability, feasibility, viability."),
		toolDef[SetValidationPlanCommand](ToolSetValidationPlan,
			"Record the plan for validating the riskiest assumption."),
		toolDef[SetGoNoGoCommand](ToolSetGoNoGo,
			"Record the go / no-go recommendation with conditions and dealbreakers."),
		toolDef[SetSolutionInfoCommand](ToolSetSolutionInfo,
			"Record the name and description of the solution under evaluation."),
		toolDef[RecordPatternFiredCommand](ToolRecordPatternFired,
			"Note that a known failure pattern was observed in the conversation."),
		toolDef[RecordProbeFiredCommand](ToolRecordProbeFired,
			"Note that a probe was asked, so it is not repeated later."),
		toolDef[UpdateConversationSummaryCommand](ToolUpdateConversationSummary,
			"Replace the cumulative conversation summary with an updated one."),
		toolDef[CompleteModeCommand](ToolCompleteMode,
			"Mark the active workflow mode as complete and return to open conversation."),
		toolDef[UpdateOrgContextCommand](ToolUpdateOrgContext,
			"Add organizational context about the user's company. Append-only and capped per session."),
	}
}
