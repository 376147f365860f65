package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand_KnownTools(t *testing.T) {
	cmd, err := ParseCommand(ToolRegisterAssumption, json.RawMessage(`{
		"statement": "Sales team will adopt the tool",
		"type": "stakeholder_dependency",
		"impact": "high",
		"confidence": "guessed",
		"depends_on": ["A1"]
	}`))
	require.NoError(t, err)

	reg, ok := cmd.(*RegisterAssumptionCommand)
	require.True(t, ok)
	assert.Equal(t, "Sales team will adopt the tool", reg.Statement)
	assert.Equal(t, []string{"A1"}, reg.DependsOn)

	cmd, err = ParseCommand(ToolUpdateAssumptionStatus, json.RawMessage(`{
		"assumption_id": "A2", "status": "invalidated", "reason": "user said so"
	}`))
	require.NoError(t, err)
	upd, ok := cmd.(*UpdateAssumptionStatusCommand)
	require.True(t, ok)
	assert.Equal(t, "A2", upd.ID)
	assert.Equal(t, "invalidated", upd.Status)
}

func TestParseCommand_EveryToolNameParses(t *testing.T) {
	names := []string{
		ToolRegisterAssumption, ToolUpdateAssumptionStatus, ToolUpdateAssumptionConf,
		ToolUpdateProblemStatement, ToolUpdateTargetAudience, ToolAddStakeholder,
		ToolUpdateSuccessMetrics, ToolAddDecisionCriteria, ToolGenerateArtifact,
		ToolSetRiskAssessment, ToolSetValidationPlan, ToolSetGoNoGo,
		ToolSetSolutionInfo, ToolRecordPatternFired, ToolRecordProbeFired,
		ToolUpdateConversationSummary, ToolCompleteMode, ToolUpdateOrgContext,
	}
	for _, name := range names {
		cmd, err := ParseCommand(name, json.RawMessage(`{}`))
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.ToolName())
	}
}

func TestParseCommand_UnknownTool(t *testing.T) {
	_, err := ParseCommand("delete_everything", json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestParseCommand_MalformedArguments(t *testing.T) {
	_, err := ParseCommand(ToolUpdateProblemStatement, json.RawMessage(`{"statement": 42`))
	assert.Error(t, err)
}

func TestParseCommand_EmptyArguments(t *testing.T) {
	cmd, err := ParseCommand(ToolCompleteMode, nil)
	require.NoError(t, err)
	assert.IsType(t, &CompleteModeCommand{}, cmd)
}
