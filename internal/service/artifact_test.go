package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gupta362/project-forge/internal/domain"
)

func completeSession() *domain.Session {
	sess := domain.NewSession("churn-project")
	sk := sess.Skeleton
	sk.ProblemStatement = "Mid-market churn doubled in two quarters"
	sk.TargetAudience = "CS leadership"
	sk.AddStakeholder("VP Sales", domain.StakeholderDecisionAuthority, true, "")
	sk.SuccessMetrics = domain.SuccessMetrics{Leading: "QBR attendance", Lagging: "NRR", AntiMetric: "support ticket volume"}
	sk.DecisionCriteria = domain.DecisionCriteria{ProceedIf: []string{"churn driver confirmed"}}
	return sess
}

func TestArtifact_ProblemBriefComplete(t *testing.T) {
	dir := t.TempDir()
	renderer := NewArtifactRenderer(dir, nil)
	sess := completeSession()

	content, rendered, err := renderer.Render(sess, ArtifactProblemBrief)
	require.NoError(t, err)
	assert.True(t, rendered)

	assert.Contains(t, content, "# Problem Brief: churn-project")
	assert.Contains(t, content, "Mid-market churn doubled")
	assert.Contains(t, content, "| S1 | VP Sales |")
	assert.Contains(t, content, "- Leading: QBR attendance")
	assert.Contains(t, content, "churn driver confirmed")
	assert.Equal(t, content, sess.LatestArtifact)

	written, err := os.ReadFile(filepath.Join(dir, "problem_brief.md"))
	require.NoError(t, err)
	assert.Equal(t, content, string(written))
}

func TestArtifact_ProblemBriefRefusedOnMissingSections(t *testing.T) {
	dir := t.TempDir()
	renderer := NewArtifactRenderer(dir, nil)
	sess := domain.NewSession("empty")

	content, rendered, err := renderer.Render(sess, ArtifactProblemBrief)
	require.NoError(t, err)
	assert.False(t, rendered)

	// The refusal is the whole output: field keys named, no brief body.
	assert.Contains(t, content, "Missing required sections")
	assert.Contains(t, content, "problem_statement")
	assert.Contains(t, content, "stakeholders")
	assert.Contains(t, content, "success_metrics")
	assert.Contains(t, content, "decision_criteria")
	assert.NotContains(t, content, "# Problem Brief")

	// Nothing is cached and nothing reaches disk.
	assert.Empty(t, sess.LatestArtifact)
	_, statErr := os.Stat(filepath.Join(dir, "problem_brief.md"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestArtifact_ProblemBriefRefusalNamesOnlyMissingFields(t *testing.T) {
	renderer := NewArtifactRenderer("", nil)
	sess := completeSession()
	sess.Skeleton.ProblemStatement = ""

	content, rendered, err := renderer.Render(sess, ArtifactProblemBrief)
	require.NoError(t, err)
	assert.False(t, rendered)
	assert.Contains(t, content, "problem_statement")
	assert.NotContains(t, content, "success_metrics")
}

func TestArtifact_AssumptionTableFiltersTerminalStates(t *testing.T) {
	renderer := NewArtifactRenderer("", nil)
	sess := completeSession()

	reg := sess.Register
	reg.Register(domain.RegisterAssumptionInput{Claim: "active claim", Type: domain.AssumptionTypeValue, Impact: domain.ImpactHigh, Confidence: domain.ConfidenceGuessed}, 1)
	reg.Register(domain.RegisterAssumptionInput{Claim: "at-risk claim", Type: domain.AssumptionTypeValue, Impact: domain.ImpactLow, Confidence: domain.ConfidenceGuessed}, 1)
	reg.Register(domain.RegisterAssumptionInput{Claim: "confirmed claim", Type: domain.AssumptionTypeValue, Impact: domain.ImpactLow, Confidence: domain.ConfidenceValidated}, 1)
	reg.Register(domain.RegisterAssumptionInput{Claim: "dead claim", Type: domain.AssumptionTypeValue, Impact: domain.ImpactLow, Confidence: domain.ConfidenceGuessed}, 1)
	reg.UpdateStatus("A2", domain.StatusAtRisk, "", 2)
	reg.UpdateStatus("A3", domain.StatusConfirmed, "", 2)
	reg.UpdateStatus("A4", domain.StatusInvalidated, "", 2)

	content, rendered, err := renderer.Render(sess, ArtifactProblemBrief)
	require.NoError(t, err)
	require.True(t, rendered)

	assert.Contains(t, content, "active claim")
	assert.Contains(t, content, "at-risk claim")
	assert.NotContains(t, content, "confirmed claim")
	assert.NotContains(t, content, "dead claim")
}

func TestArtifact_SolutionEvaluation(t *testing.T) {
	dir := t.TempDir()
	renderer := NewArtifactRenderer(dir, nil)
	sess := domain.NewSession("eval")
	sk := sess.Skeleton
	sk.SolutionName = "In-app health scores"
	sk.ValueRisk = domain.RiskAssessment{Level: domain.RiskMedium, Summary: "value depends on data quality"}
	sk.GoNoGoRecommendation = domain.GoNoGoConditionalGo
	sk.GoNoGoConditions = []string{"validate data pipeline first"}

	content, rendered, err := renderer.Render(sess, ArtifactSolutionEvaluation)
	require.NoError(t, err)
	assert.True(t, rendered)

	assert.Contains(t, content, "# Solution Evaluation: In-app health scores")
	assert.Contains(t, content, "### Value Risk: MEDIUM")
	assert.Contains(t, content, "**CONDITIONAL_GO**")
	assert.Contains(t, content, "validate data pipeline first")

	_, err = os.Stat(filepath.Join(dir, "solution_evaluation.md"))
	assert.NoError(t, err)
}

func TestArtifact_SolutionEvaluationRefusedWhenIncomplete(t *testing.T) {
	renderer := NewArtifactRenderer("", nil)
	sess := domain.NewSession("eval")

	content, rendered, err := renderer.Render(sess, ArtifactSolutionEvaluation)
	require.NoError(t, err)
	assert.False(t, rendered)

	assert.Contains(t, content, "solution_name")
	assert.Contains(t, content, "value_risk")
	assert.Contains(t, content, "go_no_go_recommendation")
	assert.NotContains(t, content, "# Solution Evaluation")
	assert.Empty(t, sess.LatestArtifact)
}

func TestArtifact_UnknownType(t *testing.T) {
	renderer := NewArtifactRenderer("", nil)

	_, _, err := renderer.Render(domain.NewSession("x"), "weekly_report")
	assert.Error(t, err)
}
