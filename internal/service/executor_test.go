package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gupta362/project-forge/internal/domain"
)

func newTestExecutor(t *testing.T) (*Executor, *domain.Session) {
	t.Helper()
	renderer := NewArtifactRenderer(t.TempDir(), nil)
	return NewExecutor(renderer, nil), domain.NewSession("test-project")
}

func TestExecutor_RegisterAssumption(t *testing.T) {
	exec, sess := newTestExecutor(t)

	res := exec.Execute(sess, &RegisterAssumptionCommand{
		Statement:  "Adoption will be organic",
		Type:       "value",
		Impact:     "high",
		Confidence: "guessed",
	}, 2)

	assert.Contains(t, res.Content, "Registered assumption A1")
	assert.Equal(t, 1, sess.Register.Len())

	a, ok := sess.Register.Get("A1")
	require.True(t, ok)
	assert.Equal(t, 2, a.CreatedTurn)
}

func TestExecutor_RegisterAssumptionInvalidEnum(t *testing.T) {
	exec, sess := newTestExecutor(t)

	res := exec.Execute(sess, &RegisterAssumptionCommand{
		Statement:  "x",
		Type:       "wishful",
		Impact:     "high",
		Confidence: "guessed",
	}, 1)

	assert.Contains(t, res.Content, "Error:")
	assert.Zero(t, sess.Register.Len())
}

func TestExecutor_StatusCascadeReported(t *testing.T) {
	exec, sess := newTestExecutor(t)

	exec.Execute(sess, &RegisterAssumptionCommand{Statement: "base", Type: "value", Impact: "high", Confidence: "guessed"}, 1)
	exec.Execute(sess, &RegisterAssumptionCommand{Statement: "dependent", Type: "value", Impact: "medium", Confidence: "guessed", DependsOn: []string{"A1"}}, 1)

	res := exec.Execute(sess, &UpdateAssumptionStatusCommand{ID: "A1", Status: "invalidated", Reason: "disproved"}, 3)
	assert.Contains(t, res.Content, "Updated A1 to invalidated")
	assert.Contains(t, res.Content, "A2")

	a2, _ := sess.Register.Get("A2")
	assert.Equal(t, domain.StatusAtRisk, a2.Status)
}

func TestExecutor_RegisterAssumptionMissingStatement(t *testing.T) {
	exec, sess := newTestExecutor(t)

	res := exec.Execute(sess, &RegisterAssumptionCommand{
		Statement:  "   ",
		Type:       "value",
		Impact:     "high",
		Confidence: "guessed",
	}, 1)

	assert.Contains(t, res.Content, "Error:")
	assert.Contains(t, res.Content, domain.ErrMissingRequiredField.Message)
	assert.Zero(t, sess.Register.Len())
}

func TestExecutor_InvalidAssumptionStatus(t *testing.T) {
	exec, sess := newTestExecutor(t)
	exec.Execute(sess, &RegisterAssumptionCommand{Statement: "base", Type: "value", Impact: "high", Confidence: "guessed"}, 1)

	res := exec.Execute(sess, &UpdateAssumptionStatusCommand{ID: "A1", Status: "retired"}, 2)

	assert.Contains(t, res.Content, domain.ErrInvalidAssumptionStatus.Message)
	a, _ := sess.Register.Get("A1")
	assert.Equal(t, domain.StatusActive, a.Status)
}

func TestExecutor_UnknownAssumptionID(t *testing.T) {
	exec, sess := newTestExecutor(t)

	res := exec.Execute(sess, &UpdateAssumptionStatusCommand{ID: "A9", Status: "confirmed"}, 1)
	assert.Contains(t, res.Content, "not found")

	res = exec.Execute(sess, &UpdateAssumptionConfidenceCommand{ID: "A9", Confidence: "informed"}, 1)
	assert.Contains(t, res.Content, "not found")
}

func TestExecutor_SkeletonUpdates(t *testing.T) {
	exec, sess := newTestExecutor(t)

	exec.Execute(sess, &UpdateProblemStatementCommand{Statement: "Churn is rising"}, 1)
	exec.Execute(sess, &UpdateTargetAudienceCommand{Audience: "Mid-market CS teams"}, 1)
	res := exec.Execute(sess, &AddStakeholderCommand{Name: "VP Sales", Type: "decision_authority"}, 1)

	assert.Contains(t, res.Content, "S1")
	assert.Equal(t, "Churn is rising", sess.Skeleton.ProblemStatement)
	assert.Equal(t, "Mid-market CS teams", sess.Skeleton.TargetAudience)
	require.Len(t, sess.Skeleton.Stakeholders, 1)
}

func TestExecutor_SuccessMetricsMerge(t *testing.T) {
	exec, sess := newTestExecutor(t)

	exec.Execute(sess, &UpdateSuccessMetricsCommand{Leading: "weekly active teams"}, 1)
	exec.Execute(sess, &UpdateSuccessMetricsCommand{Lagging: "net revenue retention"}, 2)

	m := sess.Skeleton.SuccessMetrics
	assert.Equal(t, "weekly active teams", m.Leading)
	assert.Equal(t, "net revenue retention", m.Lagging)
}

func TestExecutor_RiskAssessment(t *testing.T) {
	exec, sess := newTestExecutor(t)

	res := exec.Execute(sess, &SetRiskAssessmentCommand{
		Dimension: "feasibility", Level: "high", Summary: "integration unknowns",
		EvidenceAgainst: []string{"legacy API has no docs"},
	}, 1)
	assert.Contains(t, res.Content, "feasibility")
	assert.Equal(t, domain.RiskHigh, sess.Skeleton.FeasibilityRisk.Level)

	res = exec.Execute(sess, &SetRiskAssessmentCommand{Dimension: "reputational", Level: "high", Summary: "x"}, 1)
	assert.Contains(t, res.Content, "Error:")
}

func TestExecutor_GenerateArtifactBypassFlag(t *testing.T) {
	exec, _ := newTestExecutor(t)
	sess := completeSession()

	res := exec.Execute(sess, &GenerateArtifactCommand{ArtifactType: ArtifactProblemBrief}, 1)
	assert.True(t, res.Artifact)
	assert.Equal(t, "Artifact rendered and displayed to user.", res.Content)
	assert.NotEmpty(t, sess.LatestArtifact)

	res = exec.Execute(sess, &GenerateArtifactCommand{ArtifactType: "weekly_report"}, 1)
	assert.False(t, res.Artifact)
	assert.Contains(t, res.Content, "Error:")
}

func TestExecutor_GenerateArtifactIncompleteSkeletonFeedsBackWarning(t *testing.T) {
	exec, sess := newTestExecutor(t)
	sess.Skeleton.ProblemStatement = "Churn is rising"

	res := exec.Execute(sess, &GenerateArtifactCommand{ArtifactType: ArtifactProblemBrief}, 1)

	// The refusal is a plain tool result for the model, not a delivery.
	assert.False(t, res.Artifact)
	assert.Contains(t, res.Content, "Missing required sections")
	assert.Contains(t, res.Content, "stakeholders")
	assert.Empty(t, sess.LatestArtifact)
}

func TestExecutor_CompleteModeExits(t *testing.T) {
	exec, sess := newTestExecutor(t)
	sess.EnterMode(domain.ModeDiscovery)

	res := exec.Execute(sess, &CompleteModeCommand{}, 5)
	assert.Contains(t, res.Content, "completed")
	assert.Equal(t, domain.PhaseGathering, sess.CurrentPhase)
	assert.Equal(t, domain.ModeNone, sess.ActiveMode)
}

func TestExecutor_OrgContextCap(t *testing.T) {
	exec, sess := newTestExecutor(t)

	for i := 0; i < domain.MaxEnrichments; i++ {
		res := exec.Execute(sess, &UpdateOrgContextCommand{Company: "Acme", PublicContext: "ctx"}, 1)
		assert.Equal(t, "Organization context updated.", res.Content)
	}

	res := exec.Execute(sess, &UpdateOrgContextCommand{Company: "Acme", PublicContext: "more"}, 1)
	assert.Contains(t, res.Content, "limit reached")
	assert.Equal(t, domain.MaxEnrichments, sess.Org.EnrichmentCount)
}

func TestExecutor_ProbeAndPatternRecords(t *testing.T) {
	exec, sess := newTestExecutor(t)

	exec.Execute(sess, &RecordProbeFiredCommand{Probe: "Why Now", Detail: "asked about timing"}, 4)
	exec.Execute(sess, &RecordPatternFiredCommand{Pattern: "Talent Drain", Detail: "team turnover mentioned"}, 4)

	require.Len(t, sess.Routing.ProbesFired, 1)
	assert.Equal(t, "Why Now", sess.Routing.ProbesFired[0].Name)
	assert.Equal(t, 4, sess.Routing.ProbesFired[0].Turn)
	require.Len(t, sess.Routing.PatternsFired, 1)
}
