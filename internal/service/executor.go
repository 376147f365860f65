package service

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gupta362/project-forge/internal/domain"
)

// ToolResult is what a command execution reports back to the model.
// Artifact marks the turn as an artifact delivery: the orchestrator
// returns the rendered document to the user directly instead of asking
// the model to restate it.
type ToolResult struct {
	Content  string
	Artifact bool
}

// Executor applies commands to session state. Semantic misses (unknown
// ids, invalid enum values) come back as error text in the result so the
// model can correct itself; a Go error from Execute means the process
// itself failed and the turn should degrade.
type Executor struct {
	renderer *ArtifactRenderer
	log      *zap.Logger
}

func NewExecutor(renderer *ArtifactRenderer, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{renderer: renderer, log: log}
}

// Execute dispatches a command against the session. The switch is
// exhaustive over the sealed command set.
func (e *Executor) Execute(sess *domain.Session, cmd Command, turn int) ToolResult {
	switch c := cmd.(type) {
	case *RegisterAssumptionCommand:
		return e.registerAssumption(sess, c, turn)
	case *UpdateAssumptionStatusCommand:
		return e.updateAssumptionStatus(sess, c, turn)
	case *UpdateAssumptionConfidenceCommand:
		return e.updateAssumptionConfidence(sess, c, turn)
	case *UpdateProblemStatementCommand:
		sess.Skeleton.ProblemStatement = c.Statement
		return ToolResult{Content: "Problem statement updated."}
	case *UpdateTargetAudienceCommand:
		sess.Skeleton.TargetAudience = c.Audience
		return ToolResult{Content: "Target audience updated."}
	case *AddStakeholderCommand:
		return e.addStakeholder(sess, c)
	case *UpdateSuccessMetricsCommand:
		return e.updateSuccessMetrics(sess, c)
	case *AddDecisionCriteriaCommand:
		sess.Skeleton.DecisionCriteria.ProceedIf = append(sess.Skeleton.DecisionCriteria.ProceedIf, c.ProceedIf...)
		sess.Skeleton.DecisionCriteria.DoNotProceedIf = append(sess.Skeleton.DecisionCriteria.DoNotProceedIf, c.DoNotProceedIf...)
		return ToolResult{Content: "Decision criteria added."}
	case *GenerateArtifactCommand:
		return e.generateArtifact(sess, c)
	case *SetRiskAssessmentCommand:
		return e.setRiskAssessment(sess, c)
	case *SetValidationPlanCommand:
		return e.setValidationPlan(sess, c)
	case *SetGoNoGoCommand:
		return e.setGoNoGo(sess, c)
	case *SetSolutionInfoCommand:
		sess.Skeleton.SolutionName = c.Name
		if c.Description != "" {
			sess.Skeleton.SolutionDescription = c.Description
		}
		return ToolResult{Content: fmt.Sprintf("Solution info set: %s.", c.Name)}
	case *RecordPatternFiredCommand:
		sess.Routing.PatternsFired = append(sess.Routing.PatternsFired,
			domain.FiredRecord{Name: c.Pattern, Detail: c.Detail, Turn: turn})
		return ToolResult{Content: fmt.Sprintf("Recorded pattern: %s.", c.Pattern)}
	case *RecordProbeFiredCommand:
		sess.Routing.ProbesFired = append(sess.Routing.ProbesFired,
			domain.FiredRecord{Name: c.Probe, Detail: c.Detail, Turn: turn})
		return ToolResult{Content: fmt.Sprintf("Recorded probe: %s.", c.Probe)}
	case *UpdateConversationSummaryCommand:
		sess.Routing.ConversationSummary = c.Summary
		return ToolResult{Content: "Conversation summary updated."}
	case *CompleteModeCommand:
		completed := sess.ActiveMode
		sess.ExitMode()
		return ToolResult{Content: fmt.Sprintf("Mode %s completed. Returning to context gathering.", completed)}
	case *UpdateOrgContextCommand:
		return e.updateOrgContext(sess, c)
	default:
		// Unreachable while ParseCommand and the sealed set stay in sync.
		e.log.Error("unhandled command type", zap.String("tool", cmd.ToolName()))
		return ToolResult{Content: fmt.Sprintf("Error: unhandled tool %s.", cmd.ToolName())}
	}
}

func (e *Executor) registerAssumption(sess *domain.Session, c *RegisterAssumptionCommand, turn int) ToolResult {
	input, err := c.toInput()
	if err != nil {
		return ToolResult{Content: "Error: " + err.Error()}
	}
	a := sess.Register.Register(input, turn)
	e.log.Info("assumption registered", zap.String("id", a.ID), zap.String("impact", string(a.Impact)))
	return ToolResult{Content: fmt.Sprintf("Registered assumption %s: %s", a.ID, a.Claim)}
}

func (e *Executor) updateAssumptionStatus(sess *domain.Session, c *UpdateAssumptionStatusCommand, turn int) ToolResult {
	status := domain.AssumptionStatus(c.Status)
	switch status {
	case domain.StatusActive, domain.StatusAtRisk, domain.StatusInvalidated, domain.StatusConfirmed:
	default:
		return ToolResult{Content: "Error: " + fmt.Errorf("%w: %q", domain.ErrInvalidAssumptionStatus, c.Status).Error()}
	}

	cascaded, ok := sess.Register.UpdateStatus(c.ID, status, c.Reason, turn)
	if !ok {
		return ToolResult{Content: fmt.Sprintf("Error: assumption %s not found.", c.ID)}
	}

	msg := fmt.Sprintf("Updated %s to %s.", c.ID, status)
	if len(cascaded) > 0 {
		switch status {
		case domain.StatusInvalidated:
			msg += fmt.Sprintf(" Dependent assumptions now at risk: %s.", strings.Join(cascaded, ", "))
		case domain.StatusConfirmed:
			msg += fmt.Sprintf(" Dependent assumptions upgraded to informed: %s.", strings.Join(cascaded, ", "))
		}
	}
	return ToolResult{Content: msg}
}

func (e *Executor) updateAssumptionConfidence(sess *domain.Session, c *UpdateAssumptionConfidenceCommand, turn int) ToolResult {
	conf := domain.Confidence(c.Confidence)
	switch conf {
	case domain.ConfidenceValidated, domain.ConfidenceInformed, domain.ConfidenceGuessed:
	default:
		return ToolResult{Content: fmt.Sprintf("Error: invalid confidence %q.", c.Confidence)}
	}
	if !sess.Register.UpdateConfidence(c.ID, conf, turn) {
		return ToolResult{Content: fmt.Sprintf("Error: assumption %s not found.", c.ID)}
	}
	return ToolResult{Content: fmt.Sprintf("Updated %s confidence to %s.", c.ID, conf)}
}

func (e *Executor) addStakeholder(sess *domain.Session, c *AddStakeholderCommand) ToolResult {
	typ := domain.StakeholderType(c.Type)
	switch typ {
	case domain.StakeholderDecisionAuthority, domain.StakeholderPainHolder,
		domain.StakeholderStatusQuoBeneficiary, domain.StakeholderExecutionDependency:
	default:
		return ToolResult{Content: fmt.Sprintf("Error: invalid stakeholder type %q.", c.Type)}
	}
	st := sess.Skeleton.AddStakeholder(c.Name, typ, c.Validated, c.Notes)
	return ToolResult{Content: fmt.Sprintf("Added stakeholder %s: %s (%s).", st.ID, st.Name, st.Type)}
}

// updateSuccessMetrics merges field-wise: an empty incoming field keeps
// the existing value so the model can update one metric at a time.
func (e *Executor) updateSuccessMetrics(sess *domain.Session, c *UpdateSuccessMetricsCommand) ToolResult {
	m := &sess.Skeleton.SuccessMetrics
	if c.Leading != "" {
		m.Leading = c.Leading
	}
	if c.Lagging != "" {
		m.Lagging = c.Lagging
	}
	if c.AntiMetric != "" {
		m.AntiMetric = c.AntiMetric
	}
	return ToolResult{Content: "Success metrics updated."}
}

func (e *Executor) generateArtifact(sess *domain.Session, c *GenerateArtifactCommand) ToolResult {
	content, rendered, err := e.renderer.Render(sess, c.ArtifactType)
	if err != nil {
		e.log.Warn("artifact render failed", zap.Error(err))
		return ToolResult{Content: "Error: " + err.Error()}
	}
	if !rendered {
		// Missing-section refusal goes back to the model as an ordinary
		// tool result so it can gather what is missing instead.
		return ToolResult{Content: content}
	}
	return ToolResult{Content: "Artifact rendered and displayed to user.", Artifact: true}
}

func (e *Executor) setRiskAssessment(sess *domain.Session, c *SetRiskAssessmentCommand) ToolResult {
	risk := sess.Skeleton.Risk(domain.RiskDimension(c.Dimension))
	if risk == nil {
		return ToolResult{Content: fmt.Sprintf("Error: unknown risk dimension %q.", c.Dimension)}
	}
	level := domain.RiskLevel(c.Level)
	switch level {
	case domain.RiskLow, domain.RiskMedium, domain.RiskHigh:
	default:
		return ToolResult{Content: fmt.Sprintf("Error: invalid risk level %q.", c.Level)}
	}

	risk.Level = level
	risk.Summary = c.Summary
	risk.EvidenceFor = append([]string{}, c.EvidenceFor...)
	risk.EvidenceAgainst = append([]string{}, c.EvidenceAgainst...)
	return ToolResult{Content: fmt.Sprintf("%s risk assessed as %s.", c.Dimension, level)}
}

func (e *Executor) setValidationPlan(sess *domain.Session, c *SetValidationPlanCommand) ToolResult {
	approach := domain.ValidationApproach(c.Approach)
	switch approach {
	case domain.ValidationPaintedDoor, domain.ValidationConcierge, domain.ValidationTechnicalSpike,
		domain.ValidationWizardOfOz, domain.ValidationPrototype, domain.ValidationOther:
	default:
		return ToolResult{Content: fmt.Sprintf("Error: invalid validation approach %q.", c.Approach)}
	}

	sk := sess.Skeleton
	sk.ValidationRiskiestAssumption = c.RiskiestAssumption
	sk.ValidationApproach = approach
	sk.ValidationDescription = c.Description
	sk.ValidationTimeline = c.Timeline
	sk.ValidationSuccessCriteria = c.SuccessCriteria
	return ToolResult{Content: "Validation plan set."}
}

func (e *Executor) setGoNoGo(sess *domain.Session, c *SetGoNoGoCommand) ToolResult {
	rec := domain.GoNoGoRecommendation(c.Recommendation)
	switch rec {
	case domain.GoNoGoGo, domain.GoNoGoConditionalGo, domain.GoNoGoPivot, domain.GoNoGoNoGo:
	default:
		return ToolResult{Content: fmt.Sprintf("Error: invalid recommendation %q.", c.Recommendation)}
	}

	sk := sess.Skeleton
	sk.GoNoGoRecommendation = rec
	sk.GoNoGoConditions = append([]string{}, c.Conditions...)
	sk.GoNoGoDealbreakers = append([]string{}, c.Dealbreakers...)
	return ToolResult{Content: fmt.Sprintf("Go/no-go recommendation recorded: %s.", rec)}
}

func (e *Executor) updateOrgContext(sess *domain.Session, c *UpdateOrgContextCommand) ToolResult {
	applied := sess.Org.Apply(domain.OrgContextUpdate{
		Company:         c.Company,
		Domain:          c.Domain,
		PublicContext:   c.PublicContext,
		InternalContext: c.InternalContext,
	})
	if !applied {
		return ToolResult{Content: fmt.Sprintf("Organization context enrichment limit reached (%d per session).", domain.MaxEnrichments)}
	}
	return ToolResult{Content: "Organization context updated."}
}
