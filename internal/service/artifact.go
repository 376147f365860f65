package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/gupta362/project-forge/internal/domain"
)

// Artifact types the model may request.
const (
	ArtifactProblemBrief       = "problem_brief"
	ArtifactSolutionEvaluation = "solution_evaluation_brief"
)

// ArtifactRenderer turns the document skeleton into markdown briefs.
// Rendering is deterministic: no model call is involved, so an artifact
// always reflects exactly what the skeleton holds.
type ArtifactRenderer struct {
	dir string
	log *zap.Logger
}

// NewArtifactRenderer writes artifacts under dir. An empty dir disables
// writing to disk; rendering still returns the markdown.
func NewArtifactRenderer(dir string, log *zap.Logger) *ArtifactRenderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &ArtifactRenderer{dir: dir, log: log}
}

// Render produces the requested artifact from session state, caches it on
// the session and writes it to disk. A skeleton missing its core sections
// refuses to render: the returned string is a warning naming the missing
// fields, rendered is false, nothing is cached and nothing is written.
func (r *ArtifactRenderer) Render(sess *domain.Session, artifactType string) (content string, rendered bool, err error) {
	var filename string
	switch artifactType {
	case ArtifactProblemBrief:
		if missing := missingProblemBriefFields(sess.Skeleton); len(missing) > 0 {
			return refusalWarning(artifactType, missing), false, nil
		}
		content = r.renderProblemBrief(sess)
		filename = "problem_brief.md"
	case ArtifactSolutionEvaluation:
		if missing := missingSolutionEvaluationFields(sess.Skeleton); len(missing) > 0 {
			return refusalWarning(artifactType, missing), false, nil
		}
		content = r.renderSolutionEvaluation(sess)
		filename = "solution_evaluation.md"
	default:
		return "", false, fmt.Errorf("unknown artifact type %q", artifactType)
	}

	sess.LatestArtifact = content

	if r.dir != "" {
		if err := os.MkdirAll(r.dir, 0o755); err != nil {
			return "", false, fmt.Errorf("create artifact dir: %w", err)
		}
		path := filepath.Join(r.dir, filename)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return "", false, fmt.Errorf("write artifact: %w", err)
		}
		r.log.Info("artifact written", zap.String("type", artifactType), zap.String("path", path))
	}
	return content, true, nil
}

// missingProblemBriefFields lists the skeleton fields a problem brief
// cannot ship without.
func missingProblemBriefFields(sk *domain.DocumentSkeleton) []string {
	var missing []string
	if sk.ProblemStatement == "" {
		missing = append(missing, "problem_statement")
	}
	if len(sk.Stakeholders) == 0 {
		missing = append(missing, "stakeholders")
	}
	if sk.SuccessMetrics.Empty() {
		missing = append(missing, "success_metrics")
	}
	if sk.DecisionCriteria.Empty() {
		missing = append(missing, "decision_criteria")
	}
	return missing
}

// missingSolutionEvaluationFields lists the skeleton fields a solution
// evaluation cannot ship without.
func missingSolutionEvaluationFields(sk *domain.DocumentSkeleton) []string {
	var missing []string
	if sk.SolutionName == "" {
		missing = append(missing, "solution_name")
	}
	if sk.ValueRisk.Level == "" {
		missing = append(missing, "value_risk")
	}
	if sk.GoNoGoRecommendation == "" {
		missing = append(missing, "go_no_go_recommendation")
	}
	return missing
}

func refusalWarning(artifactType string, missing []string) string {
	return fmt.Sprintf("Cannot generate %s yet. Missing required sections: %s. "+
		"Gather this information with the user before requesting the artifact again.",
		artifactType, strings.Join(missing, ", "))
}

func (r *ArtifactRenderer) renderProblemBrief(sess *domain.Session) string {
	sk := sess.Skeleton

	var sb strings.Builder
	sb.WriteString("# Problem Brief: " + sess.ProjectName + "\n\n")

	sb.WriteString("## Problem Statement\n")
	sb.WriteString(orPlaceholder(sk.ProblemStatement) + "\n\n")

	sb.WriteString("## Target Audience\n")
	sb.WriteString(orPlaceholder(sk.TargetAudience) + "\n\n")

	sb.WriteString("## Stakeholders\n")
	if len(sk.Stakeholders) == 0 {
		sb.WriteString(placeholder + "\n")
	} else {
		sb.WriteString("| ID | Name | Type | Validated | Notes |\n")
		sb.WriteString("|----|------|------|-----------|-------|\n")
		for _, id := range sortedStakeholderIDs(sk) {
			st := sk.Stakeholders[id]
			fmt.Fprintf(&sb, "| %s | %s | %s | %v | %s |\n", st.ID, st.Name, st.Type, st.Validated, st.Notes)
		}
	}
	sb.WriteString("\n")

	sb.WriteString("## Success Metrics\n")
	if sk.SuccessMetrics.Empty() {
		sb.WriteString(placeholder + "\n\n")
	} else {
		fmt.Fprintf(&sb, "- Leading: %s\n", orPlaceholder(sk.SuccessMetrics.Leading))
		fmt.Fprintf(&sb, "- Lagging: %s\n", orPlaceholder(sk.SuccessMetrics.Lagging))
		fmt.Fprintf(&sb, "- Anti-metric: %s\n\n", orPlaceholder(sk.SuccessMetrics.AntiMetric))
	}

	sb.WriteString("## Decision Criteria\n")
	if sk.DecisionCriteria.Empty() {
		sb.WriteString(placeholder + "\n\n")
	} else {
		sb.WriteString("Proceed if:\n")
		for _, c := range sk.DecisionCriteria.ProceedIf {
			sb.WriteString("- " + c + "\n")
		}
		sb.WriteString("\nDo not proceed if:\n")
		for _, c := range sk.DecisionCriteria.DoNotProceedIf {
			sb.WriteString("- " + c + "\n")
		}
		sb.WriteString("\n")
	}

	if len(sk.Constraints) > 0 {
		sb.WriteString("## Constraints\n")
		for _, c := range sk.Constraints {
			sb.WriteString("- " + c + "\n")
		}
		sb.WriteString("\n")
	}

	if sk.ProposedSolution != "" {
		sb.WriteString("## Proposed Solution\n" + sk.ProposedSolution + "\n\n")
	}

	writeAssumptionTable(&sb, sess.Register)
	return strings.TrimSpace(sb.String()) + "\n"
}

func (r *ArtifactRenderer) renderSolutionEvaluation(sess *domain.Session) string {
	sk := sess.Skeleton

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Solution Evaluation: %s\n\n", sk.SolutionName)

	if sk.SolutionDescription != "" {
		sb.WriteString(sk.SolutionDescription + "\n\n")
	}

	sb.WriteString("## Risk Assessment\n")
	writeRisk(&sb, "Value", sk.ValueRisk)
	writeRisk(&sb, "Usability", sk.UsabilityRisk)
	writeRisk(&sb, "Feasibility", sk.FeasibilityRisk)
	writeRisk(&sb, "Viability", sk.ViabilityRisk)

	if sk.BuildVsBuyAssessment != "" {
		sb.WriteString("## Build vs Buy\n" + sk.BuildVsBuyAssessment + "\n\n")
	}

	sb.WriteString("## Validation Plan\n")
	if sk.ValidationRiskiestAssumption == "" && sk.ValidationDescription == "" {
		sb.WriteString(placeholder + "\n\n")
	} else {
		fmt.Fprintf(&sb, "- Riskiest assumption: %s\n", orPlaceholder(sk.ValidationRiskiestAssumption))
		fmt.Fprintf(&sb, "- Approach: %s\n", orPlaceholder(string(sk.ValidationApproach)))
		fmt.Fprintf(&sb, "- Description: %s\n", orPlaceholder(sk.ValidationDescription))
		if sk.ValidationTimeline != "" {
			fmt.Fprintf(&sb, "- Timeline: %s\n", sk.ValidationTimeline)
		}
		if sk.ValidationSuccessCriteria != "" {
			fmt.Fprintf(&sb, "- Success criteria: %s\n", sk.ValidationSuccessCriteria)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Recommendation\n")
	fmt.Fprintf(&sb, "**%s**\n\n", strings.ToUpper(orPlaceholder(string(sk.GoNoGoRecommendation))))
	if len(sk.GoNoGoConditions) > 0 {
		sb.WriteString("Conditions:\n")
		for _, c := range sk.GoNoGoConditions {
			sb.WriteString("- " + c + "\n")
		}
		sb.WriteString("\n")
	}
	if len(sk.GoNoGoDealbreakers) > 0 {
		sb.WriteString("Dealbreakers:\n")
		for _, c := range sk.GoNoGoDealbreakers {
			sb.WriteString("- " + c + "\n")
		}
		sb.WriteString("\n")
	}

	writeAssumptionTable(&sb, sess.Register)
	return strings.TrimSpace(sb.String()) + "\n"
}

func writeRisk(sb *strings.Builder, name string, risk domain.RiskAssessment) {
	if risk.Level == "" {
		fmt.Fprintf(sb, "### %s Risk\n%s\n\n", name, placeholder)
		return
	}
	fmt.Fprintf(sb, "### %s Risk: %s\n", name, strings.ToUpper(string(risk.Level)))
	if risk.Summary != "" {
		sb.WriteString(risk.Summary + "\n")
	}
	for _, e := range risk.EvidenceFor {
		sb.WriteString("- For: " + e + "\n")
	}
	for _, e := range risk.EvidenceAgainst {
		sb.WriteString("- Against: " + e + "\n")
	}
	sb.WriteString("\n")
}

const placeholder = "_Not yet established._"

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

func sortedStakeholderIDs(sk *domain.DocumentSkeleton) []string {
	ids := make([]string, 0, len(sk.Stakeholders))
	for id := range sk.Stakeholders {
		ids = append(ids, id)
	}
	// Numeric sort on S-prefixed ids, same scheme as assumption ids.
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(strings.TrimPrefix(ids[i], "S"))
		b, _ := strconv.Atoi(strings.TrimPrefix(ids[j], "S"))
		return a < b
	})
	return ids
}

// writeAssumptionTable renders active and at-risk assumptions only.
// Confirmed and invalidated entries stay in the register but are resolved
// questions, not open risks, so briefs omit them.
func writeAssumptionTable(sb *strings.Builder, reg *domain.AssumptionRegister) {
	var open []*domain.Assumption
	for _, a := range reg.Sorted() {
		if a.Status == domain.StatusActive || a.Status == domain.StatusAtRisk {
			open = append(open, a)
		}
	}
	if len(open) == 0 {
		return
	}

	sb.WriteString("## Open Assumptions\n")
	sb.WriteString("| ID | Claim | Impact | Confidence | Status |\n")
	sb.WriteString("|----|-------|--------|------------|--------|\n")
	for _, a := range open {
		fmt.Fprintf(sb, "| %s | %s | %s | %s | %s |\n", a.ID, a.Claim, a.Impact, a.Confidence, a.Status)
	}
	sb.WriteString("\n")
}
