package service

import (
	"fmt"
	"strings"

	"github.com/gupta362/project-forge/internal/domain"
	"github.com/gupta362/project-forge/internal/knowledge"
)

// PrimingTurn is the sentinel user input that requests the scripted
// session opening instead of a normal turn.
const PrimingTurn = "__PRIMING_TURN__"

const (
	// promptCharBudget caps the estimated prompt size. Above it the
	// history window is truncated.
	promptCharBudget = 150000 * 4
	// truncatedTailMessages is how many recent messages survive truncation.
	truncatedTailMessages = 20
	// microSynthesisInterval is how often, in turns, the assistant
	// consolidates what it has heard.
	microSynthesisInterval = 3
)

const truncationMarker = "[... earlier conversation truncated ...]"

const identityPrompt = `You are a product management thinking partner. You help the user ` +
	`sharpen problem framing, surface hidden assumptions, and evaluate solutions honestly. ` +
	`You are skeptical by default, concrete, and brief. You never invent facts about the ` +
	`user's organization.`

const primingPrompt = `This is the start of a new session. Greet the user, explain in two or ` +
	`three sentences that you help pressure-test product ideas before they become commitments, ` +
	`and ask what they are working on. Do not use any tools on this turn.`

const routingInstructions = `You are the routing layer of a product management copilot. Read the ` +
	`conversation state below and decide how the next turn should be handled. Respond with a ` +
	`single JSON object and nothing else, with exactly these keys:

{
  "next_action": "ask_questions | micro_synthesize | enter_mode | continue_mode | flag_conflict | complete_mode",
  "enter_mode": "mode_1 | mode_2 | \"\"",
  "reasoning": "one sentence",
  "conflict_flags": ["statements that contradict earlier ones"],
  "high_risk_unprobed": ["high-impact guessed assumptions not yet probed"],
  "suggested_probes": ["probe names worth raising"],
  "next_probe": "single probe name to use this turn, or \"\"",
  "triggered_patterns": ["pattern names that match the conversation"],
  "micro_synthesis_due": true,
  "enrichment_needed": false,
  "enrichment_query": "",
  "requires_retrieval": true
}

Probe and pattern names must come from the known lists. Set requires_retrieval to false only ` +
	`for turns that plainly need no document or history lookup (greetings, acknowledgements).`

// BuildRoutingPrompt renders the state block the routing call sees.
func BuildRoutingPrompt(sess *domain.Session, kb *knowledge.Base) string {
	var sb strings.Builder
	sb.WriteString(routingInstructions)
	sb.WriteString("\n\n## Conversation State\n")
	fmt.Fprintf(&sb, "- Turn: %d\n", sess.TurnCount)
	fmt.Fprintf(&sb, "- Phase: %s\n", sess.CurrentPhase)
	if sess.ActiveMode != domain.ModeNone {
		fmt.Fprintf(&sb, "- Active mode: %s (turn %d in mode)\n", sess.ActiveMode, sess.Routing.ModeTurnCount)
	}
	if sess.Routing.CriticalMassReached {
		sb.WriteString("- Critical mass reached: discovery has been entered before\n")
	}
	if due := microSynthesisDue(sess); due {
		sb.WriteString("- Micro-synthesis is due this turn\n")
	}

	// The opening request anchors routing even after the summary and the
	// recent window have drifted away from it.
	if first := sess.FirstUserMessage(); first != "" {
		sb.WriteString("\n## Original Request\n")
		sb.WriteString(first)
		sb.WriteString("\n")
	}

	if sess.Register.Len() > 0 {
		sb.WriteString("\n## Assumption Register\n")
		sb.WriteString(sess.Register.Summary())
		sb.WriteString("\n")
	}

	if len(sess.Routing.ProbesFired) > 0 {
		sb.WriteString("\n## Probes Already Fired\n")
		for _, p := range sess.Routing.ProbesFired {
			fmt.Fprintf(&sb, "- %s (turn %d)\n", p.Name, p.Turn)
		}
	}
	if len(sess.Routing.PatternsFired) > 0 {
		sb.WriteString("\n## Patterns Already Fired\n")
		for _, p := range sess.Routing.PatternsFired {
			fmt.Fprintf(&sb, "- %s (turn %d)\n", p.Name, p.Turn)
		}
	}

	sb.WriteString("\n## Known Probes\n")
	for _, mode := range []domain.Mode{domain.ModeDiscovery, domain.ModeEvaluate} {
		fmt.Fprintf(&sb, "- %s: %s\n", mode, strings.Join(kb.ProbeNames(mode), ", "))
	}

	if sess.Routing.ConversationSummary != "" {
		sb.WriteString("\n## Conversation Summary\n")
		sb.WriteString(sess.Routing.ConversationSummary)
		sb.WriteString("\n")
	}

	sb.WriteString("\n## Recent Messages\n")
	for _, m := range sess.RecentMessages(6) {
		fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
	}
	return sb.String()
}

// microSynthesisDue is computed mechanically rather than trusted from the
// model: every third turn.
func microSynthesisDue(sess *domain.Session) bool {
	return sess.TurnCount > 0 && sess.TurnCount%microSynthesisInterval == 0
}

// BuildSystemPrompt renders the full system prompt for the response phase.
func BuildSystemPrompt(sess *domain.Session, kb *knowledge.Base, decision *domain.RoutingDecision, contextBlock string) string {
	var sb strings.Builder
	sb.WriteString(identityPrompt)
	sb.WriteString("\n\n")

	if sess.ActiveMode != domain.ModeNone {
		sb.WriteString(kb.CoreInstructions(sess.ActiveMode))
		sb.WriteString("\n\n")
	} else {
		sb.WriteString("You are in open context gathering. Ask at most two focused questions per turn. " +
			"Register assumptions as the user reveals them. Suggest entering a structured mode only " +
			"when enough context has accumulated.\n\n")
	}

	if decision.NextProbe != "" {
		if text := kb.LookupProbe(decision.NextProbe); text != "" {
			sb.WriteString("## Probe To Raise This Turn\n")
			sb.WriteString(text)
			sb.WriteString("\nUse record_probe_fired after raising it.\n\n")
		}
	}
	if len(decision.TriggeredPatterns) > 0 {
		if text := kb.LookupPatterns(decision.TriggeredPatterns); text != "" {
			sb.WriteString("## Patterns Detected\n")
			sb.WriteString(text)
			sb.WriteString("\nName the pattern to the user if the evidence holds, and use record_pattern_fired.\n\n")
		}
	}
	if len(decision.ConflictFlags) > 0 {
		sb.WriteString("## Contradictions To Surface\n")
		for _, f := range decision.ConflictFlags {
			sb.WriteString("- " + f + "\n")
		}
		sb.WriteString("\n")
	}
	if len(decision.HighRiskUnprobed) > 0 {
		sb.WriteString("## High-Risk Unprobed Assumptions\n")
		for _, f := range decision.HighRiskUnprobed {
			sb.WriteString("- " + f + "\n")
		}
		sb.WriteString("\n")
	}
	if decision.MicroSynthesisDue || decision.NextAction == domain.ActionMicroSynth {
		sb.WriteString("## Micro-Synthesis\nBefore anything else, restate in three or four sentences " +
			"what you understand so far: the problem, who holds it, and the riskiest open assumption. " +
			"Then continue the turn and use update_conversation_summary.\n\n")
	}
	if decision.EnrichmentNeeded && sess.Org.EnrichmentCount < domain.MaxEnrichments {
		sb.WriteString("## Organization Context\nThe user's organization came up. If you know anything " +
			"reliable about it, record it with update_org_context")
		if decision.EnrichmentQuery != "" {
			sb.WriteString(" (focus: " + decision.EnrichmentQuery + ")")
		}
		sb.WriteString(". Never fabricate.\n\n")
	}

	if sess.Register.Len() > 0 {
		sb.WriteString("## Assumption Register\n")
		sb.WriteString(sess.Register.Detail())
		sb.WriteString("\n")
	}
	if sk := renderSkeletonState(sess.Skeleton); sk != "" {
		sb.WriteString("## Established So Far\n")
		sb.WriteString(sk)
		sb.WriteString("\n")
	}
	if contextBlock != "" {
		sb.WriteString("## Retrieved Context\n")
		sb.WriteString(contextBlock)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

func renderSkeletonState(sk *domain.DocumentSkeleton) string {
	var sb strings.Builder
	if sk.ProblemStatement != "" {
		sb.WriteString("- Problem: " + sk.ProblemStatement + "\n")
	}
	if sk.TargetAudience != "" {
		sb.WriteString("- Audience: " + sk.TargetAudience + "\n")
	}
	if len(sk.Stakeholders) > 0 {
		names := make([]string, 0, len(sk.Stakeholders))
		for _, id := range sortedStakeholderIDs(sk) {
			st := sk.Stakeholders[id]
			names = append(names, fmt.Sprintf("%s (%s)", st.Name, st.Type))
		}
		sb.WriteString("- Stakeholders: " + strings.Join(names, ", ") + "\n")
	}
	if !sk.SuccessMetrics.Empty() {
		fmt.Fprintf(&sb, "- Metrics: leading=%s, lagging=%s, anti=%s\n",
			sk.SuccessMetrics.Leading, sk.SuccessMetrics.Lagging, sk.SuccessMetrics.AntiMetric)
	}
	if sk.SolutionName != "" {
		sb.WriteString("- Solution under evaluation: " + sk.SolutionName + "\n")
	}
	if sk.GoNoGoRecommendation != "" {
		sb.WriteString("- Current recommendation: " + string(sk.GoNoGoRecommendation) + "\n")
	}
	return sb.String()
}

// historyWindow returns the message history to send, truncating when the
// estimated prompt size blows the budget: the opening message is kept for
// grounding, a marker notes the gap, and the most recent messages follow.
func historyWindow(messages []domain.Message) []domain.Message {
	total := 0
	for _, m := range messages {
		total += len(m.Content)
	}
	if total <= promptCharBudget || len(messages) <= truncatedTailMessages+1 {
		return messages
	}

	out := make([]domain.Message, 0, truncatedTailMessages+2)
	out = append(out, messages[0])
	out = append(out, domain.Message{Role: domain.RoleUser, Content: truncationMarker})
	out = append(out, messages[len(messages)-truncatedTailMessages:]...)
	return out
}
