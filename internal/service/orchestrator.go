package service

import (
	"context"
	"encoding/json"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/gupta362/project-forge/internal/domain"
	"github.com/gupta362/project-forge/internal/knowledge"
)

const (
	// maxToolIterations bounds the tool loop per turn.
	maxToolIterations = 8

	fallbackGreeting = "Hi, I'm your product thinking partner. I help pressure-test product " +
		"ideas before they become commitments. What are you working on?"
	apologyNotice = "I ran into a problem finishing that thought. Could you try again or rephrase?"
	partialSuffix = "\n\n(I hit a problem partway through, so the response above may be incomplete.)"
	emptyNotice   = "I wasn't able to produce a response for that turn. Please try again."
)

// ChatClient is the slice of the provider client the orchestrator needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type OrchestratorConfig struct {
	ChatModel    string
	SummaryModel string
}

// Orchestrator runs the two-phase turn pipeline: a routing call that
// decides how the turn is handled, then a response call with tools that
// produces the user-visible reply and mutates session state.
type Orchestrator struct {
	chat     ChatClient
	engine   *Engine
	executor *Executor
	kb       *knowledge.Base
	cfg      OrchestratorConfig
	log      *zap.Logger
}

func NewOrchestrator(chat ChatClient, engine *Engine, executor *Executor, kb *knowledge.Base, cfg OrchestratorConfig, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		chat:     chat,
		engine:   engine,
		executor: executor,
		kb:       kb,
		cfg:      cfg,
		log:      log,
	}
}

// ProcessTurn runs one full turn and returns the user-visible reply.
// Provider failures degrade to apology text; the error return is reserved
// for broken preconditions (no chat client configured).
func (o *Orchestrator) ProcessTurn(ctx context.Context, sess *domain.Session, userInput string) (string, error) {
	if o.chat == nil {
		return "", domain.NewDomainError(domain.ErrCodeProvider, "no chat provider configured")
	}

	if userInput == PrimingTurn {
		return o.primingTurn(ctx, sess), nil
	}

	sess.TurnCount++
	sess.AppendUser(userInput)
	if sess.ActiveMode != domain.ModeNone {
		sess.Routing.ModeTurnCount++
	}

	decision := o.route(ctx, sess)
	sess.Routing.LastDecision = decision
	sess.Routing.MicroSynthesisDue = microSynthesisDue(sess)

	// Mode transitions follow the routing decision. complete_mode is the
	// staleness safety net for when the model never called the tool, and
	// entry fires on any decision naming an inactive mode.
	switch {
	case decision.NextAction == domain.ActionCompleteMode:
		sess.ExitMode()
	case decision.EnterMode != domain.ModeNone && decision.EnterMode != sess.ActiveMode:
		sess.EnterMode(decision.EnterMode)
	}

	var bundle ContextBundle
	if decision.RequiresRetrieval {
		bundle = o.engine.AssembleContext(ctx, sess.ProjectState(), o.retrievalQuery(userInput, decision), sess.TurnCount)
	} else {
		bundle = o.engine.MinimalContext(sess.ProjectState())
	}
	systemPrompt := BuildSystemPrompt(sess, o.kb, decision, FormatContextBlock(bundle))

	reply := o.respond(ctx, sess, systemPrompt)
	if strings.TrimSpace(reply) == "" {
		reply = emptyNotice
	}
	sess.AppendAssistant(reply)

	o.postTurn(ctx, sess, userInput, reply)
	return reply, nil
}

// retrievalQuery augments the user message with the probe about to be
// raised, biasing document search toward that topic. Unknown probe names
// are ignored.
func (o *Orchestrator) retrievalQuery(userInput string, decision *domain.RoutingDecision) string {
	if decision.NextProbe == "" || o.kb.LookupProbe(decision.NextProbe) == "" {
		return userInput
	}
	return userInput + "\n" + decision.NextProbe
}

// primingTurn produces the scripted session opening. It is not counted as
// a turn and is not indexed.
func (o *Orchestrator) primingTurn(ctx context.Context, sess *domain.Session) string {
	resp, err := o.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.cfg.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: identityPrompt + "\n\n" + primingPrompt},
		},
	})
	text := ""
	if err != nil {
		o.log.Warn("priming turn failed", zap.Error(err))
	} else if len(resp.Choices) > 0 {
		text = strings.TrimSpace(resp.Choices[0].Message.Content)
	}
	if text == "" {
		text = fallbackGreeting
	}
	sess.AppendAssistant(text)
	return text
}

// route runs the routing call. Any failure, including unparseable output,
// yields the fixed fallback decision.
func (o *Orchestrator) route(ctx context.Context, sess *domain.Session) *domain.RoutingDecision {
	resp, err := o.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.cfg.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: BuildRoutingPrompt(sess, o.kb)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		o.log.Warn("routing call failed", zap.Error(err))
		return domain.FallbackRoutingDecision("routing call failed")
	}
	if len(resp.Choices) == 0 {
		return domain.FallbackRoutingDecision("routing call returned no choices")
	}
	return parseRoutingDecision(resp.Choices[0].Message.Content, o.log)
}

// parseRoutingDecision decodes and sanitizes the routing output. Unknown
// actions or modes collapse to the fallback so the rest of the turn never
// sees an invalid decision.
func parseRoutingDecision(raw string, log *zap.Logger) *domain.RoutingDecision {
	raw = strings.TrimSpace(raw)
	// Tolerate fenced output despite asking for bare JSON.
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	// Retrieval defaults on; the model must opt out explicitly.
	d := domain.RoutingDecision{RequiresRetrieval: true}
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		log.Warn("unparseable routing decision", zap.Error(err))
		return domain.FallbackRoutingDecision("unparseable routing output")
	}

	switch d.NextAction {
	case domain.ActionAskQuestions, domain.ActionMicroSynth, domain.ActionEnterMode,
		domain.ActionContinueMode, domain.ActionFlagConflict, domain.ActionCompleteMode:
	default:
		log.Warn("unknown routing action", zap.String("action", string(d.NextAction)))
		return domain.FallbackRoutingDecision("unknown routing action")
	}

	switch d.EnterMode {
	case domain.ModeNone, domain.ModeDiscovery, domain.ModeEvaluate:
	default:
		d.EnterMode = domain.ModeNone
	}
	if d.NextAction == domain.ActionEnterMode && d.EnterMode == domain.ModeNone {
		return domain.FallbackRoutingDecision("enter_mode action without a mode")
	}
	return &d
}

// respond runs the response call with tools until the model produces plain
// text or the iteration bound is hit. Mid-loop provider failures degrade:
// partial text is returned with a caveat, or the fixed apology when
// nothing was produced.
func (o *Orchestrator) respond(ctx context.Context, sess *domain.Session, systemPrompt string) string {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}
	for _, m := range historyWindow(sess.Messages) {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	var lastText string
	artifactDelivered := false

	finish := func(text string) string {
		if artifactDelivered {
			if text == "" {
				return sess.LatestArtifact
			}
			return text + "\n\n---\n\n" + sess.LatestArtifact
		}
		return text
	}

	for i := 0; i < maxToolIterations; i++ {
		resp, err := o.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    o.cfg.ChatModel,
			Messages: messages,
			Tools:    ToolDefinitions(),
		})
		if err != nil {
			o.log.Warn("response call failed", zap.Error(err), zap.Int("iteration", i))
			if lastText != "" {
				return finish(lastText + partialSuffix)
			}
			return finish(apologyNotice)
		}
		if len(resp.Choices) == 0 {
			return finish(lastText)
		}

		msg := resp.Choices[0].Message
		if text := strings.TrimSpace(msg.Content); text != "" {
			lastText = text
		}
		if len(msg.ToolCalls) == 0 {
			return finish(lastText)
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			result := o.executeToolCall(sess, call)
			if result.Artifact {
				artifactDelivered = true
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    result.Content,
			})
		}
	}

	o.log.Warn("tool loop hit iteration bound")
	return finish(lastText)
}

func (o *Orchestrator) executeToolCall(sess *domain.Session, call openai.ToolCall) ToolResult {
	cmd, err := ParseCommand(call.Function.Name, json.RawMessage(call.Function.Arguments))
	if err != nil {
		o.log.Warn("bad tool call", zap.String("tool", call.Function.Name), zap.Error(err))
		return ToolResult{Content: "Error: " + err.Error()}
	}
	result := o.executor.Execute(sess, cmd, sess.TurnCount)
	o.log.Debug("tool executed",
		zap.String("tool", call.Function.Name),
		zap.Bool("artifact", result.Artifact))
	return result
}

// postTurn indexes the completed turn and refreshes the running summary.
// Both are best-effort: failures are logged and the turn still succeeds.
// Turns inside the recency window are not indexed; they are still carried
// verbatim in the prompt, so indexing them would only return duplicates.
func (o *Orchestrator) postTurn(ctx context.Context, sess *domain.Session, userInput, reply string) {
	if o.engine.Enabled() && sess.TurnCount > recencyWindow {
		probe := ""
		if d := sess.Routing.LastDecision; d != nil {
			probe = d.NextProbe
		}
		if err := o.engine.IndexTurn(ctx, sess.TurnCount, o.summarizeTurn(ctx, userInput, reply), sess.ActiveMode, probe); err != nil {
			o.log.Warn("turn indexing failed", zap.Error(err))
		}
	}
	o.refreshSummary(ctx, sess)
}

// summarizeTurn produces the short turn summary that gets embedded for
// later retrieval. On provider failure the raw exchange is indexed
// instead, keeping the turn searchable.
func (o *Orchestrator) summarizeTurn(ctx context.Context, userInput, reply string) string {
	raw := "User: " + userInput + "\n\nAssistant: " + reply

	model := o.cfg.SummaryModel
	if model == "" {
		model = o.cfg.ChatModel
	}
	resp, err := o.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "Summarize this exchange in two or three " +
				"sentences for later retrieval. Keep concrete facts, names, and decisions. " +
				"Respond with the summary only."},
			{Role: openai.ChatMessageRoleUser, Content: raw},
		},
	})
	if err != nil {
		o.log.Warn("turn summary failed", zap.Error(err))
		return raw
	}
	if len(resp.Choices) > 0 {
		if text := strings.TrimSpace(resp.Choices[0].Message.Content); text != "" {
			return text
		}
	}
	return raw
}

// refreshSummary overwrites the cumulative conversation summary using the
// cheaper summary model.
func (o *Orchestrator) refreshSummary(ctx context.Context, sess *domain.Session) {
	if o.cfg.SummaryModel == "" {
		return
	}

	var sb strings.Builder
	sb.WriteString("Update the running summary of this product conversation in at most 150 words. " +
		"Preserve decisions, the problem framing, and open questions. Respond with the summary only.\n\n")
	if sess.Routing.ConversationSummary != "" {
		sb.WriteString("Previous summary:\n" + sess.Routing.ConversationSummary + "\n\n")
	}
	sb.WriteString("Latest exchange:\n")
	for _, m := range sess.RecentMessages(2) {
		sb.WriteString(string(m.Role) + ": " + m.Content + "\n")
	}

	resp, err := o.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.cfg.SummaryModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: sb.String()},
		},
	})
	if err != nil {
		o.log.Warn("summary refresh failed", zap.Error(err))
		return
	}
	if len(resp.Choices) > 0 {
		if text := strings.TrimSpace(resp.Choices[0].Message.Content); text != "" {
			sess.Routing.ConversationSummary = text
		}
	}
}
