package domain

// Role labels a chat message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// FileSummary records one ingested document for prompt injection.
type FileSummary struct {
	Filename   string `json:"filename"`
	Summary    string `json:"summary"`
	UploadedAt string `json:"uploaded_at"`
	ChunkCount int    `json:"chunk_count"`
}

// ProjectState is the deterministic slice of project knowledge handed to
// the retrieval engine for context assembly.
type ProjectState struct {
	OrgContext    string        `json:"org_context"`
	FileSummaries []FileSummary `json:"file_summaries"`
}

// Session is the complete mutable state of one project conversation.
// The orchestrator owns write access for the duration of a turn; lookup
// and rendering components read it. Execution is single-threaded and
// request-per-turn, so no locking is needed around this graph.
type Session struct {
	ProjectName string `json:"project_name"`

	Messages     []Message `json:"messages"`
	TurnCount    int       `json:"turn_count"`
	CurrentPhase Phase     `json:"current_phase"`
	ActiveMode   Mode      `json:"active_mode"`

	Register *AssumptionRegister `json:"assumption_register"`
	Skeleton *DocumentSkeleton   `json:"document_skeleton"`
	Routing  *RoutingContext     `json:"routing_context"`
	Org      *OrgContext         `json:"org_context"`

	LatestArtifact   string        `json:"latest_artifact"`
	PendingQuestions []string      `json:"pending_questions"`
	FileSummaries    []FileSummary `json:"file_summaries"`
}

// NewSession creates a session with every container initialized empty.
func NewSession(projectName string) *Session {
	return &Session{
		ProjectName:  projectName,
		Messages:     []Message{},
		CurrentPhase: PhaseGathering,
		Register:     NewAssumptionRegister(),
		Skeleton:     NewDocumentSkeleton(),
		Routing:      NewRoutingContext(),
		Org:          &OrgContext{},
	}
}

// AppendUser adds a user message to the history.
func (s *Session) AppendUser(content string) {
	s.Messages = append(s.Messages, Message{Role: RoleUser, Content: content})
}

// AppendAssistant adds an assistant message to the history.
func (s *Session) AppendAssistant(content string) {
	s.Messages = append(s.Messages, Message{Role: RoleAssistant, Content: content})
}

// FirstUserMessage returns the original input that opened the session.
func (s *Session) FirstUserMessage() string {
	for _, m := range s.Messages {
		if m.Role == RoleUser {
			return m.Content
		}
	}
	return ""
}

// RecentMessages returns up to n of the most recent messages.
func (s *Session) RecentMessages(n int) []Message {
	if len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}

// ProjectState builds the deterministic context slice for retrieval.
func (s *Session) ProjectState() ProjectState {
	return ProjectState{
		OrgContext:    s.Org.Flatten(),
		FileSummaries: s.FileSummaries,
	}
}

// EnterMode transitions into a workflow mode. Entering the already-active
// mode does not reset its turn counter.
func (s *Session) EnterMode(mode Mode) {
	if mode == ModeNone || s.ActiveMode == mode {
		return
	}
	s.CurrentPhase = PhaseModeActive
	s.ActiveMode = mode
	s.Routing.ModeTurnCount = 0
	if mode == ModeDiscovery {
		s.Routing.CriticalMassReached = true
	}
}

// ExitMode returns to context gathering. The assumption register,
// skeleton, fired probes/patterns and conversation summary all persist.
func (s *Session) ExitMode() {
	s.CurrentPhase = PhaseGathering
	s.ActiveMode = ModeNone
	s.Routing.ModeTurnCount = 0
}
