package model

import "time"

// SourceStore identifies which modality store produced a candidate.
type SourceStore string

const (
	StoreDocuments SourceStore = "documents" // paginated store
	StoreTables    SourceStore = "tables"    // tabular store
)

// Candidate is a scored chunk returned by a single store's
// nearest-neighbor query. Candidates are transient: produced per query,
// never persisted.
type Candidate struct {
	Chunk Chunk       `json:"chunk"`
	Score float64     `json:"score"` // cosine similarity, higher is closer
	Store SourceStore `json:"store"`
}

// Role is the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry in a turn's conversation transcript, in the
// shape the answer-composition service consumes.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// ToolCallID links a RoleTool message to the assistant tool call it
	// answers. Empty for all other roles.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// Turn records one completed question/answer exchange: the question,
// the candidates actually retrieved for it, the final answer and the
// citations extracted from it. Turns are append-only history.
type Turn struct {
	ID         string      `json:"id"`
	Question   string      `json:"question"`
	Candidates []Candidate `json:"candidates,omitempty"`
	Answer     string      `json:"answer"`
	Citations  []Citation  `json:"citations,omitempty"`
	AskedAt    time.Time   `json:"asked_at"`
}
