// Package answer runs the bounded reasoning loop that turns a user
// question into a cited answer, calling the answer-composition service
// and, at most once per turn, the retrieval tool.
package answer

import (
	"context"

	"github.com/dataroomhq/dataroom/internal/model"
)

// Decision is the outcome of the deciding call: either a direct answer
// or a single retrieval request, never both.
type Decision struct {
	// Answer holds the direct answer when the model chose not to
	// retrieve.
	Answer string

	// ToolQuery holds the retrieval query when the model invoked the
	// search tool. Empty means no tool call.
	ToolQuery string

	// ToolCallID is the provider's identifier for the tool invocation,
	// echoed back when the tool result is submitted.
	ToolCallID string
}

// ToolExchange carries one completed retrieval round-trip back into
// the composing call.
type ToolExchange struct {
	ID     string // provider tool-call id from the Decision
	Query  string // query string the model asked to retrieve
	Result string // assembled context block (or a no-results notice)
}

// Composer abstracts the answer-composition service. Implementations
// are stateless; the loop owns the conversation transcript.
type Composer interface {
	// Name returns the provider name.
	Name() string

	// Decide runs the deciding phase: the retrieval tool is offered
	// and the model either answers directly or requests one retrieval.
	Decide(ctx context.Context, messages []model.Message) (*Decision, error)

	// Compose runs the composing phase with the tool result included.
	// The retrieval tool is withheld, which makes the one-call-per-turn
	// bound structural rather than prompt-enforced.
	Compose(ctx context.Context, messages []model.Message, call *ToolExchange) (string, error)
}
