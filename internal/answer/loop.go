package answer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dataroomhq/dataroom/internal/model"
	"github.com/dataroomhq/dataroom/internal/retrieve"
)

// State is a reasoning-loop state.
type State string

const (
	StateStart     State = "START"
	StateDeciding  State = "DECIDING"
	StateToolCall  State = "TOOL_CALL"
	StateComposing State = "COMPOSING"
	StateDone      State = "DONE"
)

// DefaultSystemPrompt is the instruction given to the composition
// service. Saying "I don't know" is an expected outcome, not an error.
const DefaultSystemPrompt = `You answer questions about the documents in a real-estate dataroom.
Retrieve when unsure of an answer; never fabricate facts not present in retrieved content.
When you use a retrieved fragment, repeat its citation tag verbatim in your answer,
for example [contract.pdf p.3] or [assets.csv row 2]. Only cite tags that appear in
the retrieved content. If nothing retrieved answers the question, say you don't know.`

// noResultsNotice is submitted as the tool result when retrieval comes
// back empty, so the model states uncertainty instead of guessing.
const noResultsNotice = "No matching content was found in the dataroom."

// Loop is the per-session reasoning state machine. A turn moves
// START -> DECIDING -> DONE directly, or START -> DECIDING ->
// TOOL_CALL -> COMPOSING -> DONE with exactly one retrieval. The loop
// keeps the session's append-only history; it is not safe for
// concurrent turns within one session, while separate sessions run
// their own Loop instances independently.
type Loop struct {
	composer     Composer
	tool         retrieve.SearchTool
	systemPrompt string
	history      []model.Message
	turns        []model.Turn
}

// NewLoop builds a reasoning loop. systemPrompt may be empty to use
// the default.
func NewLoop(composer Composer, tool retrieve.SearchTool, systemPrompt string) *Loop {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &Loop{
		composer:     composer,
		tool:         tool,
		systemPrompt: systemPrompt,
	}
}

// History returns the completed turns of this session.
func (l *Loop) History() []model.Turn { return l.turns }

// Run executes one turn with the given per-store top-K budgets. Any
// composition failure ends the turn with a CompositionError and no
// partial answer; a retrieval failure surfaces as a RetrievalError. On
// success the returned turn carries the answer and the citations
// extracted from it.
func (l *Loop) Run(ctx context.Context, question string, kPDF, kCSV int) (*model.Turn, error) {
	messages := make([]model.Message, 0, len(l.history)+2)
	messages = append(messages, model.Message{Role: model.RoleSystem, Content: l.systemPrompt})
	messages = append(messages, l.history...)
	messages = append(messages, model.Message{Role: model.RoleUser, Content: question})

	var (
		state      = StateStart
		decision   *Decision
		candidates []model.Candidate
		exchange   *ToolExchange
		answer     string
	)

	for state != StateDone {
		switch state {
		case StateStart:
			state = StateDeciding

		case StateDeciding:
			d, err := l.composer.Decide(ctx, messages)
			if err != nil {
				return nil, &model.CompositionError{State: string(StateDeciding), Err: err}
			}
			decision = d
			if decision.ToolQuery != "" {
				state = StateToolCall
			} else {
				answer = decision.Answer
				state = StateDone
			}

		case StateToolCall:
			// Exactly one retrieval per turn. A store failure aborts
			// the turn; an empty result does not.
			hits, err := l.tool.Search(ctx, decision.ToolQuery, kPDF, kCSV)
			if err != nil {
				return nil, err
			}
			candidates = hits

			result := retrieve.Assemble(candidates)
			if result == "" {
				result = noResultsNotice
			}

			exchange = &ToolExchange{
				ID:     decision.ToolCallID,
				Query:  decision.ToolQuery,
				Result: result,
			}
			state = StateComposing

		case StateComposing:
			a, err := l.composer.Compose(ctx, messages, exchange)
			if err != nil {
				return nil, &model.CompositionError{State: string(StateComposing), Err: err}
			}
			answer = a
			state = StateDone
		}
	}

	// No-fabrication guard: every citation tag in the answer must
	// correspond to a candidate from this turn's context block. For a
	// direct answer no context was assembled, so no tags are allowed.
	if leaked := fabricatedTags(answer, candidates); len(leaked) > 0 {
		return nil, &model.CompositionError{
			State: string(StateDone),
			Err:   fmt.Errorf("answer cites content that was not retrieved: %v", leaked),
		}
	}

	turn := &model.Turn{
		ID:         uuid.NewString(),
		Question:   question,
		Candidates: candidates,
		Answer:     answer,
		Citations:  ExtractCitations(answer),
		AskedAt:    time.Now().UTC(),
	}

	l.history = append(l.history,
		model.Message{Role: model.RoleUser, Content: question},
		model.Message{Role: model.RoleAssistant, Content: answer},
	)
	l.turns = append(l.turns, *turn)

	return turn, nil
}
