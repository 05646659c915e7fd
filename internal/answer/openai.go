package answer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dataroomhq/dataroom/internal/model"
	"github.com/dataroomhq/dataroom/internal/worker"
)

// SearchToolName is the function name the composition model uses to
// request retrieval.
const SearchToolName = "search_dataroom"

var searchToolDef = openai.Tool{
	Type: openai.ToolTypeFunction,
	Function: &openai.FunctionDefinition{
		Name: SearchToolName,
		Description: "Search the dataroom's contracts and data tables for content relevant " +
			"to a question. Returns matching fragments, each preceded by its citation tag.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {
					"type": "string",
					"description": "Natural-language description of the content to look for."
				}
			},
			"required": ["query"]
		}`),
	},
}

// OpenAIComposer drives an OpenAI-compatible chat-completion endpoint.
type OpenAIComposer struct {
	client    *openai.Client
	name      string
	model     string
	maxTokens int
	timeout   time.Duration
	limiter   *worker.Limiter
}

// NewOpenAIComposer creates a composer from configuration. The limiter
// is optional.
func NewOpenAIComposer(cfg model.LLMConfig, limiter *worker.Limiter) (*OpenAIComposer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("LLM API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	llmModel := cfg.Model
	if llmModel == "" {
		llmModel = openai.GPT4oMini
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIComposer{
		client:    openai.NewClientWithConfig(clientConfig),
		name:      "openai",
		model:     llmModel,
		maxTokens: maxTokens,
		timeout:   timeout,
		limiter:   limiter,
	}, nil
}

// Name returns the provider name.
func (c *OpenAIComposer) Name() string { return c.name }

// Decide offers the search tool and returns either the model's direct
// answer or its single tool invocation.
func (c *OpenAIComposer) Decide(ctx context.Context, messages []model.Message) (*Decision, error) {
	resp, err := c.complete(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    convertMessages(messages),
		Tools:       []openai.Tool{searchToolDef},
		MaxTokens:   c.maxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, err
	}

	msg := resp.Choices[0].Message

	if len(msg.ToolCalls) > 0 {
		call := msg.ToolCalls[0]
		if call.Function.Name != SearchToolName {
			return nil, fmt.Errorf("model invoked unknown tool %q", call.Function.Name)
		}

		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return nil, fmt.Errorf("decode tool arguments: %w", err)
		}
		if strings.TrimSpace(args.Query) == "" {
			return nil, errors.New("model requested retrieval with an empty query")
		}

		return &Decision{ToolQuery: args.Query, ToolCallID: call.ID}, nil
	}

	answer := strings.TrimSpace(msg.Content)
	if answer == "" {
		return nil, errors.New("model returned neither an answer nor a tool call")
	}
	return &Decision{Answer: answer}, nil
}

// Compose submits the tool result and requires a final answer. Tools
// are not offered again: one retrieval per turn is a hard bound.
func (c *OpenAIComposer) Compose(ctx context.Context, messages []model.Message, call *ToolExchange) (string, error) {
	converted := convertMessages(messages)

	converted = append(converted, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleAssistant,
		ToolCalls: []openai.ToolCall{{
			ID:   call.ID,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      SearchToolName,
				Arguments: fmt.Sprintf(`{"query":%q}`, call.Query),
			},
		}},
	})
	converted = append(converted, openai.ChatCompletionMessage{
		Role:       openai.ChatMessageRoleTool,
		ToolCallID: call.ID,
		Content:    call.Result,
	})

	resp, err := c.complete(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    converted,
		MaxTokens:   c.maxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		return "", errors.New("model returned an empty answer")
	}
	return answer, nil
}

func (c *OpenAIComposer) complete(ctx context.Context, req openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, "chat"); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices in completion response")
	}
	return &resp, nil
}

func convertMessages(messages []model.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		})
	}
	return out
}
