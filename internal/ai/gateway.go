// Package ai provides a provider-agnostic completion gateway. The chat
// assistant talks to it through a Router so the response backend can be
// swapped without touching callers.
package ai

import "context"

// TaskType tags a request with what the completion is for. Providers may
// use it to pick a model; routers log it.
type TaskType int

const (
	TaskChat TaskType = iota
)

func (t TaskType) String() string {
	switch t {
	case TaskChat:
		return "chat"
	default:
		return "unknown"
	}
}

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the input to a completion.
type CompletionRequest struct {
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
	Task      TaskType  `json:"task,omitempty"`
	// Metadata carries structured context alongside the prompt. Template
	// backends interpolate it directly.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// CompletionResponse is the output of a completion.
type CompletionResponse struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// TotalTokens returns the sum of input and output tokens.
func (r CompletionResponse) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// Provider produces completions.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	HealthCheck(ctx context.Context) error
}
