package ai

import (
	"context"
	"sync"
	"unicode/utf8"
)

// MockProvider replies with a fixed response and records every request.
type MockProvider struct {
	Response string
	Err      error

	mu       sync.Mutex
	requests []CompletionRequest
}

// NewMockProvider creates a MockProvider that returns response.
func NewMockProvider(response string) *MockProvider {
	return &MockProvider{Response: response}
}

func (m *MockProvider) Complete(_ context.Context, req CompletionRequest) (CompletionResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Err != nil {
		return CompletionResponse{}, m.Err
	}
	input := 0
	for _, msg := range req.Messages {
		input += utf8.RuneCountInString(msg.Content)
	}
	return CompletionResponse{
		Content:      m.Response,
		Model:        "mock",
		InputTokens:  input,
		OutputTokens: utf8.RuneCountInString(m.Response),
	}, nil
}

func (m *MockProvider) HealthCheck(context.Context) error {
	return m.Err
}

// Calls returns how many completions were requested.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// LastRequest returns the most recent request, or nil if there was none.
func (m *MockProvider) LastRequest() *CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	req := m.requests[len(m.requests)-1]
	return &req
}
