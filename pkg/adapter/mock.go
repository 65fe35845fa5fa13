package adapter

import (
	"context"
	"sync"
)

// MockReply is one scripted outcome of a MockAdapter call.
type MockReply struct {
	Text string
	Err  error
}

// MockAdapter returns deterministic responses for local runs and tests.
// Scripted replies are consumed in order; once exhausted, the default
// response is returned.
type MockAdapter struct {
	mu              sync.Mutex
	script          []MockReply
	defaultResponse string
	prompts         []string
}

// NewMockAdapter creates a mock adapter with a default response.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{
		defaultResponse: "mock response",
	}
}

// NewScriptedAdapter creates a mock adapter that replays replies in order.
func NewScriptedAdapter(replies ...MockReply) *MockAdapter {
	m := NewMockAdapter()
	m.script = append(m.script, replies...)
	return m
}

// Name returns the adapter identifier.
func (a *MockAdapter) Name() string {
	return "mock"
}

// Models returns the list of supported mock models.
func (a *MockAdapter) Models() []string {
	return []string{"mock-1"}
}

// Calls returns how many times Generate was invoked.
func (a *MockAdapter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.prompts)
}

// Prompts returns a copy of every prompt received.
func (a *MockAdapter) Prompts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.prompts))
	copy(out, a.prompts)
	return out
}

// Generate returns the next scripted reply, a prompt-keyed response, or the default.
func (a *MockAdapter) Generate(_ context.Context, model string, prompt string) (*Response, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if model == "" {
		model = "mock-1"
	}
	a.prompts = append(a.prompts, prompt)

	if len(a.script) > 0 {
		reply := a.script[0]
		a.script = a.script[1:]
		if reply.Err != nil {
			return nil, reply.Err
		}
		return &Response{Text: reply.Text, Adapter: a.Name(), Model: model}, nil
	}
	return &Response{Text: a.defaultResponse, Adapter: a.Name(), Model: model}, nil
}
