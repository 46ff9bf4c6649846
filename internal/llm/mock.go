package llm

import (
	"context"
	"sync"
)

// MockChatModel returns a canned reply and records the messages it was
// called with.
type MockChatModel struct {
	mu       sync.Mutex
	Reply    string
	Err      error
	Requests [][]Message
}

func (m *MockChatModel) Complete(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, messages)
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

// LastSystemPrompt returns the system message of the most recent request,
// or "" if none was made.
func (m *MockChatModel) LastSystemPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return ""
	}
	for _, msg := range m.Requests[len(m.Requests)-1] {
		if msg.Role == RoleSystem {
			return msg.Content
		}
	}
	return ""
}

type MockImageGenerator struct {
	mu      sync.Mutex
	URL     string
	Err     error
	Prompts []string
}

func (m *MockImageGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.URL, nil
}

type MockSpeechSynthesizer struct {
	mu     sync.Mutex
	Audio  []byte
	Err    error
	Inputs []string
}

func (m *MockSpeechSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	m.mu.Lock()
	m.Inputs = append(m.Inputs, text)
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Audio, nil
}
