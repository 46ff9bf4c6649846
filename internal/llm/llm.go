// Package llm holds the external provider collaborators: the chat model,
// the image generator, and the speech synthesizer. Each is a one-shot,
// provider-timeout-bounded call; retries are left to the caller's user.
package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry of a chat completion request.
type Message struct {
	Role    string
	Content string
}

// ChatModel produces a single text completion from an ordered message list.
// The leading message is expected to be the assembled system directive.
type ChatModel interface {
	Complete(ctx context.Context, messages []Message, maxTokens int) (string, error)
}

// ImageGenerator returns a handle (URL) to a single generated image.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SpeechSynthesizer returns audio bytes for the given text. Callers cap the
// input length before invoking.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
