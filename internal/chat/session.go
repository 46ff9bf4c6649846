package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mentor-backend/internal/fields"
	"mentor-backend/internal/llm"
)

const replyMaxTokens = 800

// Orchestrator runs the per-request pipeline: classify field, assemble the
// system directive, call the model, parse directives, enrich with media,
// persist. It holds no per-request state; the store is the only shared
// mutable surface.
type Orchestrator struct {
	model llm.ChatModel
	store *Store
	media *MediaAugmenter
}

// NewOrchestrator wires the pipeline. model may be nil when the provider is
// unconfigured, in which case every turn fails with ErrConfiguration.
// media may be nil to disable enrichment entirely.
func NewOrchestrator(model llm.ChatModel, store *Store, media *MediaAugmenter) *Orchestrator {
	return &Orchestrator{model: model, store: store, media: media}
}

// TurnRequest is one incoming user message.
type TurnRequest struct {
	ConversationID string
	Identity       Identity
	Message        string
	// GenerateVisual and GenerateAudio request media unconditionally,
	// regardless of model signaling.
	GenerateVisual bool
	GenerateAudio  bool
}

// TurnResult is the terminal-success output of the pipeline.
type TurnResult struct {
	ConversationID string
	UserTurn       Turn
	AssistantTurn  Turn
	Field          fields.Field
	// HistoryWiped is set when persistence exhausted the degradation
	// ladder and cleared the medium; the turn itself still succeeded.
	HistoryWiped bool
}

// HandleMessage runs one full turn. A model failure aborts the turn and
// leaves prior state untouched; media and persistence failures degrade.
func (o *Orchestrator) HandleMessage(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message must not be empty", ErrValidation)
	}
	if o.model == nil {
		return nil, fmt.Errorf("%w: chat model unavailable", ErrConfiguration)
	}

	log := slog.With("identity", bucket(req.Identity), "conversation_id", req.ConversationID)

	prior, _, err := o.store.Conversation(req.ConversationID, req.Identity)
	if err != nil {
		log.Warn("failed to load conversation, starting fresh", "error", err)
	}

	// The latest explicit signal wins over any prior inference.
	field, detected := fields.Classify(message)
	if detected {
		o.store.SetRememberedField(req.Identity, field)
	} else if prior.InferredField != fields.Unknown {
		field = prior.InferredField
	} else if remembered, ok := o.store.RememberedField(req.Identity); ok {
		field = remembered
	}

	messages := make([]llm.Message, 0, len(prior.Turns)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: AssemblePrompt(field)})
	for _, turn := range prior.Turns {
		role := llm.RoleUser
		if turn.Role == RoleAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: turn.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})

	raw, err := o.model.Complete(ctx, messages, replyMaxTokens)
	if err != nil {
		log.Error("model call failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	d := ParseDirectives(raw, req.GenerateVisual, req.GenerateAudio)

	assistant := NewTurn(RoleAssistant, d.Advice)
	if d.ImagePrompt != "" {
		assistant.ImagePrompt = d.ImagePrompt
	}
	if o.media != nil {
		o.media.Augment(ctx, &assistant, d)
	}

	var opts *AppendOptions
	if detected || field != prior.InferredField {
		opts = &AppendOptions{Field: field}
	}

	user := NewTurn(RoleUser, message)
	convID, wiped, err := o.store.AppendTurn(req.ConversationID, user, req.Identity, opts)
	if err != nil {
		// The advice must survive even when persistence fails outright.
		log.Error("failed to persist user turn", "error", err)
		convID = req.ConversationID
	}

	var wiped2 bool
	if err == nil {
		_, wiped2, err = o.store.AppendTurn(convID, assistant, req.Identity, nil)
		if err != nil {
			log.Error("failed to persist assistant turn", "error", err)
		}
	}

	log.Info("turn completed", "field", string(field), "image", assistant.ImageURL != "", "audio", assistant.AudioURL != "")

	return &TurnResult{
		ConversationID: convID,
		UserTurn:       user,
		AssistantTurn:  assistant,
		Field:          field,
		HistoryWiped:   wiped || wiped2,
	}, nil
}
