package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"mentor-backend/internal/auth"
	"mentor-backend/internal/chat"
	"mentor-backend/pkg/api"
)

type ChatService struct {
	orchestrator *chat.Orchestrator
	store        *chat.Store
	media        *chat.MediaAugmenter
	auth         *auth.Provider
}

func NewChatService(orchestrator *chat.Orchestrator, store *chat.Store, media *chat.MediaAugmenter, provider *auth.Provider) *ChatService {
	return &ChatService{
		orchestrator: orchestrator,
		store:        store,
		media:        media,
		auth:         provider,
	}
}

func (s *ChatService) AddRoutes(r chi.Router) {
	r.Route("/chat", func(r chi.Router) {
		r.Post("/messages", RestHandler(s.SendMessage))
		r.Get("/conversations", RestHandler(s.GetConversations))
		r.Get("/conversations/{conversation_id}", RestHandler(s.GetConversation))
		r.Post("/conversations/{conversation_id}/rename", RestHandler(s.RenameConversation))
		r.Delete("/conversations/{conversation_id}", RestHandler(s.DeleteConversation))
		r.Post("/conversations/{conversation_id}/messages/{message_id}/image", RestHandler(s.RegenerateImage))
	})
}

// identity resolves the caller from the Authorization header. Requests
// without a valid session run in the anonymous bucket.
func (s *ChatService) identity(r *http.Request) chat.Identity {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return chat.Anonymous
	}
	id, ok := s.auth.CurrentIdentity(token)
	if !ok {
		return chat.Anonymous
	}
	return id
}

func (s *ChatService) SendMessage(r *http.Request) (any, error) {
	req, err := ParseRequest[api.SendMessageRequest](r)
	if err != nil {
		return nil, err
	}

	result, err := s.orchestrator.HandleMessage(r.Context(), chat.TurnRequest{
		ConversationID: req.ConversationID,
		Identity:       s.identity(r),
		Message:        req.Message,
		GenerateVisual: req.GenerateVisual,
		GenerateAudio:  req.GenerateAudio,
	})
	if err != nil {
		return nil, mapChatError(err)
	}

	return api.SendMessageResponse{
		ConversationID: result.ConversationID,
		UserTurn:       toAPITurn(result.UserTurn),
		AssistantTurn:  toAPITurn(result.AssistantTurn),
		Field:          string(result.Field),
		HistoryWiped:   result.HistoryWiped,
	}, nil
}

func (s *ChatService) GetConversations(r *http.Request) (any, error) {
	params, err := ParseRequestQueryParams[api.GetConversationsRequest](r)
	if err != nil {
		return nil, err
	}

	convs, err := s.store.List(s.identity(r))
	if err != nil {
		return nil, err
	}
	if params.Limit > 0 && len(convs) > params.Limit {
		convs = convs[:params.Limit]
	}

	resp := api.GetConversationsResponse{Conversations: make([]api.ChatConversationMetadata, 0, len(convs))}
	for _, conv := range convs {
		resp.Conversations = append(resp.Conversations, api.ChatConversationMetadata{
			ID:            conv.ID,
			Title:         conv.Title,
			InferredField: string(conv.InferredField),
			CreatedAt:     conv.CreatedAt,
			UpdatedAt:     conv.UpdatedAt,
			TurnCount:     len(conv.Turns),
		})
	}
	return resp, nil
}

func (s *ChatService) GetConversation(r *http.Request) (any, error) {
	conversationID, err := URLParam(r, "conversation_id")
	if err != nil {
		return nil, err
	}

	conv, ok, err := s.store.Conversation(conversationID, s.identity(r))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, CodedErrorf(http.StatusNotFound, "conversation '%s' not found", conversationID)
	}

	turns := make([]api.ChatTurn, 0, len(conv.Turns))
	for _, turn := range conv.Turns {
		turns = append(turns, toAPITurn(turn))
	}
	return api.ChatConversation{
		ID:            conv.ID,
		Title:         conv.Title,
		InferredField: string(conv.InferredField),
		CreatedAt:     conv.CreatedAt,
		UpdatedAt:     conv.UpdatedAt,
		Turns:         turns,
	}, nil
}

func (s *ChatService) RenameConversation(r *http.Request) (any, error) {
	conversationID, err := URLParam(r, "conversation_id")
	if err != nil {
		return nil, err
	}
	req, err := ParseRequest[api.RenameConversationRequest](r)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "title must not be empty")
	}

	identity := s.identity(r)
	conv, ok, err := s.store.Conversation(conversationID, identity)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, CodedErrorf(http.StatusNotFound, "conversation '%s' not found", conversationID)
	}

	_, _, err = s.store.Merge(conversationID, conv.Turns, chat.Metadata{
		Title:         req.Title,
		InferredField: conv.InferredField,
	}, identity)
	if err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *ChatService) DeleteConversation(r *http.Request) (any, error) {
	conversationID, err := URLParam(r, "conversation_id")
	if err != nil {
		return nil, err
	}

	ok, err := s.store.Delete(conversationID, s.identity(r))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, CodedErrorf(http.StatusNotFound, "conversation '%s' not found", conversationID)
	}
	return nil, nil
}

// RegenerateImage reruns image generation for an assistant turn using its
// stored image prompt, replacing the turn's image in place.
func (s *ChatService) RegenerateImage(r *http.Request) (any, error) {
	conversationID, err := URLParam(r, "conversation_id")
	if err != nil {
		return nil, err
	}
	messageID, err := URLParam(r, "message_id")
	if err != nil {
		return nil, err
	}
	if s.media == nil {
		return nil, CodedErrorf(http.StatusInternalServerError, "media generation unavailable")
	}

	identity := s.identity(r)
	conv, ok, err := s.store.Conversation(conversationID, identity)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, CodedErrorf(http.StatusNotFound, "conversation '%s' not found", conversationID)
	}

	var target *chat.Turn
	for i := range conv.Turns {
		if conv.Turns[i].ID == messageID {
			target = &conv.Turns[i]
			break
		}
	}
	if target == nil {
		return nil, CodedErrorf(http.StatusNotFound, "message '%s' not found", messageID)
	}
	if target.ImagePrompt == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "message '%s' has no image prompt", messageID)
	}

	regenerated := *target
	regenerated.ImageURL = ""
	s.media.Augment(r.Context(), &regenerated, chat.Directives{
		Advice:      regenerated.Content,
		ImagePrompt: regenerated.ImagePrompt,
		WantsImage:  true,
	})
	if regenerated.ImageURL == "" {
		return nil, CodedErrorf(http.StatusBadGateway, "image regeneration failed")
	}

	if _, err := s.store.EnrichTurn(conversationID, messageID, identity, regenerated.ImageURL, regenerated.ImagePrompt, ""); err != nil {
		return nil, err
	}

	return api.RegenerateImageResponse{
		ImageURL:    regenerated.ImageURL,
		ImagePrompt: regenerated.ImagePrompt,
	}, nil
}

func mapChatError(err error) error {
	switch {
	case errors.Is(err, chat.ErrValidation):
		return CodedError(http.StatusBadRequest, err)
	case errors.Is(err, chat.ErrConfiguration):
		return CodedError(http.StatusInternalServerError, err)
	case errors.Is(err, chat.ErrProvider):
		return CodedError(http.StatusBadGateway, err)
	default:
		return err
	}
}

func toAPITurn(turn chat.Turn) api.ChatTurn {
	return api.ChatTurn{
		ID:          turn.ID,
		Role:        string(turn.Role),
		Content:     turn.Content,
		CreatedAt:   turn.CreatedAt,
		ImageURL:    turn.ImageURL,
		AudioURL:    turn.AudioURL,
		ImagePrompt: turn.ImagePrompt,
	}
}
