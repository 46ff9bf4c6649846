package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mentor-backend/internal/fields"
	"mentor-backend/internal/storage"
)

const (
	maxIdentifiedConversations = 20
	maxAnonymousConversations  = 10
)

// Store keeps per-identity conversation history in a bounded key-value
// medium. Writes go through the degradation ladder so the newest turn
// survives even when the quota is exceeded; reads self-heal duplicate or
// missing ids. Concurrent writers beyond this process are last-write-wins.
type Store struct {
	mu  sync.Mutex
	kv  storage.KVStore
	now func() time.Time
}

func NewStore(kv storage.KVStore) *Store {
	return &Store{kv: kv, now: time.Now}
}

// AppendOptions carries the optional per-append conversation updates.
type AppendOptions struct {
	// Field overwrites the conversation's inferred field when set.
	Field fields.Field
	// Title overrides the derived title when set.
	Title string
}

// Metadata is the conversation-level state a Merge may update.
type Metadata struct {
	Title         string
	InferredField fields.Field
}

func bucket(identity Identity) string {
	if identity == Anonymous {
		return "anonymous"
	}
	return string(identity)
}

func historyKey(identity Identity) string {
	return "chatHistory::" + bucket(identity)
}

func legacyHistoryKey(identity Identity) string {
	return "history::" + bucket(identity)
}

func fieldKey(identity Identity) string {
	return "rememberedField::" + string(identity)
}

func maxConversations(identity Identity) int {
	if identity == Anonymous {
		return maxAnonymousConversations
	}
	return maxIdentifiedConversations
}

// AppendTurn adds turn to the conversation, creating one when
// conversationID is empty or unknown. It returns the owning conversation's
// id and whether the degradation ladder had to wipe history to complete the
// write.
func (s *Store) AppendTurn(conversationID string, turn Turn, identity Identity, opts *AppendOptions) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	convs, err := s.load(identity)
	if err != nil {
		return "", false, err
	}

	now := s.now()
	idx := indexOf(convs, conversationID)
	if idx < 0 {
		id := conversationID
		if id == "" {
			id = uuid.NewString()
		}
		convs = append([]Conversation{{ID: id, CreatedAt: now}}, convs...)
		idx = 0
	}

	conv := &convs[idx]
	conv.Turns = append(conv.Turns, turn)
	conv.UpdatedAt = now
	if opts != nil {
		if opts.Field != fields.Unknown {
			conv.InferredField = opts.Field
		}
		if opts.Title != "" {
			conv.Title = opts.Title
		}
	}
	if conv.Title == "" {
		conv.Title = deriveTitle(conv.Turns)
	}

	convs = moveToFront(convs, idx)
	convs = capConversations(convs, maxConversations(identity))

	if turn.Role == RoleAssistant {
		s.writeLegacy(identity, convs[0])
	}

	id := convs[0].ID
	wiped, err := s.persist(identity, convs)
	return id, wiped, err
}

// Merge replaces the full turn list of the conversation, creating it (under
// the supplied id, so client-generated ids stay stable) when unknown.
func (s *Store) Merge(conversationID string, turns []Turn, meta Metadata, identity Identity) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	convs, err := s.load(identity)
	if err != nil {
		return "", false, err
	}

	now := s.now()
	idx := indexOf(convs, conversationID)
	if idx < 0 {
		id := conversationID
		if id == "" {
			id = uuid.NewString()
		}
		convs = append([]Conversation{{ID: id, CreatedAt: now}}, convs...)
		idx = 0
	}

	conv := &convs[idx]
	conv.Turns = append([]Turn(nil), turns...)
	conv.UpdatedAt = now
	if meta.Title != "" {
		conv.Title = meta.Title
	}
	if meta.InferredField != fields.Unknown {
		conv.InferredField = meta.InferredField
	}
	if conv.Title == "" {
		conv.Title = deriveTitle(conv.Turns)
	}

	convs = moveToFront(convs, idx)
	convs = capConversations(convs, maxConversations(identity))

	id := convs[0].ID
	wiped, err := s.persist(identity, convs)
	return id, wiped, err
}

// List returns the identity's conversations, most recent first. Duplicate
// or missing ids are regenerated and the correction persisted before
// returning.
func (s *Store) List(identity Identity) ([]Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	convs, err := s.load(identity)
	if err != nil {
		return nil, err
	}

	healed := false
	seen := make(map[string]bool)
	for i := range convs {
		if convs[i].ID == "" || seen[convs[i].ID] {
			convs[i].ID = uuid.NewString()
			healed = true
		}
		seen[convs[i].ID] = true
		for j := range convs[i].Turns {
			turn := &convs[i].Turns[j]
			if turn.ID == "" || seen[turn.ID] {
				turn.ID = uuid.NewString()
				healed = true
			}
			seen[turn.ID] = true
		}
	}

	if healed {
		if _, err := s.persist(identity, convs); err != nil {
			slog.Warn("failed to persist id corrections", "identity", bucket(identity), "error", err)
		}
	}

	return convs, nil
}

// Conversation returns a single conversation by id.
func (s *Store) Conversation(conversationID string, identity Identity) (Conversation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	convs, err := s.load(identity)
	if err != nil {
		return Conversation{}, false, err
	}
	idx := indexOf(convs, conversationID)
	if idx < 0 {
		return Conversation{}, false, nil
	}
	conv := convs[idx]
	conv.Turns = append([]Turn(nil), conv.Turns...)
	return conv, true, nil
}

// Delete removes exactly the named conversation. It reports false, without
// mutating anything, when the id is unknown.
func (s *Store) Delete(conversationID string, identity Identity) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	convs, err := s.load(identity)
	if err != nil {
		return false, err
	}
	idx := indexOf(convs, conversationID)
	if idx < 0 {
		return false, nil
	}

	convs = append(convs[:idx], convs[idx+1:]...)
	if _, err := s.persist(identity, convs); err != nil {
		return false, err
	}
	return true, nil
}

// EnrichTurn fills media fields on an existing turn in place. Empty
// arguments leave the corresponding field untouched.
func (s *Store) EnrichTurn(conversationID, turnID string, identity Identity, imageURL, imagePrompt, audioURL string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	convs, err := s.load(identity)
	if err != nil {
		return false, err
	}
	idx := indexOf(convs, conversationID)
	if idx < 0 {
		return false, nil
	}

	found := false
	for j := range convs[idx].Turns {
		turn := &convs[idx].Turns[j]
		if turn.ID != turnID {
			continue
		}
		if imageURL != "" {
			turn.ImageURL = imageURL
		}
		if imagePrompt != "" {
			turn.ImagePrompt = imagePrompt
		}
		if audioURL != "" {
			turn.AudioURL = audioURL
		}
		found = true
		break
	}
	if !found {
		return false, nil
	}

	convs[idx].UpdatedAt = s.now()
	if _, err := s.persist(identity, convs); err != nil {
		return false, err
	}
	return true, nil
}

// RememberedField returns the identity's last inferred field, used to seed
// future sessions.
func (s *Store) RememberedField(identity Identity) (fields.Field, bool) {
	if identity == Anonymous {
		return fields.Unknown, false
	}
	value, ok, err := s.kv.Get(fieldKey(identity))
	if err != nil || !ok {
		return fields.Unknown, false
	}
	var field string
	if err := json.Unmarshal([]byte(value), &field); err != nil {
		return fields.Unknown, false
	}
	if field == "" {
		return fields.Unknown, false
	}
	return fields.Field(field), true
}

// SetRememberedField persists the field independently of any conversation.
// Best effort: a full medium never fails the turn over this.
func (s *Store) SetRememberedField(identity Identity, field fields.Field) {
	if identity == Anonymous || field == fields.Unknown {
		return
	}
	data, err := json.Marshal(string(field))
	if err != nil {
		return
	}
	if err := s.kv.Set(fieldKey(identity), string(data)); err != nil {
		slog.Warn("failed to remember field", "identity", bucket(identity), "error", err)
	}
}

func (s *Store) load(identity Identity) ([]Conversation, error) {
	value, ok, err := s.kv.Get(historyKey(identity))
	if err != nil {
		return nil, fmt.Errorf("error reading history: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var convs []Conversation
	if err := json.Unmarshal([]byte(value), &convs); err != nil {
		// Corrupt history is unrecoverable; start over rather than fail
		// every subsequent turn.
		slog.Warn("discarding unreadable history", "identity", bucket(identity), "error", err)
		return nil, nil
	}
	return convs, nil
}

// persist writes the collection, walking the degradation ladder on quota
// failures. It reports whether the final wipe step had to run.
func (s *Store) persist(identity Identity, convs []Conversation) (bool, error) {
	key := historyKey(identity)

	set := func(c []Conversation) error {
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("error serializing history: %w", err)
		}
		return s.kv.Set(key, string(data))
	}

	err := set(convs)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrQuotaExceeded) {
		return false, err
	}

	steps := []struct {
		name  string
		apply func([]Conversation) []Conversation
	}{
		{"strip old audio", func(c []Conversation) []Conversation { return stripAudio(c, ladderAudioKeep) }},
		{"strip old media", func(c []Conversation) []Conversation { return stripMedia(c, ladderMediaKeep) }},
		{"collapse history", func(c []Conversation) []Conversation { return collapse(c, maxConversations(identity)) }},
		{"newest only", newestOnly},
	}

	working := convs
	for _, step := range steps {
		working = step.apply(working)
		err = set(working)
		if err == nil {
			slog.Warn("storage quota exceeded, history degraded", "identity", bucket(identity), "step", step.name)
			return false, nil
		}
		if !errors.Is(err, storage.ErrQuotaExceeded) {
			return false, err
		}
	}

	// Even the single newest item does not fit: clear the medium and tell
	// the caller history is gone.
	if err := s.kv.Clear(); err != nil {
		return false, fmt.Errorf("error clearing storage after quota exhaustion: %w", err)
	}
	slog.Error("storage quota exhausted, history wiped", "identity", bucket(identity))
	return true, nil
}

// writeLegacy mirrors the latest exchange into the single-turn record list
// older clients read. Best effort.
func (s *Store) writeLegacy(identity Identity, conv Conversation) {
	var assistant *Turn
	var prompt string
	for i := len(conv.Turns) - 1; i >= 0; i-- {
		turn := conv.Turns[i]
		if assistant == nil && turn.Role == RoleAssistant {
			t := turn
			assistant = &t
			continue
		}
		if assistant != nil && turn.Role == RoleUser {
			prompt = turn.Content
			break
		}
	}
	if assistant == nil {
		return
	}

	key := legacyHistoryKey(identity)
	var records []LegacyRecord
	if value, ok, err := s.kv.Get(key); err == nil && ok {
		if err := json.Unmarshal([]byte(value), &records); err != nil {
			records = nil
		}
	}

	records = append([]LegacyRecord{{
		ID:          uuid.NewString(),
		CreatedAt:   s.now().Format(time.RFC3339),
		Prompt:      prompt,
		Advice:      assistant.Content,
		ImageURL:    assistant.ImageURL,
		AudioURL:    assistant.AudioURL,
		ImagePrompt: assistant.ImagePrompt,
	}}, records...)
	if max := maxConversations(identity); len(records) > max {
		records = records[:max]
	}

	data, err := json.Marshal(records)
	if err != nil {
		return
	}
	if err := s.kv.Set(key, string(data)); err != nil {
		slog.Warn("failed to write legacy history", "identity", bucket(identity), "error", err)
	}
}

func indexOf(convs []Conversation, id string) int {
	if id == "" {
		return -1
	}
	for i := range convs {
		if convs[i].ID == id {
			return i
		}
	}
	return -1
}

func moveToFront(convs []Conversation, idx int) []Conversation {
	if idx == 0 {
		return convs
	}
	moved := convs[idx]
	convs = append(convs[:idx], convs[idx+1:]...)
	return append([]Conversation{moved}, convs...)
}

func capConversations(convs []Conversation, max int) []Conversation {
	if len(convs) > max {
		return convs[:max]
	}
	return convs
}
