package chat

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentor-backend/internal/storage"
)

// mediaHeavyHistory builds n conversations, most recent first, each with a
// user turn and a media-rich assistant turn.
func mediaHeavyHistory(n int) []Conversation {
	convs := make([]Conversation, 0, n)
	for i := n - 1; i >= 0; i-- {
		user := NewTurn(RoleUser, fmt.Sprintf("question %d: %s", i, strings.Repeat("context ", 80)))
		assistant := NewTurn(RoleAssistant, fmt.Sprintf("advice %d: %s", i, strings.Repeat("detail ", 80)))
		assistant.ImageURL = fmt.Sprintf("http://img.example/%d.png", i)
		assistant.AudioURL = "data:audio/mp3;base64," + strings.Repeat("QUJD", 50)
		assistant.ImagePrompt = fmt.Sprintf("diagram %d", i)
		convs = append(convs, Conversation{
			ID:        fmt.Sprintf("conv-%d", i),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
			Title:     fmt.Sprintf("conversation %d", i),
			Turns:     []Turn{user, assistant},
		})
	}
	return convs
}

func serializedSize(t *testing.T, convs []Conversation) int {
	t.Helper()
	data, err := json.Marshal(convs)
	require.NoError(t, err)
	return len(data)
}

func TestStripAudioKeepsRecentConversations(t *testing.T) {
	convs := mediaHeavyHistory(6)
	out := stripAudio(convs, 3)

	for i := 0; i < 3; i++ {
		assert.NotEmpty(t, out[i].Turns[1].AudioURL, "conversation %d should keep audio", i)
		assert.NotEmpty(t, out[i].Turns[1].ImageURL)
	}
	for i := 3; i < 6; i++ {
		assert.Empty(t, out[i].Turns[1].AudioURL, "conversation %d should lose audio", i)
		assert.NotEmpty(t, out[i].Turns[1].ImageURL, "audio goes before images")
	}

	// The input is untouched.
	assert.NotEmpty(t, convs[5].Turns[1].AudioURL)
}

func TestStripMediaKeepsRecentConversations(t *testing.T) {
	out := stripMedia(mediaHeavyHistory(7), 5)

	for i := 0; i < 5; i++ {
		assert.NotEmpty(t, out[i].Turns[1].ImageURL)
	}
	for i := 5; i < 7; i++ {
		assert.Empty(t, out[i].Turns[1].ImageURL)
		assert.Empty(t, out[i].Turns[1].AudioURL)
	}
}

func TestCollapse(t *testing.T) {
	out := collapse(mediaHeavyHistory(12), 20)

	// max(5, 20/2) conversations survive, most recent first.
	require.Len(t, out, 10)
	assert.Equal(t, "conv-11", out[0].ID)

	for _, conv := range out {
		for _, turn := range conv.Turns {
			assert.LessOrEqual(t, len([]rune(turn.Content)), 500)
			assert.Empty(t, turn.ImageURL)
			assert.Empty(t, turn.AudioURL)
			assert.Empty(t, turn.ImagePrompt)
		}
	}
}

func TestCollapseMinimumFive(t *testing.T) {
	out := collapse(mediaHeavyHistory(8), 6)
	assert.Len(t, out, 5)
}

func TestNewestOnly(t *testing.T) {
	convs := mediaHeavyHistory(4)
	convs[0].Turns[0].Content = strings.Repeat("x", 1000)

	out := newestOnly(convs)

	require.Len(t, out, 1)
	assert.Equal(t, "conv-3", out[0].ID)
	assert.Len(t, []rune(out[0].Turns[0].Content), 300)
	assert.Empty(t, out[0].Turns[1].ImageURL)
	assert.Empty(t, out[0].Turns[1].AudioURL)
}

func TestNewestOnlyEmpty(t *testing.T) {
	assert.Empty(t, newestOnly(nil))
}

// TestPersistLadderOrdering drives persist against progressively tighter
// quotas and verifies each rung engages in order: audio stripped before
// images, images before truncation, truncation before the full wipe, and
// the newest conversation survives every rung but the last.
func TestPersistLadderOrdering(t *testing.T) {
	convs := mediaHeavyHistory(8)
	key := "chatHistory::anonymous"

	full := serializedSize(t, convs)
	step1 := serializedSize(t, stripAudio(convs, ladderAudioKeep))
	step2 := serializedSize(t, stripMedia(stripAudio(convs, ladderAudioKeep), ladderMediaKeep))
	step3 := serializedSize(t, collapse(stripMedia(stripAudio(convs, ladderAudioKeep), ladderMediaKeep), maxAnonymousConversations))
	step4 := serializedSize(t, newestOnly(collapse(stripMedia(stripAudio(convs, ladderAudioKeep), ladderMediaKeep), maxAnonymousConversations)))

	// The fixture must actually shrink at every rung for the quotas below
	// to isolate one step each.
	require.Greater(t, full, step1)
	require.Greater(t, step1, step2)
	require.Greater(t, step2, step3)
	require.Greater(t, step3, step4)

	readBack := func(kv *storage.MemoryStore) []Conversation {
		value, ok, err := kv.Get(key)
		require.NoError(t, err)
		require.True(t, ok)
		var stored []Conversation
		require.NoError(t, json.Unmarshal([]byte(value), &stored))
		return stored
	}

	t.Run("step1 strips old audio", func(t *testing.T) {
		kv := storage.NewMemoryStore(len(key) + step1)
		store := NewStore(kv)

		wiped, err := store.persist(Anonymous, convs)
		require.NoError(t, err)
		assert.False(t, wiped)

		stored := readBack(kv)
		require.Len(t, stored, 8)
		assert.NotEmpty(t, stored[0].Turns[1].AudioURL)
		assert.Empty(t, stored[3].Turns[1].AudioURL)
		assert.NotEmpty(t, stored[3].Turns[1].ImageURL)
	})

	t.Run("step2 strips old images", func(t *testing.T) {
		kv := storage.NewMemoryStore(len(key) + step2)
		store := NewStore(kv)

		wiped, err := store.persist(Anonymous, convs)
		require.NoError(t, err)
		assert.False(t, wiped)

		stored := readBack(kv)
		require.Len(t, stored, 8)
		assert.NotEmpty(t, stored[4].Turns[1].ImageURL)
		assert.Empty(t, stored[5].Turns[1].ImageURL)
		assert.Empty(t, stored[5].Turns[1].AudioURL)
	})

	t.Run("step3 collapses and truncates", func(t *testing.T) {
		kv := storage.NewMemoryStore(len(key) + step3)
		store := NewStore(kv)

		wiped, err := store.persist(Anonymous, convs)
		require.NoError(t, err)
		assert.False(t, wiped)

		stored := readBack(kv)
		require.Len(t, stored, 5)
		assert.Equal(t, "conv-7", stored[0].ID)
		for _, conv := range stored {
			for _, turn := range conv.Turns {
				assert.LessOrEqual(t, len([]rune(turn.Content)), 500)
				assert.Empty(t, turn.ImageURL)
				assert.Empty(t, turn.AudioURL)
			}
		}
	})

	t.Run("step4 keeps only the newest", func(t *testing.T) {
		kv := storage.NewMemoryStore(len(key) + step4)
		store := NewStore(kv)

		wiped, err := store.persist(Anonymous, convs)
		require.NoError(t, err)
		assert.False(t, wiped)

		stored := readBack(kv)
		require.Len(t, stored, 1)
		assert.Equal(t, "conv-7", stored[0].ID)
		for _, turn := range stored[0].Turns {
			assert.LessOrEqual(t, len([]rune(turn.Content)), 300)
		}
	})

	t.Run("step5 wipes the medium", func(t *testing.T) {
		kv := storage.NewMemoryStore(10)
		store := NewStore(kv)

		wiped, err := store.persist(Anonymous, convs)
		require.NoError(t, err)
		assert.True(t, wiped)
		assert.Equal(t, 0, kv.Len())
	})
}
