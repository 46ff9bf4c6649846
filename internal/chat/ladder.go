package chat

import "unicode/utf8"

// The degradation ladder: ordered data-shrinking strategies applied when the
// serialized history no longer fits the storage quota. Each step is a pure
// function over a copy of the collection; the store retries the write after
// each one. Recency order is preserved throughout and the newest item is
// never the one dropped.

const (
	ladderAudioKeep    = 3
	ladderMediaKeep    = 5
	ladderCollapseMin  = 5
	collapseContentMax = 500
	newestContentMax   = 300
)

func cloneConversations(convs []Conversation) []Conversation {
	out := make([]Conversation, len(convs))
	copy(out, convs)
	for i := range out {
		out[i].Turns = append([]Turn(nil), out[i].Turns...)
	}
	return out
}

// stripAudio clears audio handles from all but the keep most-recent
// conversations.
func stripAudio(convs []Conversation, keep int) []Conversation {
	out := cloneConversations(convs)
	for i := keep; i < len(out); i++ {
		for j := range out[i].Turns {
			out[i].Turns[j].AudioURL = ""
		}
	}
	return out
}

// stripMedia additionally clears image handles from all but the keep
// most-recent conversations.
func stripMedia(convs []Conversation, keep int) []Conversation {
	out := cloneConversations(convs)
	for i := keep; i < len(out); i++ {
		for j := range out[i].Turns {
			out[i].Turns[j].AudioURL = ""
			out[i].Turns[j].ImageURL = ""
		}
	}
	return out
}

// collapse keeps at most max(ladderCollapseMin, maxItems/2) conversations,
// truncates every turn's content, and drops all media fields.
func collapse(convs []Conversation, maxItems int) []Conversation {
	limit := maxItems / 2
	if limit < ladderCollapseMin {
		limit = ladderCollapseMin
	}
	out := cloneConversations(convs)
	if len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		stripTurns(out[i].Turns, collapseContentMax)
	}
	return out
}

// newestOnly keeps the single most recent conversation with content
// truncated harder and no media.
func newestOnly(convs []Conversation) []Conversation {
	if len(convs) == 0 {
		return convs
	}
	out := cloneConversations(convs[:1])
	stripTurns(out[0].Turns, newestContentMax)
	return out
}

func stripTurns(turns []Turn, contentMax int) {
	for j := range turns {
		turns[j].Content = truncateRunes(turns[j].Content, contentMax)
		turns[j].ImageURL = ""
		turns[j].AudioURL = ""
		turns[j].ImagePrompt = ""
	}
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
