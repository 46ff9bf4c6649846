package chat

import (
	"context"
	"encoding/base64"
	"log/slog"
	"sync"

	"mentor-backend/internal/llm"
	"mentor-backend/internal/storage"
)

// imagePromptSuffix is appended to every image request so generated visuals
// share a consistent look.
const imagePromptSuffix = ". Make it a professional infographic style with clean design, suitable for career advice."

// maxSpeechInputRunes is the safe ceiling on speech-synthesis input length.
const maxSpeechInputRunes = 4000

// MediaAugmenter enriches an assistant turn with generated imagery and
// narration. The two sub-calls run concurrently and independently; a
// failure of either is logged and leaves the field empty, never failing the
// turn.
type MediaAugmenter struct {
	images  llm.ImageGenerator
	speech  llm.SpeechSynthesizer
	fetcher *storage.MediaFetcher
	blobs   *storage.BlobStore
}

// NewMediaAugmenter builds an augmenter. Either generator may be nil, which
// disables that enrichment. fetcher and blobs are optional: with a blob
// store, images are mirrored locally and audio lands as a file handle;
// without one, audio is surfaced as a data URI and images keep the
// provider URL.
func NewMediaAugmenter(images llm.ImageGenerator, speech llm.SpeechSynthesizer, fetcher *storage.MediaFetcher, blobs *storage.BlobStore) *MediaAugmenter {
	return &MediaAugmenter{images: images, speech: speech, fetcher: fetcher, blobs: blobs}
}

// Augment fills turn's media fields per the parsed directives. Partial
// success is a valid outcome.
func (a *MediaAugmenter) Augment(ctx context.Context, turn *Turn, d Directives) {
	var wg sync.WaitGroup

	if d.WantsImage && d.ImagePrompt != "" && a.images != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.generateImage(ctx, turn, d.ImagePrompt)
		}()
	}

	if d.WantsAudio && a.speech != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.generateAudio(ctx, turn, d.Advice)
		}()
	}

	wg.Wait()
}

func (a *MediaAugmenter) generateImage(ctx context.Context, turn *Turn, prompt string) {
	url, err := a.images.Generate(ctx, prompt+imagePromptSuffix)
	if err != nil {
		slog.Warn("image generation failed", "turn_id", turn.ID, "error", err)
		return
	}

	turn.ImagePrompt = prompt
	if a.fetcher != nil {
		if local, err := a.fetcher.FetchImage(ctx, url, turn.ID); err == nil {
			turn.ImageURL = local
			return
		} else {
			slog.Warn("failed to mirror generated image, keeping provider url", "turn_id", turn.ID, "error", err)
		}
	}
	turn.ImageURL = url
}

func (a *MediaAugmenter) generateAudio(ctx context.Context, turn *Turn, advice string) {
	input := truncateRunes(advice, maxSpeechInputRunes)
	data, err := a.speech.Synthesize(ctx, input)
	if err != nil {
		slog.Warn("speech synthesis failed", "turn_id", turn.ID, "error", err)
		return
	}

	if a.blobs != nil {
		if handle, err := a.blobs.Put(turn.ID+".mp3", data); err == nil {
			turn.AudioURL = handle
			return
		} else {
			slog.Warn("failed to store audio blob, falling back to data uri", "turn_id", turn.ID, "error", err)
		}
	}
	turn.AudioURL = "data:audio/mp3;base64," + base64.StdEncoding.EncodeToString(data)
}
