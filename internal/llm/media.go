package llm

import (
	"context"
	"fmt"
	"io"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIMediaClient implements ImageGenerator and SpeechSynthesizer against
// the OpenAI images and speech endpoints.
type OpenAIMediaClient struct {
	client     openai.Client
	imageModel openai.ImageModel
	voice      openai.AudioSpeechNewParamsVoice
}

func NewOpenAIMediaClient(apiKey string) *OpenAIMediaClient {
	return &OpenAIMediaClient{
		client:     openai.NewClient(option.WithAPIKey(apiKey)),
		imageModel: openai.ImageModelDallE3,
		voice:      openai.AudioSpeechNewParamsVoiceNova,
	}
}

func (c *OpenAIMediaClient) Generate(ctx context.Context, prompt string) (string, error) {
	res, err := c.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Model:  c.imageModel,
		Prompt: prompt,
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize1024x1024,
	})
	if err != nil {
		return "", fmt.Errorf("image generation failed: %w", err)
	}
	if len(res.Data) == 0 || res.Data[0].URL == "" {
		return "", fmt.Errorf("image generation returned no image")
	}

	return res.Data[0].URL, nil
}

func (c *OpenAIMediaClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	res, err := c.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModelTTS1,
		Voice:          c.voice,
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading speech response: %w", err)
	}
	return data, nil
}
