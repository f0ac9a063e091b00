// Package tts provides speech synthesis adapters. All adapters return the
// synthesized clip as raw compressed audio bytes; container handling is the
// caller's concern.
package tts

import (
	"context"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
)

// OpenAISpeech synthesizes speech through the OpenAI audio API.
type OpenAISpeech struct {
	client *openai.Client
	model  openai.SpeechModel
}

// NewOpenAISpeech builds the adapter. model defaults to tts-1 and baseURL
// overrides the API endpoint when non-empty.
func NewOpenAISpeech(apiKey, model, baseURL string) *OpenAISpeech {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	m := openai.TTSModel1
	if model != "" {
		m = openai.SpeechModel(model)
	}
	return &OpenAISpeech{client: openai.NewClientWithConfig(cfg), model: m}
}

// Synthesize returns MP3 bytes for the given text. An empty voice falls
// back to "alloy".
func (o *OpenAISpeech) Synthesize(ctx context.Context, text string, voice string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("tts: text is required")
	}
	v := openai.VoiceAlloy
	if voice != "" {
		v = openai.SpeechVoice(voice)
	}
	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          o.model,
		Input:          text,
		Voice:          v,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("tts: create speech: %w", err)
	}
	defer resp.Close()
	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("tts: read speech body: %w", err)
	}
	return audio, nil
}
