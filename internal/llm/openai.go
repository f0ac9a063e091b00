// Package llm talks to the OpenAI-compatible chat completion API and
// exposes replies as streams of text fragments.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"

	"github.com/Pruetpong/english-conversation-with-dsu-foreign-teachers/internal/chat"
)

// Client opens streaming chat sessions against the completion API.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient builds a client for the given API key and model. baseURL
// overrides the API endpoint when non-empty (tests point it at a local
// server).
func NewClient(apiKey, model, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{client: openai.NewClientWithConfig(cfg), model: model}
}

// Open creates a new multi-turn chat session carrying the system
// instruction and generation config. No network traffic happens until the
// first Send.
func (c *Client) Open(systemInstruction string, temperature float32, maxTokens int) (chat.Stream, error) {
	if c.model == "" {
		return nil, fmt.Errorf("llm: model id missing")
	}
	return &ChatSession{
		id:          uuid.NewString(),
		client:      c.client,
		model:       c.model,
		system:      systemInstruction,
		temperature: temperature,
		maxTokens:   maxTokens,
	}, nil
}

// Turn is one prior exchange entry for the stateless relay path.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StreamChat runs a single stateless streaming completion over the given
// turns. Used by the HTTP relay, which carries conversation state on the
// caller's side.
func (c *Client) StreamChat(ctx context.Context, turns []Turn, temperature float32, maxTokens int) (<-chan string, <-chan error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: t.Role, Content: t.Content})
	}
	return c.stream(ctx, msgs, temperature, maxTokens, nil)
}

// stream issues one streaming completion request and forwards delta
// fragments in arrival order. onDone receives the assembled reply after a
// clean end of stream, before the channels close.
func (c *Client) stream(ctx context.Context, msgs []openai.ChatCompletionMessage, temperature float32, maxTokens int, onDone func(full string)) (<-chan string, <-chan error) {
	frags := make(chan string, 64)
	errs := make(chan error, 1)
	go func() {
		defer close(frags)
		defer close(errs)

		req := openai.ChatCompletionRequest{
			Model:       c.model,
			Messages:    msgs,
			Temperature: temperature,
			MaxTokens:   maxTokens,
			Stream:      true,
		}
		stream, err := c.client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			errs <- fmt.Errorf("llm: open completion stream: %w", err)
			return
		}
		defer stream.Close()

		var full []byte
		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				if onDone != nil {
					onDone(string(full))
				}
				return
			}
			if err != nil {
				errs <- fmt.Errorf("llm: stream recv: %w", err)
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			delta := resp.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			full = append(full, delta...)
			select {
			case frags <- delta:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()
	return frags, errs
}

// ChatSession is an open multi-turn exchange. It owns the conversation
// history on this side of the wire: each Send re-sends the system
// instruction and all committed turns, and a turn is committed only after
// its stream ended cleanly.
type ChatSession struct {
	id          string
	client      *openai.Client
	model       string
	system      string
	temperature float32
	maxTokens   int

	mu      sync.Mutex
	history []openai.ChatCompletionMessage
}

// Send streams the model's reply to userText. Fragments arrive in order on
// the first channel; a failure on the second. A failed turn leaves the
// session history untouched.
func (s *ChatSession) Send(ctx context.Context, userText string) (<-chan string, <-chan error) {
	s.mu.Lock()
	msgs := make([]openai.ChatCompletionMessage, 0, len(s.history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: s.system})
	msgs = append(msgs, s.history...)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userText})
	s.mu.Unlock()

	c := &Client{client: s.client, model: s.model}
	return c.stream(ctx, msgs, s.temperature, s.maxTokens, func(full string) {
		s.mu.Lock()
		s.history = append(s.history,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userText},
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: full},
		)
		s.mu.Unlock()
	})
}

// Close discards the session. There is no server-side resource to release;
// the handle simply stops being usable for the caller.
func (s *ChatSession) Close() error {
	s.mu.Lock()
	turns := len(s.history) / 2
	s.mu.Unlock()
	log.Printf("llm: session %s closed (%d turns)", s.id, turns)
	return nil
}
