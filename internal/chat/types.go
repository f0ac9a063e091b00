// Package chat holds the conversation domain: messages, settings, the
// dual-language response parser and the session state machine that drives
// one practice conversation against a streaming language model.
package chat

import (
	"context"
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversational turn. For assistant messages Content holds
// the parsed main content once the turn completes; while the turn is in
// flight it holds the accumulated partial text.
type Message struct {
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	AudioData   []byte    `json:"audioData,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

// Settings is the mutable session configuration. Changing any of the three
// identity ids invalidates the open stream and clears the conversation.
type Settings struct {
	TeacherID   string  `json:"teacherId"`
	ScenarioID  string  `json:"scenarioId"`
	UserModeID  string  `json:"userModeId"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
	UseTTS      bool    `json:"useTTS"`
}

// DefaultSettings mirrors the app's startup configuration.
func DefaultSettings() Settings {
	return Settings{
		TeacherID:   "teacher_steven",
		ScenarioID:  "general",
		UserModeID:  "student",
		Temperature: 0.7,
		MaxTokens:   800,
		UseTTS:      true,
	}
}

// SameIdentity reports whether two settings address the same
// teacher/scenario/mode triple.
func (s Settings) SameIdentity(o Settings) bool {
	return s.TeacherID == o.TeacherID && s.ScenarioID == o.ScenarioID && s.UserModeID == o.UserModeID
}

// Backend opens streaming conversations with the text-generation service.
type Backend interface {
	Open(systemInstruction string, temperature float32, maxTokens int) (Stream, error)
}

// Stream is an open multi-turn exchange with the model. Send delivers the
// reply as ordered text fragments on the first channel; a send failure
// arrives on the second. Both channels are closed when the turn is over.
type Stream interface {
	Send(ctx context.Context, userText string) (<-chan string, <-chan error)
	Close() error
}

// Speech synthesizes spoken audio for a piece of text.
type Speech interface {
	Synthesize(ctx context.Context, text string, voice string) ([]byte, error)
}
