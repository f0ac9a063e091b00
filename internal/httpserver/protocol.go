package httpserver

import (
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/Pruetpong/english-conversation-with-dsu-foreign-teachers/internal/chat"
)

// Websocket message types.
const (
	// client -> server
	msgSend     = "send"
	msgRetry    = "retry"
	msgClear    = "clear"
	msgSettings = "settings"

	// server -> client
	msgConnected = "connected"
	msgUpdate    = "update"
	msgError     = "error"
)

// clientMessage is a frame sent by the client over the chat websocket.
type clientMessage struct {
	Type     string         `json:"type"`
	Text     string         `json:"text,omitempty"`
	Settings *chat.Settings `json:"settings,omitempty"`
}

// serverMessage is a frame pushed to the client. Messages carries the full
// conversation snapshot on every update, matching the session's
// whole-so-far observer contract; audio bytes ride along base64-encoded.
type serverMessage struct {
	Type      string         `json:"type"`
	SessionID string         `json:"sessionId,omitempty"`
	Messages  []chat.Message `json:"messages,omitempty"`
	Message   string         `json:"message,omitempty"`
}

func encodeServerMessage(m serverMessage) ([]byte, error) {
	b, err := sonic.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("httpserver: marshal %q frame: %w", m.Type, err)
	}
	return b, nil
}

func decodeClientMessage(data []byte) (clientMessage, error) {
	var m clientMessage
	if err := sonic.Unmarshal(data, &m); err != nil {
		return clientMessage{}, fmt.Errorf("httpserver: unmarshal client frame: %w", err)
	}
	if m.Type == "" {
		return clientMessage{}, fmt.Errorf("httpserver: client frame missing type field")
	}
	return m, nil
}
