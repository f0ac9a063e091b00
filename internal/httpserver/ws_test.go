package httpserver

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Pruetpong/english-conversation-with-dsu-foreign-teachers/internal/chat"
	"github.com/Pruetpong/english-conversation-with-dsu-foreign-teachers/internal/persona"
)

type wsStream struct{ frags []string }

func (s *wsStream) Send(ctx context.Context, userText string) (<-chan string, <-chan error) {
	fc := make(chan string, len(s.frags))
	ec := make(chan error, 1)
	for _, f := range s.frags {
		fc <- f
	}
	close(fc)
	close(ec)
	return fc, ec
}

func (s *wsStream) Close() error { return nil }

type wsBackend struct{ frags []string }

func (b wsBackend) Open(systemInstruction string, temperature float32, maxTokens int) (chat.Stream, error) {
	return &wsStream{frags: b.frags}, nil
}

func dialWS(t *testing.T, backend chat.Backend) *websocket.Conn {
	t.Helper()
	catalog, err := persona.Load("")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	e := New()
	NewHandlers(catalog, &fakeCompleter{}, &fakeSpeech{audio: []byte{0x01}}, backend).Register(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) serverMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var m serverMessage
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return m
}

func TestWS_ConnectedFrame(t *testing.T) {
	conn := dialWS(t, wsBackend{})
	m := readFrame(t, conn)
	if m.Type != msgConnected || m.SessionID == "" {
		t.Fatalf("unexpected first frame: %+v", m)
	}
}

func TestWS_SendTurn(t *testing.T) {
	conn := dialWS(t, wsBackend{frags: []string{"Hello ", "there."}})
	readFrame(t, conn)

	if err := conn.WriteJSON(clientMessage{Type: msgSend, Text: "hi"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Updates stream in as the turn progresses; the last one carries the
	// finished assistant message with the reply text and the audio clip.
	var final serverMessage
	for {
		m := readFrame(t, conn)
		if m.Type != msgUpdate {
			t.Fatalf("unexpected frame: %+v", m)
		}
		if len(m.Messages) == 2 && m.Messages[1].Content == "Hello there." && m.Messages[1].AudioData != nil {
			final = m
			break
		}
	}
	if final.Messages[0].Role != chat.RoleUser || final.Messages[0].Content != "hi" {
		t.Fatalf("user message: %+v", final.Messages[0])
	}
	if final.Messages[1].Role != chat.RoleAssistant {
		t.Fatalf("assistant message: %+v", final.Messages[1])
	}
}

func TestWS_SettingsValidation(t *testing.T) {
	conn := dialWS(t, wsBackend{})
	readFrame(t, conn)

	bad := chat.DefaultSettings()
	bad.TeacherID = "teacher_nobody"
	if err := conn.WriteJSON(clientMessage{Type: msgSettings, Settings: &bad}); err != nil {
		t.Fatalf("write: %v", err)
	}
	m := readFrame(t, conn)
	if m.Type != msgError || m.Message == "" {
		t.Fatalf("expected error frame, got %+v", m)
	}
}

func TestWS_MissingSettingsPayload(t *testing.T) {
	conn := dialWS(t, wsBackend{})
	readFrame(t, conn)

	if err := conn.WriteJSON(clientMessage{Type: msgSettings}); err != nil {
		t.Fatalf("write: %v", err)
	}
	m := readFrame(t, conn)
	if m.Type != msgError {
		t.Fatalf("expected error frame, got %+v", m)
	}
}

func TestWS_UnknownFrameType(t *testing.T) {
	conn := dialWS(t, wsBackend{})
	readFrame(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"dance"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	m := readFrame(t, conn)
	if m.Type != msgError || !strings.Contains(m.Message, "dance") {
		t.Fatalf("expected error frame, got %+v", m)
	}
}

func TestWS_MalformedFrame(t *testing.T) {
	conn := dialWS(t, wsBackend{})
	readFrame(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	m := readFrame(t, conn)
	if m.Type != msgError {
		t.Fatalf("expected error frame, got %+v", m)
	}
}
