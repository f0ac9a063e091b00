package httpserver

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Pruetpong/english-conversation-with-dsu-foreign-teachers/internal/chat"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsChat runs one chat session per websocket connection. The client drives
// it with send/retry/clear/settings frames; every visible conversation
// change is pushed back as an update frame carrying the full snapshot.
func (h Handlers) wsChat(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	sessionID := uuid.NewString()

	var writeMu sync.Mutex
	push := func(m serverMessage) {
		b, err := encodeServerMessage(m)
		if err != nil {
			log.Printf("ws %s: %v", sessionID, err)
			return
		}
		writeMu.Lock()
		err = conn.WriteMessage(websocket.TextMessage, b)
		writeMu.Unlock()
		if err != nil {
			log.Printf("ws %s: write failed: %v", sessionID, err)
		}
	}

	session := chat.NewSession(h.Catalog, h.Backend, h.Speech,
		func(msgs []chat.Message) { push(serverMessage{Type: msgUpdate, Messages: msgs}) },
		func(errMsg string) { push(serverMessage{Type: msgError, Message: errMsg}) },
	)

	push(serverMessage{Type: msgConnected, SessionID: sessionID})

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("ws %s: closed: %v", sessionID, err)
			return nil
		}
		msg, err := decodeClientMessage(data)
		if err != nil {
			push(serverMessage{Type: msgError, Message: err.Error()})
			continue
		}

		switch msg.Type {
		case msgSend:
			// The session drops overlapping sends; running the turn off the
			// read loop keeps the connection responsive while streaming.
			go func(text string) {
				if err := session.Send(ctx, text); err != nil {
					log.Printf("ws %s: send turn failed: %v", sessionID, err)
				}
			}(msg.Text)
		case msgRetry:
			go func() {
				if err := session.Retry(ctx); err != nil {
					log.Printf("ws %s: retry turn failed: %v", sessionID, err)
				}
			}()
		case msgClear:
			session.Clear()
		case msgSettings:
			if msg.Settings == nil {
				push(serverMessage{Type: msgError, Message: "settings frame missing settings"})
				continue
			}
			if err := h.validateSettings(*msg.Settings); err != nil {
				push(serverMessage{Type: msgError, Message: err.Error()})
				continue
			}
			session.UpdateSettings(*msg.Settings)
		default:
			push(serverMessage{Type: msgError, Message: "unknown frame type " + msg.Type})
		}
	}
}

// validateSettings rejects unknown catalog ids before they reach the
// session, which treats them as fatal.
func (h Handlers) validateSettings(s chat.Settings) error {
	if _, err := h.Catalog.Teacher(s.TeacherID); err != nil {
		return err
	}
	if _, err := h.Catalog.Scenario(s.ScenarioID); err != nil {
		return err
	}
	if _, err := h.Catalog.UserMode(s.UserModeID); err != nil {
		return err
	}
	return nil
}
