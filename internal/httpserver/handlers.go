package httpserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"github.com/Pruetpong/english-conversation-with-dsu-foreign-teachers/internal/chat"
	"github.com/Pruetpong/english-conversation-with-dsu-foreign-teachers/internal/llm"
	"github.com/Pruetpong/english-conversation-with-dsu-foreign-teachers/internal/persona"
)

// Completer runs one stateless streaming completion for the relay endpoint.
type Completer interface {
	StreamChat(ctx context.Context, turns []llm.Turn, temperature float32, maxTokens int) (<-chan string, <-chan error)
}

// Handlers bundles the HTTP surface's dependencies.
type Handlers struct {
	Catalog   *persona.Catalog
	Completer Completer
	Speech    chat.Speech
	Backend   chat.Backend
}

func NewHandlers(catalog *persona.Catalog, completer Completer, speech chat.Speech, backend chat.Backend) Handlers {
	return Handlers{Catalog: catalog, Completer: completer, Speech: speech, Backend: backend}
}

func (h Handlers) Register(e *echo.Echo) {
	e.GET("/api/health", h.health)
	e.GET("/api/catalog", h.catalog)
	e.POST("/api/chat", h.chat)
	e.POST("/api/tts", h.tts)
	e.GET("/ws/chat", h.wsChat)
}

func (h Handlers) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Backend server is running",
	})
}

func (h Handlers) catalog(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"teachers":  h.Catalog.Teachers,
		"scenarios": h.Catalog.Scenarios,
		"userModes": h.Catalog.UserModes,
	})
}

type chatRequest struct {
	Messages    []llm.Turn `json:"messages"`
	Temperature float32    `json:"temperature"`
	MaxTokens   int        `json:"maxTokens"`
}

type sseFrame struct {
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// chat relays a completion request as a server-sent-event stream of
// {"content": ...} frames terminated by a literal [DONE] frame. Validation
// failures are a 400 JSON body; a failure before the first frame is a 500;
// a failure mid-stream is reported as an error frame because the status
// line is already on the wire.
func (h Handlers) chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil || req.Messages == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid messages format"})
	}
	if req.Temperature == 0 {
		req.Temperature = 0.7
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 800
	}

	ctx := c.Request().Context()
	frags, errs := h.Completer.StreamChat(ctx, req.Messages, req.Temperature, req.MaxTokens)

	res := c.Response()
	started := false
	start := func() {
		res.Header().Set(echo.HeaderContentType, "text/event-stream")
		res.Header().Set("Cache-Control", "no-cache")
		res.Header().Set("Connection", "keep-alive")
		res.WriteHeader(http.StatusOK)
		started = true
	}
	writeFrame := func(f sseFrame) {
		b, err := sonic.Marshal(f)
		if err != nil {
			return
		}
		fmt.Fprintf(res, "data: %s\n\n", b)
		res.Flush()
	}

	openFrags, openErrs := true, true
	for openFrags || openErrs {
		select {
		case f, ok := <-frags:
			if !ok {
				openFrags = false
				frags = nil
				continue
			}
			if !started {
				start()
			}
			writeFrame(sseFrame{Content: f})
		case e, ok := <-errs:
			if !ok {
				openErrs = false
				errs = nil
				continue
			}
			if e == nil {
				continue
			}
			if !started {
				return c.JSON(http.StatusInternalServerError, map[string]string{
					"error":   "Failed to generate response",
					"message": e.Error(),
				})
			}
			writeFrame(sseFrame{Error: e.Error()})
			return nil
		}
	}

	if !started {
		start()
	}
	fmt.Fprint(res, "data: [DONE]\n\n")
	res.Flush()
	return nil
}

type ttsRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// tts synthesizes speech for the given text and returns the raw audio
// bytes with an audio content type.
func (h Handlers) tts(c echo.Context) error {
	var req ttsRequest
	if err := c.Bind(&req); err != nil || req.Text == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Text is required"})
	}
	voice := req.Voice
	if voice == "" {
		voice = "alloy"
	}

	audio, err := h.Speech.Synthesize(c.Request().Context(), req.Text, voice)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "Failed to generate speech",
			"message": err.Error(),
		})
	}
	return c.Blob(http.StatusOK, "audio/mpeg", audio)
}
