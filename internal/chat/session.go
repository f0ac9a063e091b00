package chat

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/Pruetpong/english-conversation-with-dsu-foreign-teachers/internal/persona"
	"github.com/Pruetpong/english-conversation-with-dsu-foreign-teachers/internal/prompt"
)

// Session orchestrates one practice conversation: user turn -> placeholder
// -> stream -> parse -> optional speech -> finalize, with rollback on
// stream failure. At most one turn is in flight at a time; a message
// submitted while a turn runs is dropped, not queued.
//
// The open Stream is owned exclusively by the session. It is created lazily
// on the first send after any settings identity change and discarded when
// the identity changes or the conversation is cleared. An epoch counter
// guards against late fragments writing into a conversation that has been
// reset underneath an in-flight turn.
type Session struct {
	catalog *persona.Catalog
	backend Backend
	speech  Speech

	// onUpdate receives a snapshot of the conversation after every visible
	// change, including each accumulated-text update while streaming.
	onUpdate func(msgs []Message)
	// onError receives the single user-visible error string for a failed
	// turn. It is cleared on the next send attempt.
	onError func(msg string)

	mu       sync.Mutex
	settings Settings
	messages []Message
	stream   Stream
	inFlight bool
	epoch    int
	lastErr  string
}

// NewSession constructs a session with default settings. Both callbacks may
// be nil.
func NewSession(catalog *persona.Catalog, backend Backend, speech Speech, onUpdate func([]Message), onError func(string)) *Session {
	return &Session{
		catalog:  catalog,
		backend:  backend,
		speech:   speech,
		onUpdate: onUpdate,
		onError:  onError,
		settings: DefaultSettings(),
	}
}

// Messages returns a snapshot of the conversation.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Settings returns the current session settings.
func (s *Session) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// LastError returns the user-visible error from the most recent failed
// turn, or "" when the last turn succeeded.
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) snapshotLocked() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) notifyUpdate() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	cb := s.onUpdate
	s.mu.Unlock()
	if cb != nil {
		cb(snap)
	}
}

func (s *Session) notifyError(msg string) {
	if s.onError != nil {
		s.onError(msg)
	}
}

// Send runs one full turn for the given user text. Empty input and sends
// while a turn is already in flight are dropped. The call blocks until the
// turn completes, fails, or ctx is cancelled.
func (s *Session) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	if text == "" || s.inFlight {
		s.mu.Unlock()
		return nil
	}
	s.inFlight = true
	s.lastErr = ""
	epoch := s.epoch
	settings := s.settings
	now := time.Now()
	s.messages = append(s.messages,
		Message{Role: RoleUser, Content: text, Timestamp: now},
		Message{Role: RoleAssistant, Content: "", Timestamp: now, Suggestions: []string{}},
	)
	s.mu.Unlock()
	s.notifyUpdate()

	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	stream, err := s.ensureStream(settings, epoch)
	if err != nil {
		s.rollback(epoch, "API Error: "+err.Error())
		return err
	}

	frags, errs := stream.Send(ctx, text)
	full, err := Consume(frags, errs, func(accumulated string) {
		s.updatePlaceholder(epoch, accumulated)
	})
	if err != nil {
		s.rollback(epoch, "API Error: "+err.Error())
		return err
	}

	reply := Parse(full)
	s.finalize(epoch, reply)

	if settings.UseTTS {
		s.synthesize(ctx, epoch, settings, reply)
	}
	return nil
}

// ensureStream reuses the open stream for the current settings identity or
// composes the system instruction and opens a fresh one.
func (s *Session) ensureStream(settings Settings, epoch int) (Stream, error) {
	s.mu.Lock()
	if s.stream != nil {
		stream := s.stream
		s.mu.Unlock()
		return stream, nil
	}
	s.mu.Unlock()

	teacher := s.catalog.MustTeacher(settings.TeacherID)
	scenario := s.catalog.MustScenario(settings.ScenarioID)
	mode := s.catalog.MustUserMode(settings.UserModeID)
	instruction := prompt.Compose(teacher, scenario, mode)

	stream, err := s.backend.Open(instruction, settings.Temperature, settings.MaxTokens)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		// Conversation was reset while opening; the new handle belongs to a
		// dead turn.
		_ = stream.Close()
		return nil, context.Canceled
	}
	s.stream = stream
	return stream, nil
}

// updatePlaceholder replaces the in-flight placeholder's content with the
// accumulated text so far. Fragments from a stale epoch are discarded.
func (s *Session) updatePlaceholder(epoch int, accumulated string) {
	s.mu.Lock()
	if s.epoch != epoch || len(s.messages) == 0 {
		s.mu.Unlock()
		return
	}
	last := len(s.messages) - 1
	if s.messages[last].Role != RoleAssistant {
		s.mu.Unlock()
		return
	}
	s.messages[last].Content = accumulated
	s.mu.Unlock()
	s.notifyUpdate()
}

// finalize replaces the placeholder with the parsed reply.
func (s *Session) finalize(epoch int, reply Reply) {
	s.mu.Lock()
	if s.epoch != epoch || len(s.messages) == 0 {
		s.mu.Unlock()
		return
	}
	last := len(s.messages) - 1
	if s.messages[last].Role != RoleAssistant {
		s.mu.Unlock()
		return
	}
	s.messages[last].Content = reply.Main
	s.messages[last].Suggestions = reply.Suggestions
	s.messages[last].AudioData = nil
	s.mu.Unlock()
	s.notifyUpdate()
}

// synthesize attaches spoken audio for the English portion of the reply.
// Any synthesis failure leaves the message without audio; it never fails
// the turn.
func (s *Session) synthesize(ctx context.Context, epoch int, settings Settings, reply Reply) {
	if s.speech == nil {
		return
	}
	english := EnglishPortion(reply.Main)
	if english == "" {
		return
	}
	voice := s.catalog.MustTeacher(settings.TeacherID).VoiceProfile
	audio, err := s.speech.Synthesize(ctx, english, voice)
	if err != nil || len(audio) == 0 {
		if err != nil {
			log.Printf("chat: speech synthesis failed: %v", err)
		}
		return
	}

	s.mu.Lock()
	if s.epoch != epoch || len(s.messages) == 0 {
		s.mu.Unlock()
		return
	}
	last := len(s.messages) - 1
	if s.messages[last].Role != RoleAssistant {
		s.mu.Unlock()
		return
	}
	s.messages[last].AudioData = audio
	s.mu.Unlock()
	s.notifyUpdate()
}

// rollback removes the trailing placeholder after a failed turn. The user's
// own message stays; no broken assistant entry is left behind.
func (s *Session) rollback(epoch int, errMsg string) {
	s.mu.Lock()
	if s.epoch == epoch && len(s.messages) > 0 && s.messages[len(s.messages)-1].Role == RoleAssistant {
		s.messages = s.messages[:len(s.messages)-1]
	}
	s.lastErr = errMsg
	s.mu.Unlock()
	s.notifyError(errMsg)
	s.notifyUpdate()
}

// UpdateSettings replaces the session settings. An identity change (teacher,
// scenario or user mode) discards the open stream and clears the whole
// conversation; generation knobs and the TTS flag change in place.
func (s *Session) UpdateSettings(next Settings) {
	s.mu.Lock()
	identityChanged := !s.settings.SameIdentity(next)
	s.settings = next
	if identityChanged {
		s.resetLocked()
	}
	s.mu.Unlock()
	if identityChanged {
		s.notifyUpdate()
	}
}

// Clear empties the conversation and discards the stream unconditionally.
func (s *Session) Clear() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
	s.notifyUpdate()
}

func (s *Session) resetLocked() {
	s.messages = nil
	s.epoch++
	if s.stream != nil {
		_ = s.stream.Close()
		s.stream = nil
	}
}

// Retry re-sends the most recent user message. Stale empty-content
// placeholders are dropped and the conversation is truncated back to that
// user message before the turn runs again. No-op when a turn is in flight
// or no user message exists.
func (s *Session) Retry(ctx context.Context) error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil
	}
	lastUser := -1
	kept := s.messages[:0:0]
	for _, m := range s.messages {
		if m.Role == RoleAssistant && m.Content == "" {
			continue
		}
		kept = append(kept, m)
		if m.Role == RoleUser {
			lastUser = len(kept) - 1
		}
	}
	if lastUser < 0 {
		s.mu.Unlock()
		return nil
	}
	text := kept[lastUser].Content
	s.messages = kept[:lastUser+1]
	s.mu.Unlock()
	s.notifyUpdate()

	return s.Send(ctx, text)
}
