package chat

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/hpungsan/daybrief/internal/errors"
	"github.com/hpungsan/daybrief/internal/remote"
)

var (
	// ErrEmptyMessage is returned for blank input. Nothing is appended.
	ErrEmptyMessage = errors.NewInvalidRequest("message must not be empty")

	// ErrTicketRequired is returned when summarizing without a ticket id.
	ErrTicketRequired = errors.NewInvalidRequest("ticket id is required in summarize mode")

	// ErrCleared is returned when the session was cleared while a reply was
	// in flight. The late reply is dropped.
	ErrCleared = stderrors.New("chat: session cleared while awaiting reply")
)

// State is a point-in-time copy of a session for rendering.
type State struct {
	Panel    Panel     `json:"-"`
	Messages []Message `json:"messages"`
	Loading  bool      `json:"loading"`
	Mode     Mode      `json:"mode"`
	TicketID string    `json:"ticket_id,omitempty"`

	// SendBlocked is set while a reply is pending or summarize mode has no
	// ticket id. Composers disable input when it is set.
	SendBlocked bool `json:"send_blocked"`
}

// Session is one panel's conversation. Safe for concurrent use; at most one
// request is outstanding at a time.
type Session struct {
	panel   Panel
	backend Backend

	mu         sync.Mutex
	messages   []Message
	loading    bool
	mode       Mode
	ticketID   string
	generation uint64
}

// NewSession returns an idle, empty session for panel.
func NewSession(panel Panel, backend Backend) *Session {
	return &Session{panel: panel, backend: backend, mode: ModeChat}
}

// Panel returns the session's panel configuration.
func (s *Session) Panel() Panel {
	return s.panel
}

// Send appends text as a user message, asks the backend and appends the
// reply. A failed backend call appends FallbackReply instead and is not
// reported as an error. The appended bot message is returned.
func (s *Session) Send(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	if text == "" {
		s.mu.Unlock()
		return Message{}, ErrEmptyMessage
	}
	if s.loading {
		s.mu.Unlock()
		return Message{}, errors.NewBusy(s.panel.ID)
	}
	mode, ticketID := s.mode, s.ticketID
	if mode == ModeSummarize && ticketID == "" {
		s.mu.Unlock()
		return Message{}, ErrTicketRequired
	}

	history := s.historyLocked()
	s.messages = append(s.messages, newMessage(SenderUser, text))
	s.loading = true
	gen := s.generation
	s.mu.Unlock()

	reply, err := s.ask(ctx, mode, text, ticketID, history)
	if err != nil {
		log.Printf("chat: %s send failed: %v", s.panel.ID, err)
		reply = FallbackReply
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return Message{}, ErrCleared
	}
	bot := newMessage(SenderBot, reply)
	s.messages = append(s.messages, bot)
	s.loading = false
	return bot, nil
}

func (s *Session) ask(ctx context.Context, mode Mode, text, ticketID string, history []remote.HistoryMessage) (string, error) {
	switch {
	case mode == ModeSummarize:
		return s.backend.SummarizeTicket(ctx, ticketID)
	case s.panel.Unified:
		return s.backend.UnifiedQuery(ctx, text, s.panel.ThreadID, history)
	default:
		return s.backend.Query(ctx, s.panel.Domain, text, s.panel.ThreadID)
	}
}

func (s *Session) historyLocked() []remote.HistoryMessage {
	if !s.panel.Unified {
		return nil
	}
	h := make([]remote.HistoryMessage, 0, len(s.messages))
	for _, m := range s.messages {
		role := "user"
		if m.Sender == SenderBot {
			role = "assistant"
		}
		h = append(h, remote.HistoryMessage{Role: role, Content: m.Content})
	}
	return h
}

// CanSend reports whether Send(text) would issue a request.
func (s *Session) CanSend(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.sendBlocked() && strings.TrimSpace(text) != ""
}

// sendBlocked must be called with s.mu held.
func (s *Session) sendBlocked() bool {
	return s.loading || (s.mode == ModeSummarize && s.ticketID == "")
}

// Clear empties the conversation and resets mode and ticket id.
// Any reply still in flight is discarded when it arrives.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.loading = false
	s.mode = ModeChat
	s.ticketID = ""
	s.generation++
}

// SetMode switches the panel mode.
func (s *Session) SetMode(m Mode) error {
	if !s.panel.supports(m) {
		return errors.NewInvalidRequest(fmt.Sprintf("panel %q does not support mode %q", s.panel.ID, m))
	}
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
	return nil
}

// SetTicketID sets the ticket targeted by summarize mode.
func (s *Session) SetTicketID(id string) {
	s.mu.Lock()
	s.ticketID = strings.TrimSpace(id)
	s.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Panel:       s.panel,
		Messages:    append([]Message(nil), s.messages...),
		Loading:     s.loading,
		Mode:        s.mode,
		TicketID:    s.ticketID,
		SendBlocked: s.sendBlocked(),
	}
}
