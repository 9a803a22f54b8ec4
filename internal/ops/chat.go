package ops

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/hpungsan/daybrief/internal/chat"
	"github.com/hpungsan/daybrief/internal/errors"
)

// ChatInput contains parameters for the Chat operation.
type ChatInput struct {
	Panel    string
	Message  string
	Mode     string // optional; switches the panel mode first
	TicketID string // optional; sets the summarize target first
}

// ChatOutput contains the result of the Chat operation.
type ChatOutput struct {
	Panel   string        `json:"panel"`
	Reply   *chat.Message `json:"reply,omitempty"`
	Cleared bool          `json:"cleared,omitempty"` // session was cleared before the reply arrived
	State   chat.State    `json:"state"`
}

// Session resolves a panel id to its session.
func Session(reg *chat.Registry, panel string) (*chat.Session, error) {
	panel = strings.TrimSpace(panel)
	if panel == "" {
		return nil, errors.NewInvalidRequest("panel is required")
	}
	s, ok := reg.Get(panel)
	if !ok {
		return nil, errors.NewNotFound(fmt.Sprintf("chat panel %q", panel))
	}
	return s, nil
}

// ConfigureChat applies an optional mode and ticket id to a panel.
func ConfigureChat(reg *chat.Registry, panel, mode, ticketID string, setTicket bool) (*chat.Session, error) {
	s, err := Session(reg, panel)
	if err != nil {
		return nil, err
	}
	if mode = strings.TrimSpace(mode); mode != "" {
		if err := s.SetMode(chat.Mode(strings.ToLower(mode))); err != nil {
			return nil, err
		}
	}
	if setTicket {
		s.SetTicketID(ticketID)
	}
	return s, nil
}

// Chat sends a message on a panel. Backend failures surface as the fallback
// reply, not as an error.
func Chat(ctx context.Context, reg *chat.Registry, input ChatInput) (*ChatOutput, error) {
	s, err := ConfigureChat(reg, input.Panel, input.Mode, input.TicketID, input.TicketID != "")
	if err != nil {
		return nil, err
	}

	out := &ChatOutput{Panel: s.Panel().ID}
	reply, err := s.Send(ctx, input.Message)
	switch {
	case stderrors.Is(err, chat.ErrCleared):
		out.Cleared = true
	case err != nil:
		return nil, err
	default:
		out.Reply = &reply
	}
	out.State = s.Snapshot()
	return out, nil
}

// ClearChat resets a panel's session.
func ClearChat(reg *chat.Registry, panel string) error {
	s, err := Session(reg, panel)
	if err != nil {
		return err
	}
	s.Clear()
	return nil
}
