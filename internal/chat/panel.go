package chat

import (
	"context"
	"sync"

	"github.com/hpungsan/daybrief/internal/remote"
)

// Mode selects what a send does on panels that support modes.
type Mode string

const (
	ModeChat      Mode = "chat"
	ModeCreate    Mode = "create"
	ModeSummarize Mode = "summarize"
)

// Panel is the static configuration of one chat surface.
type Panel struct {
	ID          string
	Title       string
	Domain      string // backend query domain; empty for the unified assistant
	ThreadID    string
	Unified     bool // sends prior turns as history
	Modes       []Mode
	Placeholder string
}

// SupportsModes reports whether the panel offers more than plain chat.
func (p Panel) SupportsModes() bool {
	return len(p.Modes) > 1
}

func (p Panel) supports(m Mode) bool {
	for _, pm := range p.Modes {
		if pm == m {
			return true
		}
	}
	return false
}

// DefaultPanels returns the built-in panels in sidebar order.
func DefaultPanels() []Panel {
	return []Panel{
		{
			ID:          "jira",
			Title:       "Jira Assistant",
			Domain:      remote.DomainJira,
			ThreadID:    "1234",
			Modes:       []Mode{ModeChat, ModeCreate, ModeSummarize},
			Placeholder: "Ask about your tickets...",
		},
		{
			ID:          "calendarbot",
			Title:       "Calendar Assistant",
			Domain:      remote.DomainCalendar,
			ThreadID:    "1233",
			Modes:       []Mode{ModeChat},
			Placeholder: "Ask about your schedule...",
		},
		{
			ID:          "emailbot",
			Title:       "Email Assistant",
			Domain:      remote.DomainGmail,
			ThreadID:    "1232",
			Modes:       []Mode{ModeChat},
			Placeholder: "Ask about your inbox...",
		},
		{
			ID:          "slackbot",
			Title:       "Slack Assistant",
			Domain:      remote.DomainSlack,
			ThreadID:    "1231",
			Modes:       []Mode{ModeChat},
			Placeholder: "Ask about your channels...",
		},
		{
			ID:          "assistant",
			Title:       "Assistant",
			Unified:     true,
			Modes:       []Mode{ModeChat},
			Placeholder: "Ask anything about your day...",
		},
	}
}

// WithThreadIDs returns panels with thread ids replaced by lookup(panelID, current).
func WithThreadIDs(panels []Panel, lookup func(panel, def string) string) []Panel {
	out := make([]Panel, len(panels))
	for i, p := range panels {
		p.ThreadID = lookup(p.ID, p.ThreadID)
		p.Modes = append([]Mode(nil), p.Modes...)
		out[i] = p
	}
	return out
}

// Backend is the subset of the remote client a session needs.
type Backend interface {
	Query(ctx context.Context, domain, query, threadID string) (string, error)
	UnifiedQuery(ctx context.Context, query, threadID string, history []remote.HistoryMessage) (string, error)
	SummarizeTicket(ctx context.Context, ticketID string) (string, error)
}

// Registry holds one session per panel for the lifetime of the process.
type Registry struct {
	mu       sync.Mutex
	order    []Panel
	sessions map[string]*Session
}

// NewRegistry creates a session for every panel.
func NewRegistry(panels []Panel, backend Backend) *Registry {
	r := &Registry{sessions: make(map[string]*Session, len(panels))}
	for _, p := range panels {
		r.order = append(r.order, p)
		r.sessions[p.ID] = NewSession(p, backend)
	}
	return r
}

// Get returns the session for a panel id.
func (r *Registry) Get(panelID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[panelID]
	return s, ok
}

// Panels returns the registered panels in order.
func (r *Registry) Panels() []Panel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Panel(nil), r.order...)
}
