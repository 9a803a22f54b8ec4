// Package section maps a navigation section id to the view that renders it.
package section

import (
	"context"
	"log"

	"github.com/hpungsan/daybrief/internal/store"
	"github.com/hpungsan/daybrief/internal/summary"
)

// Kind is the category of view a section renders as.
type Kind string

const (
	KindWelcome Kind = "welcome"
	KindChat    Kind = "chat"
	KindTodo    Kind = "todo"
	KindSummary Kind = "summary"
)

// Section ids.
const (
	Home        = "home"
	Email       = "email"
	Calendar    = "calendar"
	Teams       = "teams"
	Jira        = "jira"
	Todo        = "todo"
	CalendarBot = "calendarbot"
	EmailBot    = "emailbot"
	SlackBot    = "slackbot"
	Assistant   = "assistant"
)

// chatSections maps section ids to chat panel ids.
var chatSections = map[string]string{
	Jira:        "jira",
	CalendarBot: "calendarbot",
	EmailBot:    "emailbot",
	SlackBot:    "slackbot",
	Assistant:   "assistant",
}

var titles = map[string]string{
	Email:    "Email Summary",
	Calendar: "Calendar Summary",
	Teams:    "Slack Summary",
	Jira:     "Jira Assistant",
	Todo:     "Todo List",
}

// DefaultTitle is used for any section without a dedicated title.
const DefaultTitle = "Dashboard"

// View describes what to render for a section.
type View struct {
	Section string             `json:"section"`
	Kind    Kind               `json:"kind"`
	Title   string             `json:"title"`
	Content string             `json:"content"`
	Panel   string             `json:"panel,omitempty"`
	Todos   []summary.TodoItem `json:"todos,omitempty"`
}

// NavEntry is one sidebar link.
type NavEntry struct {
	ID    string
	Label string
	Group string
}

// Nav lists the sidebar links in display order.
func Nav() []NavEntry {
	return []NavEntry{
		{ID: Home, Label: "Home", Group: "Overview"},
		{ID: Todo, Label: "Todo List", Group: "Overview"},
		{ID: Email, Label: "Email", Group: "Summaries"},
		{ID: Calendar, Label: "Calendar", Group: "Summaries"},
		{ID: Teams, Label: "Slack", Group: "Summaries"},
		{ID: Jira, Label: "Jira Assistant", Group: "Assistants"},
		{ID: CalendarBot, Label: "Calendar Assistant", Group: "Assistants"},
		{ID: EmailBot, Label: "Email Assistant", Group: "Assistants"},
		{ID: SlackBot, Label: "Slack Assistant", Group: "Assistants"},
		{ID: Assistant, Label: "Assistant", Group: "Assistants"},
	}
}

// Known reports whether id is one of the fixed section ids.
func Known(id string) bool {
	for _, e := range Nav() {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Title returns the heading for a section id.
func Title(id string) string {
	if t, ok := titles[id]; ok {
		return t
	}
	return DefaultTitle
}

// ChatPanel returns the chat panel for a section id, if it has one.
func ChatPanel(id string) (string, bool) {
	p, ok := chatSections[id]
	return p, ok
}

// Content returns the summary text a section shows from doc.
// Unrecognized ids and a nil doc yield "".
func Content(id string, doc *summary.Document) string {
	switch id {
	case Email:
		return doc.Field(summary.FieldEmail)
	case Calendar:
		return doc.Field(summary.FieldCalendar)
	case Teams:
		if s := doc.Field(summary.FieldSlack); s != "" {
			return s
		}
		return doc.Field(summary.FieldTeams)
	case Todo:
		return doc.Field(summary.FieldFinal)
	default:
		return ""
	}
}

// Dispatch resolves id to exactly one view. Ids match exactly, so "Email"
// is unknown. It never fails: a store error or unreadable document renders
// as empty content.
func Dispatch(ctx context.Context, id string, st store.Store) View {
	v := View{Section: id, Title: Title(id)}

	if id == Home {
		v.Kind = KindWelcome
		return v
	}
	if panel, ok := ChatPanel(id); ok {
		v.Kind = KindChat
		v.Panel = panel
		return v
	}

	doc := load(ctx, st)
	v.Content = Content(id, doc)
	if id == Todo {
		v.Kind = KindTodo
		v.Todos = doc.Todos()
		return v
	}
	v.Kind = KindSummary
	return v
}

func load(ctx context.Context, st store.Store) *summary.Document {
	if st == nil {
		return nil
	}
	doc, err := st.Get(ctx)
	if err != nil {
		log.Printf("section: reading stored summary: %v", err)
		return nil
	}
	return doc
}
