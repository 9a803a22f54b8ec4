// Package summary defines the daily summary document produced by the backend.
package summary

import (
	"encoding/json"
)

// Field names as they appear on the wire and in the persisted document.
const (
	FieldEmail    = "email_summary"
	FieldCalendar = "calendar_summary"
	FieldJira     = "jira_summary"
	FieldSlack    = "slack_summary"
	FieldTeams    = "teams_summary"
	FieldFinal    = "final_summary"
	FieldError    = "error"
)

// Fields lists the text fields of a Document.
var Fields = []string{FieldEmail, FieldCalendar, FieldJira, FieldSlack, FieldTeams, FieldFinal, FieldError}

// KnownField reports whether name is one of Fields.
func KnownField(name string) bool {
	for _, f := range Fields {
		if f == name {
			return true
		}
	}
	return false
}

// Document is the backend's aggregate of per-domain markdown summaries for a day.
// It is always replaced wholesale; there are no partial updates.
type Document struct {
	EmailSummary    string    `json:"email_summary,omitempty" yaml:"email_summary,omitempty"`
	CalendarSummary string    `json:"calendar_summary,omitempty" yaml:"calendar_summary,omitempty"`
	JiraSummary     string    `json:"jira_summary,omitempty" yaml:"jira_summary,omitempty"`
	SlackSummary    string    `json:"slack_summary,omitempty" yaml:"slack_summary,omitempty"`
	TeamsSummary    string    `json:"teams_summary,omitempty" yaml:"teams_summary,omitempty"`
	FinalSummary    string    `json:"final_summary,omitempty" yaml:"final_summary,omitempty"`
	Error           string    `json:"error,omitempty" yaml:"error,omitempty"`
	TodoList        *TodoList `json:"todo_list,omitempty" yaml:"todo_list,omitempty"`
}

// TodoList mirrors the backend's nested {"todo_list": {"todo_list": [...]}} shape.
type TodoList struct {
	Items []TodoItem `json:"todo_list" yaml:"todo_list"`
}

// TodoItem is one entry of the consolidated todo list.
type TodoItem struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Time        string `json:"time" yaml:"time"`
}

// UnmarshalJSON tolerates a todo_list that is not shaped as expected;
// anything other than an object holding an array decodes to an empty list.
func (l *TodoList) UnmarshalJSON(data []byte) error {
	var raw struct {
		Items json.RawMessage `json:"todo_list"`
	}
	*l = TodoList{}
	if err := json.Unmarshal(data, &raw); err != nil || len(raw.Items) == 0 {
		return nil
	}
	var items []TodoItem
	if err := json.Unmarshal(raw.Items, &items); err != nil {
		return nil
	}
	l.Items = items
	return nil
}

// Field returns the text of the named field, or "" for unknown names.
func (d *Document) Field(name string) string {
	if d == nil {
		return ""
	}
	switch name {
	case FieldEmail:
		return d.EmailSummary
	case FieldCalendar:
		return d.CalendarSummary
	case FieldJira:
		return d.JiraSummary
	case FieldSlack:
		return d.SlackSummary
	case FieldTeams:
		return d.TeamsSummary
	case FieldFinal:
		return d.FinalSummary
	case FieldError:
		return d.Error
	default:
		return ""
	}
}

// Todos returns the todo items, or nil when the document has none.
func (d *Document) Todos() []TodoItem {
	if d == nil || d.TodoList == nil {
		return nil
	}
	return d.TodoList.Items
}

// Decode parses a serialized document.
func Decode(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Encode serializes a document.
func Encode(d *Document) ([]byte, error) {
	return json.Marshal(d)
}

// Placeholder returns the canned document shown when the backend cannot be reached.
func Placeholder() *Document {
	return &Document{
		EmailSummary:    "## Email Summary\n\n### High Priority\n\n- **Project Status Update** - Review needed\n- **Quarterly Review Documents** - Submit by month end",
		CalendarSummary: "## Meeting Schedule\n\n### Today\n\n- 10:00 - 10:15 Daily Standup\n- 14:00 - 15:00 Project Review",
		JiraSummary:     "## JIRA Tickets\n\n### Medium Priority\n- [SCRUM-1] Complete API for CRUD operations",
		TeamsSummary:    "## Teams Messages\n\n### Important Conversations\n- **Project Manager** - Update tasks by EOD\n- **Tech Lead** - API bottleneck identified",
		FinalSummary:    "## Daily Briefing\n\n**Executive Summary:** Critical items include project status review and sprint planning preparation.",
	}
}
