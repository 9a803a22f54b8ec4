package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/daybrief/internal/errors"
	"github.com/hpungsan/daybrief/internal/section"
)

// TestFullWorkflow exercises a day on the dashboard:
// refresh → view sections → chat → ticket → backend outage → fallbacks
func TestFullWorkflow(t *testing.T) {
	d, fb := newDashboard(t)
	ctx := context.Background()

	// 1. Refresh
	ref, err := d.Refresher.Refresh(ctx)
	require.NoError(t, err)
	require.False(t, ref.Fallback)
	require.Equal(t, "B", ref.Document.CalendarSummary)

	// 2. Stored document is what the sections show
	doc, err := GetSummary(ctx, d.Store)
	require.NoError(t, err)
	require.Equal(t, "F", doc.FinalSummary)

	cal := d.ViewSection(ctx, section.Calendar)
	require.Equal(t, section.KindSummary, cal.Kind)
	require.Equal(t, "B", cal.Content)

	todo := d.ViewSection(ctx, section.Todo)
	require.Equal(t, section.KindTodo, todo.Kind)
	require.Len(t, todo.Todos, 1)

	teams := d.ViewSection(ctx, section.Teams)
	require.Equal(t, "", teams.Content)

	// 3. Chat on a domain panel
	out, err := Chat(ctx, d.Chats, ChatInput{Panel: "slackbot", Message: "anything new?"})
	require.NoError(t, err)
	require.Equal(t, "slack: anything new?", out.Reply.Content)
	require.Len(t, out.State.Messages, 2)

	// 4. Ticket round trip
	created, err := CreateTicket(ctx, d.Client, map[string]any{"summary": "Fix login"})
	require.NoError(t, err)
	require.Equal(t, "SCRUM-7", created.TicketID)

	sum, err := SummarizeTicket(ctx, d.Client, created.TicketID)
	require.NoError(t, err)
	require.Equal(t, "summary of SCRUM-7", sum.Summary)

	// 5. Backend goes down
	fb.down.Store(true)

	ref, err = d.Refresher.Refresh(ctx)
	require.NoError(t, err, "refresh degrades instead of failing")
	require.True(t, ref.Fallback)
	require.Contains(t, d.ViewSection(ctx, section.Email).Content, "Email Summary")

	out, err = Chat(ctx, d.Chats, ChatInput{Panel: "slackbot", Message: "still there?"})
	require.NoError(t, err, "chat degrades instead of failing")
	require.Equal(t, "Sorry, I encountered an error. Please try again.", out.Reply.Content)
	require.Len(t, out.State.Messages, 4)
	require.False(t, out.State.Loading)

	_, err = CreateTicket(ctx, d.Client, map[string]any{"summary": "Fix login"})
	require.True(t, errors.Is(err, errors.ErrRemoteUnavailable), "ticket failures propagate")

	_, err = SummarizeTicket(ctx, d.Client, "SCRUM-7")
	require.True(t, errors.Is(err, errors.ErrRemoteUnavailable))

	// 6. Clear
	require.NoError(t, ClearChat(d.Chats, "slackbot"))
	s, err := Session(d.Chats, "slackbot")
	require.NoError(t, err)
	require.Empty(t, s.Snapshot().Messages)
}
