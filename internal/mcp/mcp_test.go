package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/daybrief/internal/config"
	"github.com/hpungsan/daybrief/internal/db"
	"github.com/hpungsan/daybrief/internal/ops"
	"github.com/hpungsan/daybrief/internal/remote"
	"github.com/hpungsan/daybrief/internal/store"
)

const dailyBody = `{"email_summary":"## Inbox\n- reply to Sam","jira_summary":"J","final_summary":"F",` +
	`"todo_list":{"todo_list":[{"title":"Review","description":"PR 12"}]}}`

// testSetup creates a dashboard backed by a temporary database and a fake backend.
func testSetup(t *testing.T) (*ops.Dashboard, *atomic.Bool) {
	t.Helper()

	down := &atomic.Bool{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/summary/daily", func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, dailyBody)
	})
	mux.HandleFunc("POST /api/{domain}/query", func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]any{"response": "echo: " + body["query"].(string)})
	})
	mux.HandleFunc("POST /jira/create-ticket", func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, `{"ticketId":"SCRUM-9"}`)
	})
	mux.HandleFunc("GET /jira/summarize-ticket/{id}", func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"summary": "about " + r.PathValue("id")})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.APIBaseURL = srv.URL
	d := ops.NewDashboard(cfg, store.NewSQLite(database), remote.NewFromConfig(cfg))
	t.Cleanup(d.Close)
	return d, down
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, r.Content)
	tc, ok := r.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", r.Content[0])
	return tc.Text
}

func decodeResult(t *testing.T, r *mcp.CallToolResult, v any) {
	t.Helper()
	require.False(t, r.IsError, "unexpected error result: %s", resultText(t, r))
	require.NoError(t, json.Unmarshal([]byte(resultText(t, r)), v))
}

func errorCode(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	require.True(t, r.IsError)
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Status  int    `json:"status"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, r)), &payload))
	return payload.Error.Code
}

func TestSummaryRefreshThenGet(t *testing.T) {
	d, _ := testSetup(t)
	h := NewHandlers(d)
	ctx := context.Background()

	r, err := h.HandleSummaryGet(ctx, makeRequest(nil))
	require.NoError(t, err)
	require.Equal(t, "NOT_FOUND", errorCode(t, r))

	r, err = h.HandleSummaryRefresh(ctx, makeRequest(nil))
	require.NoError(t, err)
	var refreshed ops.RefreshOutput
	decodeResult(t, r, &refreshed)
	require.False(t, refreshed.Fallback)
	require.Equal(t, "F", refreshed.Document.FinalSummary)

	r, err = h.HandleSummaryGet(ctx, makeRequest(map[string]any{"field": "email_summary"}))
	require.NoError(t, err)
	var field SummaryFieldOutput
	decodeResult(t, r, &field)
	require.Equal(t, "email_summary", field.Field)
	require.Equal(t, "## Inbox\n- reply to Sam", field.Content)

	r, err = h.HandleSummaryGet(ctx, makeRequest(nil))
	require.NoError(t, err)
	var doc map[string]any
	decodeResult(t, r, &doc)
	require.Equal(t, "J", doc["jira_summary"])
}

func TestSummaryRefresh_BackendDownStoresPlaceholder(t *testing.T) {
	d, down := testSetup(t)
	down.Store(true)
	h := NewHandlers(d)

	r, err := h.HandleSummaryRefresh(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	var refreshed ops.RefreshOutput
	decodeResult(t, r, &refreshed)
	require.True(t, refreshed.Fallback)
	require.NotEmpty(t, refreshed.Document.EmailSummary)
}

func TestSummaryGet_UnknownField(t *testing.T) {
	d, _ := testSetup(t)
	r, err := NewHandlers(d).HandleSummaryGet(context.Background(), makeRequest(map[string]any{"field": "teams"}))
	require.NoError(t, err)
	require.Equal(t, "INVALID_REQUEST", errorCode(t, r))
}

func TestSectionView(t *testing.T) {
	d, _ := testSetup(t)
	d.Scheduler.SetMode(ops.ModeScheduled)
	h := NewHandlers(d)
	ctx := context.Background()

	_, err := h.HandleSummaryRefresh(ctx, makeRequest(nil))
	require.NoError(t, err)

	tests := []struct {
		id      string
		kind    string
		title   string
		content string
	}{
		{"email", "summary", "Email Summary", "## Inbox\n- reply to Sam"},
		{"todo", "todo", "Todo List", "F"},
		{"jira", "chat", "Jira Assistant", ""},
		{"nowhere", "summary", "Dashboard", ""},
		{"EMAIL", "summary", "Dashboard", ""},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			r, err := h.HandleSectionView(ctx, makeRequest(map[string]any{"id": tt.id}))
			require.NoError(t, err)
			var out ops.SectionOutput
			decodeResult(t, r, &out)
			require.Equal(t, tt.kind, string(out.Kind))
			require.Equal(t, tt.title, out.Title)
			require.Equal(t, tt.content, out.Content)
		})
	}

	r, err := h.HandleSectionView(ctx, makeRequest(map[string]any{"id": "email"}))
	require.NoError(t, err)
	var out ops.SectionOutput
	decodeResult(t, r, &out)
	require.Len(t, out.Outline, 1)
	require.Equal(t, "inbox", out.Outline[0].Anchor)
}

func TestChatSend(t *testing.T) {
	d, _ := testSetup(t)
	h := NewHandlers(d)
	ctx := context.Background()

	r, err := h.HandleChatSend(ctx, makeRequest(map[string]any{"panel": "slackbot", "message": "standup?"}))
	require.NoError(t, err)
	var out ops.ChatOutput
	decodeResult(t, r, &out)
	require.Equal(t, "slackbot", out.Panel)
	require.NotNil(t, out.Reply)
	require.Equal(t, "echo: standup?", out.Reply.Content)
	require.Len(t, out.State.Messages, 2)
	require.False(t, out.State.Loading)
}

func TestChatSend_Errors(t *testing.T) {
	d, _ := testSetup(t)
	h := NewHandlers(d)
	ctx := context.Background()

	r, err := h.HandleChatSend(ctx, makeRequest(map[string]any{"panel": "nope", "message": "hi"}))
	require.NoError(t, err)
	require.Equal(t, "NOT_FOUND", errorCode(t, r))

	r, err = h.HandleChatSend(ctx, makeRequest(map[string]any{"panel": "emailbot", "message": "   "}))
	require.NoError(t, err)
	require.Equal(t, "INVALID_REQUEST", errorCode(t, r))

	r, err = h.HandleChatSend(ctx, makeRequest(map[string]any{"panel": "emailbot", "message": "x", "mode": "summarize"}))
	require.NoError(t, err)
	require.Equal(t, "INVALID_REQUEST", errorCode(t, r))

	r, err = h.HandleChatSend(ctx, makeRequest(map[string]any{"panel": 42}))
	require.NoError(t, err)
	require.Equal(t, "INVALID_REQUEST", errorCode(t, r))
}

func TestChatSend_BackendDownGivesFallbackReply(t *testing.T) {
	d, down := testSetup(t)
	down.Store(true)

	r, err := NewHandlers(d).HandleChatSend(context.Background(), makeRequest(map[string]any{"panel": "calendarbot", "message": "today?"}))
	require.NoError(t, err)
	var out ops.ChatOutput
	decodeResult(t, r, &out)
	require.Equal(t, "Sorry, I encountered an error. Please try again.", out.Reply.Content)
}

func TestTicketTools(t *testing.T) {
	d, down := testSetup(t)
	h := NewHandlers(d)
	ctx := context.Background()

	r, err := h.HandleTicketCreate(ctx, makeRequest(map[string]any{
		"ticket": map[string]any{"summary": "Login broken", "issueType": "Bug"},
	}))
	require.NoError(t, err)
	var created ops.CreateTicketOutput
	decodeResult(t, r, &created)
	require.Equal(t, "SCRUM-9", created.TicketID)

	r, err = h.HandleTicketSummarize(ctx, makeRequest(map[string]any{"ticket_id": "SCRUM-9"}))
	require.NoError(t, err)
	var summarized ops.SummarizeTicketOutput
	decodeResult(t, r, &summarized)
	require.Equal(t, "about SCRUM-9", summarized.Summary)

	r, err = h.HandleTicketCreate(ctx, makeRequest(map[string]any{}))
	require.NoError(t, err)
	require.Equal(t, "INVALID_REQUEST", errorCode(t, r))

	down.Store(true)
	r, err = h.HandleTicketSummarize(ctx, makeRequest(map[string]any{"ticket_id": "SCRUM-9"}))
	require.NoError(t, err)
	require.Equal(t, "REMOTE_UNAVAILABLE", errorCode(t, r))
}

func TestErrorResult_MasksInternal(t *testing.T) {
	r := errorResult(io.ErrUnexpectedEOF)
	require.Equal(t, "INTERNAL", errorCode(t, r))
	require.NotContains(t, resultText(t, r), "unexpected EOF")
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	sort.Strings(names)
	require.Equal(t, []string{
		"chat_send", "section_view", "summary_get", "summary_refresh", "ticket_create", "ticket_summarize",
	}, names)

	for name, entry := range toolRegistry {
		require.Equal(t, name, entry.def.Name)
	}
}

func TestValidateDisabledTools(t *testing.T) {
	require.Empty(t, ValidateDisabledTools([]string{"chat_send", "ticket_create"}))
	require.Equal(t, []string{"weather_get"}, ValidateDisabledTools([]string{"summary_get", "weather_get"}))
}

func TestSectionViewDescription_MatchesUnknownIDBehavior(t *testing.T) {
	desc := sectionViewToolDef.Description
	require.Contains(t, desc, "Dashboard")
	require.NotContains(t, desc, "welcome")
}

func TestNewServer_SkipsDisabledTools(t *testing.T) {
	d, _ := testSetup(t)
	d.Config.DisabledTools = []string{"ticket_create", "ticket_summarize"}

	s := NewServer(d, "test")
	tools := s.ListTools()
	require.Len(t, tools, len(toolRegistry)-2)
	require.NotContains(t, tools, "ticket_create")
	require.Contains(t, tools, "chat_send")
}
