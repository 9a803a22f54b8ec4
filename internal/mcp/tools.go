package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/daybrief/internal/summary"
)

var summaryRefreshToolDef = mcp.NewTool("summary_refresh",
	mcp.WithDescription("Fetch the daily summary from the backend and store it. "+
		"If the backend is unreachable the placeholder summary is stored and fallback is true."),
)

var summaryGetToolDef = mcp.NewTool("summary_get",
	mcp.WithDescription("Return the stored daily summary, or a single field of it."),
	mcp.WithString("field",
		mcp.Description("Optional field name; omit for the whole document"),
		mcp.Enum(summary.Fields...),
	),
)

var sectionViewToolDef = mcp.NewTool("section_view",
	mcp.WithDescription("Render a dashboard section: its title, markdown content, heading outline and todos. "+
		"Ids are matched exactly; unknown ids return an empty summary view titled Dashboard."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Section id: home, todo, email, calendar, teams, jira, calendarbot, emailbot, slackbot or assistant"),
	),
)

var chatSendToolDef = mcp.NewTool("chat_send",
	mcp.WithDescription("Send a message to a chat panel and return the reply with the conversation state."),
	mcp.WithString("panel",
		mcp.Required(),
		mcp.Description("Chat panel id"),
		mcp.Enum("jira", "calendarbot", "emailbot", "slackbot", "assistant"),
	),
	mcp.WithString("message",
		mcp.Required(),
		mcp.Description("Message text"),
	),
	mcp.WithString("mode",
		mcp.Description("Switch the panel mode before sending (jira only)"),
		mcp.Enum("chat", "create", "summarize"),
	),
	mcp.WithString("ticket_id",
		mcp.Description("Ticket to summarize in summarize mode"),
	),
)

var ticketCreateToolDef = mcp.NewTool("ticket_create",
	mcp.WithDescription("Create a Jira ticket through the backend and return its id."),
	mcp.WithObject("ticket",
		mcp.Required(),
		mcp.Description("Ticket fields forwarded as-is; summary is required"),
	),
)

var ticketSummarizeToolDef = mcp.NewTool("ticket_summarize",
	mcp.WithDescription("Ask the backend to summarize a Jira ticket."),
	mcp.WithString("ticket_id",
		mcp.Required(),
		mcp.Description("Ticket key, e.g. SCRUM-7"),
	),
)
