package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/daybrief/internal/ops"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"summary_refresh": {
		def:     summaryRefreshToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSummaryRefresh },
	},
	"summary_get": {
		def:     summaryGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSummaryGet },
	},
	"section_view": {
		def:     sectionViewToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSectionView },
	},
	"chat_send": {
		def:     chatSendToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleChatSend },
	},
	"ticket_create": {
		def:     ticketCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTicketCreate },
	},
	"ticket_summarize": {
		def:     ticketSummarizeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTicketSummarize },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with the dashboard tools registered.
// Tools listed in the dashboard config's DisabledTools are skipped.
func NewServer(d *ops.Dashboard, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"daybrief",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(d)

	disabled := make(map[string]bool, len(d.Config.DisabledTools))
	for _, name := range d.Config.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(d *ops.Dashboard, version string) error {
	return server.ServeStdio(NewServer(d, version))
}
