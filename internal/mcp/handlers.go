package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/daybrief/internal/errors"
	"github.com/hpungsan/daybrief/internal/ops"
	"github.com/hpungsan/daybrief/internal/summary"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	dash *ops.Dashboard
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(d *ops.Dashboard) *Handlers {
	return &Handlers{dash: d}
}

// SummaryGetRequest represents the arguments for summary_get.
type SummaryGetRequest struct {
	Field string `json:"field,omitempty"`
}

// SectionViewRequest represents the arguments for section_view.
type SectionViewRequest struct {
	ID string `json:"id"`
}

// ChatSendRequest represents the arguments for chat_send.
type ChatSendRequest struct {
	Panel    string `json:"panel"`
	Message  string `json:"message,omitempty"`
	Mode     string `json:"mode,omitempty"`
	TicketID string `json:"ticket_id,omitempty"`
}

// TicketCreateRequest represents the arguments for ticket_create.
type TicketCreateRequest struct {
	Ticket map[string]any `json:"ticket"`
}

// TicketSummarizeRequest represents the arguments for ticket_summarize.
type TicketSummarizeRequest struct {
	TicketID string `json:"ticket_id"`
}

// SummaryFieldOutput is the summary_get result when a single field is requested.
type SummaryFieldOutput struct {
	Field   string `json:"field"`
	Content string `json:"content"`
}

// HandleSummaryRefresh handles the summary_refresh tool call.
func (h *Handlers) HandleSummaryRefresh(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.dash.Refresher.Refresh(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSummaryGet handles the summary_get tool call.
func (h *Handlers) HandleSummaryGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SummaryGetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Field != "" && !summary.KnownField(input.Field) {
		return errorResult(errors.NewInvalidRequest(fmt.Sprintf("unknown summary field %q", input.Field))), nil
	}

	doc, err := ops.GetSummary(ctx, h.dash.Store)
	if err != nil {
		return errorResult(err), nil
	}
	if input.Field != "" {
		return successResult(SummaryFieldOutput{Field: input.Field, Content: doc.Field(input.Field)})
	}
	return successResult(doc)
}

// HandleSectionView handles the section_view tool call.
func (h *Handlers) HandleSectionView(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SectionViewRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return successResult(h.dash.ViewSection(ctx, input.ID))
}

// HandleChatSend handles the chat_send tool call.
func (h *Handlers) HandleChatSend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ChatSendRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Chat(ctx, h.dash.Chats, ops.ChatInput{
		Panel:    input.Panel,
		Message:  input.Message,
		Mode:     input.Mode,
		TicketID: input.TicketID,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleTicketCreate handles the ticket_create tool call.
func (h *Handlers) HandleTicketCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TicketCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.CreateTicket(ctx, h.dash.Client, input.Ticket)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleTicketSummarize handles the ticket_summarize tool call.
func (h *Handlers) HandleTicketSummarize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TicketSummarizeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SummarizeTicket(ctx, h.dash.Client, input.TicketID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// decode unmarshals MCP request arguments into a typed struct.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, fmt.Errorf("marshal args: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("unmarshal args: %w", err)
	}
	return result, nil
}

// errorResult creates an MCP error result with the structured error payload.
func errorResult(err error) *mcp.CallToolResult {
	dErr := errors.As(err)
	message := dErr.Message
	if dErr.Code == errors.ErrInternal {
		log.Printf("mcp: %v", err)
		message = "an internal error occurred"
	}
	errorObj := map[string]any{
		"code":    dErr.Code,
		"message": message,
		"status":  dErr.Status,
	}
	// Internal details may carry paths or SQL text.
	if dErr.Code != errors.ErrInternal && dErr.Details != nil {
		errorObj["details"] = dErr.Details
	}

	content, _ := json.Marshal(map[string]any{"error": errorObj})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
