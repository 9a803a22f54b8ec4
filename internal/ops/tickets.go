package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/daybrief/internal/errors"
)

// TicketBackend is the subset of the remote client used for ticket work.
type TicketBackend interface {
	CreateTicket(ctx context.Context, payload map[string]any) (string, error)
	SummarizeTicket(ctx context.Context, ticketID string) (string, error)
}

// CreateTicketOutput contains the result of CreateTicket.
type CreateTicketOutput struct {
	TicketID string `json:"ticketId"`
}

// SummarizeTicketOutput contains the result of SummarizeTicket.
type SummarizeTicketOutput struct {
	TicketID string `json:"ticket_id"`
	Summary  string `json:"summary"`
}

// CreateTicket forwards payload to the backend. Unlike chat, backend
// failures are returned to the caller.
func CreateTicket(ctx context.Context, backend TicketBackend, payload map[string]any) (*CreateTicketOutput, error) {
	if len(payload) == 0 {
		return nil, errors.NewInvalidRequest("ticket payload must not be empty")
	}
	if s, ok := payload["summary"].(string); ok && strings.TrimSpace(s) == "" {
		return nil, errors.NewInvalidRequest("summary must not be empty")
	}
	id, err := backend.CreateTicket(ctx, payload)
	if err != nil {
		return nil, err
	}
	return &CreateTicketOutput{TicketID: id}, nil
}

// SummarizeTicket asks the backend to summarize a ticket. Backend failures
// are returned to the caller.
func SummarizeTicket(ctx context.Context, backend TicketBackend, ticketID string) (*SummarizeTicketOutput, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return nil, errors.NewInvalidRequest("ticket id is required")
	}
	s, err := backend.SummarizeTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return &SummarizeTicketOutput{TicketID: ticketID, Summary: s}, nil
}
