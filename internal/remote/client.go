// Package remote is the HTTP client for the summary and chat backend.
//
// Every operation returns (value, error). Failures of any kind (transport,
// non-2xx status, undecodable body) surface as REMOTE_UNAVAILABLE errors; the
// caller decides whether to degrade or propagate. The client never persists
// anything.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hpungsan/daybrief/internal/config"
	"github.com/hpungsan/daybrief/internal/errors"
	"github.com/hpungsan/daybrief/internal/summary"
)

// MaxResponseBytes caps how much of a backend response body is read.
const MaxResponseBytes = 10 << 20

// Chat domains accepted by Query.
const (
	DomainJira     = "jira"
	DomainCalendar = "calendar"
	DomainGmail    = "gmail"
	DomainSlack    = "slack"
)

var domains = map[string]bool{
	DomainJira:     true,
	DomainCalendar: true,
	DomainGmail:    true,
	DomainSlack:    true,
}

// ValidDomain reports whether Query accepts domain.
func ValidDomain(domain string) bool {
	return domains[domain]
}

// HistoryMessage is one prior turn sent with a unified query.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client talks to the backend over HTTP. It is safe for concurrent use.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	legacyDaily bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLegacySummaryPath fetches the daily summary from /run_daily_summary.
func WithLegacySummaryPath(on bool) Option {
	return func(c *Client) { c.legacyDaily = on }
}

// New returns a client for baseURL. A non-positive timeout disables the
// client-side deadline; callers may still bound requests through ctx.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: max(timeout, 0)},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig builds a client from the loaded configuration.
func NewFromConfig(cfg *config.Config) *Client {
	return New(cfg.APIBaseURL, cfg.RequestTimeout(), WithLegacySummaryPath(cfg.LegacySummaryPath))
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// DailySummary fetches today's summary document.
func (c *Client) DailySummary(ctx context.Context) (*summary.Document, error) {
	const op = "daily_summary"
	path := "/api/summary/daily"
	if c.legacyDaily {
		path = "/run_daily_summary"
	}

	body, err := c.do(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	doc, err := summary.Decode(body)
	if err != nil {
		return nil, c.fail(op, fmt.Errorf("decode summary: %w", err))
	}
	return doc, nil
}

// Query sends a message to a domain assistant and returns its reply.
func (c *Client) Query(ctx context.Context, domain, query, threadID string) (string, error) {
	if !ValidDomain(domain) {
		return "", errors.NewInvalidRequest(fmt.Sprintf("unknown chat domain %q", domain))
	}
	op := domain + "_query"
	req := map[string]string{"query": query, "thread_id": threadID}

	var resp struct {
		Response *string `json:"response"`
	}
	if err := c.doJSON(ctx, op, http.MethodPost, "/api/"+domain+"/query", req, &resp); err != nil {
		return "", err
	}
	if resp.Response == nil {
		return "", c.fail(op, fmt.Errorf("response field missing"))
	}
	return *resp.Response, nil
}

// UnifiedQuery sends a message to the cross-domain assistant together with
// the prior conversation.
func (c *Client) UnifiedQuery(ctx context.Context, query, threadID string, history []HistoryMessage) (string, error) {
	const op = "unified_query"
	if history == nil {
		history = []HistoryMessage{}
	}
	req := struct {
		Query    string           `json:"query"`
		ThreadID string           `json:"thread_id,omitempty"`
		History  []HistoryMessage `json:"history"`
	}{query, threadID, history}

	var resp struct {
		Response *string `json:"response"`
	}
	if err := c.doJSON(ctx, op, http.MethodPost, "/api/unified/query", req, &resp); err != nil {
		return "", err
	}
	if resp.Response == nil {
		return "", c.fail(op, fmt.Errorf("response field missing"))
	}
	return *resp.Response, nil
}

// CreateTicket asks the backend to create a Jira ticket and returns its id.
// The payload is forwarded as-is.
func (c *Client) CreateTicket(ctx context.Context, payload map[string]any) (string, error) {
	const op = "create_ticket"
	if payload == nil {
		payload = map[string]any{}
	}

	var resp struct {
		TicketID string `json:"ticketId"`
	}
	if err := c.doJSON(ctx, op, http.MethodPost, "/jira/create-ticket", payload, &resp); err != nil {
		return "", err
	}
	if resp.TicketID == "" {
		return "", c.fail(op, fmt.Errorf("ticketId missing"))
	}
	return resp.TicketID, nil
}

// SummarizeTicket returns the backend's summary of an existing ticket.
func (c *Client) SummarizeTicket(ctx context.Context, ticketID string) (string, error) {
	const op = "summarize_ticket"
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return "", errors.NewInvalidRequest("ticket id is required")
	}

	var resp struct {
		Summary *string `json:"summary"`
	}
	path := "/jira/summarize-ticket/" + url.PathEscape(ticketID)
	if err := c.doJSON(ctx, op, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	if resp.Summary == nil {
		return "", c.fail(op, fmt.Errorf("summary field missing"))
	}
	return *resp.Summary, nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return errors.NewInternal(err)
		}
	}
	body, err := c.do(ctx, op, method, path, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return c.fail(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, payload []byte) ([]byte, error) {
	if c.baseURL == "" {
		return nil, c.fail(op, fmt.Errorf("no base URL configured"))
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, c.fail(op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		return nil, c.fail(op, fmt.Errorf("read body: %w", err))
	}
	if len(body) > MaxResponseBytes {
		return nil, c.fail(op, fmt.Errorf("response exceeds %d bytes", MaxResponseBytes))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(op, fmt.Errorf("unexpected status %s", resp.Status))
	}
	return body, nil
}

func (c *Client) fail(op string, cause error) error {
	log.Printf("remote: %s failed: %v", op, cause)
	return errors.NewRemoteUnavailable(op, cause)
}
