package ops

import (
	"context"
	"log"

	"github.com/hpungsan/daybrief/internal/chat"
	"github.com/hpungsan/daybrief/internal/config"
	"github.com/hpungsan/daybrief/internal/remote"
	"github.com/hpungsan/daybrief/internal/section"
	"github.com/hpungsan/daybrief/internal/store"
	"github.com/hpungsan/daybrief/internal/summary"
)

// Dashboard bundles the long-lived state shared by the web UI, CLI and MCP
// server.
type Dashboard struct {
	Config    *config.Config
	Store     store.Store
	Client    *remote.Client
	Refresher *Refresher
	Scheduler *Scheduler
	Chats     *chat.Registry
}

// NewDashboard wires a dashboard around st and client.
func NewDashboard(cfg *config.Config, st store.Store, client *remote.Client) *Dashboard {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	d := &Dashboard{
		Config: cfg,
		Store:  st,
		Client: client,
		Chats:  chat.NewRegistry(chat.WithThreadIDs(chat.DefaultPanels(), cfg.ThreadID), client),
	}
	d.Refresher = NewRefresher(client, st)
	d.Scheduler = NewScheduler(func(ctx context.Context) error {
		_, err := d.Refresher.Refresh(ctx)
		return err
	})
	return d
}

// Close stops background work.
func (d *Dashboard) Close() {
	d.Scheduler.Stop()
}

// SectionOutput is a dispatched view plus the heading outline of its content.
type SectionOutput struct {
	section.View
	Outline []summary.Heading `json:"outline,omitempty"`
}

// ViewSection dispatches a section id. Opening home in immediate mode
// refreshes the summary first; a failed refresh is logged and ignored.
func (d *Dashboard) ViewSection(ctx context.Context, id string) *SectionOutput {
	if id == section.Home && d.Scheduler.Mode() == ModeImmediate {
		if _, err := d.Refresher.Refresh(ctx); err != nil {
			log.Printf("ops: refresh on home failed: %v", err)
		}
	}
	return ViewSection(ctx, d.Store, id)
}

// ViewSection dispatches a section id without side effects.
func ViewSection(ctx context.Context, st store.Store, id string) *SectionOutput {
	v := section.Dispatch(ctx, id, st)
	return &SectionOutput{View: v, Outline: summary.Outline(v.Content)}
}
