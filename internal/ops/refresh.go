package ops

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hpungsan/daybrief/internal/errors"
	"github.com/hpungsan/daybrief/internal/store"
	"github.com/hpungsan/daybrief/internal/summary"
)

// SummarySource fetches the daily summary document.
type SummarySource interface {
	DailySummary(ctx context.Context) (*summary.Document, error)
}

// RefreshOutput contains the result of a refresh.
type RefreshOutput struct {
	Document    *summary.Document `json:"document"`
	Fallback    bool              `json:"fallback"` // backend failed; placeholder stored instead
	RefreshedAt time.Time         `json:"refreshed_at"`
}

// Refresher fetches the summary and persists it. Concurrent refreshes share
// one backend request.
type Refresher struct {
	source SummarySource
	store  store.Store
	group  singleflight.Group
	now    func() time.Time

	mu   sync.Mutex
	last *RefreshOutput
}

// NewRefresher returns a Refresher writing into st.
func NewRefresher(source SummarySource, st store.Store) *Refresher {
	return &Refresher{source: source, store: st, now: time.Now}
}

// Refresh fetches and stores the daily summary. A backend failure is not an
// error: the placeholder document is stored and returned with Fallback set.
// Only a failure to persist is returned.
func (r *Refresher) Refresh(ctx context.Context) (*RefreshOutput, error) {
	v, err, _ := r.group.Do("daily", func() (any, error) {
		// Detached so one caller's cancellation doesn't fail the others.
		return r.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.(*RefreshOutput), nil
}

func (r *Refresher) refresh(ctx context.Context) (*RefreshOutput, error) {
	out := &RefreshOutput{}

	doc, err := r.source.DailySummary(ctx)
	if err != nil {
		log.Printf("ops: daily summary unavailable, storing placeholder: %v", err)
		doc = summary.Placeholder()
		out.Fallback = true
	}

	if err := r.store.Put(ctx, doc); err != nil {
		return nil, errors.As(err)
	}

	out.Document = doc
	out.RefreshedAt = r.now().UTC()

	r.mu.Lock()
	r.last = out
	r.mu.Unlock()
	return out, nil
}

// Last returns the most recent refresh result, or nil if none has run.
func (r *Refresher) Last() *RefreshOutput {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// GetSummary returns the stored document or NOT_FOUND.
func GetSummary(ctx context.Context, st store.Store) (*summary.Document, error) {
	doc, err := st.Get(ctx)
	if err != nil {
		return nil, errors.As(err)
	}
	if doc == nil {
		return nil, errors.NewNotFound(store.Key)
	}
	return doc, nil
}
