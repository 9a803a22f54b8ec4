package ops

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/daybrief/internal/errors"
	"github.com/hpungsan/daybrief/internal/store"
	"github.com/hpungsan/daybrief/internal/summary"
)

type stubSource struct {
	calls atomic.Int32
	doc   *summary.Document
	err   error
	wait  chan struct{}
}

func (s *stubSource) DailySummary(ctx context.Context) (*summary.Document, error) {
	s.calls.Add(1)
	if s.wait != nil {
		<-s.wait
	}
	return s.doc, s.err
}

type brokenStore struct{}

func (brokenStore) Get(context.Context) (*summary.Document, error) { return nil, nil }
func (brokenStore) Put(context.Context, *summary.Document) error {
	return stderrors.New("read-only filesystem")
}

func TestRefresh_StoresDocument(t *testing.T) {
	st := store.NewMemory()
	src := &stubSource{doc: &summary.Document{EmailSummary: "A"}}
	r := NewRefresher(src, st)
	fixed := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	out, err := r.Refresh(context.Background())
	require.NoError(t, err)
	require.False(t, out.Fallback)
	require.Equal(t, fixed, out.RefreshedAt)
	require.Same(t, out, r.Last())

	doc, err := st.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "A", doc.EmailSummary)
}

func TestRefresh_FallbackStoresPlaceholder(t *testing.T) {
	st := store.NewMemory()
	require.NoError(t, st.Put(context.Background(), &summary.Document{EmailSummary: "yesterday"}))

	src := &stubSource{err: errors.NewRemoteUnavailable("daily_summary", stderrors.New("refused"))}
	out, err := NewRefresher(src, st).Refresh(context.Background())
	require.NoError(t, err)
	require.True(t, out.Fallback)
	require.Equal(t, summary.Placeholder(), out.Document)

	doc, err := st.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, summary.Placeholder().EmailSummary, doc.EmailSummary)
}

func TestRefresh_StoreFailureIsReturned(t *testing.T) {
	src := &stubSource{doc: &summary.Document{EmailSummary: "A"}}
	_, err := NewRefresher(src, brokenStore{}).Refresh(context.Background())
	require.True(t, errors.Is(err, errors.ErrInternal))
}

func TestRefresh_CoalescesConcurrentCalls(t *testing.T) {
	src := &stubSource{doc: &summary.Document{EmailSummary: "A"}, wait: make(chan struct{})}
	r := NewRefresher(src, store.NewMemory())

	const n = 8
	var wg sync.WaitGroup
	results := make([]*RefreshOutput, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := r.Refresh(context.Background())
			if err == nil {
				results[i] = out
			}
		}()
	}

	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)
	// Give the other callers time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(src.wait)
	wg.Wait()

	require.EqualValues(t, 1, src.calls.Load())
	for _, out := range results {
		require.NotNil(t, out)
		require.Equal(t, "A", out.Document.EmailSummary)
	}
}

func TestRefresh_CanceledCallerDoesNotAbortFetch(t *testing.T) {
	src := &stubSource{doc: &summary.Document{EmailSummary: "A"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := NewRefresher(src, store.NewMemory()).Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, "A", out.Document.EmailSummary)
}
