package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"nepse-gateway/src/logger"

	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

type fakeUpstream struct {
	calls   int
	payload json.RawMessage
	err     error
}

func (f *fakeUpstream) FetchJSON(ctx context.Context, path string) (json.RawMessage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

// -----------------------------------------------------------------------------

func newTestCache(upstream *fakeUpstream) (*EndpointCache, *time.Time) {
	c := NewEndpointCache(upstream, 10*time.Minute, logger.NewLogger("ERROR", "test"))
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

// -----------------------------------------------------------------------------

func TestSingleUpstreamCallWithinTTL(t *testing.T) {
	upstream := &fakeUpstream{payload: json.RawMessage(`{"detail":1}`)}
	c, _ := newTestCache(upstream)

	for i := 0; i < 5; i++ {
		payload, err := c.FetchJSON(context.Background(), "/Summary")
		require.NoError(t, err)
		require.JSONEq(t, `{"detail":1}`, string(payload))
	}

	require.Equal(t, 1, upstream.calls)
}

// -----------------------------------------------------------------------------

func TestExpiryTriggersRefetch(t *testing.T) {
	upstream := &fakeUpstream{payload: json.RawMessage(`[]`)}
	c, now := newTestCache(upstream)

	_, err := c.FetchJSON(context.Background(), "/Summary")
	require.NoError(t, err)

	*now = now.Add(10*time.Minute + time.Second)

	_, err = c.FetchJSON(context.Background(), "/Summary")
	require.NoError(t, err)
	require.Equal(t, 2, upstream.calls)
}

// -----------------------------------------------------------------------------

func TestErrorsAreNotCached(t *testing.T) {
	upstream := &fakeUpstream{err: errors.New("boom")}
	c, _ := newTestCache(upstream)

	_, err := c.FetchJSON(context.Background(), "/Summary")
	require.Error(t, err)
	require.Equal(t, 0, c.Size())

	// Upstream recovers; the next call must go through, not replay the error
	upstream.err = nil
	upstream.payload = json.RawMessage(`{}`)

	payload, err := c.FetchJSON(context.Background(), "/Summary")
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(payload))
	require.Equal(t, 2, upstream.calls)
}

// -----------------------------------------------------------------------------

func TestPathsCachedIndependently(t *testing.T) {
	upstream := &fakeUpstream{payload: json.RawMessage(`[]`)}
	c, _ := newTestCache(upstream)

	_, err := c.FetchJSON(context.Background(), "/Summary")
	require.NoError(t, err)
	_, err = c.FetchJSON(context.Background(), "/TopGainers")
	require.NoError(t, err)

	require.Equal(t, 2, upstream.calls)
	require.Equal(t, 2, c.Size())
}
