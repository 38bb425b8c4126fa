package trace

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_OpenInMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	exs, err := s.ListExchanges(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Empty(t, exs)
}

func TestStore_RecordAndListExchanges(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	seq1, err := s.RecordExchange(ctx, Exchange{
		Method: "GET", Path: "/documents", Domain: "documents",
		Status: 200, ResponseBody: `{"items":[]}`, RecordedAt: "2024-06-01T12:00:00Z",
	})
	require.NoError(t, err)

	seq2, err := s.RecordExchange(ctx, Exchange{
		Method: "POST", Path: "/auth/login", Domain: "auth",
		Status: 401, Failed: true, DelayMs: 250, RecordedAt: "2024-06-01T12:00:01Z",
	})
	require.NoError(t, err)
	assert.Greater(t, seq2, seq1, "sequence numbers are strictly increasing")

	exs, err := s.ListExchanges(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, exs, 2)

	assert.Equal(t, "GET", exs[0].Method)
	assert.Equal(t, "/documents", exs[0].Path)
	assert.Equal(t, 200, exs[0].Status)
	assert.False(t, exs[0].Failed)
	assert.Equal(t, `{"items":[]}`, exs[0].ResponseBody)

	assert.Equal(t, "auth", exs[1].Domain)
	assert.True(t, exs[1].Failed)
	assert.Equal(t, int64(250), exs[1].DelayMs)
	assert.Empty(t, exs[1].ResponseBody)
}

func TestStore_ListExchangesDomainFilter(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	for _, domain := range []string{"documents", "auth", "documents"} {
		_, err := s.RecordExchange(ctx, Exchange{
			Method: "GET", Path: "/" + domain, Domain: domain,
			Status: 200, RecordedAt: "2024-06-01T12:00:00Z",
		})
		require.NoError(t, err)
	}

	exs, err := s.ListExchanges(ctx, "documents", 0)
	require.NoError(t, err)
	require.Len(t, exs, 2)
	for _, ex := range exs {
		assert.Equal(t, "documents", ex.Domain)
	}
}

func TestStore_ListExchangesLimit(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.RecordExchange(ctx, Exchange{
			Method: "GET", Path: "/documents", Domain: "documents",
			Status: 200, RecordedAt: "2024-06-01T12:00:00Z",
		})
		require.NoError(t, err)
	}

	exs, err := s.ListExchanges(ctx, "", 3)
	require.NoError(t, err)
	assert.Len(t, exs, 3)
}

func TestStore_RecordAndListChannelEvents(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	_, err := s.RecordChannelEvent(ctx, ChannelEvent{
		Kind: KindState, Detail: "connecting", RecordedAt: "2024-06-01T12:00:00Z",
	})
	require.NoError(t, err)
	_, err = s.RecordChannelEvent(ctx, ChannelEvent{
		Kind: KindMessage, Detail: "heartbeat", Payload: `{"seq":1}`,
		RecordedAt: "2024-06-01T12:00:01Z",
	})
	require.NoError(t, err)

	evs, err := s.ListChannelEvents(ctx, 0)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, KindState, evs[0].Kind)
	assert.Equal(t, "connecting", evs[0].Detail)
	assert.Empty(t, evs[0].Payload)
	assert.Equal(t, KindMessage, evs[1].Kind)
	assert.Equal(t, `{"seq":1}`, evs[1].Payload)
}

func TestStore_Clear(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	_, err := s.RecordExchange(ctx, Exchange{
		Method: "GET", Path: "/documents", Domain: "documents",
		Status: 200, RecordedAt: "2024-06-01T12:00:00Z",
	})
	require.NoError(t, err)
	_, err = s.RecordChannelEvent(ctx, ChannelEvent{
		Kind: KindState, Detail: "open", RecordedAt: "2024-06-01T12:00:00Z",
	})
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx))

	exs, err := s.ListExchanges(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, exs)
	evs, err := s.ListChannelEvents(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, evs)
}

func TestStore_OpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")

	s1, err := Open(path)
	require.NoError(t, err)
	_, err = s1.RecordExchange(context.Background(), Exchange{
		Method: "GET", Path: "/documents", Domain: "documents",
		Status: 200, RecordedAt: "2024-06-01T12:00:00Z",
	})
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	exs, err := s2.ListExchanges(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, exs, 1, "reopening preserves the transcript")
}
