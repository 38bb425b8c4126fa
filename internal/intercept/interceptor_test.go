package intercept

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fauxwire/internal/entity"
	"github.com/roach88/fauxwire/internal/fault"
)

// fixedNow is the timestamp used by deterministic interceptor tests.
var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// instantSleep records requested delays without actually waiting.
func instantSleep(delays *[]time.Duration) SleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return ctx.Err()
	}
}

func newTestWorld(t *testing.T) (*Interceptor, *entity.Stores, *fault.Registry, *[]time.Duration) {
	t.Helper()

	stores := entity.NewStores(entity.UUIDv7Generator{})
	faults := fault.NewRegistry()
	reg := NewRegistry()
	RegisterAll(reg, stores, func() time.Time { return fixedNow })

	delays := &[]time.Duration{}
	ic := New(reg, faults, Options{
		Now:   func() time.Time { return fixedNow },
		Sleep: instantSleep(delays),
	})
	return ic, stores, faults, delays
}

func TestInterceptor_UnmatchedRouteIsMisuse(t *testing.T) {
	ic, _, _, _ := newTestWorld(t)

	_, err := ic.Do(context.Background(), "GET", "/not/a/route", nil)
	require.Error(t, err)
	assert.True(t, IsMisuse(err))

	var me *MisuseError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, ErrCodeRouteNotRegistered, me.Code)
}

func TestInterceptor_FaultShortCircuits(t *testing.T) {
	ic, stores, faults, _ := newTestWorld(t)
	stores.Documents.Create(entity.Document{ID: "d1", Name: "keep.pdf"})

	faults.Set(fault.Documents, fault.Config{ShouldFail: true, ErrorCode: 503, ErrorMessage: "unavailable"})

	resp, err := ic.Do(context.Background(), "DELETE", "/documents/d1", nil)
	require.NoError(t, err)
	assert.Equal(t, 503, resp.Status)

	body, ok := resp.Body.(ErrorBody)
	require.True(t, ok)
	assert.Equal(t, 503, body.Code)
	assert.Equal(t, "unavailable", body.Message)
	assert.NotEmpty(t, body.Timestamp)

	// The store was never touched.
	_, stillThere := stores.Documents.Get("d1")
	assert.True(t, stillThere)
}

func TestInterceptor_FaultBeatsNotFound(t *testing.T) {
	// Fault injection takes priority over semantic correctness: a forced
	// 503 wins even when the handler would have returned 404.
	ic, _, faults, _ := newTestWorld(t)
	faults.Set(fault.Documents, fault.Config{ShouldFail: true, ErrorCode: 503})

	resp, err := ic.Do(context.Background(), "GET", "/documents/no-such-id", nil)
	require.NoError(t, err)
	assert.Equal(t, 503, resp.Status)
}

func TestInterceptor_DelayBeforeFailure(t *testing.T) {
	ic, _, faults, delays := newTestWorld(t)
	faults.Set(fault.Documents, fault.Config{
		Delay:      fault.DelayMs(150),
		ShouldFail: true,
		ErrorCode:  500,
	})

	resp, err := ic.Do(context.Background(), "GET", "/documents", nil)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.Status)
	require.Len(t, *delays, 1)
	assert.Equal(t, 150*time.Millisecond, (*delays)[0])
}

func TestInterceptor_InfiniteDelayBlocksUntilAbandoned(t *testing.T) {
	ic, stores, faults, _ := newTestWorld(t)
	stores.Documents.Create(entity.Document{ID: "d1"})
	faults.Set(fault.Documents, fault.Config{Delay: fault.InfiniteDelay()})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := ic.Do(ctx, "GET", "/documents/d1", nil)
		done <- err
	}()

	select {
	case err := <-done:
		t.Fatalf("call resolved despite infinite delay: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("call did not return after cancellation")
	}
}

func TestInterceptor_FaultOnOneDomainLeavesOthersAlone(t *testing.T) {
	ic, stores, faults, _ := newTestWorld(t)
	stores.Labels.Create(entity.Label{ID: "l1", Name: "invoices"})
	faults.Set(fault.Documents, fault.Config{ShouldFail: true, ErrorCode: 503})

	resp, err := ic.Do(context.Background(), "GET", "/labels/l1", nil)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
}

func TestInterceptor_QueryStringDoesNotBreakMatching(t *testing.T) {
	ic, _, _, _ := newTestWorld(t)

	resp, err := ic.Do(context.Background(), "GET", "/documents?limit=20&offset=0", nil)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
}

func TestInterceptor_EmptyDocumentsEnvelope(t *testing.T) {
	ic, _, _, _ := newTestWorld(t)

	resp, err := ic.Do(context.Background(), "GET", "/documents?limit=20&offset=0", nil)
	require.NoError(t, err)

	body, ok := resp.Body.(ListBody)
	require.True(t, ok)
	items, ok := body.Items.([]entity.Document)
	require.True(t, ok)
	assert.Empty(t, items)
	assert.Equal(t, Pagination{Total: 0, Limit: 20, Offset: 0, HasMore: false}, body.Pagination)
}

func TestRealSleep_RespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RealSleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)

	assert.NoError(t, RealSleep(context.Background(), 0))
}
