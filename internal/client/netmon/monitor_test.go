package netmon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/notehub/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedPinger struct {
	mu      sync.Mutex
	results []error
	calls   int
}

func (p *scriptedPinger) Ping(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.calls
	p.calls++
	if i >= len(p.results) {
		return p.results[len(p.results)-1]
	}
	return p.results[i]
}

var errDown = errors.New("down")

func TestCheck_FirstProbeEmitsNothing(t *testing.T) {
	m := New(&scriptedPinger{results: []error{nil}}, time.Second, time.Second, logging.NewNop())

	assert.False(t, m.Online())
	assert.True(t, m.Check(context.Background()))
	assert.True(t, m.Online())
	assert.Empty(t, m.Events())
}

func TestCheck_EmitsOncePerTransition(t *testing.T) {
	p := &scriptedPinger{results: []error{nil, nil, errDown, errDown, errDown, nil}}
	m := New(p, time.Second, time.Second, logging.NewNop())
	ctx := context.Background()

	for range 6 {
		m.Check(ctx)
	}

	require.Len(t, m.Events(), 2)
	ev := <-m.Events()
	assert.False(t, ev.Online)
	ev = <-m.Events()
	assert.True(t, ev.Online)
	assert.False(t, ev.At.IsZero())
}

type deadlinePinger struct{ hasDeadline bool }

func (p *deadlinePinger) Ping(ctx context.Context) error {
	_, p.hasDeadline = ctx.Deadline()
	return ctx.Err()
}

func TestCheck_ZeroTimeoutMeansNoDeadline(t *testing.T) {
	p := &deadlinePinger{}
	m := New(p, time.Second, 0, logging.NewNop())

	assert.True(t, m.Check(context.Background()))
	assert.False(t, p.hasDeadline)
}

type slowPinger struct{}

func (slowPinger) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestCheck_TimeoutMeansOffline(t *testing.T) {
	m := New(slowPinger{}, time.Second, 20*time.Millisecond, logging.NewNop())
	assert.False(t, m.Check(context.Background()))
}

func TestRun_ProbesUntilCanceled(t *testing.T) {
	p := &scriptedPinger{results: []error{errDown, nil}}
	m := New(p, 5*time.Millisecond, time.Second, logging.NewNop())
	m.Check(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	select {
	case ev := <-m.Events():
		assert.True(t, ev.Online)
	case <-time.After(2 * time.Second):
		t.Fatal("no online event")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}
