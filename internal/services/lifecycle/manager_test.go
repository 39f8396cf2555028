package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStopRunsNewestFirst(t *testing.T) {
	m := New(0, nil)
	var order []string
	for _, name := range []string{"audit", "redis", "http_server"} {
		name := name
		m.OnStop(name, func(ctx context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	assert.NoError(t, m.Stop(context.Background()))
	assert.Equal(t, []string{"http_server", "redis", "audit"}, order)
}

func TestStopJoinsErrorsAndRunsOnce(t *testing.T) {
	m := New(0, nil)
	boom := errors.New("boom")
	calls := 0
	m.OnStop("first", func(ctx context.Context) error { calls++; return nil })
	m.OnStop("second", func(ctx context.Context) error { calls++; return boom })

	err := m.Stop(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)

	assert.NoError(t, m.Stop(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestLateRegistrationStopsImmediately(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := New(0, zap.New(core))
	require.NoError(t, m.Stop(context.Background()))

	stopped := false
	m.OnStop("late", func(ctx context.Context) error { stopped = true; return nil })

	assert.True(t, stopped)
	assert.Equal(t, 1, logs.FilterMessage("component registered after stop").Len())
	assert.NoError(t, m.Stop(context.Background()))
}

func TestStopAppliesGracePeriod(t *testing.T) {
	m := New(20*time.Millisecond, nil)
	var deadline time.Time
	m.OnStop("slow", func(ctx context.Context) error {
		deadline, _ = ctx.Deadline()
		<-ctx.Done()
		return ctx.Err()
	})

	err := m.Stop(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, deadline.IsZero())
}

func TestSignalContextFollowsParent(t *testing.T) {
	m := New(0, nil)
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := m.SignalContext(parent)
	defer stop()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("signal context not cancelled with parent")
	}
}
