package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// StopFunc stops one component within the grace period carried by ctx.
type StopFunc func(ctx context.Context) error

type component struct {
	name string
	stop StopFunc
}

// Manager stops the components started by main, newest first, exactly once.
type Manager struct {
	grace  time.Duration
	logger *zap.Logger

	mu      sync.Mutex
	stack   []component
	stopped bool
}

func New(grace time.Duration, logger *zap.Logger) *Manager {
	if grace <= 0 {
		grace = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{grace: grace, logger: logger}
}

// OnStop pushes a component onto the stop stack. Late registrations are stopped immediately.
func (m *Manager) OnStop(name string, stop StopFunc) {
	if stop == nil {
		return
	}
	m.mu.Lock()
	if !m.stopped {
		m.stack = append(m.stack, component{name: name, stop: stop})
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	m.logger.Warn("component registered after stop", zap.String("component", name))
	ctx, cancel := context.WithTimeout(context.Background(), m.grace)
	defer cancel()
	m.run(ctx, component{name: name, stop: stop})
}

// SignalContext derives a context that is cancelled on SIGINT or SIGTERM.
func (m *Manager) SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Stop runs every stop function within the grace period. Later calls are no-ops.
func (m *Manager) Stop(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.grace)
	defer cancel()

	m.mu.Lock()
	stack := m.stack
	m.stack = nil
	m.stopped = true
	m.mu.Unlock()

	var errs []error
	for i := len(stack) - 1; i >= 0; i-- {
		if err := m.run(ctx, stack[i]); err != nil {
			errs = append(errs, err)
		}
	}
	if ctx.Err() != nil {
		m.logger.Warn("grace period exceeded", zap.Duration("grace", m.grace))
	}
	return errors.Join(errs...)
}

func (m *Manager) run(ctx context.Context, c component) error {
	started := time.Now()
	err := c.stop(ctx)
	fields := []zap.Field{zap.String("component", c.name), zap.Duration("took", time.Since(started))}
	if err != nil {
		m.logger.Error("component stop failed", append(fields, zap.Error(err))...)
		return err
	}
	m.logger.Info("component stopped", fields...)
	return nil
}
