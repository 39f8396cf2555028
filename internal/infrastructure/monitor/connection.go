package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pinger is satisfied by the Redis client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Sizer is satisfied by the audit store.
type Sizer interface {
	Size() (int, error)
}

// Monitor periodically probes the optional dependencies reported by /api/health.
// Nil dependencies are reported as offline.
type Monitor struct {
	redis Pinger
	audit Sizer

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(redis Pinger, audit Sizer, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		redis:    redis,
		audit:    audit,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs one probe round synchronously.
func (m *Monitor) Refresh() {
	auditOK, entries := m.checkAudit()
	status := Status{
		Redis:        m.checkRedis(),
		Audit:        auditOK,
		AuditEntries: entries,
		LastCheck:    time.Now(),
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

func (m *Monitor) checkRedis() bool {
	if m.redis == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.redis.Ping(ctx); err != nil {
		m.logger.Warn("redis ping failed", zap.Error(err))
		return false
	}
	return true
}

func (m *Monitor) checkAudit() (bool, int) {
	if m.audit == nil {
		return false, 0
	}
	size, err := m.audit.Size()
	if err != nil {
		m.logger.Warn("audit size check failed", zap.Error(err))
		return false, size
	}
	return true, size
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }
