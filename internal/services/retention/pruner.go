package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Store is the audit log as seen by the pruner.
type Store interface {
	Prune(olderThan time.Time) (int, error)
}

// Config controls how often and how far back the audit log is trimmed.
type Config struct {
	Interval  time.Duration
	Retention time.Duration
}

// Pruner drops audit entries older than the retention window on a cron schedule.
type Pruner struct {
	store  Store
	cfg    Config
	cron   *cron.Cron
	logger *zap.Logger
	now    func() time.Time
}

func NewPruner(store Store, cfg Config, logger *zap.Logger) *Pruner {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pruner{
		store:  store,
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
		logger: logger,
		now:    time.Now,
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	if _, err := p.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if _, err := p.RunOnce(ctx); err != nil {
			p.logger.Error("audit prune failed", zap.Error(err))
		}
	}); err != nil {
		logger.Error("invalid audit prune schedule", zap.String("schedule", schedule), zap.Error(err))
	}

	return p
}

// Start launches the cron scheduler.
func (p *Pruner) Start() {
	if p == nil || p.cron == nil {
		return
	}
	p.cron.Start()
	p.logger.Info("audit pruner started", zap.Duration("interval", p.cfg.Interval), zap.Duration("retention", p.cfg.Retention))
}

// Stop waits for a running prune to finish or for ctx to expire.
func (p *Pruner) Stop(ctx context.Context) {
	if p == nil || p.cron == nil {
		return
	}
	stopCtx := p.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	p.logger.Info("audit pruner stopped")
}

// RunOnce prunes synchronously.
func (p *Pruner) RunOnce(ctx context.Context) (int, error) {
	if p == nil || p.store == nil {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	cutoff := p.now().Add(-p.cfg.Retention)
	removed, err := p.store.Prune(cutoff)
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		p.logger.Info("audit entries pruned", zap.Int("removed", removed), zap.Time("cutoff", cutoff))
	}
	return removed, nil
}
