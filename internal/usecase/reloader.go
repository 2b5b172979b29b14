package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	domrepo "CoinScope/internal/domain/repository"
	applogger "CoinScope/pkg/logger"
)

// Reloader rebuilds the store snapshot on a cron schedule.
type Reloader struct {
	store domrepo.Reloadable
	cron  *cron.Cron
	spec  string
	l     *applogger.Logger

	mu      sync.Mutex
	running bool
}

// NewReloader registers the reload job for spec, e.g. "@every 1h" or "0 3 * * *".
// An empty spec yields a reloader whose Start and Stop do nothing.
func NewReloader(store domrepo.Reloadable, spec string) (*Reloader, error) {
	r := &Reloader{store: store, spec: spec}
	if spec == "" {
		return r, nil
	}
	r.cron = cron.New()
	if _, err := r.cron.AddFunc(spec, func() { r.RunNow(context.Background()) }); err != nil {
		return nil, fmt.Errorf("register reload %q: %w", spec, err)
	}
	return r, nil
}

// SetLogger injects a structured logger.
func (r *Reloader) SetLogger(l *applogger.Logger) { r.l = l }

func (r *Reloader) Enabled() bool { return r.cron != nil }

func (r *Reloader) Start() {
	if r.cron == nil {
		return
	}
	r.cron.Start()
	if r.l != nil {
		r.l.Info("reload scheduler started", applogger.String("spec", r.spec))
	}
}

// Stop halts the schedule and waits for a running reload to finish.
func (r *Reloader) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
	if r.l != nil {
		r.l.Info("reload scheduler stopped")
	}
}

// RunNow reloads immediately. Overlapping runs are dropped.
func (r *Reloader) RunNow(ctx context.Context) bool {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		if r.l != nil {
			r.l.Warn("reload already running, skipped")
		}
		return false
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	rep, err := r.store.Reload(ctx)
	if err != nil {
		if r.l != nil {
			r.l.Error("scheduled reload failed", applogger.Error(err))
		}
		return false
	}
	if r.l != nil {
		r.l.Info("scheduled reload done",
			applogger.Int("loaded", len(rep.Loaded)),
			applogger.Int("skipped", len(rep.Skipped)),
			applogger.Duration("took", rep.Duration),
		)
	}
	return true
}
