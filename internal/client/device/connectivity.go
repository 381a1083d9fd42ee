package device

import (
	"context"
	"sync"
	"time"

	"github.com/nipa/healthsync/internal/logging"
)

// Pinger is satisfied by client.Remote.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ConnectivityWatcher probes the remote on an interval and calls OnOnline
// whenever the state flips from offline (or unknown) to online.
type ConnectivityWatcher struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	onOnline func()
	log      logging.Logger

	mu     sync.RWMutex
	online bool
	probed bool
}

func NewConnectivityWatcher(p Pinger, interval time.Duration, onOnline func(), log logging.Logger) *ConnectivityWatcher {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	timeout := interval
	if timeout > 5*time.Second {
		timeout = 5 * time.Second
	}
	return &ConnectivityWatcher{
		pinger:   p,
		interval: interval,
		timeout:  timeout,
		onOnline: onOnline,
		log:      log.With("component", "connectivity"),
	}
}

// Online returns the result of the last probe. It is false before the first one.
func (w *ConnectivityWatcher) Online() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.online
}

// Run probes immediately and then on every interval until ctx is done.
func (w *ConnectivityWatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.Probe(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Probe runs one check and reports the resulting state.
func (w *ConnectivityWatcher) Probe(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, w.timeout)
	err := w.pinger.Ping(pctx)
	cancel()
	now := err == nil

	w.mu.Lock()
	was, probed := w.online, w.probed
	w.online, w.probed = now, true
	w.mu.Unlock()

	switch {
	case now && !was:
		w.log.Info(ctx, "remote reachable")
		if w.onOnline != nil {
			w.onOnline()
		}
	case !now && (was || !probed):
		w.log.Warn(ctx, "remote unreachable", "error", err)
	}
	return now
}
