package service

import (
	"sync"
	"time"
)

const minReapInterval = time.Second

// SessionOption configures the session hosting shared by the quiz and export services.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	idleTTL time.Duration
}

// WithIdleTTL closes sessions that saw no request for ttl. A browser tab that
// is closed never sends DELETE. Zero keeps sessions until they are closed.
func WithIdleTTL(ttl time.Duration) SessionOption {
	return func(o *sessionOptions) {
		if ttl > 0 {
			o.idleTTL = ttl
		}
	}
}

func applySessionOptions(opts []SessionOption) sessionOptions {
	var o sessionOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// reaper calls reap periodically until stopped.
type reaper struct {
	stop     chan struct{}
	stopOnce sync.Once
}

func startReaper(ttl time.Duration, reap func()) *reaper {
	r := &reaper{stop: make(chan struct{})}
	if ttl <= 0 {
		return r
	}
	interval := ttl / 4
	if interval < minReapInterval {
		interval = minReapInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-r.stop:
				return
			case <-ticker.C:
				reap()
			}
		}
	}()
	return r
}

func (r *reaper) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}
