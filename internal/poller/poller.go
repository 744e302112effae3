package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Poller runs a fetch on a fixed interval, plus on demand via Kick. Every
// fetch is tagged with a sequence taken when it starts; a result is only
// delivered while its sequence is still the latest issued, so a slow tick
// cannot clobber the result of a newer one. There is no cancellation of the
// stale fetch itself, its response is simply dropped.
type Poller struct {
	name     string
	interval time.Duration
	fetch    func(ctx context.Context) (interface{}, error)
	deliver  func(interface{})

	kicks chan struct{}

	mu        sync.Mutex
	seq       uint64
	delivered uint64
}

// New creates a poller. deliver runs on the fetching goroutine, serialized by
// the poller; it must not block.
func New(name string, interval time.Duration, fetch func(ctx context.Context) (interface{}, error), deliver func(interface{})) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		fetch:    fetch,
		deliver:  deliver,
		kicks:    make(chan struct{}, 1),
	}
}

// Kick schedules an immediate fetch. Never blocks; kicks coalesce.
func (p *Poller) Kick() {
	select {
	case p.kicks <- struct{}{}:
	default:
	}
}

// Run fetches until ctx is cancelled. An initial fetch fires immediately.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	go p.Do(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go p.Do(ctx)
		case <-p.kicks:
			go p.Do(ctx)
		}
	}
}

// Do runs one guarded fetch cycle.
func (p *Poller) Do(ctx context.Context) {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	v, err := p.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn().Err(err).Str("poller", p.name).Msg("poll failed")
		}
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq || seq <= p.delivered {
		log.Debug().Str("poller", p.name).Uint64("seq", seq).Uint64("latest", p.seq).Msg("dropping stale poll result")
		return
	}
	p.delivered = seq
	p.deliver(v)
}
