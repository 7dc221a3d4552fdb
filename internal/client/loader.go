package client

import (
	"context"
	"sync/atomic"

	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
)

// LoadFunc prepares a zone for play. It must return promptly once ctx is
// cancelled.
type LoadFunc func(ctx context.Context, zone packet.SetZone) error

// ZoneLoader runs one zone load in the background. The render loop polls
// Loaded; leaving the game calls Cancel, which waits for the job to stop.
type ZoneLoader struct {
	cancel context.CancelFunc
	done   chan struct{}
	loaded atomic.Bool
	err    error // set before done closes
}

// StartZoneLoad launches fn for zone under a context derived from parent.
func StartZoneLoad(parent context.Context, zone packet.SetZone, fn LoadFunc) *ZoneLoader {
	ctx, cancel := context.WithCancel(parent)
	l := &ZoneLoader{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(l.done)
		defer cancel()
		err := fn(ctx, zone)
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
		l.err = err
		if err == nil {
			l.loaded.Store(true)
		}
	}()
	return l
}

// Loaded reports whether the load finished successfully.
func (l *ZoneLoader) Loaded() bool { return l.loaded.Load() }

// Done is closed when the job has stopped, loaded or not.
func (l *ZoneLoader) Done() <-chan struct{} { return l.done }

// Err returns the job's error once Done is closed.
func (l *ZoneLoader) Err() error {
	select {
	case <-l.done:
		return l.err
	default:
		return nil
	}
}

// Cancel stops the job and waits for it to return.
func (l *ZoneLoader) Cancel() {
	l.cancel()
	<-l.done
}
