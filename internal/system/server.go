package system

import (
	"context"
	"sync"
	"time"

	"github.com/RyanBerge/SphereDefender-sub000/internal/admin"
	"github.com/RyanBerge/SphereDefender-sub000/internal/config"
	coresys "github.com/RyanBerge/SphereDefender-sub000/internal/core/system"
	"github.com/RyanBerge/SphereDefender-sub000/internal/handler"
	"github.com/RyanBerge/SphereDefender-sub000/internal/net"
	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
	"go.uber.org/zap"
)

// statusInterval is how often the admin status view is refreshed.
const statusInterval = 250 * time.Millisecond

// Options wires the loop to the rest of the server.
type Options struct {
	Sessions   <-chan *net.Session
	Registry   *packet.Registry
	Deps       *handler.Deps
	Network    config.NetworkConfig
	ServerName string

	Metrics  *admin.Metrics     // nil disables metrics
	Status   *admin.StatusBoard // nil disables /status publishing
	Recorder Flusher            // nil disables session history
}

// Loop owns the system runner and drives it at the configured tick rate.
type Loop struct {
	runner  *coresys.Runner
	cleanup *CleanupSystem
	tick    time.Duration
	metrics *admin.Metrics
	log     *zap.Logger

	done     chan struct{}
	doneOnce sync.Once
}

func NewLoop(opts Options) *Loop {
	log := opts.Deps.Log
	l := &Loop{
		runner:  coresys.NewRunner(),
		tick:    opts.Network.TickRate,
		metrics: opts.Metrics,
		log:     log,
		done:    make(chan struct{}),
	}
	stop := func() { l.doneOnce.Do(func() { close(l.done) }) }
	l.cleanup = NewCleanupSystem(opts.Deps.World, opts.Deps.Bus, opts.Metrics, stop, log)

	l.runner.Register(NewInputSystem(opts.Sessions, opts.Registry, opts.Deps, opts.Network.MaxMessagesPerTick, opts.Metrics, log))
	l.runner.Register(NewEventSystem(opts.Deps.Bus))
	l.runner.Register(NewSimulationSystem(opts.Deps, opts.Metrics))
	l.runner.Register(NewVoteSystem(opts.Deps))
	l.runner.Register(NewOutputSystem(opts.Deps, opts.Network.BroadcastInterval(), opts.Metrics))
	if opts.Status != nil {
		l.runner.Register(NewStatusSystem(opts.Deps.World, opts.Status, opts.ServerName, statusInterval))
	}
	if opts.Recorder != nil {
		l.runner.Register(NewPersistSystem(opts.Recorder))
	}
	l.runner.Register(l.cleanup)

	if opts.Metrics != nil {
		l.runner.SetObserver(func(phase coresys.Phase, took time.Duration) {
			opts.Metrics.ObservePhase(phase.String(), took)
		})
	}
	return l
}

// Tick runs every system once.
func (l *Loop) Tick() {
	start := time.Now()
	l.runner.Tick(l.tick)
	l.metrics.ObserveTick(time.Since(start))
}

// Done is closed once the last player of an initialized session is gone.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Run ticks until ctx is cancelled or the session ends. The returned error
// is ctx.Err() on cancellation and nil when the session ended on its own.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	l.log.Info("game loop started", zap.Duration("tick", l.tick))
	for {
		select {
		case <-ticker.C:
			l.Tick()
		case <-l.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Drain waits up to timeout for evicted sessions to finish writing.
func (l *Loop) Drain(timeout time.Duration) {
	l.cleanup.Drain(timeout)
}
