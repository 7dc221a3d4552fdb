package persist

import (
	"context"
	"time"

	"github.com/RyanBerge/SphereDefender-sub000/internal/core/event"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const writeTimeout = 5 * time.Second

// Recorder turns game events into history records and writes them from a
// background goroutine. Subscribe, Flush and Close run on the game loop;
// the loop never waits on the database.
type Recorder struct {
	store Store
	log   *zap.Logger

	session uuid.UUID // uuid.Nil outside a game
	kills   int
	pending []Record
	handles []event.Handle
	bus     *event.Bus

	queue chan []Record
	done  chan struct{}
}

func NewRecorder(store Store, queueSize int, log *zap.Logger) *Recorder {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Recorder{
		store: store,
		log:   log,
		queue: make(chan []Record, queueSize),
		done:  make(chan struct{}),
	}
}

// Subscribe attaches the recorder to the session events on bus.
func (r *Recorder) Subscribe(bus *event.Bus) {
	r.bus = bus
	r.handles = append(r.handles,
		event.Subscribe(bus, r.onGameStarted),
		event.Subscribe(bus, r.onRegionEntered),
		event.Subscribe(bus, r.onPlayerDeparted),
		event.Subscribe(bus, r.onEnemyKilled),
		event.Subscribe(bus, r.onGameEnded),
	)
}

func (r *Recorder) onGameStarted(e event.GameStarted) {
	r.session = uuid.New()
	r.kills = 0
	r.pending = append(r.pending, Record{
		Kind:      RecordSessionStart,
		SessionID: r.session,
		At:        e.At,
		Players:   e.Players,
		Nodes:     e.Nodes,
	})
}

func (r *Recorder) onRegionEntered(e event.RegionEntered) {
	if r.session == uuid.Nil {
		return
	}
	r.pending = append(r.pending, Record{
		Kind:       RecordRegion,
		SessionID:  r.session,
		At:         e.At,
		Node:       e.Node,
		RegionType: e.RegionType,
		Battery:    e.Battery,
	})
}

func (r *Recorder) onPlayerDeparted(e event.PlayerDeparted) {
	if r.session == uuid.Nil {
		return
	}
	r.pending = append(r.pending, Record{
		Kind:      RecordDeparture,
		SessionID: r.session,
		At:        e.At,
		PlayerID:  e.PlayerID,
		Name:      e.Name,
		Owner:     e.Owner,
		Reason:    e.Reason,
	})
}

func (r *Recorder) onEnemyKilled(event.EnemyKilled) {
	r.kills++
}

func (r *Recorder) onGameEnded(e event.GameEnded) {
	if r.session == uuid.Nil {
		return
	}
	r.pending = append(r.pending, Record{
		Kind:      RecordSessionEnd,
		SessionID: r.session,
		At:        e.At,
		Regions:   e.Regions,
		Kills:     r.kills,
	})
	r.session = uuid.Nil
}

// Session returns the id of the game being recorded, uuid.Nil if none.
func (r *Recorder) Session() uuid.UUID { return r.session }

// Flush hands pending records to the writer. A full queue drops the batch.
func (r *Recorder) Flush() {
	if len(r.pending) == 0 {
		return
	}
	batch := r.pending
	r.pending = nil
	select {
	case r.queue <- batch:
	default:
		r.log.Warn("history queue full, dropping records", zap.Int("records", len(batch)))
	}
}

// Run writes queued batches until Close. Call it in its own goroutine.
func (r *Recorder) Run() {
	defer close(r.done)
	for batch := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := r.store.Write(ctx, batch); err != nil {
			r.log.Error("history write failed", zap.Int("records", len(batch)), zap.Error(err))
		}
		cancel()
	}
}

// Close detaches from the bus, flushes and waits for the writer to finish.
func (r *Recorder) Close() {
	if r.bus != nil {
		for _, h := range r.handles {
			r.bus.Unsubscribe(h)
		}
		r.handles = nil
	}
	r.Flush()
	close(r.queue)
	<-r.done
}
