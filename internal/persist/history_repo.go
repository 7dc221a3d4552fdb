package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecordKind tags a session history record.
type RecordKind uint8

const (
	RecordSessionStart RecordKind = iota + 1
	RecordRegion
	RecordDeparture
	RecordSessionEnd
)

func (k RecordKind) String() string {
	switch k {
	case RecordSessionStart:
		return "session_start"
	case RecordRegion:
		return "region"
	case RecordDeparture:
		return "departure"
	case RecordSessionEnd:
		return "session_end"
	}
	return "unknown"
}

// Record is one row of session history. Only the fields of its Kind are set.
type Record struct {
	Kind      RecordKind
	SessionID uuid.UUID
	At        time.Time

	// session start
	Players []string
	Nodes   int

	// region
	Node       uint16
	RegionType uint8
	Battery    float64

	// departure
	PlayerID uint16
	Name     string
	Owner    bool
	Reason   string

	// session end
	Regions int
	Kills   int
}

// Store writes batches of history records.
type Store interface {
	Write(ctx context.Context, batch []Record) error
}

// HistoryRepo is the Postgres Store.
type HistoryRepo struct {
	db *DB
}

func NewHistoryRepo(db *DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// Write stores batch in one transaction.
func (r *HistoryRepo) Write(ctx context.Context, batch []Record) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("history begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range batch {
		var err error
		switch rec.Kind {
		case RecordSessionStart:
			_, err = tx.Exec(ctx,
				`INSERT INTO game_sessions (id, started_at, players, zone_nodes)
				 VALUES ($1, $2, $3, $4)`,
				rec.SessionID, rec.At, rec.Players, rec.Nodes,
			)
		case RecordRegion:
			_, err = tx.Exec(ctx,
				`INSERT INTO region_visits (session_id, node, region_type, battery, entered_at)
				 VALUES ($1, $2, $3, $4, $5)`,
				rec.SessionID, int32(rec.Node), int16(rec.RegionType), rec.Battery, rec.At,
			)
		case RecordDeparture:
			_, err = tx.Exec(ctx,
				`INSERT INTO player_departures (session_id, player_id, name, was_owner, reason, left_at)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				rec.SessionID, int32(rec.PlayerID), rec.Name, rec.Owner, rec.Reason, rec.At,
			)
		case RecordSessionEnd:
			_, err = tx.Exec(ctx,
				`UPDATE game_sessions SET ended_at = $2, regions = $3, kills = $4 WHERE id = $1`,
				rec.SessionID, rec.At, rec.Regions, rec.Kills,
			)
		default:
			err = fmt.Errorf("unknown record kind %d", rec.Kind)
		}
		if err != nil {
			return fmt.Errorf("history %s: %w", rec.Kind, err)
		}
	}

	return tx.Commit(ctx)
}
