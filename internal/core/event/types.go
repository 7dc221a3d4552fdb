package event

import "time"

// Game session events. Emitted by the loop, consumed next tick by the
// session recorder and the metrics layer.

type GameStarted struct {
	Players []string
	Nodes   int
	At      time.Time
}

type RegionEntered struct {
	Node       uint16
	RegionType uint8
	Battery    float64
	At         time.Time
}

type PlayerDeparted struct {
	PlayerID uint16
	Name     string
	Owner    bool
	Reason   string
	At       time.Time
}

type EnemyKilled struct {
	EnemyID    uint16
	EntityType uint8
	KillerID   uint16 // 0 when not killed by a player
}

type GameEnded struct {
	Regions int
	At      time.Time
}
