package admin

import (
	"sync/atomic"
	"time"
)

// Status is an immutable view of the session, published by the game loop
// and read by HTTP handlers.
type Status struct {
	Server    string    `json:"server"`
	Phase     string    `json:"phase"`
	Players   []string  `json:"players"`
	Owner     uint16    `json:"owner"`
	Region    uint16    `json:"region"`
	Enemies   int       `json:"enemies"`
	Battery   float64   `json:"battery"`
	Visited   int       `json:"regions_visited"`
	Paused    bool      `json:"paused"`
	Tick      uint64    `json:"tick"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StatusBoard hands the latest Status from the loop to readers without
// locking.
type StatusBoard struct {
	v atomic.Pointer[Status]
}

// Publish replaces the current status. s must not be modified afterwards.
func (b *StatusBoard) Publish(s *Status) {
	b.v.Store(s)
}

// Load returns the latest status, or nil before the first publish.
func (b *StatusBoard) Load() *Status {
	return b.v.Load()
}
