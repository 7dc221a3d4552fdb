package world

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"slices"

	"github.com/RyanBerge/SphereDefender-sub000/internal/data"
	"github.com/RyanBerge/SphereDefender-sub000/internal/geom"
	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
	"golang.org/x/crypto/blake2b"
)

// Zone layout constants, in overmap units.
const (
	zoneSpacing  = 100.0
	zoneJitter   = 10.0
	linkStraight = 0.65 // chance of a same-row link
	linkDiagonal = 0.55 // chance of a diagonal link
	leylineShare = 0.15
	eventShare   = 0.10
)

// ZoneNode is one region on the overmap.
type ZoneNode struct {
	ID     uint16
	Type   uint8 // data.RegionDefinition.Type
	Pos    geom.Vec2
	Column int
	Row    int
}

// Link is an undirected edge; Distance is the battery cost base.
type Link struct {
	A, B     uint16
	Distance float64
}

// Zone is the region graph of one game session. Read-only once generated.
type Zone struct {
	Nodes []ZoneNode
	Links []Link
	Start uint16
	adj   map[uint16]map[uint16]float64
}

// GenerateZone lays out cols-1 columns of rows nodes to the right of a
// single starting town. Links only join neighbouring columns: same row, or
// one row up/down. The two diagonals of any grid cell never both exist, so
// no links cross. Every node keeps at least one link forward and one back.
func GenerateZone(rng *rand.Rand, regions *data.RegionTable, cols, rows int) (*Zone, error) {
	if cols < 2 || rows < 1 {
		return nil, fmt.Errorf("zone: need at least 2 columns and 1 row, got %dx%d", cols, rows)
	}
	towns := regions.WithRole(data.RoleTown)
	wild := regions.WithRole(data.RoleWilderness)
	if len(towns) == 0 || len(wild) == 0 {
		return nil, fmt.Errorf("zone: definitions need a town and a wilderness region")
	}
	leylines := regions.WithRole(data.RoleLeyline)
	events := regions.WithRole(data.RoleEvent)

	z := &Zone{adj: make(map[uint16]map[uint16]float64)}
	grid := make([][]uint16, cols)

	mid := float64(rows-1) / 2
	z.addNode(ZoneNode{Type: towns[rng.Intn(len(towns))].Type, Pos: geom.V(0, mid*zoneSpacing)})
	grid[0] = []uint16{0}

	for c := 1; c < cols; c++ {
		grid[c] = make([]uint16, rows)
		for r := 0; r < rows; r++ {
			pick := wild
			switch roll := rng.Float64(); {
			case roll < leylineShare && len(leylines) > 0:
				pick = leylines
			case roll < leylineShare+eventShare && len(events) > 0:
				pick = events
			}
			pos := geom.V(
				float64(c)*zoneSpacing+geom.RandRange(rng, -zoneJitter, zoneJitter),
				float64(r)*zoneSpacing+geom.RandRange(rng, -zoneJitter, zoneJitter),
			)
			grid[c][r] = z.addNode(ZoneNode{
				Type:   pick[rng.Intn(len(pick))].Type,
				Pos:    pos,
				Column: c,
				Row:    r,
			})
		}
	}

	// The town reaches every node of the first column.
	for _, id := range grid[1] {
		z.link(0, id)
	}

	for c := 1; c < cols-1; c++ {
		for r := 0; r < rows; r++ {
			if rng.Float64() < linkStraight {
				z.link(grid[c][r], grid[c+1][r])
			}
		}
		for r := 0; r < rows-1; r++ {
			if rng.Float64() >= linkDiagonal {
				continue
			}
			if rng.Intn(2) == 0 {
				z.link(grid[c][r], grid[c+1][r+1])
			} else {
				z.link(grid[c][r+1], grid[c+1][r])
			}
		}
		// Repair dead ends with the straight link, which never crosses.
		for r := 0; r < rows; r++ {
			if !z.hasLinkToColumn(grid[c][r], c+1) {
				z.link(grid[c][r], grid[c+1][r])
			}
			if !z.hasLinkToColumn(grid[c+1][r], c) {
				z.link(grid[c][r], grid[c+1][r])
			}
		}
	}
	return z, nil
}

func (z *Zone) addNode(n ZoneNode) uint16 {
	n.ID = uint16(len(z.Nodes))
	z.Nodes = append(z.Nodes, n)
	z.adj[n.ID] = make(map[uint16]float64)
	return n.ID
}

func (z *Zone) link(a, b uint16) {
	if _, ok := z.adj[a][b]; ok {
		return
	}
	d := z.Nodes[a].Pos.Dist(z.Nodes[b].Pos)
	z.adj[a][b] = d
	z.adj[b][a] = d
	z.Links = append(z.Links, Link{A: a, B: b, Distance: d})
}

func (z *Zone) hasLinkToColumn(id uint16, col int) bool {
	for other := range z.adj[id] {
		if z.Nodes[other].Column == col {
			return true
		}
	}
	return false
}

// Node returns the node with id, or nil.
func (z *Zone) Node(id uint16) *ZoneNode {
	if int(id) >= len(z.Nodes) {
		return nil
	}
	return &z.Nodes[id]
}

// Distance returns the link length between a and b, and whether they are
// adjacent.
func (z *Zone) Distance(a, b uint16) (float64, bool) {
	d, ok := z.adj[a][b]
	return d, ok
}

// Neighbors returns the ids adjacent to id in ascending order.
func (z *Zone) Neighbors(id uint16) []uint16 {
	out := make([]uint16, 0, len(z.adj[id]))
	for n := range z.adj[id] {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Message encodes the zone for the overmap.
func (z *Zone) Message() packet.SetZone {
	m := packet.SetZone{
		Nodes: make([]packet.ZoneNode, len(z.Nodes)),
		Links: make([]packet.ZoneLink, len(z.Links)),
	}
	for i, n := range z.Nodes {
		m.Nodes[i] = packet.ZoneNode{ID: n.ID, Type: n.Type, X: float32(n.Pos.X), Y: float32(n.Pos.Y)}
	}
	for i, l := range z.Links {
		m.Links[i] = packet.ZoneLink{A: l.A, B: l.B, Distance: float32(l.Distance)}
	}
	return m
}

// RegionSeed derives a region's RNG seed from the session seed and the node
// id, so revisiting a node in one session rebuilds the same layout.
func RegionSeed(session uint64, node uint16) int64 {
	var in [10]byte
	binary.LittleEndian.PutUint64(in[:8], session)
	binary.LittleEndian.PutUint16(in[8:], node)
	sum := blake2b.Sum256(in[:])
	return int64(binary.LittleEndian.Uint64(sum[:8]) & math.MaxInt64)
}
