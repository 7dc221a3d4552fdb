package pathfind

import (
	"github.com/RyanBerge/SphereDefender-sub000/internal/geom"
)

// cornerInset pushes corner nodes just outside the expanded obstacle so a
// body standing on a node never overlaps the obstacle itself.
const cornerInset = 0.5

// Graph is the static part of a visibility graph: the footprint-expanded
// obstacle corners and the edges between them. Start and goal nodes are
// inserted per query, so one Graph serves every search over the same
// obstacle set and footprint.
type Graph struct {
	footprint geom.Vec2
	obstacles []geom.Rect
	expanded  []geom.Rect
	nodes     []geom.Vec2
	edges     [][]edge
}

type edge struct {
	to   int
	cost float64
}

// NewGraph builds the static visibility graph for obstacles as seen by a
// body of the given footprint (width, height).
func NewGraph(obstacles []geom.Rect, footprint geom.Vec2) *Graph {
	g := &Graph{
		footprint: footprint,
		obstacles: obstacles,
		expanded:  make([]geom.Rect, len(obstacles)),
	}
	hx, hy := footprint.X/2, footprint.Y/2
	for i, o := range obstacles {
		g.expanded[i] = o.Expand(hx, hy)
	}

	for _, r := range g.expanded {
		for _, c := range r.Expand(cornerInset, cornerInset).Corners() {
			if g.blocked(c) {
				continue
			}
			g.nodes = append(g.nodes, c)
		}
	}

	g.edges = make([][]edge, len(g.nodes))
	for i := range g.nodes {
		for j := i + 1; j < len(g.nodes); j++ {
			if !g.Visible(g.nodes[i], g.nodes[j]) {
				continue
			}
			d := g.nodes[i].Dist(g.nodes[j])
			g.edges[i] = append(g.edges[i], edge{to: j, cost: d})
			g.edges[j] = append(g.edges[j], edge{to: i, cost: d})
		}
	}
	return g
}

// Footprint returns the body size the graph was built for.
func (g *Graph) Footprint() geom.Vec2 { return g.footprint }

// NodeCount returns the number of static corner nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Visible reports whether a body of the graph's footprint can travel the
// straight corridor from a to b without crossing any obstacle.
func (g *Graph) Visible(a, b geom.Vec2) bool {
	for _, r := range g.expanded {
		if geom.SegmentIntersectsRect(a, b, r) {
			return false
		}
	}
	return true
}

// blocked reports whether p lies strictly inside an expanded obstacle.
func (g *Graph) blocked(p geom.Vec2) bool {
	for _, r := range g.expanded {
		if r.ContainsStrict(p) {
			return true
		}
	}
	return false
}

// reachableGoal moves a goal that sits in the footprint margin of an obstacle
// onto the nearest point of that obstacle's corner ring. It reports false
// when p is inside an obstacle proper or the moved point is still blocked.
func (g *Graph) reachableGoal(p geom.Vec2) (geom.Vec2, bool) {
	for i, r := range g.expanded {
		if !r.ContainsStrict(p) {
			continue
		}
		if g.obstacles[i].Contains(p) {
			return p, false
		}
		ring := r.Expand(cornerInset, cornerInset)
		q := p
		best := p.X - ring.Left()
		q.X = ring.Left()
		if d := ring.Right() - p.X; d < best {
			best, q = d, geom.V(ring.Right(), p.Y)
		}
		if d := p.Y - ring.Top(); d < best {
			best, q = d, geom.V(p.X, ring.Top())
		}
		if d := ring.Bottom() - p.Y; d < best {
			q = geom.V(p.X, ring.Bottom())
		}
		p = q
		break
	}
	return p, !g.blocked(p)
}
