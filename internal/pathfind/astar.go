package pathfind

import (
	"container/heap"

	"github.com/RyanBerge/SphereDefender-sub000/internal/geom"
)

// FindPath returns the waypoints from start to finish, excluding start and
// ending at finish. A clear line of sight yields [finish]; no route yields
// an empty path. A finish too close to an obstacle for the footprint is
// replaced by the nearest point the body can stand on, and the path ends
// there instead. Results are deterministic for identical inputs.
func (g *Graph) FindPath(start, finish geom.Vec2) []geom.Vec2 {
	finish, ok := g.reachableGoal(finish)
	if !ok {
		return nil
	}
	if g.Visible(start, finish) {
		return []geom.Vec2{finish}
	}

	// Dynamic nodes: static corners occupy [0, n), start is n, finish is n+1.
	n := len(g.nodes)
	startIdx, finishIdx := n, n+1
	pos := func(i int) geom.Vec2 {
		switch i {
		case startIdx:
			return start
		case finishIdx:
			return finish
		}
		return g.nodes[i]
	}

	startEdges := make([]edge, 0, 8)
	finishVisible := make([]float64, n)
	for i, c := range g.nodes {
		finishVisible[i] = -1
		if g.Visible(start, c) {
			startEdges = append(startEdges, edge{to: i, cost: start.Dist(c)})
		}
		if g.Visible(c, finish) {
			finishVisible[i] = c.Dist(finish)
		}
	}

	neighbors := func(i int, fn func(edge)) {
		if i == startIdx {
			for _, e := range startEdges {
				fn(e)
			}
			return
		}
		for _, e := range g.edges[i] {
			fn(e)
		}
		if finishVisible[i] >= 0 {
			fn(edge{to: finishIdx, cost: finishVisible[i]})
		}
	}

	gScore := make([]float64, n+2)
	parent := make([]int, n+2)
	closed := make([]bool, n+2)
	for i := range gScore {
		gScore[i] = -1
		parent[i] = -1
	}
	gScore[startIdx] = 0

	open := &nodeQueue{}
	heap.Init(open)
	heap.Push(open, &queued{node: startIdx, f: start.Dist(finish)})

	for open.Len() > 0 {
		cur := heap.Pop(open).(*queued)
		if closed[cur.node] {
			continue
		}
		if cur.node == finishIdx {
			return reconstruct(parent, finishIdx, startIdx, pos)
		}
		closed[cur.node] = true

		neighbors(cur.node, func(e edge) {
			if closed[e.to] {
				return
			}
			tentative := gScore[cur.node] + e.cost
			if gScore[e.to] >= 0 && tentative >= gScore[e.to] {
				return
			}
			gScore[e.to] = tentative
			parent[e.to] = cur.node
			heap.Push(open, &queued{node: e.to, g: tentative, f: tentative + pos(e.to).Dist(finish)})
		})
	}
	return nil
}

func reconstruct(parent []int, finishIdx, startIdx int, pos func(int) geom.Vec2) []geom.Vec2 {
	var rev []geom.Vec2
	for i := finishIdx; i != startIdx && i >= 0; i = parent[i] {
		rev = append(rev, pos(i))
	}
	path := make([]geom.Vec2, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return path
}

type queued struct {
	node  int
	g     float64
	f     float64
	index int
}

type nodeQueue []*queued

func (q nodeQueue) Len() int { return len(q) }

// Less breaks f ties on node index so equal-cost routes resolve the same way
// every run.
func (q nodeQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].node < q[j].node
}

func (q nodeQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *nodeQueue) Push(x any) {
	item := x.(*queued)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}
