package pathfind

import "github.com/RyanBerge/SphereDefender-sub000/internal/geom"

// Cache holds one Graph per footprint over a fixed obstacle set. Regions
// keep one Cache for their lifetime; obstacles never move inside a region.
type Cache struct {
	obstacles []geom.Rect
	graphs    map[geom.Vec2]*Graph
}

func NewCache(obstacles []geom.Rect) *Cache {
	return &Cache{
		obstacles: obstacles,
		graphs:    make(map[geom.Vec2]*Graph),
	}
}

// Graph returns the graph for footprint, building it on first use.
func (c *Cache) Graph(footprint geom.Vec2) *Graph {
	g, ok := c.graphs[footprint]
	if !ok {
		g = NewGraph(c.obstacles, footprint)
		c.graphs[footprint] = g
	}
	return g
}

// FindPath is shorthand for c.Graph(footprint).FindPath(start, finish).
func (c *Cache) FindPath(start, finish, footprint geom.Vec2) []geom.Vec2 {
	return c.Graph(footprint).FindPath(start, finish)
}
