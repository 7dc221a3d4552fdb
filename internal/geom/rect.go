package geom

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// RectAround builds a rectangle of the given size centered on c.
func RectAround(c Vec2, size Vec2) Rect {
	return Rect{X: c.X - size.X/2, Y: c.Y - size.Y/2, W: size.X, H: size.Y}
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// IsZero reports whether r has no area.
func (r Rect) IsZero() bool { return r.W == 0 && r.H == 0 }

func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.W/2, r.Y + r.H/2}
}

// Contains reports whether p lies inside r or on its edge.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// ContainsStrict reports whether p lies in the open interior of r.
func (r Rect) ContainsStrict(p Vec2) bool {
	return p.X > r.X && p.X < r.Right() && p.Y > r.Y && p.Y < r.Bottom()
}

// Intersects reports whether the interiors of r and o overlap.
// Rectangles that only share an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Expand grows r by dx on the left and right and dy on the top and bottom.
func (r Rect) Expand(dx, dy float64) Rect {
	return Rect{X: r.X - dx, Y: r.Y - dy, W: r.W + 2*dx, H: r.H + 2*dy}
}

// Pad grows r by n on every side.
func (r Rect) Pad(n float64) Rect { return r.Expand(n, n) }

func (r Rect) Translate(d Vec2) Rect {
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, W: r.W, H: r.H}
}

// Corners returns the corners in clockwise order starting top-left.
func (r Rect) Corners() [4]Vec2 {
	return [4]Vec2{
		{r.X, r.Y},
		{r.Right(), r.Y},
		{r.Right(), r.Bottom()},
		{r.X, r.Bottom()},
	}
}

// SegmentIntersectsRect reports whether the segment a→b passes through the
// open interior of r. Segments grazing an edge or a corner do not count.
func SegmentIntersectsRect(a, b Vec2, r Rect) bool {
	t0, t1 := 0.0, 1.0
	d := b.Sub(a)
	clip := func(p, q float64) bool {
		if p == 0 {
			// Parallel to this edge: inside only when strictly within the slab.
			return q > 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return false
			}
			if t < t1 {
				t1 = t
			}
		}
		return true
	}
	if !clip(-d.X, a.X-r.X) || !clip(d.X, r.Right()-a.X) ||
		!clip(-d.Y, a.Y-r.Y) || !clip(d.Y, r.Bottom()-a.Y) {
		return false
	}
	if t1-t0 <= 1e-9 {
		return false
	}
	// Midpoint of the clipped span must be strictly inside.
	mid := a.Add(d.Scale((t0 + t1) / 2))
	return r.ContainsStrict(mid)
}

// CollidesAny reports whether r overlaps any of the obstacles.
func CollidesAny(r Rect, obstacles []Rect) bool {
	for _, o := range obstacles {
		if r.Intersects(o) {
			return true
		}
	}
	return false
}

// FirstCollision returns the first obstacle overlapping r.
func FirstCollision(r Rect, obstacles []Rect) (Rect, bool) {
	for _, o := range obstacles {
		if r.Intersects(o) {
			return o, true
		}
	}
	return Rect{}, false
}

// SlideStep moves a body of the given size from pos by step, falling back
// to horizontal-only then vertical-only movement when the full step would
// overlap an obstacle. It returns the resulting position.
func SlideStep(pos, size, step Vec2, obstacles []Rect) Vec2 {
	if step.IsZero() {
		return pos
	}
	if next := pos.Add(step); !CollidesAny(RectAround(next, size), obstacles) {
		return next
	}
	if step.X != 0 {
		if next := pos.Add(Vec2{step.X, 0}); !CollidesAny(RectAround(next, size), obstacles) {
			return next
		}
	}
	if step.Y != 0 {
		if next := pos.Add(Vec2{0, step.Y}); !CollidesAny(RectAround(next, size), obstacles) {
			return next
		}
	}
	return pos
}
