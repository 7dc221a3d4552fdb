package geom

import (
	"math"
	"math/rand"
	"testing"
)

func TestAngleBetween(t *testing.T) {
	tests := []struct {
		a, b Vec2
		want float64
	}{
		{V(1, 0), V(1, 0), 0},
		{V(1, 0), V(0, 1), math.Pi / 2},
		{V(1, 0), V(-1, 0), math.Pi},
		{V(0, 0), V(1, 0), 0},
	}
	for _, tt := range tests {
		if got := AngleBetween(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AngleBetween(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	v := V(30, 40).Truncate(10)
	if math.Abs(v.Len()-10) > 1e-9 {
		t.Fatalf("len = %v, want 10", v.Len())
	}
	if !v.Near(V(6, 8), 1e-9) {
		t.Fatalf("direction changed: %v", v)
	}
	if got := V(1, 1).Truncate(10); !got.Equal(V(1, 1)) {
		t.Fatalf("short vector changed: %v", got)
	}
}

func TestRectIntersectsEdgeSharing(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	if a.Intersects(Rect{X: 10, Y: 0, W: 5, H: 5}) {
		t.Error("edge-sharing rectangles should not intersect")
	}
	if !a.Intersects(Rect{X: 9, Y: 9, W: 5, H: 5}) {
		t.Error("overlapping rectangles should intersect")
	}
}

func TestSegmentIntersectsRect(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 10, H: 10}
	tests := []struct {
		name string
		a, b Vec2
		want bool
	}{
		{"through", V(0, 15), V(30, 15), true},
		{"miss", V(0, 0), V(30, 0), false},
		{"along top edge", V(0, 10), V(30, 10), false},
		{"through corner", V(0, 0), V(10, 10), false},
		{"diagonal", V(0, 0), V(30, 30), true},
		{"ends inside", V(0, 15), V(15, 15), true},
		{"stops short", V(0, 15), V(9, 15), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentIntersectsRect(tt.a, tt.b, r); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSlideStep(t *testing.T) {
	wall := []Rect{{X: 20, Y: -100, W: 10, H: 200}}
	size := V(10, 10)
	pos := V(14, 0)

	got := SlideStep(pos, size, V(5, 5), wall)
	if !got.Equal(V(14, 5)) {
		t.Fatalf("slide along wall = %v, want (14, 5)", got)
	}
	got = SlideStep(pos, size, V(-5, 0), wall)
	if !got.Equal(V(9, 0)) {
		t.Fatalf("free move = %v, want (9, 0)", got)
	}
	got = SlideStep(pos, size, V(5, 0), wall)
	if !got.Equal(pos) {
		t.Fatalf("blocked move = %v, want unchanged", got)
	}
}

func TestRandomInConeStaysInSector(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	center := V(100, 100)
	halfArc := DegToRad(30)
	for i := 0; i < 500; i++ {
		p := RandomInCone(rng, center, 0, halfArc, 50, 80)
		d := p.Sub(center)
		if l := d.Len(); l < 50-1e-9 || l > 80+1e-9 {
			t.Fatalf("radius %v outside [50, 80]", l)
		}
		if a := math.Abs(d.Angle()); a > halfArc+1e-9 {
			t.Fatalf("angle %v outside ±%v", a, halfArc)
		}
	}
}

func TestRandomInRect(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	r := Rect{X: -5, Y: 3, W: 4, H: 2}
	for i := 0; i < 200; i++ {
		if p := RandomInRect(rng, r); !r.Contains(p) {
			t.Fatalf("%v not in %v", p, r)
		}
	}
}
