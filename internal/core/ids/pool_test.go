package ids

import "testing"

func TestPoolStartsAtOneAndReuses(t *testing.T) {
	p := NewPool()
	a, _ := p.Acquire()
	b, _ := p.Acquire()
	if a != 1 || b != 2 {
		t.Fatalf("got %d, %d; want 1, 2", a, b)
	}
	p.Release(a)
	p.Release(a)
	if p.Len() != 1 {
		t.Fatalf("len = %d, want 1", p.Len())
	}
	c, _ := p.Acquire()
	if c != a {
		t.Fatalf("released id not reused: got %d", c)
	}
	p.Reset()
	if d, _ := p.Acquire(); d != 1 {
		t.Fatalf("after reset got %d, want 1", d)
	}
}

func TestPoolExhaustion(t *testing.T) {
	p := NewPool()
	for i := 1; i < 0xFFFF; i++ {
		if _, ok := p.Acquire(); !ok {
			t.Fatalf("exhausted early at %d", i)
		}
	}
	if _, ok := p.Acquire(); ok {
		t.Fatal("expected exhaustion")
	}
}
