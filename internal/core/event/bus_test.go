package event

import "testing"

type ping struct{ n int }

func TestEmitIsVisibleNextTick(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(p ping) { got = append(got, p.n) })

	Emit(b, ping{1})
	b.DispatchAll()
	if len(got) != 0 {
		t.Fatalf("event delivered in the same tick: %v", got)
	}
	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("got %v, want [1]", got)
	}
	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 {
		t.Fatalf("event delivered twice: %v", got)
	}
}

func TestUnsubscribeByHandle(t *testing.T) {
	b := NewBus()
	var a, c int
	ha := Subscribe(b, func(ping) { a++ })
	Subscribe(b, func(ping) { c++ })

	b.Unsubscribe(ha)
	b.Unsubscribe(ha) // second removal is a no-op

	Emit(b, ping{})
	if Pending[ping](b) != 1 {
		t.Fatalf("pending = %d, want 1", Pending[ping](b))
	}
	b.SwapBuffers()
	b.DispatchAll()
	if a != 0 || c != 1 {
		t.Fatalf("a=%d c=%d, want 0 and 1", a, c)
	}
}

type pong struct{ n int }

func TestDeliveryFollowsEmissionOrder(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(p ping) { got = append(got, p.n) })
	Subscribe(b, func(p pong) { got = append(got, -p.n) })

	Emit(b, ping{1})
	Emit(b, pong{2})
	Emit(b, ping{3})
	Emit(b, pong{4})
	b.SwapBuffers()
	b.DispatchAll()

	want := []int{1, -2, 3, -4}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestEmitDuringDispatchWaitsForNextTick(t *testing.T) {
	b := NewBus()
	var pongs int
	Subscribe(b, func(p ping) { Emit(b, pong{p.n}) })
	Subscribe(b, func(pong) { pongs++ })

	Emit(b, ping{1})
	b.SwapBuffers()
	b.DispatchAll()
	if pongs != 0 || Pending[pong](b) != 1 {
		t.Fatalf("pongs=%d pending=%d", pongs, Pending[pong](b))
	}
	b.SwapBuffers()
	b.DispatchAll()
	if pongs != 1 {
		t.Fatalf("pongs = %d, want 1", pongs)
	}
}
