package net

import (
	"errors"
	"io"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"
	"go.uber.org/zap"
)

// chunkyWriter accepts at most max bytes per call and reports the rest as
// a short write.
type chunkyWriter struct {
	max   int
	got   []byte
	calls int
}

func (w *chunkyWriter) Write(p []byte) (int, error) {
	w.calls++
	n := len(p)
	if n > w.max {
		n = w.max
	}
	w.got = append(w.got, p[:n]...)
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

type stuckWriter struct{}

func (stuckWriter) Write([]byte) (int, error) { return 0, nil }

func TestWriteFullRetriesPartialWrites(t *testing.T) {
	msg := packet.PlayersInLobby{Requester: 1, Players: []packet.PlayerInfo{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}}}.Encode()
	w := &chunkyWriter{max: 3}
	if err := WriteFull(w, msg); err != nil {
		t.Fatalf("WriteFull: %v", err)
	}
	if !reflect.DeepEqual(w.got, msg) {
		t.Fatalf("written bytes differ")
	}
	if w.calls < 2 {
		t.Fatalf("expected several write calls, got %d", w.calls)
	}
}

func TestWriteFullGivesUpWithoutProgress(t *testing.T) {
	err := WriteFull(stuckWriter{}, []byte{1, 2, 3})
	if !errors.Is(err, io.ErrNoProgress) {
		t.Fatalf("err = %v, want ErrNoProgress", err)
	}
}

func TestAssemblerSplitMatchesSingleShot(t *testing.T) {
	msgs := []packet.ClientMessage{
		packet.InitLobby{Name: "Alice"},
		packet.PlayerStateChange{Movement: packet.Movement{Up: true, Right: true}},
		packet.StartAction{Attack: true, Angle: 1.5},
		packet.CastVote{Choice: 2, Confirmed: true},
	}
	var stream []byte
	for _, m := range msgs {
		stream = append(stream, m.Encode()...)
	}
	now := time.Unix(100, 0)

	whole := NewAssembler(packet.DecodeClientMessage, time.Second)
	whole.Feed(stream, now)
	var single []packet.ClientMessage
	for {
		m, ok, err := whole.Next(now)
		if err != nil {
			t.Fatalf("single-shot: %v", err)
		}
		if !ok {
			break
		}
		single = append(single, m)
	}

	split := NewAssembler(packet.DecodeClientMessage, time.Second)
	var pieces []packet.ClientMessage
	for i := 0; i < len(stream); i++ {
		split.Feed(stream[i:i+1], now)
		m, ok, err := split.Next(now)
		if err != nil {
			t.Fatalf("byte %d: %v", i, err)
		}
		if ok {
			pieces = append(pieces, m)
		}
	}
	if !reflect.DeepEqual(single, msgs) || !reflect.DeepEqual(pieces, msgs) {
		t.Fatalf("single=%+v split=%+v want %+v", single, pieces, msgs)
	}
	if split.Buffered() != 0 {
		t.Fatalf("%d bytes left over", split.Buffered())
	}
}

func TestAssemblerPayloadTimeout(t *testing.T) {
	a := NewAssembler(packet.DecodeClientMessage, 300*time.Millisecond)
	start := time.Unix(0, 0)
	buf := packet.InitLobby{Name: "Alice"}.Encode()
	a.Feed(buf[:3], start)

	if _, ok, err := a.Next(start.Add(299 * time.Millisecond)); ok || err != nil {
		t.Fatalf("before deadline: ok=%v err=%v", ok, err)
	}
	if _, _, err := a.Next(start.Add(301 * time.Millisecond)); !errors.Is(err, ErrReadTimeout) {
		t.Fatalf("after deadline: err = %v, want ErrReadTimeout", err)
	}
}

func TestAssemblerEmptyIsNotAnError(t *testing.T) {
	a := NewAssembler(packet.DecodeClientMessage, time.Millisecond)
	if _, ok, err := a.Next(time.Unix(1000, 0)); ok || err != nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
}

func TestAssemblerMalformed(t *testing.T) {
	a := NewAssembler(packet.DecodeClientMessage, time.Second)
	a.Feed([]byte{byte(packet.C_Console), 9}, time.Unix(0, 0))
	if _, _, err := a.Next(time.Unix(0, 0)); !errors.Is(err, packet.ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

// ── Session over a pipe ─────────────────────────────────────────────

func pollUntil(t *testing.T, s *Session, want func(packet.ClientMessage, error) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		m, ok, err := s.Poll(time.Now())
		if ok || err != nil {
			if want(m, err) {
				return
			}
			t.Fatalf("unexpected poll result: %+v, %v", m, err)
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("timed out polling session")
}

func TestSessionReassemblesAndDetectsClose(t *testing.T) {
	server, client := net.Pipe()
	sess := NewSession(server, 1, PeerOptions{ReadTimeout: time.Second}, zap.NewNop())
	sess.Start()
	defer sess.Close()

	buf := packet.JoinLobby{Name: "Bob"}.Encode()
	go func() {
		client.Write(buf[:2])
		time.Sleep(10 * time.Millisecond)
		client.Write(buf[2:])
	}()
	pollUntil(t, sess, func(m packet.ClientMessage, err error) bool {
		j, ok := m.(packet.JoinLobby)
		return err == nil && ok && j.Name == "Bob"
	})

	client.Close()
	pollUntil(t, sess, func(_ packet.ClientMessage, err error) bool {
		return errors.Is(err, ErrDisconnected)
	})
}

func TestSessionSendFlush(t *testing.T) {
	server, client := net.Pipe()
	sess := NewSession(server, 1, PeerOptions{}, zap.NewNop())
	sess.Start()
	defer sess.Close()

	SendMessage(sess, packet.PlayerId{ID: 7})
	SendMessage(sess, packet.PlayerLeft{ID: 3})
	sess.FlushOutput()

	want := append(packet.PlayerId{ID: 7}.Encode(), packet.PlayerLeft{ID: 3}.Encode()...)
	got := make([]byte, len(want))
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := io.ReadFull(client, got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSessionRateLimit(t *testing.T) {
	server, client := net.Pipe()
	sess := NewSession(server, 1, PeerOptions{RateLimit: 1, RateBurst: 1}, zap.NewNop())
	sess.Start()
	defer sess.Close()

	go func() {
		client.Write(append(packet.UseItem{}.Encode(), packet.UseItem{}.Encode()...))
	}()
	pollUntil(t, sess, func(m packet.ClientMessage, err error) bool {
		_, ok := m.(packet.UseItem)
		return err == nil && ok
	})
	pollUntil(t, sess, func(_ packet.ClientMessage, err error) bool {
		return errors.Is(err, ErrRateLimited)
	})
}
