package packet

import "fmt"

// ClientMessage is a decoded client→server message.
type ClientMessage interface {
	ClientOpcode() ClientOpcode
	Encode() []byte
}

// ── Movement / action flags ─────────────────────────────────────────

// Movement is the decoded form of the movement bit field.
type Movement struct {
	Up, Down, Left, Right bool
}

const (
	moveUp    uint8 = 1 << 0
	moveDown  uint8 = 1 << 1
	moveLeft  uint8 = 1 << 2
	moveRight uint8 = 1 << 3
	moveMask        = moveUp | moveDown | moveLeft | moveRight
)

// Flags packs m into its wire bit field.
func (m Movement) Flags() uint8 {
	var f uint8
	if m.Up {
		f |= moveUp
	}
	if m.Down {
		f |= moveDown
	}
	if m.Left {
		f |= moveLeft
	}
	if m.Right {
		f |= moveRight
	}
	return f
}

// Direction returns the unnormalized input axis, +Y down. Opposite keys cancel.
func (m Movement) Direction() (dx, dy float64) {
	if m.Up {
		dy--
	}
	if m.Down {
		dy++
	}
	if m.Left {
		dx--
	}
	if m.Right {
		dx++
	}
	return dx, dy
}

func movementFromFlags(f uint8) Movement {
	return Movement{
		Up:    f&moveUp != 0,
		Down:  f&moveDown != 0,
		Left:  f&moveLeft != 0,
		Right: f&moveRight != 0,
	}
}

const (
	actionAttack  uint8 = 1 << 0
	actionAbility uint8 = 1 << 1
	actionMask          = actionAttack | actionAbility
)

// ── Messages ────────────────────────────────────────────────────────

type InitLobby struct{ Name string }

func (InitLobby) ClientOpcode() ClientOpcode { return C_InitLobby }
func (m InitLobby) Encode() []byte {
	w := NewWriterWithOpcode(byte(C_InitLobby))
	w.WriteS(m.Name)
	return w.Bytes()
}

type JoinLobby struct{ Name string }

func (JoinLobby) ClientOpcode() ClientOpcode { return C_JoinLobby }
func (m JoinLobby) Encode() []byte {
	w := NewWriterWithOpcode(byte(C_JoinLobby))
	w.WriteS(m.Name)
	return w.Bytes()
}

// ChangePlayerProperty carries the lobby-editable properties of a player.
type ChangePlayerProperty struct {
	Name   string
	Weapon uint8
}

func (ChangePlayerProperty) ClientOpcode() ClientOpcode { return C_ChangePlayerProperty }
func (m ChangePlayerProperty) Encode() []byte {
	w := NewWriterWithOpcode(byte(C_ChangePlayerProperty))
	w.WriteS(m.Name)
	w.WriteC(m.Weapon)
	return w.Bytes()
}

type StartGame struct{}

func (StartGame) ClientOpcode() ClientOpcode { return C_StartGame }
func (StartGame) Encode() []byte           { return []byte{byte(C_StartGame)} }

type LoadingComplete struct{}

func (LoadingComplete) ClientOpcode() ClientOpcode { return C_LoadingComplete }
func (LoadingComplete) Encode() []byte           { return []byte{byte(C_LoadingComplete)} }

type LeaveGame struct{}

func (LeaveGame) ClientOpcode() ClientOpcode { return C_LeaveGame }
func (LeaveGame) Encode() []byte           { return []byte{byte(C_LeaveGame)} }

type PlayerStateChange struct{ Movement Movement }

func (PlayerStateChange) ClientOpcode() ClientOpcode { return C_PlayerStateChange }
func (m PlayerStateChange) Encode() []byte {
	w := NewWriterWithOpcode(byte(C_PlayerStateChange))
	w.WriteC(m.Movement.Flags())
	return w.Bytes()
}

// StartAction begins an attack and/or ability toward Angle (radians).
// Angle is only on the wire when at least one flag is set.
type StartAction struct {
	Attack  bool
	Ability bool
	Angle   float32
}

func (StartAction) ClientOpcode() ClientOpcode { return C_StartAction }
func (m StartAction) Encode() []byte {
	w := NewWriterWithOpcode(byte(C_StartAction))
	var f uint8
	if m.Attack {
		f |= actionAttack
	}
	if m.Ability {
		f |= actionAbility
	}
	w.WriteC(f)
	if f != 0 {
		w.WriteF(m.Angle)
	}
	return w.Bytes()
}

type UseItem struct{}

func (UseItem) ClientOpcode() ClientOpcode { return C_UseItem }
func (UseItem) Encode() []byte           { return []byte{byte(C_UseItem)} }

type SwapItem struct{ Slot uint8 }

func (SwapItem) ClientOpcode() ClientOpcode { return C_SwapItem }
func (m SwapItem) Encode() []byte {
	return []byte{byte(C_SwapItem), m.Slot}
}

// NoChoice withdraws a vote.
const NoChoice uint16 = 0xFFFF

type CastVote struct {
	Choice    uint16
	Confirmed bool
}

func (CastVote) ClientOpcode() ClientOpcode { return C_CastVote }
func (m CastVote) Encode() []byte {
	w := NewWriterWithOpcode(byte(C_CastVote))
	w.WriteH(m.Choice)
	w.WriteBool(m.Confirmed)
	return w.Bytes()
}

type Console struct{ Active bool }

func (Console) ClientOpcode() ClientOpcode { return C_Console }
func (m Console) Encode() []byte {
	w := NewWriterWithOpcode(byte(C_Console))
	w.WriteBool(m.Active)
	return w.Bytes()
}

// ── Decoding ────────────────────────────────────────────────────────

var clientDecoders = map[ClientOpcode]func(r *Reader) ClientMessage{
	C_InitLobby: func(r *Reader) ClientMessage { return InitLobby{Name: r.ReadS()} },
	C_JoinLobby: func(r *Reader) ClientMessage { return JoinLobby{Name: r.ReadS()} },
	C_ChangePlayerProperty: func(r *Reader) ClientMessage {
		return ChangePlayerProperty{Name: r.ReadS(), Weapon: r.ReadC()}
	},
	C_StartGame:       func(*Reader) ClientMessage { return StartGame{} },
	C_LoadingComplete: func(*Reader) ClientMessage { return LoadingComplete{} },
	C_LeaveGame:       func(*Reader) ClientMessage { return LeaveGame{} },
	C_PlayerStateChange: func(r *Reader) ClientMessage {
		f := r.ReadC()
		if f&^moveMask != 0 {
			r.fail()
		}
		return PlayerStateChange{Movement: movementFromFlags(f)}
	},
	C_StartAction: func(r *Reader) ClientMessage {
		f := r.ReadC()
		if f&^actionMask != 0 {
			r.fail()
		}
		m := StartAction{Attack: f&actionAttack != 0, Ability: f&actionAbility != 0}
		if f != 0 {
			m.Angle = r.ReadF()
		}
		return m
	},
	C_UseItem:  func(*Reader) ClientMessage { return UseItem{} },
	C_SwapItem: func(r *Reader) ClientMessage { return SwapItem{Slot: r.ReadC()} },
	C_CastVote: func(r *Reader) ClientMessage {
		return CastVote{Choice: r.ReadH(), Confirmed: r.ReadBool()}
	},
	C_Console: func(r *Reader) ClientMessage { return Console{Active: r.ReadBool()} },
}

// DecodeClientMessage decodes one message from the front of buf and returns
// it with the number of bytes it occupied. ErrShortRead means buf holds only
// a prefix of the message.
func DecodeClientMessage(buf []byte) (ClientMessage, int, error) {
	if len(buf) == 0 {
		return nil, 0, ErrShortRead
	}
	op := ClientOpcode(buf[0])
	dec, ok := clientDecoders[op]
	if !ok {
		return nil, 0, fmt.Errorf("%w: client %d", ErrUnknownOpcode, buf[0])
	}
	r := NewReader(buf)
	msg := dec(r)
	if err := r.Err(); err != nil {
		if err == ErrShortRead {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("decode %s: %w", op, err)
	}
	return msg, r.Offset(), nil
}
