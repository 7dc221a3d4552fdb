package world

import "github.com/RyanBerge/SphereDefender-sub000/internal/net/packet"

// CastVote records p's ballot and returns the relay message for everyone.
func (s *State) CastVote(p *Player, choice uint16, confirmed bool) packet.VoteCast {
	p.Vote = VoteState{Voted: true, Confirmed: confirmed, Choice: choice}
	return packet.VoteCast{Player: p.ID, Choice: choice, Confirmed: confirmed}
}

// ResolveVote returns the winning choice once every voter has voted and
// confirmed. The winner must hold strictly more votes than any other
// choice; a tie at the top resolves nothing.
func ResolveVote(voters []*Player) (uint16, bool) {
	if len(voters) == 0 {
		return 0, false
	}
	counts := make(map[uint16]int, len(voters))
	for _, p := range voters {
		if !p.Vote.Voted || !p.Vote.Confirmed {
			return 0, false
		}
		counts[p.Vote.Choice]++
	}
	var winner uint16
	best, tied := 0, false
	for choice, n := range counts {
		switch {
		case n > best:
			winner, best, tied = choice, n, false
		case n == best:
			tied = true
		}
	}
	if tied {
		return 0, false
	}
	return winner, true
}

// ResetVotes clears every ballot.
func (s *State) ResetVotes() {
	for _, p := range s.order {
		p.ResetVote()
	}
}

// PendingVote resolves the vote among participants, if a GUI that votes is
// open. The second result is false when nothing resolved.
func (s *State) PendingVote() (uint16, bool) {
	if s.Gui == packet.GuiNone {
		return 0, false
	}
	return ResolveVote(s.Participants())
}
