package world

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// SanitizeName normalizes a client-supplied display name: NFC, full-width
// forms folded to their narrow equivalents, control characters dropped,
// surrounding space trimmed and the result cut to maxRunes.
func SanitizeName(raw string, maxRunes int) string {
	s := width.Fold.String(norm.NFC.String(raw))
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if maxRunes > 0 {
		if rs := []rune(s); len(rs) > maxRunes {
			s = strings.TrimSpace(string(rs[:maxRunes]))
		}
	}
	return s
}

// uniqueName returns name, or name with a numeric suffix when another
// participating player already uses it. Empty names become "Player <id>".
func (s *State) uniqueName(name string, self *Player) string {
	if name == "" {
		name = fmt.Sprintf("Player %d", self.ID)
	}
	taken := func(n string) bool {
		for _, p := range s.order {
			if p != self && p.Participating() && strings.EqualFold(p.Name, n) {
				return true
			}
		}
		return false
	}
	if !taken(name) {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s (%d)", name, i)
		if !taken(candidate) {
			return candidate
		}
	}
}
