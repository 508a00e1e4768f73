package game

import (
	"fmt"

	"github.com/coupfree/coup-server-go/internal/game/characters"
)

// PlayerByID returns a copy of the named player.
func (s *State) PlayerByID(id string) (Player, error) {
	p, err := s.player(id)
	if err != nil {
		return Player{}, err
	}
	out := *p
	out.Cards = append([]InfluenceCard(nil), p.Cards...)
	return out, nil
}

// AlivePlayers returns copies of every non-eliminated player in seat order.
func (s *State) AlivePlayers() []Player {
	out := make([]Player, 0, len(s.Players))
	for i := range s.Players {
		if s.Players[i].Eliminated() {
			continue
		}
		p := s.Players[i]
		p.Cards = append([]InfluenceCard(nil), s.Players[i].Cards...)
		out = append(out, p)
	}
	return out
}

func (s *State) aliveCount() int {
	n := 0
	for i := range s.Players {
		if !s.Players[i].Eliminated() {
			n++
		}
	}
	return n
}

// AliveInfluence returns the unrevealed card count of the named player.
func (s *State) AliveInfluence(id string) (int, error) {
	p, err := s.player(id)
	if err != nil {
		return 0, err
	}
	return p.AliveInfluence(), nil
}

// CharacterEnabled reports whether ch is part of this match's character set.
func (s *State) CharacterEnabled(ch characters.Character) bool {
	for _, e := range s.Config.Enabled {
		if e == ch {
			return true
		}
	}
	return false
}

// BlockersFor returns the enabled characters able to block action type a.
func (s *State) BlockersFor(a characters.ActionType) []characters.Character {
	var out []characters.Character
	for _, ch := range characters.BlockersFor(a) {
		if s.CharacterEnabled(ch) {
			out = append(out, ch)
		}
	}
	return out
}

// AvailableActions returns the action types the current player may declare,
// honoring affordability and the forced-Coup rule at ten coins. Character
// actions are offered for every enabled character whether or not the player
// holds it; bluffing is always on the table.
func (s *State) AvailableActions() []characters.ActionType {
	if s.Phase != PhaseAwaitingAction {
		return nil
	}
	p := &s.Players[s.CurrentPlayer]
	if p.Coins >= forcedCoupThreshold {
		return []characters.ActionType{characters.Coup}
	}

	var out []characters.ActionType
	for _, a := range characters.GeneralActions() {
		if p.Coins >= characters.Cost(a) {
			out = append(out, a)
		}
	}
	for _, ch := range s.Config.Enabled {
		a, ok := characters.PrincipalAction(ch)
		if !ok {
			continue
		}
		if p.Coins >= characters.Cost(a) {
			out = append(out, a)
		}
	}
	return out
}

// RedirectClaimCount returns how many times the named player has claimed the
// redirect ability during the current Coup: their occurrences in the chain
// before its tail. The chain is seeded with the Coup's original target, so
// the count covers the hop they made as the initial target too.
func (s *State) RedirectClaimCount(id string) int {
	if len(s.RedirectChain) == 0 {
		return 0
	}
	n := 0
	for _, entry := range s.RedirectChain[:len(s.RedirectChain)-1] {
		if entry == id {
			n++
		}
	}
	return n
}

// redirectTail is the live target of a Coup under redirection.
func (s *State) redirectTail() string {
	return s.RedirectChain[len(s.RedirectChain)-1]
}

// redirector is the player whose redirect claim is currently open to
// challenge: the entry before the chain's tail.
func (s *State) redirector() string {
	return s.RedirectChain[len(s.RedirectChain)-2]
}

// requireAlive resolves id and rejects eliminated players.
func (s *State) requireAlive(id string) (*Player, error) {
	p, err := s.player(id)
	if err != nil {
		return nil, err
	}
	if p.Eliminated() {
		return nil, fmt.Errorf("%w: %s is eliminated", ErrIllegalTransition, id)
	}
	return p, nil
}
