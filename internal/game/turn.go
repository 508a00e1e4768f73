package game

import (
	"fmt"

	"github.com/coupfree/coup-server-go/internal/game/characters"
)

// AdvanceTurn clears all per-turn transient fields, increments the turn
// counter and moves the current-player index past eliminated seats. It is a
// no-op once the game is over.
func (s *State) AdvanceTurn() *State {
	if s.Phase == PhaseGameOver {
		return s
	}
	next := s.clone()
	next.advanceTurn()
	return next
}

func (s *State) advanceTurn() {
	if s.Phase == PhaseGameOver {
		return
	}
	s.Pending = nil
	s.Block = nil
	s.Loss = nil
	s.Responded = make(map[string]bool)
	s.Drawn = nil
	s.RedirectChain = nil
	s.RedirectSourceID = ""

	s.Turn++
	for i := 0; i < len(s.Players); i++ {
		s.CurrentPlayer = (s.CurrentPlayer + 1) % len(s.Players)
		if !s.Players[s.CurrentPlayer].Eliminated() {
			break
		}
	}
	s.Phase = PhaseAwaitingAction
}

// checkGameOver flips the state terminal when a single player remains.
func (s *State) checkGameOver() bool {
	if s.Phase == PhaseGameOver {
		return true
	}
	var last *Player
	alive := 0
	for i := range s.Players {
		if !s.Players[i].Eliminated() {
			alive++
			last = &s.Players[i]
		}
	}
	if alive != 1 {
		return false
	}
	s.Phase = PhaseGameOver
	s.WinnerID = last.ID
	s.Pending = nil
	s.Block = nil
	s.Loss = nil
	s.Responded = make(map[string]bool)
	s.Drawn = nil
	s.RedirectChain = nil
	s.RedirectSourceID = ""
	s.logf("%s wins the match", last.Name)
	return true
}

// eligibleResponders lists the players whose pass is required to close the
// current window.
func (s *State) eligibleResponders() []string {
	var exclude string
	switch s.Phase {
	case PhaseAwaitingChallengeOnAction:
		exclude = s.Pending.SourceID
	case PhaseAwaitingChallengeOnBlock:
		exclude = s.Block.BlockerID
	case PhaseAwaitingCoupRedirectChallenge:
		exclude = s.redirector()
	case PhaseAwaitingBlock:
		// For target-restricted blocks the target alone decides; foreign
		// aid stays open until every alive non-actor has waived the block.
		if characters.TargetRestrictedBlock(s.Pending.Type) {
			if target, err := s.player(s.Pending.TargetID); err == nil && !target.Eliminated() {
				return []string{s.Pending.TargetID}
			}
			return nil
		}
		exclude = s.Pending.SourceID
	default:
		return nil
	}

	var out []string
	for i := range s.Players {
		p := &s.Players[i]
		if p.ID == exclude || p.Eliminated() {
			continue
		}
		out = append(out, p.ID)
	}
	return out
}

// recordPass validates the caller against the open window and marks their
// response. It reports whether every eligible player has now responded.
func (s *State) recordPass(next *State, playerID string) (bool, error) {
	if _, err := s.requireAlive(playerID); err != nil {
		return false, err
	}
	eligible := false
	for _, id := range s.eligibleResponders() {
		if id == playerID {
			eligible = true
			break
		}
	}
	if !eligible {
		return false, fmt.Errorf("%w: %s has no say in the %s window", ErrIllegalTransition, playerID, s.Phase)
	}
	if s.Responded[playerID] {
		return false, fmt.Errorf("%w: %s already responded", ErrIllegalTransition, playerID)
	}

	next.Responded[playerID] = true
	for _, id := range next.eligibleResponders() {
		if !next.Responded[id] {
			return false, nil
		}
	}
	return true, nil
}
