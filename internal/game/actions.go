package game

import (
	"fmt"

	"github.com/coupfree/coup-server-go/internal/game/characters"
)

// DeclareAction opens the current player's turn action. The action's coin
// cost is deducted here, immediately and irrevocably: neither a failed bluff
// by the actor nor a failed challenge against them ever refunds it. That is
// the bluffing economics of the game, not an accounting bug.
func (s *State) DeclareAction(playerID string, action characters.ActionType, targetID string) (*State, error) {
	if s.Phase != PhaseAwaitingAction {
		return nil, fmt.Errorf("%w: cannot declare an action during %s", ErrIllegalTransition, s.Phase)
	}
	actor, err := s.player(playerID)
	if err != nil {
		return nil, err
	}
	if playerID != s.currentPlayerID() {
		return nil, fmt.Errorf("%w: it is not %s's turn", ErrIllegalTransition, playerID)
	}

	spec, ok := characters.SpecFor(action)
	if !ok {
		return nil, fmt.Errorf("%w: unknown action %d", ErrIllegalTransition, int(action))
	}
	if claim, isClaim := characters.Claim(action); isClaim && !s.CharacterEnabled(claim) {
		return nil, fmt.Errorf("%w: %s is not in this match's character set", ErrIllegalTransition, claim)
	}
	if actor.Coins >= forcedCoupThreshold && action != characters.Coup {
		return nil, fmt.Errorf("%w: %s holds %d coins and must coup", ErrIllegalTransition, playerID, actor.Coins)
	}
	if actor.Coins < spec.Cost {
		return nil, fmt.Errorf("%w: %s cannot afford %s", ErrIllegalTransition, playerID, action)
	}

	if spec.RequiresTarget {
		if targetID == "" {
			return nil, fmt.Errorf("%w: %s requires a target", ErrIllegalTransition, action)
		}
		if targetID == playerID {
			return nil, fmt.Errorf("%w: %s cannot target itself", ErrIllegalTransition, playerID)
		}
		if _, err := s.requireAlive(targetID); err != nil {
			return nil, err
		}
	} else if targetID != "" {
		return nil, fmt.Errorf("%w: %s takes no target", ErrIllegalTransition, action)
	}

	next := s.clone()
	nextActor, _ := next.player(playerID)
	nextActor.Coins -= spec.Cost

	pending := &PendingAction{
		Type:          action,
		SourceID:      playerID,
		TargetID:      targetID,
		Claim:         characters.NoCharacter,
		ExaminedIndex: -1,
	}
	if claim, isClaim := characters.Claim(action); isClaim {
		pending.Claim = claim
		pending.HasClaim = true
	}
	next.Pending = pending
	next.Responded = make(map[string]bool)

	if targetID != "" {
		target, _ := next.player(targetID)
		next.logf("%s declares %s against %s", nextActor.Name, action, target.Name)
	} else {
		next.logf("%s declares %s", nextActor.Name, action)
	}

	switch {
	case pending.HasClaim:
		next.Phase = PhaseAwaitingChallengeOnAction
	case characters.Blockable(action):
		next.enterBlockPhase()
	default:
		next.resolveAction()
	}
	return next, nil
}

// enterBlockPhase opens the block window, or resolves straight through when
// no enabled character can block or nobody eligible is left standing.
func (s *State) enterBlockPhase() {
	if len(s.BlockersFor(s.Pending.Type)) == 0 {
		s.resolveAction()
		return
	}
	s.Phase = PhaseAwaitingBlock
	s.Responded = make(map[string]bool)
	if len(s.eligibleResponders()) == 0 {
		s.resolveAction()
	}
}

// resolveAction applies the pending action's effect. Branches that need more
// player input transition to the matching Awaiting phase instead of advancing
// the turn.
func (s *State) resolveAction() {
	pending := s.Pending
	actor, _ := s.player(pending.SourceID)

	switch pending.Type {
	case characters.Income:
		actor.Coins++
		s.logf("%s takes income", actor.Name)
		s.advanceTurn()

	case characters.ForeignAid:
		actor.Coins += 2
		s.logf("%s takes foreign aid", actor.Name)
		s.advanceTurn()

	case characters.Tax:
		actor.Coins += 3
		s.logf("%s collects tax", actor.Name)
		s.advanceTurn()

	case characters.BureaucratTax:
		actor.Coins += 2
		if target, err := s.player(pending.TargetID); err == nil && !target.Eliminated() {
			target.Coins++
			s.logf("%s collects bureaucrat tax, tipping %s", actor.Name, target.Name)
		} else {
			s.logf("%s collects bureaucrat tax", actor.Name)
		}
		s.advanceTurn()

	case characters.Steal:
		target, _ := s.player(pending.TargetID)
		amount := min(2, target.Coins)
		target.Coins -= amount
		actor.Coins += amount
		s.logf("%s steals %d coins from %s", actor.Name, amount, target.Name)
		s.advanceTurn()

	case characters.Assassinate:
		target, _ := s.player(pending.TargetID)
		if target.Eliminated() {
			s.advanceTurn()
			return
		}
		s.logf("%s assassinates %s", actor.Name, target.Name)
		s.loseInfluence(pending.TargetID, ReasonActionEffect, StageEffect)

	case characters.Coup:
		if s.CharacterEnabled(characters.General) {
			// The target gets the redirect window before any loss.
			s.RedirectChain = []string{pending.TargetID}
			s.RedirectSourceID = pending.SourceID
			s.Responded = make(map[string]bool)
			s.Phase = PhaseAwaitingCoupRedirect
			return
		}
		target, _ := s.player(pending.TargetID)
		s.logf("%s coups %s", actor.Name, target.Name)
		s.loseInfluence(pending.TargetID, ReasonActionEffect, StageEffect)

	case characters.Exchange:
		// Draw as many as the actor's alive influence; the actor then keeps
		// that many out of the combined pool.
		n := actor.AliveInfluence()
		s.Drawn = make([]characters.Character, 0, n)
		for i := 0; i < n; i++ {
			s.Drawn = append(s.Drawn, s.drawCard())
		}
		s.Phase = PhaseAwaitingExchangeSelection

	case characters.Inquire:
		s.Phase = PhaseAwaitingInquisitorChoice

	case characters.Redistribute:
		s.redistribute(actor)
		s.advanceTurn()
	}
}

// redistribute collects one coin from every other alive player holding at
// least one, lets the actor keep a single coin of the pool, and deals the
// remainder back one coin at a time in seat order starting after the actor.
// Coins in circulation are conserved exactly.
func (s *State) redistribute(actor *Player) {
	pool := 0
	for i := range s.Players {
		p := &s.Players[i]
		if p.ID == actor.ID || p.Eliminated() || p.Coins == 0 {
			continue
		}
		p.Coins--
		pool++
	}
	collected := pool
	if pool > 0 {
		actor.Coins++
		pool--
	}

	actorIdx := 0
	for i := range s.Players {
		if s.Players[i].ID == actor.ID {
			actorIdx = i
			break
		}
	}
	for i := 1; pool > 0; i++ {
		p := &s.Players[(actorIdx+i)%len(s.Players)]
		if p.ID == actor.ID {
			continue
		}
		if p.Eliminated() {
			continue
		}
		p.Coins++
		pool--
	}
	s.logf("%s redistributes %d coins", actor.Name, collected)
}
