package game

import (
	"fmt"

	"github.com/coupfree/coup-server-go/internal/game/characters"
)

// SelectCardToLose reveals the chosen unrevealed card of the player a forced
// loss is parked on, then resumes the routing the loss interrupted.
func (s *State) SelectCardToLose(playerID string, index int) (*State, error) {
	if s.Phase != PhaseAwaitingCardSelection {
		return nil, fmt.Errorf("%w: no card selection open during %s", ErrIllegalTransition, s.Phase)
	}
	p, err := s.player(playerID)
	if err != nil {
		return nil, err
	}
	if playerID != s.Loss.PlayerID {
		return nil, fmt.Errorf("%w: the loss belongs to %s", ErrIllegalTransition, s.Loss.PlayerID)
	}
	if index < 0 || index >= len(p.Cards) {
		return nil, fmt.Errorf("%w: card index %d out of range", ErrInvalidSelection, index)
	}
	if p.Cards[index].Revealed {
		return nil, fmt.Errorf("%w: card %d is already revealed", ErrInvalidSelection, index)
	}

	next := s.clone()
	loser, _ := next.player(playerID)
	stage := next.Loss.Stage
	next.revealCard(loser, index)
	if next.checkGameOver() {
		return next, nil
	}
	next.routeAfterLoss(playerID, stage)
	return next, nil
}

// CompleteExchange applies the acting player's kept/returned partition. The
// selection indexes the combined pool: the actor's unrevealed cards first, in
// hand order, then the temporarily drawn cards. Exactly as many cards as the
// actor has alive influence must be kept; the rest are shuffled back into
// the court deck.
func (s *State) CompleteExchange(playerID string, kept []int) (*State, error) {
	if s.Phase != PhaseAwaitingExchangeSelection {
		return nil, fmt.Errorf("%w: no exchange open during %s", ErrIllegalTransition, s.Phase)
	}
	actor, err := s.player(playerID)
	if err != nil {
		return nil, err
	}
	if playerID != s.Pending.SourceID {
		return nil, fmt.Errorf("%w: the exchange belongs to %s", ErrIllegalTransition, s.Pending.SourceID)
	}

	pool := make([]characters.Character, 0, actor.AliveInfluence()+len(s.Drawn))
	for _, c := range actor.Cards {
		if !c.Revealed {
			pool = append(pool, c.Character)
		}
	}
	pool = append(pool, s.Drawn...)

	required := actor.AliveInfluence()
	if len(kept) != required {
		return nil, fmt.Errorf("%w: kept %d cards, need exactly %d", ErrInvalidSelection, len(kept), required)
	}
	chosen := make(map[int]bool, len(kept))
	for _, idx := range kept {
		if idx < 0 || idx >= len(pool) {
			return nil, fmt.Errorf("%w: pool index %d out of range", ErrInvalidSelection, idx)
		}
		if chosen[idx] {
			return nil, fmt.Errorf("%w: pool index %d chosen twice", ErrInvalidSelection, idx)
		}
		chosen[idx] = true
	}

	next := s.clone()
	nextActor, _ := next.player(playerID)

	// Write the kept cards into the actor's unrevealed slots, in selection
	// order; everything else returns to the deck.
	slot := 0
	for _, idx := range kept {
		for slot < len(nextActor.Cards) && nextActor.Cards[slot].Revealed {
			slot++
		}
		nextActor.Cards[slot].Character = pool[idx]
		slot++
	}
	for idx, ch := range pool {
		if !chosen[idx] {
			next.returnToDeck(ch)
		}
	}
	next.shuffleDeck()
	next.Drawn = nil
	next.logf("%s completes the exchange", nextActor.Name)
	next.advanceTurn()
	return next, nil
}

// InquisitorChoice selects between the Inquisitor's two sub-modes.
type InquisitorChoice int

const (
	// InquisitorSelf draws one card and lets the actor re-pick their hand.
	InquisitorSelf InquisitorChoice = iota
	// InquisitorExamine looks at one unrevealed card of the target.
	InquisitorExamine
)

func (c InquisitorChoice) String() string {
	switch c {
	case InquisitorSelf:
		return "SELF_EXCHANGE"
	case InquisitorExamine:
		return "EXAMINE"
	default:
		return fmt.Sprintf("CHOICE_%d", int(c))
	}
}

// ResolveInquisitorChoice commits the acting player to one of the
// Inquisitor's sub-modes. For the examine mode, examinedIndex names which of
// the target's unrevealed cards to look at; the self mode ignores it.
func (s *State) ResolveInquisitorChoice(playerID string, choice InquisitorChoice, examinedIndex int) (*State, error) {
	if s.Phase != PhaseAwaitingInquisitorChoice {
		return nil, fmt.Errorf("%w: no inquisitor choice open during %s", ErrIllegalTransition, s.Phase)
	}
	if _, err := s.player(playerID); err != nil {
		return nil, err
	}
	if playerID != s.Pending.SourceID {
		return nil, fmt.Errorf("%w: the choice belongs to %s", ErrIllegalTransition, s.Pending.SourceID)
	}

	switch choice {
	case InquisitorSelf:
		next := s.clone()
		next.Drawn = []characters.Character{next.drawCard()}
		next.Phase = PhaseAwaitingExchangeSelection
		actor, _ := next.player(playerID)
		next.logf("%s draws from the court deck", actor.Name)
		return next, nil

	case InquisitorExamine:
		target, err := s.player(s.Pending.TargetID)
		if err != nil {
			return nil, err
		}
		if examinedIndex < 0 || examinedIndex >= len(target.Cards) {
			return nil, fmt.Errorf("%w: card index %d out of range", ErrInvalidSelection, examinedIndex)
		}
		if target.Cards[examinedIndex].Revealed {
			return nil, fmt.Errorf("%w: card %d is already revealed", ErrInvalidSelection, examinedIndex)
		}
		next := s.clone()
		next.Pending.ExaminedIndex = examinedIndex
		next.Phase = PhaseAwaitingExamineDecision
		actor, _ := next.player(playerID)
		next.logf("%s examines one of %s's cards", actor.Name, target.Name)
		return next, nil

	default:
		return nil, fmt.Errorf("%w: unknown inquisitor choice %d", ErrInvalidSelection, int(choice))
	}
}

// ResolveExamine finishes the examine sub-mode: the actor either lets the
// target keep the examined card or forces it back into the deck in exchange
// for a fresh draw.
func (s *State) ResolveExamine(playerID string, forceExchange bool) (*State, error) {
	if s.Phase != PhaseAwaitingExamineDecision {
		return nil, fmt.Errorf("%w: no examine decision open during %s", ErrIllegalTransition, s.Phase)
	}
	if _, err := s.player(playerID); err != nil {
		return nil, err
	}
	if playerID != s.Pending.SourceID {
		return nil, fmt.Errorf("%w: the decision belongs to %s", ErrIllegalTransition, s.Pending.SourceID)
	}
	target, err := s.player(s.Pending.TargetID)
	if err != nil {
		return nil, err
	}
	index := s.Pending.ExaminedIndex
	if index < 0 || index >= len(target.Cards) || target.Cards[index].Revealed {
		return nil, fmt.Errorf("%w: examined card %d is no longer selectable", ErrInvalidSelection, index)
	}

	next := s.clone()
	nextTarget, _ := next.player(next.Pending.TargetID)
	actor, _ := next.player(playerID)
	if forceExchange {
		next.returnToDeck(nextTarget.Cards[index].Character)
		next.shuffleDeck()
		nextTarget.Cards[index].Character = next.drawCard()
		next.logf("%s forces %s to exchange the examined card", actor.Name, nextTarget.Name)
	} else {
		next.logf("%s lets %s keep the examined card", actor.Name, nextTarget.Name)
	}
	next.advanceTurn()
	return next, nil
}
