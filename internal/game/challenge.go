package game

import (
	"fmt"

	"github.com/coupfree/coup-server-go/internal/game/characters"
)

// ChallengeAction bets that the pending action's character claim is a bluff.
// The first challenge closes the window for everyone.
func (s *State) ChallengeAction(challengerID string) (*State, error) {
	if s.Phase != PhaseAwaitingChallengeOnAction {
		return nil, fmt.Errorf("%w: cannot challenge an action during %s", ErrIllegalTransition, s.Phase)
	}
	if _, err := s.requireAlive(challengerID); err != nil {
		return nil, err
	}
	if challengerID == s.Pending.SourceID {
		return nil, fmt.Errorf("%w: %s cannot challenge their own claim", ErrIllegalTransition, challengerID)
	}
	if s.Responded[challengerID] {
		return nil, fmt.Errorf("%w: %s already passed on this claim", ErrIllegalTransition, challengerID)
	}

	next := s.clone()
	actor, _ := next.player(next.Pending.SourceID)
	challenger, _ := next.player(challengerID)

	if actor.holds(next.Pending.Claim) {
		// Claim proven. The shown card is shuffled away and replaced so the
		// table learns nothing durable, and the challenger pays the penalty.
		next.logf("%s challenges %s and is wrong", challenger.Name, actor.Name)
		next.rerandomizeCard(actor, next.Pending.Claim)
		next.loseInfluence(challengerID, ReasonChallengePenalty, StageActionChallenge)
		return next, nil
	}

	// Bluff exposed. The actor pays; routing voids the action afterwards.
	next.logf("%s challenges %s and is right", challenger.Name, actor.Name)
	next.loseInfluence(next.Pending.SourceID, ReasonChallengePenalty, StageActionChallenge)
	return next, nil
}

// PassChallenge waives the caller's right to challenge the open claim, in
// either the action or the block challenge window. Once every eligible
// player has waived, the window escalates.
func (s *State) PassChallenge(playerID string) (*State, error) {
	switch s.Phase {
	case PhaseAwaitingChallengeOnAction, PhaseAwaitingChallengeOnBlock:
	default:
		return nil, fmt.Errorf("%w: no challenge window open during %s", ErrIllegalTransition, s.Phase)
	}

	next := s.clone()
	done, err := s.recordPass(next, playerID)
	if err != nil {
		return nil, err
	}
	if !done {
		return next, nil
	}

	if next.Phase == PhaseAwaitingChallengeOnAction {
		if characters.Blockable(next.Pending.Type) {
			next.enterBlockPhase()
		} else {
			next.resolveAction()
		}
		return next, nil
	}

	// Unanimous pass on a block: the block stands unchallenged, the action
	// is voided and the turn advances.
	next.logf("%s stands, %s is voided", next.Block.Claim, next.Pending.Type)
	next.advanceTurn()
	return next, nil
}

// DeclareBlock counters the pending action with a blocking character claim.
// Target-restricted actions may only be blocked by their target; foreign aid
// may be blocked by any alive non-actor.
func (s *State) DeclareBlock(blockerID string, claim characters.Character) (*State, error) {
	if s.Phase != PhaseAwaitingBlock {
		return nil, fmt.Errorf("%w: cannot block during %s", ErrIllegalTransition, s.Phase)
	}
	blocker, err := s.requireAlive(blockerID)
	if err != nil {
		return nil, err
	}
	if blockerID == s.Pending.SourceID {
		return nil, fmt.Errorf("%w: %s cannot block their own action", ErrIllegalTransition, blockerID)
	}
	if characters.TargetRestrictedBlock(s.Pending.Type) && blockerID != s.Pending.TargetID {
		return nil, fmt.Errorf("%w: only the target may block %s", ErrIllegalTransition, s.Pending.Type)
	}
	if !characters.CanBlock(claim, s.Pending.Type) {
		return nil, fmt.Errorf("%w: %s cannot block %s", ErrIllegalTransition, claim, s.Pending.Type)
	}
	if !s.CharacterEnabled(claim) {
		return nil, fmt.Errorf("%w: %s is not in this match's character set", ErrIllegalTransition, claim)
	}
	if s.Responded[blockerID] {
		return nil, fmt.Errorf("%w: %s already waived the block", ErrIllegalTransition, blockerID)
	}

	next := s.clone()
	next.Block = &PendingBlock{BlockerID: blockerID, Claim: claim}
	next.Responded = make(map[string]bool)
	next.Phase = PhaseAwaitingChallengeOnBlock
	next.logf("%s blocks %s claiming %s", blocker.Name, next.Pending.Type, claim)
	return next, nil
}

// ChallengeBlock bets that the blocker's claim is a bluff. Only the original
// actor may make that bet.
func (s *State) ChallengeBlock(challengerID string) (*State, error) {
	if s.Phase != PhaseAwaitingChallengeOnBlock {
		return nil, fmt.Errorf("%w: no block to challenge during %s", ErrIllegalTransition, s.Phase)
	}
	if _, err := s.player(challengerID); err != nil {
		return nil, err
	}
	if challengerID != s.Pending.SourceID {
		return nil, fmt.Errorf("%w: only the blocked actor may challenge the block", ErrIllegalTransition)
	}

	next := s.clone()
	blocker, _ := next.player(next.Block.BlockerID)
	actor, _ := next.player(challengerID)

	if blocker.holds(next.Block.Claim) {
		next.logf("%s challenges the block and is wrong", actor.Name)
		next.rerandomizeCard(blocker, next.Block.Claim)
		next.loseInfluence(challengerID, ReasonChallengePenalty, StageBlockChallenge)
		return next, nil
	}

	next.logf("%s challenges the block and is right", actor.Name)
	next.loseInfluence(next.Block.BlockerID, ReasonChallengePenalty, StageBlockChallenge)
	return next, nil
}

// PassBlock waives the caller's right to block the pending action. The
// action resolves once every potential blocker has waived.
func (s *State) PassBlock(playerID string) (*State, error) {
	if s.Phase != PhaseAwaitingBlock {
		return nil, fmt.Errorf("%w: no block window open during %s", ErrIllegalTransition, s.Phase)
	}

	next := s.clone()
	done, err := s.recordPass(next, playerID)
	if err != nil {
		return nil, err
	}
	if done {
		next.resolveAction()
	}
	return next, nil
}
