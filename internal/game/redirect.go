package game

import (
	"fmt"

	"github.com/coupfree/coup-server-go/internal/game/characters"
)

// DeclareCoupRedirect lets the Coup's live target claim the General and pass
// the Coup on. The new target joins the chain's tail and the claim opens its
// own challenge window.
func (s *State) DeclareCoupRedirect(redirectorID, newTargetID string) (*State, error) {
	if s.Phase != PhaseAwaitingCoupRedirect {
		return nil, fmt.Errorf("%w: cannot redirect during %s", ErrIllegalTransition, s.Phase)
	}
	redirector, err := s.requireAlive(redirectorID)
	if err != nil {
		return nil, err
	}
	if redirectorID != s.redirectTail() {
		return nil, fmt.Errorf("%w: the coup is not aimed at %s", ErrIllegalTransition, redirectorID)
	}
	if newTargetID == redirectorID {
		return nil, fmt.Errorf("%w: %s cannot redirect the coup onto themselves", ErrIllegalTransition, redirectorID)
	}
	newTarget, err := s.requireAlive(newTargetID)
	if err != nil {
		return nil, err
	}

	next := s.clone()
	next.RedirectChain = append(next.RedirectChain, newTargetID)
	// The pending target follows the chain's tail while the claimed
	// character stays pinned to the General for the challenge window.
	next.Pending.TargetID = newTargetID
	next.Pending.Claim = characters.General
	next.Pending.HasClaim = true
	next.Responded = make(map[string]bool)
	next.Phase = PhaseAwaitingCoupRedirectChallenge
	next.logf("%s claims the general and redirects the coup to %s", redirector.Name, newTarget.Name)
	return next, nil
}

// ChallengeCoupRedirect bets that the open redirect claim is a bluff. A
// redirector who has claimed the General k times during this one Coup must
// show k distinct Generals: enough of them and the challenger pays the usual
// single penalty while the shown cards are individually re-randomized; too
// few and the repeated bluff is provable, costing the redirector every
// remaining influence in one step.
func (s *State) ChallengeCoupRedirect(challengerID string) (*State, error) {
	if s.Phase != PhaseAwaitingCoupRedirectChallenge {
		return nil, fmt.Errorf("%w: no redirect to challenge during %s", ErrIllegalTransition, s.Phase)
	}
	if _, err := s.requireAlive(challengerID); err != nil {
		return nil, err
	}
	redirectorID := s.redirector()
	if challengerID == redirectorID {
		return nil, fmt.Errorf("%w: %s cannot challenge their own redirect", ErrIllegalTransition, challengerID)
	}
	if s.Responded[challengerID] {
		return nil, fmt.Errorf("%w: %s already passed on this redirect", ErrIllegalTransition, challengerID)
	}

	next := s.clone()
	redirector, _ := next.player(redirectorID)
	challenger, _ := next.player(challengerID)
	claims := next.RedirectClaimCount(redirectorID)

	if redirector.countUnrevealed(characters.General) >= claims {
		next.logf("%s challenges the redirect and is wrong", challenger.Name)
		for i := 0; i < claims; i++ {
			next.rerandomizeCard(redirector, characters.General)
		}
		next.loseInfluence(challengerID, ReasonChallengePenalty, StageRedirectChallenge)
		return next, nil
	}

	// Double loss: a provable repeated bluff forfeits everything at once.
	next.logf("%s challenges the redirect and is right: %s claimed %d generals",
		challenger.Name, redirector.Name, claims)
	for i := range redirector.Cards {
		if !redirector.Cards[i].Revealed {
			next.revealCard(redirector, i)
		}
	}
	if next.checkGameOver() {
		return next, nil
	}
	// The coup never lands and its cost stays paid.
	next.advanceTurn()
	return next, nil
}

// PassCoupRedirect has the live target take the Coup instead of redirecting.
func (s *State) PassCoupRedirect(playerID string) (*State, error) {
	if s.Phase != PhaseAwaitingCoupRedirect {
		return nil, fmt.Errorf("%w: no redirect window open during %s", ErrIllegalTransition, s.Phase)
	}
	target, err := s.requireAlive(playerID)
	if err != nil {
		return nil, err
	}
	if playerID != s.redirectTail() {
		return nil, fmt.Errorf("%w: the coup is not aimed at %s", ErrIllegalTransition, playerID)
	}

	next := s.clone()
	next.Pending.RedirectDeclined = true
	next.logf("%s takes the coup", target.Name)
	next.loseInfluence(playerID, ReasonActionEffect, StageEffect)
	return next, nil
}

// PassCoupRedirectChallenge waives the caller's right to challenge the open
// redirect claim. Unanimity lets the redirect stand: the Coup re-targets the
// chain's new tail, who faces the same redirect-or-take choice.
func (s *State) PassCoupRedirectChallenge(playerID string) (*State, error) {
	if s.Phase != PhaseAwaitingCoupRedirectChallenge {
		return nil, fmt.Errorf("%w: no redirect challenge window open during %s", ErrIllegalTransition, s.Phase)
	}

	next := s.clone()
	done, err := s.recordPass(next, playerID)
	if err != nil {
		return nil, err
	}
	if done {
		next.Responded = make(map[string]bool)
		next.Phase = PhaseAwaitingCoupRedirect
	}
	return next, nil
}
