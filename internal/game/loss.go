package game

import "github.com/coupfree/coup-server-go/internal/game/characters"

// loseInfluence forces the named player to give up one influence. With a
// single unrevealed card left the choice is made for them; otherwise the
// state parks in AwaitingCardSelection and routing resumes once the loser
// picks. With nothing left to lose the routing runs immediately.
func (s *State) loseInfluence(playerID string, reason LossReason, stage LossStage) {
	p, err := s.player(playerID)
	if err != nil {
		// Callers resolve the player before demanding a loss.
		return
	}
	switch p.AliveInfluence() {
	case 0:
		s.routeAfterLoss(playerID, stage)
	case 1:
		for i := range p.Cards {
			if !p.Cards[i].Revealed {
				s.revealCard(p, i)
				break
			}
		}
		if s.checkGameOver() {
			return
		}
		s.routeAfterLoss(playerID, stage)
	default:
		s.Loss = &PendingLoss{PlayerID: playerID, Reason: reason, Stage: stage}
		s.Phase = PhaseAwaitingCardSelection
	}
}

// revealCard flips one influence card face up, irreversibly.
func (s *State) revealCard(p *Player, index int) {
	p.Cards[index].Revealed = true
	s.logf("%s reveals %s", p.Name, p.Cards[index].Character)
	if p.Eliminated() {
		s.logf("%s is eliminated", p.Name)
	}
}

// routeAfterLoss is the single dispatch point for everything that happens
// after a forced loss resolves. The branch is keyed on the stage that
// demanded the loss and on whether the loser is the pending action's source;
// all the protocol's post-challenge asymmetries live here and nowhere else.
func (s *State) routeAfterLoss(loserID string, stage LossStage) {
	s.Loss = nil
	switch stage {
	case StageActionChallenge:
		if loserID == s.Pending.SourceID {
			// The actor's bluff was exposed: the action is voided with no
			// refund and the turn moves on.
			s.logf("%s is voided", s.Pending.Type)
			s.advanceTurn()
			return
		}
		// The challenger paid the penalty and the claim stands. A failed
		// challenge on an assassination forfeits the block entirely.
		if s.Pending.Type == characters.Assassinate {
			s.resolveAction()
			return
		}
		if characters.Blockable(s.Pending.Type) {
			s.enterBlockPhase()
			return
		}
		s.resolveAction()

	case StageBlockChallenge:
		if loserID == s.Pending.SourceID {
			// The block was genuine; the challenged blocker proved it and
			// the action stays cancelled.
			s.logf("%s stands, %s is voided", s.Block.Claim, s.Pending.Type)
			s.advanceTurn()
			return
		}
		// The block was a bluff; the original action finally resolves.
		s.Block = nil
		s.resolveAction()

	case StageRedirectChallenge:
		// Only a failed challenge routes through a selection: the penalized
		// challenger has paid and the redirect stands, so the chain's tail
		// is now the live target and gets the same redirect-or-take choice.
		// When the challenger was the tail and the penalty finished them,
		// the coup has nobody left to land on; it fizzles with its cost
		// kept and the turn moves on.
		tailID := s.redirectTail()
		if tail, err := s.player(tailID); err != nil || tail.Eliminated() {
			s.logf("the coup fizzles: its target is eliminated")
			s.advanceTurn()
			return
		}
		s.Pending.TargetID = tailID
		s.Responded = make(map[string]bool)
		s.Phase = PhaseAwaitingCoupRedirect

	case StageEffect:
		// Damage from a resolved Coup or assassination never re-resolves.
		s.advanceTurn()
	}
}
