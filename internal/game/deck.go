package game

import "github.com/coupfree/coup-server-go/internal/game/characters"

func (s *State) shuffleDeck() {
	s.rng.Shuffle(len(s.Deck), func(i, j int) {
		s.Deck[i], s.Deck[j] = s.Deck[j], s.Deck[i]
	})
}

// drawCard removes and returns the top card of the court deck. The deck can
// never empty mid-match: every draw is paired with a prior return, and
// construction guarantees a reserve beyond the dealt influence.
func (s *State) drawCard() characters.Character {
	ch := s.Deck[len(s.Deck)-1]
	s.Deck = s.Deck[:len(s.Deck)-1]
	return ch
}

func (s *State) returnToDeck(ch characters.Character) {
	s.Deck = append(s.Deck, ch)
}

// rerandomizeCard swaps one unrevealed card of ch held by p for a fresh draw:
// the proven card goes back into the deck, the deck is shuffled, and the slot
// is refilled. This prevents observers from inferring anything lasting from a
// claim the holder was forced to prove.
func (s *State) rerandomizeCard(p *Player, ch characters.Character) {
	for i := range p.Cards {
		if !p.Cards[i].Revealed && p.Cards[i].Character == ch {
			s.returnToDeck(ch)
			s.shuffleDeck()
			p.Cards[i].Character = s.drawCard()
			return
		}
	}
}
