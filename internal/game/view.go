package game

import (
	"sort"

	"github.com/coupfree/coup-server-go/internal/game/characters"
)

// CardView is one influence slot as a particular viewer sees it. The true
// character is present only when the card is revealed or the viewer owns it.
type CardView struct {
	Character *characters.Character `json:"character,omitempty"`
	Revealed  bool                  `json:"revealed"`
}

// PlayerView is one seat as a particular viewer sees it.
type PlayerView struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Coins      int        `json:"coins"`
	Faction    string     `json:"faction,omitempty"`
	Eliminated bool       `json:"eliminated"`
	Cards      []CardView `json:"cards"`
}

// StateView is the redacted, fully serializable projection of a match for
// one viewer. Hosts broadcast one StateView per connected player; the core
// never touches the network itself.
type StateView struct {
	ViewerID      string                 `json:"viewer_id"`
	Phase         string                 `json:"phase"`
	Turn          int                    `json:"turn"`
	CurrentPlayer string                 `json:"current_player"`
	Players       []PlayerView           `json:"players"`
	DeckCount     int                    `json:"deck_count"`
	Pending       *PendingAction         `json:"pending,omitempty"`
	Block         *PendingBlock          `json:"block,omitempty"`
	Loss          *PendingLoss           `json:"loss,omitempty"`
	Responded     []string               `json:"responded,omitempty"`
	Drawn         []characters.Character `json:"drawn,omitempty"`
	RedirectChain []string               `json:"redirect_chain,omitempty"`
	WinnerID      string                 `json:"winner_id,omitempty"`
	Available     []string               `json:"available_actions,omitempty"`
	Log           []LogEntry             `json:"log"`
}

// View builds the redacted projection for viewerID. Unrevealed card
// identities are visible only to their owner; temporarily drawn exchange
// cards only to the acting player. An empty viewerID yields the fully
// redacted spectator view.
func (s *State) View(viewerID string) StateView {
	view := StateView{
		ViewerID:      viewerID,
		Phase:         s.Phase.String(),
		Turn:          s.Turn,
		CurrentPlayer: s.currentPlayerID(),
		Players:       make([]PlayerView, 0, len(s.Players)),
		DeckCount:     len(s.Deck),
		RedirectChain: append([]string(nil), s.RedirectChain...),
		WinnerID:      s.WinnerID,
		Log:           append([]LogEntry(nil), s.Log...),
	}
	if s.Pending != nil {
		pending := *s.Pending
		view.Pending = &pending
	}
	if s.Block != nil {
		block := *s.Block
		view.Block = &block
	}
	if s.Loss != nil {
		loss := *s.Loss
		view.Loss = &loss
	}
	for id := range s.Responded {
		view.Responded = append(view.Responded, id)
	}
	sort.Strings(view.Responded)

	for i := range s.Players {
		p := &s.Players[i]
		pv := PlayerView{
			ID:         p.ID,
			Name:       p.Name,
			Coins:      p.Coins,
			Faction:    p.Faction,
			Eliminated: p.Eliminated(),
			Cards:      make([]CardView, 0, len(p.Cards)),
		}
		for _, c := range p.Cards {
			cv := CardView{Revealed: c.Revealed}
			if c.Revealed || p.ID == viewerID {
				ch := c.Character
				cv.Character = &ch
			}
			pv.Cards = append(pv.Cards, cv)
		}
		view.Players = append(view.Players, pv)
	}

	if s.Pending != nil && s.Pending.SourceID == viewerID {
		view.Drawn = append([]characters.Character(nil), s.Drawn...)
	}
	if s.Phase == PhaseAwaitingAction && viewerID == s.currentPlayerID() {
		for _, a := range s.AvailableActions() {
			view.Available = append(view.Available, a.String())
		}
	}
	return view
}
