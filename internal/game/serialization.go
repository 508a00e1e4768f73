package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// StateChecksum is a deterministic digest of a match state. Because every
// observer applies the same authoritative successors in the same order,
// matching checksums across observers guarantee they hold the same state;
// a mismatch flags a dropped or reordered transition.
type StateChecksum struct {
	Hash    string // SHA-256 of the canonical representation
	Turn    int
	Version int // canonical-form version, bumped on format changes
}

// Checksum computes the deterministic digest of the state.
func (s *State) Checksum() StateChecksum {
	sum := sha256.Sum256([]byte(s.canonicalRepresentation()))
	return StateChecksum{
		Hash:    hex.EncodeToString(sum[:]),
		Turn:    s.Turn,
		Version: 1,
	}
}

// canonicalRepresentation renders the state as a string independent of map
// iteration order. The log is excluded: it is derived commentary, not rules
// state.
func (s *State) canonicalRepresentation() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "MATCH:%s|%d|%d|%s|%s\n",
		s.Phase, s.Turn, s.CurrentPlayer, s.WinnerID, s.RedirectSourceID)

	for i := range s.Players {
		p := &s.Players[i]
		fmt.Fprintf(&buf, "PLAYER:%s|%s|%d|%s\n", p.ID, p.Name, p.Coins, p.Faction)
		for _, c := range p.Cards {
			fmt.Fprintf(&buf, "  CARD:%s|%t\n", c.Character, c.Revealed)
		}
	}

	// The deck is a multiset; its order is shuffle noise, so sort it.
	deck := make([]string, len(s.Deck))
	for i, ch := range s.Deck {
		deck[i] = ch.String()
	}
	sort.Strings(deck)
	for _, ch := range deck {
		fmt.Fprintf(&buf, "DECK:%s\n", ch)
	}

	if s.Pending != nil {
		fmt.Fprintf(&buf, "PENDING:%s|%s|%s|%s|%t|%d|%t\n",
			s.Pending.Type, s.Pending.SourceID, s.Pending.TargetID,
			s.Pending.Claim, s.Pending.HasClaim,
			s.Pending.ExaminedIndex, s.Pending.RedirectDeclined)
	}
	if s.Block != nil {
		fmt.Fprintf(&buf, "BLOCK:%s|%s\n", s.Block.BlockerID, s.Block.Claim)
	}
	if s.Loss != nil {
		fmt.Fprintf(&buf, "LOSS:%s|%s|%s\n", s.Loss.PlayerID, s.Loss.Reason, s.Loss.Stage)
	}

	responded := make([]string, 0, len(s.Responded))
	for id := range s.Responded {
		responded = append(responded, id)
	}
	sort.Strings(responded)
	for _, id := range responded {
		fmt.Fprintf(&buf, "RESPONDED:%s\n", id)
	}

	for _, ch := range s.Drawn {
		fmt.Fprintf(&buf, "DRAWN:%s\n", ch)
	}
	for _, id := range s.RedirectChain {
		fmt.Fprintf(&buf, "REDIRECT:%s\n", id)
	}

	return buf.String()
}
