package game

import "errors"

// The engine rejects bad calls with exactly three error kinds. Every rejected
// transition leaves the prior state untouched; there is no partial effect and
// no internal retry.
var (
	// ErrIllegalTransition marks a call in the wrong phase or by the wrong
	// or ineligible actor.
	ErrIllegalTransition = errors.New("illegal transition")

	// ErrInvalidSelection marks a structurally bad selection: an
	// out-of-range or already-revealed card index, or an exchange kept-set
	// of the wrong size.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrUnknownPlayer marks a player id absent from the roster.
	ErrUnknownPlayer = errors.New("unknown player")
)
