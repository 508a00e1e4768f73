package characters

import "fmt"

// Character is a court character identity. Characters are never instantiated;
// they are referenced by influence cards and by catalog entries.
type Character int

const (
	// Base game characters.
	Duke Character = iota
	Assassin
	Captain
	Ambassador
	Contessa
	// General is the extension character. Holding the General lets a Coup's
	// target redirect the Coup to another player.
	General
	// Promo characters.
	Inquisitor
	Bureaucrat
	Socialist
	Diplomat
)

var characterNames = map[Character]string{
	Duke:       "DUKE",
	Assassin:   "ASSASSIN",
	Captain:    "CAPTAIN",
	Ambassador: "AMBASSADOR",
	Contessa:   "CONTESSA",
	General:    "GENERAL",
	Inquisitor: "INQUISITOR",
	Bureaucrat: "BUREAUCRAT",
	Socialist:  "SOCIALIST",
	Diplomat:   "DIPLOMAT",
}

func (c Character) String() string {
	if name, ok := characterNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CHARACTER_%d", int(c))
}

// Base returns the five characters every match must include.
func Base() []Character {
	return []Character{Duke, Assassin, Captain, Ambassador, Contessa}
}

// All returns every known character in declaration order.
func All() []Character {
	return []Character{
		Duke, Assassin, Captain, Ambassador, Contessa,
		General, Inquisitor, Bureaucrat, Socialist, Diplomat,
	}
}

// Known reports whether c is a defined character identity.
func Known(c Character) bool {
	_, ok := characterNames[c]
	return ok
}

// ParseCharacter resolves a character by its canonical name.
func ParseCharacter(name string) (Character, bool) {
	for c, n := range characterNames {
		if n == name {
			return c, true
		}
	}
	return NoCharacter, false
}
