package characters

import "fmt"

// ActionType identifies a declarable turn action.
type ActionType int

const (
	// General actions, not tied to any character.
	Income ActionType = iota
	ForeignAid
	Coup
	// Character actions. Declaring one claims the matching character and
	// opens a challenge window.
	Tax
	Assassinate
	Steal
	Exchange
	Inquire
	BureaucratTax
	Redistribute
)

var actionNames = map[ActionType]string{
	Income:        "INCOME",
	ForeignAid:    "FOREIGN_AID",
	Coup:          "COUP",
	Tax:           "TAX",
	Assassinate:   "ASSASSINATE",
	Steal:         "STEAL",
	Exchange:      "EXCHANGE",
	Inquire:       "INQUIRE",
	BureaucratTax: "BUREAUCRAT_TAX",
	Redistribute:  "REDISTRIBUTE",
}

func (a ActionType) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("ACTION_%d", int(a))
}

// ParseActionType resolves an action type by its canonical name.
func ParseActionType(name string) (ActionType, bool) {
	for a, n := range actionNames {
		if n == name {
			return a, true
		}
	}
	return 0, false
}
