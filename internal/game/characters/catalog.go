package characters

// NoCharacter marks the absence of a claimed character on a general action.
const NoCharacter Character = -1

// ActionSpec describes the static rules of one action type: its fixed coin
// cost, whether a target must be named at declaration, the character whose
// identity the actor claims (NoCharacter for general actions), and the
// characters whose holders may block it.
type ActionSpec struct {
	Type           ActionType
	Cost           int
	RequiresTarget bool
	Claim          Character
	Blockers       []Character
}

// actionSpecs is the static catalog. Income and Coup have no counter-window
// at all; ForeignAid is blockable by anyone claiming Duke; every character
// action is challengeable, and the targeted ones are blockable by the target
// only.
var actionSpecs = map[ActionType]ActionSpec{
	Income:        {Type: Income, Cost: 0, RequiresTarget: false, Claim: NoCharacter},
	ForeignAid:    {Type: ForeignAid, Cost: 0, RequiresTarget: false, Claim: NoCharacter, Blockers: []Character{Duke}},
	Coup:          {Type: Coup, Cost: 7, RequiresTarget: true, Claim: NoCharacter},
	Tax:           {Type: Tax, Cost: 0, RequiresTarget: false, Claim: Duke},
	Assassinate:   {Type: Assassinate, Cost: 3, RequiresTarget: true, Claim: Assassin, Blockers: []Character{Contessa}},
	Steal:         {Type: Steal, Cost: 0, RequiresTarget: true, Claim: Captain, Blockers: []Character{Captain, Ambassador, Inquisitor}},
	Exchange:      {Type: Exchange, Cost: 0, RequiresTarget: false, Claim: Ambassador},
	Inquire:       {Type: Inquire, Cost: 0, RequiresTarget: true, Claim: Inquisitor, Blockers: []Character{Diplomat}},
	BureaucratTax: {Type: BureaucratTax, Cost: 0, RequiresTarget: true, Claim: Bureaucrat},
	Redistribute:  {Type: Redistribute, Cost: 0, RequiresTarget: false, Claim: Socialist},
}

// principalActions maps each character to the action its holder may declare.
// Contessa, Diplomat and General have no declarable action: the first two
// are pure blockers and the General's ability is the reactive Coup redirect.
var principalActions = map[Character]ActionType{
	Duke:       Tax,
	Assassin:   Assassinate,
	Captain:    Steal,
	Ambassador: Exchange,
	Inquisitor: Inquire,
	Bureaucrat: BureaucratTax,
	Socialist:  Redistribute,
}

// SpecFor returns the catalog entry for an action type.
func SpecFor(a ActionType) (ActionSpec, bool) {
	spec, ok := actionSpecs[a]
	return spec, ok
}

// Cost returns the fixed coin cost of an action type (0 for unknown types).
func Cost(a ActionType) int {
	return actionSpecs[a].Cost
}

// RequiresTarget reports whether an action must name a target at declaration.
func RequiresTarget(a ActionType) bool {
	return actionSpecs[a].RequiresTarget
}

// Claim returns the character an actor claims by declaring a, and whether
// the action is a character action at all.
func Claim(a ActionType) (Character, bool) {
	spec, ok := actionSpecs[a]
	if !ok || spec.Claim == NoCharacter {
		return NoCharacter, false
	}
	return spec.Claim, true
}

// BlockersFor returns the characters able to block an action type. The
// returned slice is a copy and may be mutated freely.
func BlockersFor(a ActionType) []Character {
	spec, ok := actionSpecs[a]
	if !ok || len(spec.Blockers) == 0 {
		return nil
	}
	out := make([]Character, len(spec.Blockers))
	copy(out, spec.Blockers)
	return out
}

// CanBlock reports whether a holder of c may block action type a.
func CanBlock(c Character, a ActionType) bool {
	for _, b := range actionSpecs[a].Blockers {
		if b == c {
			return true
		}
	}
	return false
}

// Blockable reports whether any character can block a.
func Blockable(a ActionType) bool {
	return len(actionSpecs[a].Blockers) > 0
}

// TargetRestrictedBlock reports whether only the action's target may block.
// ForeignAid is the one untargeted blockable action: any alive non-actor may
// claim Duke against it.
func TargetRestrictedBlock(a ActionType) bool {
	return Blockable(a) && RequiresTarget(a)
}

// PrincipalAction returns the action a holder of c may declare.
func PrincipalAction(c Character) (ActionType, bool) {
	a, ok := principalActions[c]
	return a, ok
}

// CharacterAction reports whether a is tied to a character claim.
func CharacterAction(a ActionType) bool {
	_, ok := Claim(a)
	return ok
}

// GeneralActions returns the three actions available regardless of the
// enabled character set.
func GeneralActions() []ActionType {
	return []ActionType{Income, ForeignAid, Coup}
}
