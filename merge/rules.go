package merge

import "git.thinkinpower.net/cardbin/mod"

// CoBadgeRule decides, from the whole selectable combination, whether the first
// selectable network is pre-selected.
type CoBadgeRule interface {
	Match(selectable []mod.CardNetwork) bool
}

type CoBadgeRuleFunc func(selectable []mod.CardNetwork) bool

func (f CoBadgeRuleFunc) Match(selectable []mod.CardNetwork) bool {
	return f(selectable)
}

// CoBadgeRules matches when any rule matches.
type CoBadgeRules []CoBadgeRule

func (rs CoBadgeRules) Match(selectable []mod.CardNetwork) bool {
	for _, r := range rs {
		if r.Match(selectable) {
			return true
		}
	}
	return false
}

// NoAutoSelect never pre-selects.
var NoAutoSelect = CoBadgeRules{}

// PriorityDebitRule matches a genuine co-badge: at least two selectable networks,
// exactly one of them the priority debit network.
type PriorityDebitRule struct {
	Network mod.CardNetwork
}

func (r PriorityDebitRule) Match(selectable []mod.CardNetwork) bool {
	if len(selectable) < 2 {
		return false
	}
	count := 0
	for _, n := range selectable {
		if n == r.Network {
			count++
		}
	}
	return count == 1
}

// PriorityDebitRules builds one PriorityDebitRule per network.
func PriorityDebitRules(networks ...mod.CardNetwork) CoBadgeRules {
	rules := make(CoBadgeRules, 0, len(networks))
	for _, n := range networks {
		rules = append(rules, PriorityDebitRule{Network: n})
	}
	return rules
}

// DefaultRules pre-selects on co-badges with a network that does not allow user
// selection (EFTPOS).
func DefaultRules() CoBadgeRules {
	return PriorityDebitRules(mod.PriorityNetworks()...)
}
