// Package merge orders detected card networks against the merchant's allowed list
// and decides co-badge auto-selection. Everything here is pure.
package merge

import (
	"sort"

	"git.thinkinpower.net/cardbin/mod"
)

type Result struct {
	// Detected holds every detected network once: allowed networks in allowed
	// order, then the rest in detection order.
	Detected []mod.DetectedNetwork
	// Selectable is nil when no detected network is allowed.
	Selectable   []mod.DetectedNetwork
	AutoSelected *mod.DetectedNetwork
}

// Preferred is the first allowed network, if any.
func (r Result) Preferred() *mod.DetectedNetwork {
	if len(r.Selectable) == 0 {
		return nil
	}
	preferred := r.Selectable[0]
	return &preferred
}

// Merge computes the ordered detected and selectable sets and applies the co-badge
// rules to the selectable set.
func Merge(detected []mod.DetectedNetwork, allowed mod.AllowedNetworks, rules CoBadgeRules) Result {
	if len(detected) == 0 {
		return Result{}
	}
	unique := dedupe(detected)
	ordered := Order(unique, allowed)

	var selectable []mod.DetectedNetwork
	for _, d := range ordered {
		if allowed.Contains(d.Network) {
			selectable = append(selectable, d)
		}
	}

	result := Result{Detected: ordered, Selectable: selectable}
	if len(selectable) > 0 && rules.Match(networksOf(selectable)) {
		auto := selectable[0]
		result.AutoSelected = &auto
	}
	return result
}

// MergeNetworks is Merge for bare networks, as produced by the local classifier.
func MergeNetworks(detected []mod.CardNetwork, allowed mod.AllowedNetworks, rules CoBadgeRules) Result {
	items := make([]mod.DetectedNetwork, len(detected))
	for i, n := range detected {
		items[i] = mod.NewDetectedNetwork(n)
	}
	return Merge(items, allowed, rules)
}

// Order sorts allowed networks first by their rank, keeping the detection order of
// the networks that are not allowed.
func Order(detected []mod.DetectedNetwork, allowed mod.AllowedNetworks) []mod.DetectedNetwork {
	if detected == nil {
		return nil
	}
	ordered := make([]mod.DetectedNetwork, len(detected))
	copy(ordered, detected)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, _ := allowed.Rank(ordered[i].Network)
		rj, _ := allowed.Rank(ordered[j].Network)
		return ri < rj
	})
	return ordered
}

func dedupe(detected []mod.DetectedNetwork) []mod.DetectedNetwork {
	if detected == nil {
		return nil
	}
	seen := make(map[mod.CardNetwork]bool, len(detected))
	result := make([]mod.DetectedNetwork, 0, len(detected))
	for _, d := range detected {
		if seen[d.Network] {
			continue
		}
		seen[d.Network] = true
		result = append(result, d)
	}
	return result
}

func networksOf(items []mod.DetectedNetwork) []mod.CardNetwork {
	result := make([]mod.CardNetwork, len(items))
	for i, v := range items {
		result[i] = v.Network
	}
	return result
}
