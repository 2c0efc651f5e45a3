package validation

import "git.thinkinpower.net/cardbin/mod"

// Project derives the BinData view of a result. Remote results are complete and
// carry the resolved BIN; everything else is partial.
func Project(r mod.ValidationResult) mod.BinData {
	out := mod.BinData{Status: mod.BinStatusPartial}
	if r.Source == mod.ValidationSourceRemote {
		out.Status = mod.BinStatusComplete
		out.FirstDigits = r.FirstDigits
	}

	items := r.DetectedCardNetworks.Items
	out.Alternatives = make([]mod.DetectedNetwork, 0, len(items))
	preferred := r.DetectedCardNetworks.Preferred
	if preferred != nil {
		p := *preferred
		out.Preferred = &p
	}
	for _, d := range items {
		if preferred != nil && d.Network == preferred.Network {
			continue
		}
		out.Alternatives = append(out.Alternatives, d)
	}
	return out
}
