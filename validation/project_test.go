package validation

import (
	"testing"

	"git.thinkinpower.net/cardbin/mod"
)

func detected(networks ...mod.CardNetwork) []mod.DetectedNetwork {
	items := make([]mod.DetectedNetwork, len(networks))
	for i, n := range networks {
		items[i] = mod.NewDetectedNetwork(n)
	}
	return items
}

func TestProjectStatus(t *testing.T) {
	items := detected(mod.CardNetworkVisa, mod.CardNetworkMasterCard)
	preferred := items[0]
	cases := []struct {
		source      mod.ValidationSource
		wantStatus  mod.BinStatus
		firstDigits string
	}{
		{mod.ValidationSourceRemote, mod.BinStatusComplete, "55226611"},
		{mod.ValidationSourceLocal, mod.BinStatusPartial, ""},
		{mod.ValidationSourceLocalFallback, mod.BinStatusPartial, ""},
	}
	for _, tc := range cases {
		r := mod.ValidationResult{
			Source:               tc.source,
			DetectedCardNetworks: mod.DetectedNetworks{Items: items, Preferred: &preferred},
		}
		if tc.source == mod.ValidationSourceRemote {
			r.FirstDigits = "55226611"
		}
		got := Project(r)
		if got.Status != tc.wantStatus || got.FirstDigits != tc.firstDigits {
			t.Fatalf("%s: status=%s firstDigits=%q", tc.source, got.Status, got.FirstDigits)
		}
		if got.Preferred == nil || got.Preferred.Network != mod.CardNetworkVisa {
			t.Fatalf("%s: preferred = %v", tc.source, got.Preferred)
		}
		if len(got.Alternatives) != 1 || got.Alternatives[0].Network != mod.CardNetworkMasterCard {
			t.Fatalf("%s: alternatives = %v", tc.source, got.Alternatives)
		}
	}
}

func TestProjectWithoutPreferred(t *testing.T) {
	got := Project(mod.ValidationResult{
		Source:               mod.ValidationSourceRemote,
		FirstDigits:          "40000000",
		DetectedCardNetworks: mod.DetectedNetworks{Items: detected(mod.CardNetworkCartesBancaires)},
	})
	if got.Preferred != nil {
		t.Fatalf("preferred = %v, want nil", got.Preferred)
	}
	if len(got.Alternatives) != 1 {
		t.Fatalf("alternatives = %v", got.Alternatives)
	}
}

func TestProjectEmpty(t *testing.T) {
	got := Project(mod.ValidationResult{Source: mod.ValidationSourceLocal})
	if got.Status != mod.BinStatusPartial || got.Preferred != nil || got.Alternatives == nil || len(got.Alternatives) != 0 {
		t.Fatalf("unexpected projection %+v", got)
	}
}

func TestProjectCopiesPreferred(t *testing.T) {
	items := detected(mod.CardNetworkVisa)
	preferred := items[0]
	r := mod.ValidationResult{Source: mod.ValidationSourceLocal, DetectedCardNetworks: mod.DetectedNetworks{Items: items, Preferred: &preferred}}
	got := Project(r)
	got.Preferred.DisplayName = "changed"
	if preferred.DisplayName != "Visa" {
		t.Fatalf("projection aliases the result's preferred network")
	}
}
