package mod

import "strings"

type CardNetwork string

const (
	CardNetworkAmex            CardNetwork = "AMEX"
	CardNetworkBancontact      CardNetwork = "BANCONTACT"
	CardNetworkCartesBancaires CardNetwork = "CARTES_BANCAIRES"
	CardNetworkDiners          CardNetwork = "DINERS_CLUB"
	CardNetworkDiscover        CardNetwork = "DISCOVER"
	CardNetworkEftpos          CardNetwork = "EFTPOS"
	CardNetworkElo             CardNetwork = "ELO"
	CardNetworkHiper           CardNetwork = "HIPER"
	CardNetworkHipercard       CardNetwork = "HIPERCARD"
	CardNetworkJCB             CardNetwork = "JCB"
	CardNetworkMaestro         CardNetwork = "MAESTRO"
	CardNetworkMasterCard      CardNetwork = "MASTERCARD"
	CardNetworkMir             CardNetwork = "MIR"
	CardNetworkVisa            CardNetwork = "VISA"
	CardNetworkUnionPay        CardNetwork = "UNIONPAY"
	CardNetworkUnknown         CardNetwork = "OTHER"
)

// AllCardNetworks is used when a merchant does not configure its networks.
var AllCardNetworks = AllowedNetworks{
	CardNetworkAmex,
	CardNetworkBancontact,
	CardNetworkCartesBancaires,
	CardNetworkDiners,
	CardNetworkDiscover,
	CardNetworkEftpos,
	CardNetworkElo,
	CardNetworkHiper,
	CardNetworkHipercard,
	CardNetworkJCB,
	CardNetworkMaestro,
	CardNetworkMasterCard,
	CardNetworkMir,
	CardNetworkVisa,
	CardNetworkUnionPay,
}

type networkInfo struct {
	displayName string
	cvvLength   int
}

var networkInfos = map[CardNetwork]networkInfo{
	CardNetworkAmex:            {"American Express", 4},
	CardNetworkBancontact:      {"Bancontact", 3},
	CardNetworkCartesBancaires: {"Cartes Bancaires", 3},
	CardNetworkDiners:          {"Diners", 3},
	CardNetworkDiscover:        {"Discover", 3},
	CardNetworkEftpos:          {"EFTPOS", 3},
	CardNetworkElo:             {"Elo", 3},
	CardNetworkHiper:           {"Hiper", 3},
	CardNetworkHipercard:       {"Hiper", 3},
	CardNetworkJCB:             {"JCB", 3},
	CardNetworkMaestro:         {"Maestro", 3},
	CardNetworkMasterCard:      {"Mastercard", 3},
	CardNetworkMir:             {"Mir", 3},
	CardNetworkVisa:            {"Visa", 3},
	CardNetworkUnionPay:        {"UnionPay", 3},
}

// selection of these networks is routed automatically on co-badged cards
var selectionDisallowed = map[CardNetwork]bool{
	CardNetworkEftpos: true,
}

// ParseCardNetwork maps a wire value to a CardNetwork. Unrecognised values map to
// CardNetworkUnknown.
func ParseCardNetwork(s string) CardNetwork {
	value := strings.ToUpper(strings.TrimSpace(s))
	switch value {
	case "DINERS", "DINERSCLUB":
		return CardNetworkDiners
	case "CARTESBANCAIRES":
		return CardNetworkCartesBancaires
	}
	network := CardNetwork(value)
	if _, ok := networkInfos[network]; ok {
		return network
	}
	return CardNetworkUnknown
}

func (n CardNetwork) IsKnown() bool {
	_, ok := networkInfos[n]
	return ok
}

func (n CardNetwork) DisplayName() string {
	if info, ok := networkInfos[n]; ok {
		return info.displayName
	}
	return "Unknown"
}

// CVVLength is the expected security code length, 3 for unknown networks.
func (n CardNetwork) CVVLength() int {
	if info, ok := networkInfos[n]; ok {
		return info.cvvLength
	}
	return 3
}

// AllowsUserSelection reports whether the network may be offered for explicit
// selection on a co-badged card.
func (n CardNetwork) AllowsUserSelection() bool {
	return !selectionDisallowed[n]
}

// PriorityNetworks lists, in AllCardNetworks order, the networks that are not
// offered for user selection and are routed automatically on co-badged cards.
func PriorityNetworks() []CardNetwork {
	result := make([]CardNetwork, 0, len(selectionDisallowed))
	for _, n := range AllCardNetworks {
		if !n.AllowsUserSelection() {
			result = append(result, n)
		}
	}
	return result
}

func (n CardNetwork) String() string {
	return string(n)
}

// AllowedNetworks is the merchant's ordered list of enabled networks.
type AllowedNetworks []CardNetwork

// ParseAllowedNetworks drops unknown and duplicate entries, keeping the first
// occurrence.
func ParseAllowedNetworks(values []string) AllowedNetworks {
	result := make(AllowedNetworks, 0, len(values))
	seen := make(map[CardNetwork]bool, len(values))
	for _, v := range values {
		network := ParseCardNetwork(v)
		if network == CardNetworkUnknown || seen[network] {
			continue
		}
		seen[network] = true
		result = append(result, network)
	}
	return result
}

// Rank returns the position of n in the list.
func (a AllowedNetworks) Rank(n CardNetwork) (int, bool) {
	for i, v := range a {
		if v == n {
			return i, true
		}
	}
	return len(a), false
}

func (a AllowedNetworks) Contains(n CardNetwork) bool {
	_, ok := a.Rank(n)
	return ok
}

func (a AllowedNetworks) Strings() []string {
	result := make([]string, len(a))
	for i, v := range a {
		result[i] = string(v)
	}
	return result
}
