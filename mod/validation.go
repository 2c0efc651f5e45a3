package mod

type ValidationSource string

const (
	ValidationSourceLocal         ValidationSource = "local"
	ValidationSourceRemote        ValidationSource = "remote"
	ValidationSourceLocalFallback ValidationSource = "localFallback"
)

// DetectedNetwork is a CardNetwork with issuer data. Issuer fields are only set
// for remote results.
type DetectedNetwork struct {
	Network             CardNetwork `json:"network"`
	DisplayName         string      `json:"display_name"`
	IssuerCountryCode   string      `json:"issuer_country_code,omitempty"`
	IssuerName          string      `json:"issuer_name,omitempty"`
	FundingType         string      `json:"funding_type,omitempty"`
	IssuerCurrencyCode  string      `json:"issuer_currency_code,omitempty"`
	ProductName         string      `json:"product_name,omitempty"`
	RegionalRestriction string      `json:"regional_restriction,omitempty"`
	AccountNumberType   string      `json:"account_number_type,omitempty"`
}

// NewDetectedNetwork returns a network without issuer data.
func NewDetectedNetwork(network CardNetwork) DetectedNetwork {
	return DetectedNetwork{Network: network, DisplayName: network.DisplayName()}
}

// DetectedNetworkFromRecord maps a remote record, keeping absent fields empty.
func DetectedNetworkFromRecord(r RawNetworkRecord) DetectedNetwork {
	network := ParseCardNetwork(r.Value)
	displayName := r.DisplayName
	if displayName == "" {
		displayName = network.DisplayName()
	}
	return DetectedNetwork{
		Network:             network,
		DisplayName:         displayName,
		IssuerCountryCode:   r.IssuerCountryCode,
		IssuerName:          r.IssuerName,
		FundingType:         r.AccountFundingType,
		IssuerCurrencyCode:  r.IssuerCurrencyCode,
		ProductName:         r.ProductName,
		RegionalRestriction: r.RegionalRestriction,
		AccountNumberType:   r.AccountNumberType,
	}
}

func (d DetectedNetwork) HasIssuerData() bool {
	return d.IssuerCountryCode != "" || d.IssuerName != "" || d.FundingType != "" ||
		d.IssuerCurrencyCode != "" || d.ProductName != "" || d.RegionalRestriction != "" ||
		d.AccountNumberType != ""
}

type DetectedNetworks struct {
	Items     []DetectedNetwork `json:"items"`
	Preferred *DetectedNetwork  `json:"preferred,omitempty"` //first allowed network
}

// Networks returns the bare network identifiers in order.
func (d DetectedNetworks) Networks() []CardNetwork {
	return networksOf(d.Items)
}

// ValidationResult is delivered once per accepted classification pass.
type ValidationResult struct {
	Generation uint64 `json:"generation"`
	// CardNumber holds the digits this pass classified: the live input for local
	// results, the resolved BIN prefix for remote and fallback results.
	CardNumber              string            `json:"card_number"`
	Source                  ValidationSource  `json:"source"`
	DetectedCardNetworks    DetectedNetworks  `json:"detected_card_networks"`
	SelectableCardNetworks  []DetectedNetwork `json:"selectable_card_networks,omitempty"` //nil when no detected network is allowed
	AutoSelectedCardNetwork *DetectedNetwork  `json:"auto_selected_card_network,omitempty"`
	FirstDigits             string            `json:"first_digits,omitempty"`
}

func (r ValidationResult) SelectableNetworks() []CardNetwork {
	return networksOf(r.SelectableCardNetworks)
}

func networksOf(items []DetectedNetwork) []CardNetwork {
	if items == nil {
		return nil
	}
	result := make([]CardNetwork, len(items))
	for i, v := range items {
		result[i] = v.Network
	}
	return result
}
