package mod

import "github.com/pkg/errors"

// BinRecord is one row of the BIN database. A prefix may own several rows when
// the card is co-badged.
type BinRecord struct {
	Id       int64  `json:"id"`
	IinStart string `json:"iin_start"`
	IinEnd   string `json:"iin_end"`
	Prepaid  string `json:"prepaid"`
	BaseBinData
}

type BaseBinData struct {
	Schema              string `json:"schema"`    //MASTERCARD, VISA, EFTPOS, etc
	Brand               string `json:"brand"`     //product brand
	CardType            string `json:"card_type"` //debit or credit
	Country             string `json:"country"`   //ISO 3166 alpha-2
	BankName            string `json:"bank_name"`
	Currency            string `json:"currency"`
	Product             string `json:"product"`
	RegionalRestriction string `json:"regional_restriction"`
	AccountNumberType   string `json:"account_number_type"`
}

// RawNetworkRecord is a network entry as returned by the remote BIN lookup.
// Every enrichment field is optional.
type RawNetworkRecord struct {
	Value               string `json:"value"`
	DisplayName         string `json:"display_name,omitempty"`
	IssuerCountryCode   string `json:"issuer_country_code,omitempty"`
	IssuerName          string `json:"issuer_name,omitempty"`
	AccountFundingType  string `json:"account_funding_type,omitempty"`
	IssuerCurrencyCode  string `json:"issuer_currency_code,omitempty"`
	ProductName         string `json:"product_name,omitempty"`
	RegionalRestriction string `json:"regional_restriction,omitempty"`
	AccountNumberType   string `json:"account_number_type,omitempty"`
}

// BinLookup is the payload of a successful remote BIN lookup.
type BinLookup struct {
	FirstDigits string             `json:"first_digits"`
	Networks    []RawNetworkRecord `json:"networks"`
}

// ToRawNetworkRecord projects a stored row onto the lookup wire record.
func (r BinRecord) ToRawNetworkRecord() RawNetworkRecord {
	network := ParseCardNetwork(r.Schema)
	displayName := r.Brand
	if displayName == "" {
		displayName = network.DisplayName()
	}
	product := r.Product
	if product == "" {
		product = r.Brand
	}
	return RawNetworkRecord{
		Value:               string(network),
		DisplayName:         displayName,
		IssuerCountryCode:   r.Country,
		IssuerName:          r.BankName,
		AccountFundingType:  r.CardType,
		IssuerCurrencyCode:  r.Currency,
		ProductName:         product,
		RegionalRestriction: r.RegionalRestriction,
		AccountNumberType:   r.AccountNumberType,
	}
}

type BinStatus uint8

const (
	//local classification only
	BinStatusPartial BinStatus = 1
	//resolved by the remote lookup
	BinStatusComplete BinStatus = 2
)

func (s BinStatus) String() string {
	switch s {
	case BinStatusPartial:
		return "partial"
	case BinStatusComplete:
		return "complete"
	}
	return "unknown"
}

func (s BinStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *BinStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "partial":
		*s = BinStatusPartial
	case "complete":
		*s = BinStatusComplete
	default:
		return errors.Errorf("unknown bin status %q", text)
	}
	return nil
}

// BinData is the compatibility projection of a ValidationResult.
type BinData struct {
	Status       BinStatus         `json:"status"`
	FirstDigits  string            `json:"first_digits,omitempty"` //only when complete
	Preferred    *DetectedNetwork  `json:"preferred,omitempty"`
	Alternatives []DetectedNetwork `json:"alternatives"`
}
