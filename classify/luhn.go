package classify

import (
	"github.com/pkg/errors"

	"git.thinkinpower.net/cardbin/mod"
)

var (
	ErrEmpty    = errors.New("card number is empty")
	ErrNonDigit = errors.New("card number contains non-digit characters")
	ErrLength   = errors.New("card number has an invalid length")
	ErrChecksum = errors.New("card number fails the luhn check")
)

const (
	minCardNumberLength = 12
	maxCardNumberLength = 19
)

// Luhn reports whether digits pass the mod 10 checksum.
func Luhn(digits string) bool {
	if digits == "" || !isDigits(digits) {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ValidateNumber checks a complete card number for plausibility: digits only, a
// length accepted by one of its detected networks, and the Luhn checksum.
func ValidateNumber(digits string) error {
	if digits == "" {
		return ErrEmpty
	}
	if !isDigits(digits) {
		return ErrNonDigit
	}
	if !validLength(digits, PatternClassifier{}.Classify(digits)) {
		return errors.Wrapf(ErrLength, "length %d", len(digits))
	}
	if !Luhn(digits) {
		return ErrChecksum
	}
	return nil
}

// ExpectedLengths lists the card number lengths accepted for a network.
func ExpectedLengths(network mod.CardNetwork) []int {
	if rl, ok := ruleFor(network); ok {
		return rl.lengths
	}
	return nil
}

func validLength(digits string, networks []mod.CardNetwork) bool {
	known := false
	for _, network := range networks {
		lengths := ExpectedLengths(network)
		if len(lengths) == 0 {
			continue
		}
		known = true
		for _, l := range lengths {
			if l == len(digits) {
				return true
			}
		}
	}
	if known {
		return false
	}
	return len(digits) >= minCardNumberLength && len(digits) <= maxCardNumberLength
}
