// Package classify is the offline card network classifier: prefix tables, length
// rules and the Luhn checksum. It performs no I/O.
package classify

import (
	"strconv"
	"strings"

	"git.thinkinpower.net/cardbin/mod"
)

type Classifier interface {
	Classify(digits string) []mod.CardNetwork
}

type ClassifierFunc func(digits string) []mod.CardNetwork

func (f ClassifierFunc) Classify(digits string) []mod.CardNetwork {
	return f(digits)
}

// PatternClassifier matches digits against the built-in prefix table. A prefix
// shorter than a pattern is compared against the pattern truncated to the same
// length, so short inputs may match several networks.
type PatternClassifier struct{}

func NewPatternClassifier() PatternClassifier {
	return PatternClassifier{}
}

func (PatternClassifier) Classify(digits string) []mod.CardNetwork {
	if digits == "" || !isDigits(digits) {
		return nil
	}
	var result []mod.CardNetwork
	for _, rl := range rules {
		for _, pt := range rl.patterns {
			if pt.matches(digits) {
				result = append(result, rl.network)
				break
			}
		}
	}
	return result
}

func (pt pattern) matches(digits string) bool {
	n := len(pt.min)
	if len(digits) < n {
		n = len(digits)
	}
	if pt.max == "" {
		return digits[:n] == pt.min[:n]
	}
	var (
		value, lo, hi int
		err           error
	)
	if value, err = strconv.Atoi(digits[:n]); err != nil {
		return false
	}
	if lo, err = strconv.Atoi(pt.min[:n]); err != nil {
		return false
	}
	if hi, err = strconv.Atoi(pt.max[:n]); err != nil {
		return false
	}
	return value >= lo && value <= hi
}

// Sanitize strips everything but ASCII digits.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// Format groups digits using the gaps of the first matching network.
func Format(digits string) string {
	gaps := defaultGaps
	if networks := (PatternClassifier{}).Classify(digits); len(networks) > 0 {
		if rl, ok := ruleFor(networks[0]); ok {
			gaps = rl.gaps
		}
	}
	var b strings.Builder
	g := 0
	for i, c := range digits {
		if g < len(gaps) && i == gaps[g] {
			b.WriteByte(' ')
			g++
		}
		b.WriteRune(c)
	}
	return b.String()
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
