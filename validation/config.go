package validation

import (
	"time"

	"git.thinkinpower.net/cardbin/debounce"
	"git.thinkinpower.net/cardbin/merge"
	"git.thinkinpower.net/cardbin/mod"
)

const (
	DefaultMinBinLength  = 6
	DefaultMaxBinLength  = 8
	DefaultLookupTimeout = 5 * time.Second
)

type Config struct {
	// Allowed is the merchant's ordered network list for the session.
	Allowed mod.AllowedNetworks
	// MinBinLength is the input length from which local results carry selectable
	// networks and a remote lookup is scheduled.
	MinBinLength int
	// MaxBinLength truncates the input to the BIN used as the lookup key.
	MaxBinLength  int
	Debounce      time.Duration
	LookupTimeout time.Duration
	Rules         merge.CoBadgeRules
}

func DefaultConfig() Config {
	return Config{
		Allowed:       mod.AllCardNetworks,
		MinBinLength:  DefaultMinBinLength,
		MaxBinLength:  DefaultMaxBinLength,
		Debounce:      debounce.DefaultWindow,
		LookupTimeout: DefaultLookupTimeout,
		Rules:         merge.DefaultRules(),
	}
}

func (c Config) normalize() Config {
	if c.MinBinLength <= 0 {
		c.MinBinLength = DefaultMinBinLength
	}
	if c.MaxBinLength < c.MinBinLength {
		c.MaxBinLength = c.MinBinLength
	}
	if c.Debounce <= 0 {
		c.Debounce = debounce.DefaultWindow
	}
	if c.LookupTimeout <= 0 {
		c.LookupTimeout = DefaultLookupTimeout
	}
	if c.Rules == nil {
		c.Rules = merge.DefaultRules()
	}
	return c
}
