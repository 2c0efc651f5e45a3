package cli

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"git.thinkinpower.net/cardbin/classify"
	"git.thinkinpower.net/cardbin/config"
	"git.thinkinpower.net/cardbin/mod"
	"git.thinkinpower.net/cardbin/resolver"
	"git.thinkinpower.net/cardbin/validation"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <card number>",
	Short: "Type a card number through the detector and print every result",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookup,
}

func init() {
	lookupCmd.Flags().String("resolver", "", "BIN data service base URL")
	lookupCmd.Flags().Bool("offline", false, "skip the BIN data service")
}

// lookupLine is one printed delivery.
type lookupLine struct {
	Session      string               `json:"session"`
	Generation   uint64               `json:"generation"`
	Source       mod.ValidationSource `json:"source"`
	Networks     []mod.CardNetwork    `json:"networks"`
	Selectable   []mod.CardNetwork    `json:"selectable,omitempty"`
	AutoSelected mod.CardNetwork      `json:"auto_selected,omitempty"`
	Bin          mod.BinData          `json:"bin"`
}

func newLookupLine(session string, result mod.ValidationResult, bin mod.BinData) lookupLine {
	line := lookupLine{
		Session:    session,
		Generation: result.Generation,
		Source:     result.Source,
		Networks:   result.DetectedCardNetworks.Networks(),
		Selectable: result.SelectableNetworks(),
		Bin:        bin,
	}
	if result.AutoSelectedCardNetwork != nil {
		line.AutoSelected = result.AutoSelectedCardNetwork.Network
	}
	return line
}

var errOffline = errors.New("offline")

func newResolver(cmd *cobra.Command, cfg *config.Config) resolver.Resolver {
	if offline, _ := cmd.Flags().GetBool("offline"); offline {
		return resolver.Func(func(context.Context, string) (*mod.BinLookup, error) {
			return nil, errOffline
		})
	}
	url := cfg.Validation.ResolverURL
	if cmd.Flags().Changed("resolver") {
		url, _ = cmd.Flags().GetString("resolver")
	}
	return resolver.NewHTTPResolver(url, nil)
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	digits := classify.Sanitize(args[0])
	if digits == "" {
		return errors.Errorf("no digits in %q", args[0])
	}
	return typeNumber(cmd.OutOrStdout(), cfg.ToValidation(), newResolver(cmd, cfg), digits)
}

// typeNumber submits every prefix of digits as if typed, prints each delivery
// as a JSON line and returns once the last prefix is settled.
func typeNumber(out io.Writer, cfg validation.Config, upstream resolver.Resolver, digits string) error {
	enc := json.NewEncoder(out)
	//one generation per submitted prefix
	final := uint64(len(digits))
	settled := make(chan struct{}, 1)
	var (
		encodeErr error
		ctrl      *validation.Controller
	)
	ctrl = validation.New(cfg, nil, upstream, validation.ObserverFunc(func(result mod.ValidationResult, bin mod.BinData) {
		if err := enc.Encode(newLookupLine(ctrl.Session(), result, bin)); err != nil && encodeErr == nil {
			encodeErr = err
		}
		if result.Source != mod.ValidationSourceLocal && result.Generation == final {
			select {
			case settled <- struct{}{}:
			default:
			}
		}
	}))
	defer ctrl.Close()

	for i := 1; i <= len(digits); i++ {
		ctrl.Submit(digits[:i])
	}
	minBin := cfg.MinBinLength
	if minBin <= 0 {
		minBin = validation.DefaultMinBinLength
	}
	if len(digits) < minBin {
		return encodeErr
	}

	wait := cfg.Debounce + cfg.LookupTimeout + time.Second
	select {
	case <-settled:
	case <-time.After(wait):
		return errors.Errorf("no final result within %s", wait)
	}
	return encodeErr
}
