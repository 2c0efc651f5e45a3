package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	logger "github.com/sirupsen/logrus"

	"git.thinkinpower.net/cardbin/tui"
	"git.thinkinpower.net/cardbin/validation"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Interactive card entry with live network detection",
	RunE:  runDemo,
}

func init() {
	demoCmd.Flags().String("resolver", "", "BIN data service base URL")
	demoCmd.Flags().Bool("offline", false, "skip the BIN data service")
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// keep log lines out of the terminal UI
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(logger.ErrorLevel)

	bridge := tui.NewBridge()
	ctrl := validation.New(cfg.ToValidation(), nil, newResolver(cmd, cfg), bridge)
	defer ctrl.Close()
	defer bridge.Close()

	_, err = tea.NewProgram(tui.New(ctrl, bridge)).Run()
	return err
}
