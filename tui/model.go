// Package tui is an interactive card entry screen driven by a validation controller.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"git.thinkinpower.net/cardbin/classify"
	"git.thinkinpower.net/cardbin/mod"
)

// Submitter receives the digits after every edit.
type Submitter interface {
	Submit(digits string)
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa")).Bold(true).Padding(1, 0)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6adc8"))
	networkStyle  = lipgloss.NewStyle().Padding(0, 2)
	chosenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")).Bold(true).Padding(0, 2)
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#585b70")).Padding(0, 2)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086")).Padding(1, 0, 0, 0)
)

type Model struct {
	input     textinput.Model
	submitter Submitter
	bridge    *Bridge

	digits   string
	result   *mod.ValidationResult
	bin      mod.BinData
	fetching string
	chosen   mod.CardNetwork
}

func New(submitter Submitter, bridge *Bridge) Model {
	input := textinput.New()
	input.Placeholder = "Card number"
	input.CharLimit = 23
	input.Focus()
	return Model{input: input, submitter: submitter, bridge: bridge}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.bridge.Wait())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.chosen = m.nextSelectable()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if digits := classify.Sanitize(m.input.Value()); digits != m.digits {
			m.digits = digits
			m.fetching = ""
			m.submitter.Submit(digits)
		}
		return m, cmd

	case ResultMsg:
		result := msg.Result
		m.result = &result
		m.bin = msg.Bin
		if result.Source != mod.ValidationSourceLocal {
			m.fetching = ""
		}
		m.chosen = m.reconcileChoice()
		return m, m.bridge.Wait()

	case FetchMsg:
		if strings.HasPrefix(m.digits, msg.Bin) {
			m.fetching = msg.Bin
		}
		return m, m.bridge.Wait()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// reconcileChoice keeps the user's choice while it stays selectable and
// otherwise takes the auto-selected network.
func (m Model) reconcileChoice() mod.CardNetwork {
	if m.result.AutoSelectedCardNetwork != nil {
		return m.result.AutoSelectedCardNetwork.Network
	}
	for _, n := range m.result.SelectableNetworks() {
		if n == m.chosen {
			return n
		}
	}
	return ""
}

func (m Model) nextSelectable() mod.CardNetwork {
	if m.result == nil {
		return m.chosen
	}
	selectable := m.result.SelectableNetworks()
	if len(selectable) == 0 {
		return ""
	}
	for i, n := range selectable {
		if n == m.chosen {
			return selectable[(i+1)%len(selectable)]
		}
	}
	return selectable[0]
}

func (m Model) Chosen() mod.CardNetwork {
	return m.chosen
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Card entry") + "\n")
	b.WriteString(m.input.View() + "\n")
	if m.digits != "" {
		b.WriteString(labelStyle.Render(classify.Format(m.digits)) + "\n")
	}
	b.WriteString("\n")

	if m.result != nil {
		selectable := make(map[mod.CardNetwork]bool)
		for _, n := range m.result.SelectableNetworks() {
			selectable[n] = true
		}
		for _, d := range m.result.DetectedCardNetworks.Items {
			line := d.DisplayName
			if d.IssuerName != "" {
				line = fmt.Sprintf("%s (%s)", line, d.IssuerName)
			}
			switch {
			case d.Network == m.chosen:
				b.WriteString(chosenStyle.Render("> "+line) + "\n")
			case m.result.SelectableCardNetworks != nil && !selectable[d.Network]:
				b.WriteString(disabledStyle.Render("  "+line+" (not accepted)") + "\n")
			default:
				b.WriteString(networkStyle.Render("  "+line) + "\n")
			}
		}
		if len(m.result.DetectedCardNetworks.Items) == 0 {
			b.WriteString(labelStyle.Render("No network detected") + "\n")
		}
		status := fmt.Sprintf("\n%s %s, %s %s", labelStyle.Render("source:"), m.result.Source,
			labelStyle.Render("bin:"), m.bin.Status)
		if m.bin.FirstDigits != "" {
			status += " " + m.bin.FirstDigits
		}
		b.WriteString(status + "\n")
	}
	if m.fetching != "" {
		b.WriteString(labelStyle.Render("looking up "+m.fetching+"...") + "\n")
	}
	if len(m.digits) >= 12 {
		if err := classify.ValidateNumber(m.digits); err != nil {
			b.WriteString(errorStyle.Render(err.Error()) + "\n")
		}
	}
	b.WriteString(helpStyle.Render("tab: choose network, esc: quit"))
	return b.String()
}
