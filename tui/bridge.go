package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	logger "github.com/sirupsen/logrus"

	"git.thinkinpower.net/cardbin/mod"
)

// ResultMsg carries one controller delivery into the program.
type ResultMsg struct {
	Result mod.ValidationResult
	Bin    mod.BinData
}

// FetchMsg reports that a remote lookup for Bin has started.
type FetchMsg struct {
	Bin string
}

// Bridge is a controller observer feeding a bubbletea program. Deliveries wait for
// the program to read them until Close.
type Bridge struct {
	ch        chan tea.Msg
	done      chan struct{}
	closeOnce sync.Once
}

func NewBridge() *Bridge {
	return &Bridge{ch: make(chan tea.Msg, 256), done: make(chan struct{})}
}

func (b *Bridge) OnValidation(result mod.ValidationResult, bin mod.BinData) {
	b.send(ResultMsg{Result: result, Bin: bin})
}

func (b *Bridge) WillFetch(bin string) {
	b.send(FetchMsg{Bin: bin})
}

func (b *Bridge) send(msg tea.Msg) {
	select {
	case b.ch <- msg:
	case <-b.done:
		logger.Debugf("tui bridge closed, dropped %T", msg)
	}
}

// Close releases pending and future sends once the program has quit.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

// Wait returns a command yielding the next delivery, or nil after Close.
func (b *Bridge) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.ch:
			return msg
		case <-b.done:
			return nil
		}
	}
}
