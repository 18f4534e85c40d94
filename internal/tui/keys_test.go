package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestTranslateKey(t *testing.T) {
	tests := map[string]struct {
		msg    tea.KeyMsg
		expKey string
	}{
		"A rune should keep its name": {
			msg:    tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")},
			expKey: "a",
		},
		"An upper case rune should keep its case": {
			msg:    tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("U")},
			expKey: "U",
		},
		"A control key should use the caret notation": {
			msg:    tea.KeyMsg{Type: tea.KeyCtrlS},
			expKey: "^S",
		},
		"Ctrl+x should be the cancel key": {
			msg:    tea.KeyMsg{Type: tea.KeyCtrlX},
			expKey: "^X",
		},
		"Arrow keys should keep the terminal name": {
			msg:    tea.KeyMsg{Type: tea.KeyDown},
			expKey: "down",
		},
		"Space should be named": {
			msg:    tea.KeyMsg{Type: tea.KeySpace},
			expKey: "space",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.expKey, translateKey(test.msg))
		})
	}
}
