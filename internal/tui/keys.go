package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Quit keys leave the screen right away, whatever is running.
const (
	quitKey      = "^Q"
	interruptKey = "^C"
)

// translateKey returns the keystroke name used on the key bindings: control keys
// use the caret notation (ctrl+s is ^S), the rest keep the terminal name.
func translateKey(msg tea.KeyMsg) string {
	k := msg.String()
	if rest, ok := strings.CutPrefix(k, "ctrl+"); ok && rest != "" {
		return "^" + strings.ToUpper(rest)
	}
	if k == " " {
		return "space"
	}
	return k
}
