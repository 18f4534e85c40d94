package printer

import (
	"fmt"

	"github.com/slok/vgrid/internal/model"
	"github.com/slok/vgrid/internal/status"
	"github.com/slok/vgrid/internal/task"
)

// CommandInfo describes a registered command for listing.
type CommandInfo struct {
	Name  string
	Keys  []string
	Scope string
	Async bool
	Help  string
}

// Printer knows how to print vgrid information in different formats.
type Printer interface {
	PrintSheet(d model.SheetData) error
	PrintSheetList(sheets []model.SheetSummary) error
	// PrintStatuses prints status messages, withSource adds where they were reported from.
	PrintStatuses(msgs []status.Message, withSource bool) error
	PrintTasks(tasks []task.Snapshot) error
	PrintCommands(cmds []CommandInfo) error
	PrintMessage(msg string) error
}

func cellText(v any) string {
	if model.IsNull(v) {
		return ""
	}
	return fmt.Sprint(v)
}
