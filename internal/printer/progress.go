package printer

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/slok/vgrid/internal/session"
)

const progressBarWidth = 30

// ProgressBar prints the progress of the work running on a sheet on a single
// line, for non interactive runs.
type ProgressBar struct {
	w io.Writer

	mu      sync.Mutex
	printed bool
}

// NewProgressBar creates a new progress bar writing to w.
func NewProgressBar(w io.Writer) *ProgressBar {
	return &ProgressBar{w: w}
}

// Update redraws the line with the progress.
func (p *ProgressBar) Update(v session.ProgressView) {
	if !v.Active {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.printed = true
	line := fmt.Sprintf("  %s…", v.Gerund)
	if v.Percent >= 0 {
		filled := min(v.Percent*progressBarWidth/100, progressBarWidth)
		bar := strings.Repeat("=", filled) + strings.Repeat(" ", progressBarWidth-filled)
		line = fmt.Sprintf("  [%s] %3d%% %s…", bar, v.Percent, v.Gerund)
	}
	if v.Tasks > 1 {
		line += fmt.Sprintf(" (%d tasks)", v.Tasks)
	}
	fmt.Fprintf(p.w, "\r\033[K%s", line)
}

// Finish ends the progress line, if anything was printed.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.printed {
		fmt.Fprintln(p.w)
		p.printed = false
	}
}
