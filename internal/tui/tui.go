// Package tui is the interactive screen of a session.
//
// The screen never waits for the session tasks: it runs the synchronous commands
// on key presses and polls the session on every tick to redraw the active sheet,
// the status line and the progress of the background work.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/slok/vgrid/internal/command"
	"github.com/slok/vgrid/internal/log"
	"github.com/slok/vgrid/internal/session"
)

// DefaultTick is how often the screen polls the session.
const DefaultTick = 100 * time.Millisecond

// Config is the configuration of the interactive screen.
type Config struct {
	Session *session.Session
	Tick    time.Duration
	// MaxColumnWidth truncates the cells, 0 means the default.
	MaxColumnWidth int
	Logger         log.Logger
}

func (c *Config) defaults() error {
	if c.Session == nil {
		return fmt.Errorf("session is required")
	}

	if c.Tick <= 0 {
		c.Tick = DefaultTick
	}

	if c.MaxColumnWidth <= 0 {
		c.MaxColumnWidth = 24
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "tui.Model"})

	return nil
}

type tickMsg time.Time

// Model is the bubbletea model of the screen.
type Model struct {
	ctx    context.Context
	sess   *session.Session
	tick   time.Duration
	maxCol int
	logger log.Logger
	styles styles

	table  table.Model
	input  textinput.Model
	prompt *command.Command

	width  int
	height int

	// What the table is showing, to rebuild it only when the sheet changes.
	sheetID   string
	version   uint64
	cursorCol int
}

// New returns the screen model of a session, ctx is the context the commands run with.
func New(ctx context.Context, cfg Config) (Model, error) {
	if err := cfg.defaults(); err != nil {
		return Model{}, fmt.Errorf("invalid config: %w", err)
	}

	st := defaultStyles()

	t := table.New(table.WithFocused(true), table.WithHeight(10))
	t.SetStyles(st.table)

	in := textinput.New()
	in.CharLimit = 256

	return Model{
		ctx:       ctx,
		sess:      cfg.Session,
		tick:      cfg.Tick,
		maxCol:    cfg.MaxColumnWidth,
		logger:    cfg.Logger,
		styles:    st,
		table:     t,
		input:     in,
		cursorCol: -1,
	}, nil
}

// Run runs the screen until the user quits or there is nothing left to show.
func Run(ctx context.Context, cfg Config, opts ...tea.ProgramOption) error {
	m, err := New(ctx, cfg)
	if err != nil {
		return err
	}

	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return fmt.Errorf("interactive screen failed: %w", err)
	}

	return nil
}

func (m Model) Init() tea.Cmd { return m.nextTick() }

func (m Model) nextTick() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(m.width)
		m.table.SetHeight(max(m.height-chromeLines, 1))
		return m, nil

	case tickMsg:
		if m.done() {
			m.logger.Debugf("No sheets left, quitting")
			return m, tea.Quit
		}
		m.refresh()
		return m, m.nextTick()

	case tea.KeyMsg:
		if m.prompt != nil {
			return m.updatePrompt(msg)
		}
		return m.updateKey(msg)
	}

	return m, nil
}

// done is true when there are no sheets to show and nothing running that could push one.
func (m Model) done() bool {
	return m.sess.Active() == nil && len(m.sess.Runner().ListActive()) == 0
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := translateKey(msg)
	switch key {
	case quitKey, interruptKey:
		return m, tea.Quit
	case "esc":
		m.sess.ResetKeystrokes()
		return m, nil
	}

	cmd, err := m.sess.Resolve(key)
	if err != nil {
		return m, nil
	}

	if cmd.Input != "" {
		m.prompt = &cmd
		m.input.Prompt = cmd.Input + ": "
		m.input.SetValue("")
		return m, m.input.Focus()
	}

	m.run(cmd)
	return m, nil
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.prompt = nil
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		cmd := *m.prompt
		m.prompt = nil
		m.input.Blur()

		var args []string
		if v := strings.TrimSpace(m.input.Value()); v != "" {
			args = append(args, v)
		}
		m.run(cmd, args...)
		return m, nil
	}

	var c tea.Cmd
	m.input, c = m.input.Update(msg)
	return m, c
}

// run runs the command on the active sheet, failures are already on the status line.
func (m *Model) run(cmd command.Command, args ...string) {
	if _, err := m.sess.Run(m.ctx, cmd, args...); err != nil {
		m.logger.Debugf("Command %q failed: %s", cmd.Name, err)
	}
	m.refresh()
}

// refresh syncs the table with the active sheet.
func (m *Model) refresh() {
	sh := m.sess.Active()
	if sh == nil {
		m.table.SetRows(nil)
		m.table.SetColumns(nil)
		m.sheetID, m.version, m.cursorCol = "", 0, -1
		return
	}

	row, col := sh.Cursor()
	if sh.ID() != m.sheetID || sh.Version() != m.version || col != m.cursorCol {
		cols, rows := sheetTable(sh, m.maxCol)
		// Rows first, the table renders rows against the current columns.
		m.table.SetRows(nil)
		m.table.SetColumns(cols)
		m.table.SetRows(rows)
		m.sheetID, m.version, m.cursorCol = sh.ID(), sh.Version(), col
	}
	m.table.SetCursor(row)
}
