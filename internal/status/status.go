package status

import (
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/slok/vgrid/internal/log"
)

// Priority is the severity of a status message.
type Priority int

const (
	// PriorityInfo is an advisory message.
	PriorityInfo Priority = iota
	// PriorityWarning is a non fatal message, execution continues.
	PriorityWarning
	// PriorityFail is a recoverable failure, the current command stops.
	PriorityFail
	// PriorityError is an aborting error, the current command stops.
	PriorityError
)

func (p Priority) String() string {
	switch p {
	case PriorityInfo:
		return "info"
	case PriorityWarning:
		return "warning"
	case PriorityFail:
		return "fail"
	case PriorityError:
		return "error"
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// Interrupts reports if a message with this priority stops the issuing command.
func (p Priority) Interrupts() bool { return p >= PriorityFail }

// Message is a status message.
type Message struct {
	Priority Priority
	Parts    []string
	Repeats  int
	// Source is the file:line:function that reported the message, metadata only.
	Source string
	At     time.Time
}

// Text returns the composed message.
func (m Message) Text() string { return Compose(m.Parts, m.Repeats) }

// key identifies the message by priority and parts, the parts are quoted so no
// content can make two different part lists match.
func (m Message) key() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(m.Priority)))
	for _, p := range m.Parts {
		b.WriteByte(' ')
		b.WriteString(strconv.Quote(p))
	}
	return b.String()
}

func (m Message) same(o Message) bool {
	return m.Priority == o.Priority && slices.Equal(m.Parts, o.Parts)
}

// Compose joins the message parts and prefixes the repeats when there is more than one.
func Compose(parts []string, repeats int) string {
	msg := strings.Join(parts, "; ")
	if repeats > 1 {
		msg = fmt.Sprintf("[%dx] %s", repeats, msg)
	}
	return msg
}

// AbortError is returned by Fail and Error, the message is already recorded so
// whoever catches it at the dispatch boundary must not report it again.
type AbortError struct {
	Priority Priority
	Parts    []string
}

func (e *AbortError) Error() string { return strings.Join(e.Parts, "; ") }

// AggregatorConfig is the configuration for the status aggregator.
type AggregatorConfig struct {
	// Debug enables Debug messages.
	Debug  bool
	Logger log.Logger
	// Now is used to timestamp the messages.
	Now func() time.Time
}

func (c *AggregatorConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "status.Aggregator"})
	if c.Now == nil {
		c.Now = time.Now
	}
	return nil
}

// Aggregator records status messages from any goroutine.
//
// It keeps two views of the same reports: the history, chronological with
// consecutive duplicates collapsed, and the live set, keyed by priority and
// parts, that accumulates repeats since it was last cleared and is what the
// status line shows.
type Aggregator struct {
	mu      sync.Mutex
	history []Message
	live    []Message
	liveIdx map[string]int
	debug   bool
	logger  log.Logger
	now     func() time.Time
}

// NewAggregator returns a new status aggregator.
func NewAggregator(cfg AggregatorConfig) (*Aggregator, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Aggregator{
		liveIdx: map[string]int{},
		debug:   cfg.Debug,
		logger:  cfg.Logger,
		now:     cfg.Now,
	}, nil
}

// Report records a message with the priority. It returns false when there is nothing to report.
func (a *Aggregator) Report(p Priority, parts ...any) bool {
	return a.report(p, true, source(2), parts)
}

// Info reports an informational message.
func (a *Aggregator) Info(parts ...any) bool {
	return a.report(PriorityInfo, true, source(2), parts)
}

// Warning reports a warning.
func (a *Aggregator) Warning(parts ...any) bool {
	return a.report(PriorityWarning, true, source(2), parts)
}

// Fail reports a recoverable failure and returns the error the command must
// return to stop its execution.
func (a *Aggregator) Fail(parts ...any) error {
	a.report(PriorityFail, true, source(2), parts)
	return &AbortError{Priority: PriorityFail, Parts: toStrings(parts)}
}

// Error reports an aborting error and returns the error the command must
// return to stop its execution.
func (a *Aggregator) Error(parts ...any) error {
	a.report(PriorityError, true, source(2), parts)
	return &AbortError{Priority: PriorityError, Parts: toStrings(parts)}
}

// Aside adds the message to the history without showing it on the live set.
func (a *Aggregator) Aside(p Priority, parts ...any) bool {
	return a.report(p, false, source(2), parts)
}

// Debug reports an informational message only when debug is enabled.
func (a *Aggregator) Debug(parts ...any) bool {
	if !a.debug {
		return false
	}
	return a.report(PriorityInfo, true, source(2), parts)
}

func (a *Aggregator) report(p Priority, live bool, src string, parts []any) bool {
	if len(parts) == 0 {
		return false
	}

	msg := Message{
		Priority: p,
		Parts:    toStrings(parts),
		Repeats:  1,
		Source:   src,
		At:       a.now(),
	}
	k := msg.key()

	a.mu.Lock()
	if live {
		if i, ok := a.liveIdx[k]; ok {
			a.live[i].Repeats++
			a.live[i].At = msg.At
		} else {
			a.liveIdx[k] = len(a.live)
			a.live = append(a.live, msg)
		}
	}
	if n := len(a.history); n > 0 && a.history[n-1].same(msg) {
		a.history[n-1].Repeats++
	} else {
		a.history = append(a.history, msg)
	}
	a.mu.Unlock()

	a.log(msg)
	return true
}

func (a *Aggregator) log(m Message) {
	logger := a.logger.WithValues(log.Kv{"source": m.Source})
	text := strings.Join(m.Parts, "; ")
	switch m.Priority {
	case PriorityError:
		logger.Errorf("%s", text)
	case PriorityFail, PriorityWarning:
		logger.Warningf("%s", text)
	default:
		logger.Infof("%s", text)
	}
}

// History returns a copy of the chronological history.
func (a *Aggregator) History() []Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return cloneMessages(a.history)
}

// Live returns a copy of the messages shown since the last Clear, in first report order.
func (a *Aggregator) Live() []Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return cloneMessages(a.live)
}

// Clear empties the live set, the history is kept.
func (a *Aggregator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.live = nil
	a.liveIdx = map[string]int{}
}

func cloneMessages(ms []Message) []Message {
	out := make([]Message, len(ms))
	for i, m := range ms {
		m.Parts = slices.Clone(m.Parts)
		out[i] = m
	}
	return out
}

func toStrings(parts []any) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, fmt.Sprint(p))
	}
	return out
}

// source returns the caller location skip frames above the function calling source.
func source(skip int) string {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}

	fn := "unknown"
	if f := runtime.FuncForPC(pc); f != nil {
		fn = f.Name()
		if i := strings.LastIndex(fn, "."); i >= 0 {
			fn = fn[i+1:]
		}
	}
	if i := strings.Index(file, "/internal/"); i >= 0 {
		file = file[i+1:]
	}

	return fmt.Sprintf("%s:%d:%s", file, line, fn)
}
