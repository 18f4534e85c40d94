package progress

import (
	"sync"
	"sync/atomic"
)

// Progress tracks how much of an operation has been done. It is advanced by the
// owner task only and can be read from any goroutine.
type Progress struct {
	current atomic.Int64
	total   int64
	gerund  string

	doneOnce sync.Once
	onDone   func(*Progress)
}

// New returns a new progress, a total lower or equal than 0 means indeterminate.
func New(total int, gerund string) *Progress {
	return NewWithDone(total, gerund, nil)
}

// NewWithDone is like New but calls onDone once when the progress is finished.
func NewWithDone(total int, gerund string, onDone func(*Progress)) *Progress {
	if total < 0 {
		total = 0
	}
	return &Progress{
		total:  int64(total),
		gerund: gerund,
		onDone: onDone,
	}
}

// Advance adds one unit.
func (p *Progress) Advance() { p.AdvanceBy(1) }

// AdvanceBy adds n units, never passing the total when it is known.
// Negative values are ignored so the progress never goes back.
func (p *Progress) AdvanceBy(n int) {
	if p == nil || n <= 0 {
		return
	}

	if p.total <= 0 {
		p.current.Add(int64(n))
		return
	}

	for {
		cur := p.current.Load()
		next := min(cur+int64(n), p.total)
		if cur == next || p.current.CompareAndSwap(cur, next) {
			return
		}
	}
}

// Current returns the units done.
func (p *Progress) Current() int {
	if p == nil {
		return 0
	}
	return int(p.current.Load())
}

// Total returns the total units, 0 when unknown.
func (p *Progress) Total() int {
	if p == nil {
		return 0
	}
	return int(p.total)
}

// Gerund returns the label of what is being done.
func (p *Progress) Gerund() string {
	if p == nil {
		return ""
	}
	return p.gerund
}

// Indeterminate returns true when the total is unknown.
func (p *Progress) Indeterminate() bool { return p == nil || p.total <= 0 }

// Percent returns the done percentage [0, 100], or -1 when indeterminate.
func (p *Progress) Percent() int {
	if p.Indeterminate() {
		return -1
	}
	return int(p.current.Load() * 100 / p.total)
}

// Done finishes the progress. Safe to call multiple times.
func (p *Progress) Done() {
	if p == nil {
		return
	}
	p.doneOnce.Do(func() {
		if p.onDone != nil {
			p.onDone(p)
		}
	})
}
