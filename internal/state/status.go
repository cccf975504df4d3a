package state

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

// ChangeStatusMsg carries a refreshed status line to the UI.
type ChangeStatusMsg struct {
	Line string
	// Seq increases with every recorded change.
	Seq uint64
}

// ChangeStatus counts notes changed on disk since the session opened.
type ChangeStatus struct {
	mu      sync.Mutex
	changed map[string]struct{}
	last    time.Time
	seq     uint64
	now     func() time.Time
}

// Record notes that rel changed.
func (c *ChangeStatus) Record(rel string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.changed == nil {
		c.changed = make(map[string]struct{})
	}
	c.changed[rel] = struct{}{}
	c.last = c.clock()
	c.seq++
}

// Seq returns the number of changes recorded so far.
func (c *ChangeStatus) Seq() uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

func (c *ChangeStatus) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

// Line renders the status, or "" when nothing changed.
func (c *ChangeStatus) Line() string {
	if c == nil {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.changed) == 0 {
		return ""
	}
	return humanize.Comma(int64(len(c.changed))) + " changed on disk · " + humanize.RelTime(c.last, c.clock(), "ago", "from now")
}

// StatusCmd polls the status line after interval.
func (s *State) StatusCmd(interval time.Duration) tea.Cmd {
	if s == nil || s.Status == nil {
		return nil
	}
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return ChangeStatusMsg{Line: s.Status.Line(), Seq: s.Status.Seq()}
	})
}
