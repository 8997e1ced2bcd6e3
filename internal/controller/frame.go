package controller

import (
	"time"

	"github.com/Sumatoshi-tech/sharechart/pkg/dataset"
	"github.com/Sumatoshi-tech/sharechart/pkg/engine"
	"github.com/Sumatoshi-tech/sharechart/pkg/summary"
	"github.com/Sumatoshi-tech/sharechart/pkg/uistate"
)

// Frame is everything the page needs after a render.
type Frame struct {
	State       uistate.State
	ModeLabel   string
	Source      dataset.Source
	SourceLabel string
	Snapshot    dataset.Snapshot
	// Version is the store version Snapshot was read at.
	Version uint64
	// Summary is the card shown with no highlight.
	Summary summary.Summary
	// Hover is summary.All for the snapshot.
	Hover     []summary.Summary
	Countries []string
	YearMin   int
	YearMax   int
	Toast     *Toast
	// Chart and Config are unset for frames built by Describe.
	Chart  engine.Chart
	Config engine.Config
}

// Toast is the singleton notification. A newer toast replaces the text and
// restarts the timer.
type Toast struct {
	Message string
	Raised  time.Time
	TTL     time.Duration
	// Seq increases with every raise.
	Seq uint64
}

func (t Toast) active(now time.Time) (Toast, bool) {
	if t.Message == "" || !now.Before(t.Raised.Add(t.TTL)) {
		return Toast{}, false
	}

	return t, true
}

// Remaining returns how long the toast stays visible after now.
func (t Toast) Remaining(now time.Time) time.Duration {
	return max(0, t.Raised.Add(t.TTL).Sub(now))
}

// ShowToast raises the notification, replacing any visible one.
func (c *Controller) ShowToast(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.showToastLocked(message)
}

// ShowNotice raises message now and again on every later page load.
func (c *Controller) ShowNotice(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.notice = message
	c.showToastLocked(message)
}

func (c *Controller) showToastLocked(message string) {
	c.toast = Toast{Message: message, Raised: c.now(), TTL: ToastTTL, Seq: c.toast.Seq + 1}
}

func (c *Controller) raiseNoticeLocked() {
	if c.notice != "" {
		c.showToastLocked(c.notice)
	}
}

// CurrentToast returns the visible toast, if any.
func (c *Controller) CurrentToast() (Toast, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.toast.active(c.now())
}
