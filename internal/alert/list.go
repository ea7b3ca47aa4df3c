package alert

import (
	"fmt"
	"strings"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Mode decides how successive Apply calls combine.
type Mode string

const (
	// ModeAccumulate keeps the alerts of every completed fetch of a refresh.
	ModeAccumulate Mode = "accumulate"
	// ModeReplace clears the list on every Apply, so only the alerts of the
	// last completed fetch remain visible.
	ModeReplace Mode = "replace"
)

// ParseMode parses a mode name; the empty string selects ModeAccumulate.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAccumulate:
		return ModeAccumulate, nil
	case ModeReplace:
		return ModeReplace, nil
	default:
		return "", fmt.Errorf("unknown alert mode %q", s)
	}
}

// List is the rendered alert list.
type List struct {
	mu     sync.RWMutex
	mode   Mode
	alerts []Alert
}

func NewList(mode Mode) *List {
	if mode == "" {
		mode = ModeAccumulate
	}
	return &List{mode: mode}
}

// Mode returns the list's combining mode.
func (l *List) Mode() Mode {
	return l.mode
}

// Apply evaluates snapshots and updates the list according to the mode.
// It returns the alerts raised by this call.
func (l *List) Apply(snapshots []weather.Snapshot) []Alert {
	raised := Evaluate(snapshots)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.mode == ModeReplace {
		l.alerts = nil
	}
	l.alerts = append(l.alerts, raised...)
	return raised
}

// Reset empties the list.
func (l *List) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.alerts = nil
}

// Alerts returns a copy of the current list.
func (l *List) Alerts() []Alert {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Alert, len(l.alerts))
	copy(out, l.alerts)
	return out
}

// Messages returns the text of each alert in list order.
func (l *List) Messages() []string {
	alerts := l.Alerts()
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.Message
	}
	return out
}
