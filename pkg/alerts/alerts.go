package alerts

import (
	"sync"
	"time"

	"github.com/itops/staffdesk/pkg/logger"
)

// Level represents the severity of an alert
type Level string

const (
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// Alert is a user-facing notification
type Alert struct {
	Key       string    `json:"key"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Hint      string    `json:"hint,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Sink displays an alert to the operator.
type Sink func(Alert)

type episode struct {
	raisedAt time.Time
}

// Notifier shows at most one alert per key per failure episode. An episode
// ends when the key is resolved or its cooldown elapses.
type Notifier struct {
	mu       sync.Mutex
	active   map[string]episode
	cooldown time.Duration
	sink     Sink
	now      func() time.Time
}

// NewNotifier creates a notifier; a zero cooldown keeps episodes open until Resolve.
func NewNotifier(sink Sink, cooldown time.Duration) *Notifier {
	if sink == nil {
		sink = func(Alert) {}
	}
	return &Notifier{
		active:   make(map[string]episode),
		cooldown: cooldown,
		sink:     sink,
		now:      time.Now,
	}
}

// Raise shows the alert unless an episode for key is already open.
// It reports whether the alert was shown.
func (n *Notifier) Raise(key string, level Level, message, hint string) bool {
	n.mu.Lock()
	now := n.now()
	if ep, ok := n.active[key]; ok {
		if n.cooldown <= 0 || now.Sub(ep.raisedAt) < n.cooldown {
			n.mu.Unlock()
			logger.Debug("Alert suppressed", "key", key)
			return false
		}
	}
	n.active[key] = episode{raisedAt: now}
	n.mu.Unlock()

	logger.Info("Alert raised", "key", key, "level", level, "message", message)
	n.sink(Alert{
		Key:       key,
		Level:     level,
		Message:   message,
		Hint:      hint,
		Timestamp: now,
	})
	return true
}

// Resolve closes the episode for each key.
func (n *Notifier) Resolve(keys ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, k := range keys {
		delete(n.active, k)
	}
}

// Active reports whether an episode for key is open.
func (n *Notifier) Active(key string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.active[key]
	return ok
}

// Reset forgets every open episode.
func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.active = make(map[string]episode)
}
