// Package notifier delivers fired risk alerts to external channels.
package notifier

import (
	"github.com/newthinker/tradejournal/internal/core"
)

// Config holds notifier configuration
type Config struct {
	Type   string         `mapstructure:"type"`
	Params map[string]any `mapstructure:"params"`
}

// Notifier defines the interface for alert delivery
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Init initializes the notifier with configuration
	Init(cfg Config) error

	// Send delivers a single alert
	Send(alert core.Alert) error

	// SendBatch delivers several alerts in one message where the channel allows
	SendBatch(alerts []core.Alert) error
}
