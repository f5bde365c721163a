// Package notify reports build progress to external listeners.
package notify

import (
	"context"
	"time"
)

// Status is the stage of a package build an Event reports.
type Status string

const (
	StatusStarted   Status = "started"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Event describes one build stage of one package.
type Event struct {
	RunID      string    `json:"run_id"`
	Status     Status    `json:"status"`
	Package    string    `json:"package"`
	Version    string    `json:"version,omitempty"`
	Target     string    `json:"target,omitempty"`
	Pipeline   string    `json:"pipeline,omitempty"`
	FailedTask string    `json:"failed_task,omitempty"`
	Error      string    `json:"error,omitempty"`
	Time       time.Time `json:"time"`
}

// Notifier delivers build events.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

// Notify implements Notifier.
func (Noop) Notify(context.Context, Event) error { return nil }

// Close implements Notifier.
func (Noop) Close() error { return nil }
