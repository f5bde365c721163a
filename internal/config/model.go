package config

import (
	"maps"
	"time"
)

// Section is a flat set of environment-style keys (upper case) to values.
type Section map[string]string

// Model is the unified, format-agnostic representation of the build
// configuration.
type Model struct {
	// CI holds machine-wide defaults such as the editor location.
	CI Section
	// Platforms holds per-OS overrides of CI, keyed by GOOS.
	Platforms map[string]Section
	// Bundle holds defaults shared by every package.
	Bundle Section
	// Packages holds per-package overrides, keyed by package name.
	Packages map[string]Section
	// Notify is nil when no build notifications are configured.
	Notify *Notify
}

// Notify configures the socket.io build event notifier.
type Notify struct {
	URL                string
	Namespace          string
	Event              string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// NewModel returns an empty model with all maps allocated.
func NewModel() *Model {
	return &Model{
		CI:        Section{},
		Platforms: make(map[string]Section),
		Bundle:    Section{},
		Packages:  make(map[string]Section),
	}
}

// Merge copies every value of other into m. Keys present in both are taken
// from other.
func (m *Model) Merge(other *Model) {
	if other == nil {
		return
	}
	maps.Copy(m.CI, other.CI)
	maps.Copy(m.Bundle, other.Bundle)
	for name, sec := range other.Platforms {
		if m.Platforms[name] == nil {
			m.Platforms[name] = Section{}
		}
		maps.Copy(m.Platforms[name], sec)
	}
	for name, sec := range other.Packages {
		if m.Packages[name] == nil {
			m.Packages[name] = Section{}
		}
		maps.Copy(m.Packages[name], sec)
	}
	if other.Notify != nil {
		n := *other.Notify
		m.Notify = &n
	}
}
