// Package tui provides an interactive terminal user interface for protokoll.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/protokoll/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Runs reads stored runs. Required.
	Runs driving.RunService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Runs == nil {
		return ErrMissingRunService
	}
	return nil
}
