// Package mcp provides an MCP (Model Context Protocol) server adapter for protokoll.
// It lets AI assistants read stored runs and drive the pipeline.
package mcp

import "errors"

// ErrMissingRunService is returned when the run service is not provided.
var ErrMissingRunService = errors.New("mcp: run service is required")
