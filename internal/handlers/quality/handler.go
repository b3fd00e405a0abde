// Package quality serves the quality API: work order QC gate updates and
// non-conformance reports.
package quality

import (
	"database/sql"

	"wotrack/internal/websocket"
)

// Handler holds dependencies for quality handlers.
type Handler struct {
	DB  *sql.DB
	Hub *websocket.Hub

	// NextID generates sequential IDs (e.g. "NCR-2026-001").
	NextID func(prefix, table string, digits int) string

	// RepeatWindowDays bounds how far back Similar looks for matching
	// root causes.
	RepeatWindowDays int
}
