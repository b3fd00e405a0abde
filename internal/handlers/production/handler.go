// Package production serves the shop-floor logging API: production batches,
// cartons and external process moves.
package production

import (
	"database/sql"

	"wotrack/internal/websocket"
)

// Handler holds dependencies for production handlers.
type Handler struct {
	DB  *sql.DB
	Hub *websocket.Hub

	// NextID generates sequential IDs (e.g. "PB-2026-0001").
	NextID func(prefix, table string, digits int) string
}

func (h *Handler) workOrderExists(id string) bool {
	var one int
	return h.DB.QueryRow("SELECT 1 FROM work_orders WHERE id=?", id).Scan(&one) == nil
}
