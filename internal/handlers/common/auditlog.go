package common

import (
	"net/http"
	"strconv"

	"wotrack/internal/response"
)

type auditEntry struct {
	ID        int    `json:"id"`
	Module    string `json:"module"`
	Action    string `json:"action"`
	RecordID  string `json:"record_id"`
	Actor     string `json:"actor"`
	Summary   string `json:"summary"`
	IPAddress string `json:"ip_address"`
	CreatedAt string `json:"created_at"`
}

// AuditLog handles GET /api/v1/audit. Most recent first, capped at 500
// entries, with optional ?module= and ?record_id= filters.
func (h *Handler) AuditLog(w http.ResponseWriter, r *http.Request) {
	query := "SELECT id,module,action,record_id,COALESCE(actor,''),COALESCE(summary,''),COALESCE(ip_address,''),created_at FROM audit_log WHERE 1=1"
	var args []interface{}
	if m := r.URL.Query().Get("module"); m != "" {
		query += " AND module=?"
		args = append(args, m)
	}
	if id := r.URL.Query().Get("record_id"); id != "" {
		query += " AND record_id=?"
		args = append(args, id)
	}

	limit := 500
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n < limit {
			limit = n
		}
	}
	query += " ORDER BY id DESC LIMIT " + strconv.Itoa(limit)

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	entries := []auditEntry{}
	for rows.Next() {
		var e auditEntry
		if err := rows.Scan(&e.ID, &e.Module, &e.Action, &e.RecordID, &e.Actor, &e.Summary, &e.IPAddress, &e.CreatedAt); err != nil {
			response.Err(w, err.Error(), 500)
			return
		}
		entries = append(entries, e)
	}
	response.JSON(w, entries)
}
