// Package audit writes the audit trail and mirrors every entry to the
// websocket hub so connected clients can refresh.
package audit

import (
	"database/sql"
	"log"
	"net/http"
	"strings"

	"wotrack/internal/websocket"
)

// LogAudit records an action in the audit log and broadcasts the change.
// Actor and client IP come off the originating request.
func LogAudit(db *sql.DB, hub *websocket.Hub, r *http.Request, action, module, recordID, summary string) {
	_, err := db.Exec("INSERT INTO audit_log (actor, action, module, record_id, summary, ip_address) VALUES (?, ?, ?, ?, ?, ?)",
		Actor(r), action, module, recordID, summary, ClientIP(r))
	if err != nil {
		log.Printf("audit log error: %v", err)
	}
	if hub != nil {
		hub.Notify(module, action, recordID)
	}
}

// Actor returns the acting identity for a request. There is no user system;
// upstream callers identify themselves with the X-Actor header.
func Actor(r *http.Request) string {
	if a := strings.TrimSpace(r.Header.Get("X-Actor")); a != "" {
		return a
	}
	return "system"
}

// ClientIP extracts the real client IP from the request (handles proxies).
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
