// Package common serves cross-cutting endpoints: data exports and the
// audit trail.
package common

import (
	"database/sql"
	"net/http"
)

// Handler holds dependencies for common handlers.
type Handler struct {
	DB *sql.DB

	// LogExport records a data export in the audit trail.
	LogExport func(r *http.Request, module, format string, recordCount int)
}
