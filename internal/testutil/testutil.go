// Package testutil provides shared helpers for handler tests: an in-memory
// database with the full schema and JSON request/response utilities.
package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"wotrack/internal/database"
	"wotrack/internal/models"

	_ "modernc.org/sqlite"
)

// SetupTestDB creates an in-memory SQLite database with foreign keys
// enabled and the full schema migrated.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test DB: %v", err)
	}
	return db
}

// NextIDFunc returns an ID generator bound to db, for wiring into handlers
// under test.
func NextIDFunc(db *sql.DB) func(prefix, table string, digits int) string {
	return func(prefix, table string, digits int) string {
		return database.NextID(db, prefix, table, digits)
	}
}

// CreateTestWorkOrder inserts a work order and returns its ID.
func CreateTestWorkOrder(t *testing.T, db *sql.DB, id, itemCode string, orderedQty float64, status string) string {
	t.Helper()
	_, err := db.Exec(`INSERT INTO work_orders (id,item_code,ordered_qty,status) VALUES (?,?,?,?)`,
		id, itemCode, orderedQty, status)
	if err != nil {
		t.Fatalf("Failed to insert work order: %v", err)
	}
	return id
}

// JSONRequest creates an HTTP request with a JSON body and content type.
func JSONRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	var req *http.Request
	if bodyBytes != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AssertStatus checks that the HTTP status code matches expected.
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// DecodeEnvelope decodes an API response envelope and extracts the data.
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var resp models.APIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode API envelope: %v", err)
	}
	dataBytes, _ := json.Marshal(resp.Data)
	if err := json.Unmarshal(dataBytes, v); err != nil {
		t.Fatalf("Failed to decode data from envelope: %v", err)
	}
}
