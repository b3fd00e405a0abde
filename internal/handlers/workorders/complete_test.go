package workorders_test

import (
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"wotrack/internal/models"
	"wotrack/internal/testutil"
)

func seedReadyWorkOrder(t *testing.T, db *sql.DB) string {
	t.Helper()
	id := testutil.CreateTestWorkOrder(t, db, "WO-2026-0100", "FG-1000", 1000, "in_progress")
	mustExec(t, db, "UPDATE work_orders SET material_qc_status='passed', first_piece_qc_status='passed' WHERE id=?", id)
	mustExec(t, db, `INSERT INTO production_batches (id,work_order_id,stage,status,produced_qty,qc_approved_qty,qc_status)
		VALUES ('PB-2026-0100',?,'packing','completed',600,600,'passed'),
		       ('PB-2026-0101',?,'packing','completed',400,400,'waived')`, id, id)
	mustExec(t, db, "INSERT INTO cartons (id,work_order_id,quantity) VALUES ('CTN-2026-0100',?,500)", id)
	return id
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...interface{}) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
}

func decodeRejection(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode rejection body: %v", err)
	}
	return body
}

func TestCompleteWorkOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)
	id := seedReadyWorkOrder(t, db)

	req := testutil.JSONRequest("POST", "/api/v1/workorders/"+id+"/complete", nil)
	w := httptest.NewRecorder()
	h.Complete(w, req, id)

	testutil.AssertStatus(t, w, 200)
	var wo models.WorkOrder
	testutil.DecodeEnvelope(t, w, &wo)
	if wo.Status != "completed" {
		t.Errorf("Expected status completed, got %s", wo.Status)
	}
	if wo.CompletedAt == nil {
		t.Error("Expected completed_at to be set")
	}

	// Packed quantity is booked into finished goods.
	var qty float64
	db.QueryRow("SELECT qty_available FROM finished_goods WHERE work_order_id=?", id).Scan(&qty)
	if qty != 500 {
		t.Errorf("Expected 500 finished goods, got %g", qty)
	}
}

func TestCompleteRejectedWhenNotReady(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)
	id := testutil.CreateTestWorkOrder(t, db, "WO-2026-0200", "FG-2000", 1000, "in_progress")
	mustExec(t, db, `INSERT INTO production_batches (id,work_order_id,stage,status,produced_qty,qc_status)
		VALUES ('PB-2026-0200',?,'production','in_progress',800,'pending')`, id)

	req := testutil.JSONRequest("POST", "/api/v1/workorders/"+id+"/complete", nil)
	w := httptest.NewRecorder()
	h.Complete(w, req, id)

	testutil.AssertStatus(t, w, 409)
	body := decodeRejection(t, w)
	if body["kind"] != "write_rejected" {
		t.Errorf("Expected kind write_rejected, got %v", body["kind"])
	}
	blockers, ok := body["blockers"].([]interface{})
	if !ok || len(blockers) == 0 {
		t.Fatalf("Expected non-empty blockers, got %v", body["blockers"])
	}

	// Nothing written.
	var status string
	db.QueryRow("SELECT status FROM work_orders WHERE id=?", id).Scan(&status)
	if status != "in_progress" {
		t.Errorf("Expected status unchanged, got %s", status)
	}
}

func TestCompleteRejectedWithoutPackedQty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)
	id := seedReadyWorkOrder(t, db)
	mustExec(t, db, "DELETE FROM cartons WHERE work_order_id=?", id)

	req := testutil.JSONRequest("POST", "/api/v1/workorders/"+id+"/complete", nil)
	w := httptest.NewRecorder()
	h.Complete(w, req, id)

	testutil.AssertStatus(t, w, 409)
}

func TestCompleteRejectedWhenGateFailed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)
	id := seedReadyWorkOrder(t, db)
	mustExec(t, db, "UPDATE work_orders SET first_piece_qc_status='failed' WHERE id=?", id)

	req := testutil.JSONRequest("POST", "/api/v1/workorders/"+id+"/complete", nil)
	w := httptest.NewRecorder()
	h.Complete(w, req, id)

	testutil.AssertStatus(t, w, 409)
}

func TestCompleteAlreadyTerminal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)
	id := testutil.CreateTestWorkOrder(t, db, "WO-2026-0300", "FG-3000", 100, "completed")

	req := testutil.JSONRequest("POST", "/api/v1/workorders/"+id+"/complete", nil)
	w := httptest.NewRecorder()
	h.Complete(w, req, id)
	testutil.AssertStatus(t, w, 409)
}
