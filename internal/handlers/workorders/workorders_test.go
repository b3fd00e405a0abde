package workorders_test

import (
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"wotrack/internal/handlers/workorders"
	"wotrack/internal/models"
	"wotrack/internal/testutil"

	_ "modernc.org/sqlite"
)

func newTestHandler(db *sql.DB) *workorders.Handler {
	return &workorders.Handler{
		DB:     db,
		Hub:    nil,
		NextID: testutil.NextIDFunc(db),
	}
}

func TestCreateWorkOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)

	req := testutil.JSONRequest("POST", "/api/v1/workorders", map[string]interface{}{
		"item_code":   "FG-2000",
		"description": "Machined bracket",
		"ordered_qty": 500.0,
	})
	w := httptest.NewRecorder()
	h.Create(w, req)

	testutil.AssertStatus(t, w, 200)
	var wo models.WorkOrder
	testutil.DecodeEnvelope(t, w, &wo)
	if wo.ItemCode != "FG-2000" {
		t.Errorf("Expected item_code FG-2000, got %s", wo.ItemCode)
	}
	if wo.Status != "draft" {
		t.Errorf("Expected default status draft, got %s", wo.Status)
	}
	if wo.ID == "" {
		t.Error("Expected generated ID")
	}
}

func TestCreateWorkOrderValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing item code", map[string]interface{}{"ordered_qty": 10.0}},
		{"zero quantity", map[string]interface{}{"item_code": "FG-1", "ordered_qty": 0.0}},
		{"negative quantity", map[string]interface{}{"item_code": "FG-1", "ordered_qty": -5.0}},
		{"excessive quantity", map[string]interface{}{"item_code": "FG-1", "ordered_qty": 2000000.0}},
		{"bad status", map[string]interface{}{"item_code": "FG-1", "ordered_qty": 10.0, "status": "bogus"}},
		{"terminal status", map[string]interface{}{"item_code": "FG-1", "ordered_qty": 10.0, "status": "completed"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.JSONRequest("POST", "/api/v1/workorders", tc.body)
			w := httptest.NewRecorder()
			h.Create(w, req)
			testutil.AssertStatus(t, w, 400)
		})
	}
}

func TestListWorkOrdersStatusFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)
	testutil.CreateTestWorkOrder(t, db, "WO-2026-0001", "FG-1", 100, "draft")
	testutil.CreateTestWorkOrder(t, db, "WO-2026-0002", "FG-2", 100, "in_progress")

	req := testutil.JSONRequest("GET", "/api/v1/workorders?status=in_progress", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	testutil.AssertStatus(t, w, 200)
	var items []models.WorkOrder
	testutil.DecodeEnvelope(t, w, &items)
	if len(items) != 1 || items[0].ID != "WO-2026-0002" {
		t.Errorf("Expected only WO-2026-0002, got %+v", items)
	}
}

func TestListWorkOrdersPagination(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)
	testutil.CreateTestWorkOrder(t, db, "WO-2026-0001", "FG-1", 100, "draft")
	testutil.CreateTestWorkOrder(t, db, "WO-2026-0002", "FG-2", 100, "draft")
	testutil.CreateTestWorkOrder(t, db, "WO-2026-0003", "FG-3", 100, "draft")

	req := testutil.JSONRequest("GET", "/api/v1/workorders?page=2&limit=2", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	testutil.AssertStatus(t, w, 200)
	var resp models.APIResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Meta == nil {
		t.Fatal("Expected pagination meta")
	}
	if resp.Meta.Total != 3 || resp.Meta.Page != 2 || resp.Meta.Limit != 2 {
		t.Errorf("Expected meta total=3 page=2 limit=2, got %+v", resp.Meta)
	}
	items, ok := resp.Data.([]interface{})
	if !ok {
		t.Fatalf("Expected data array, got %T", resp.Data)
	}
	if len(items) != 1 {
		t.Errorf("Expected 1 item on page 2, got %d", len(items))
	}
}

func TestListWorkOrdersScanError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)
	// A text ordered_qty survives the CHECK but cannot scan into a float.
	mustExec(t, db, `INSERT INTO work_orders (id,item_code,ordered_qty,status) VALUES ('WO-2026-0001','FG-1','not-a-number','draft')`)

	req := testutil.JSONRequest("GET", "/api/v1/workorders", nil)
	w := httptest.NewRecorder()
	h.List(w, req)
	testutil.AssertStatus(t, w, 500)
}

func TestUpdateWorkOrderTransitions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)
	testutil.CreateTestWorkOrder(t, db, "WO-2026-0001", "FG-1", 100, "draft")

	// draft -> open is valid
	req := testutil.JSONRequest("PUT", "/api/v1/workorders/WO-2026-0001", map[string]interface{}{"status": "open"})
	w := httptest.NewRecorder()
	h.Update(w, req, "WO-2026-0001")
	testutil.AssertStatus(t, w, 200)

	// open -> completed must go through the complete endpoint
	req = testutil.JSONRequest("PUT", "/api/v1/workorders/WO-2026-0001", map[string]interface{}{"status": "completed"})
	w = httptest.NewRecorder()
	h.Update(w, req, "WO-2026-0001")
	testutil.AssertStatus(t, w, 400)

	// open -> draft is not a legal transition
	req = testutil.JSONRequest("PUT", "/api/v1/workorders/WO-2026-0001", map[string]interface{}{"status": "draft"})
	w = httptest.NewRecorder()
	h.Update(w, req, "WO-2026-0001")
	testutil.AssertStatus(t, w, 400)
}

func TestUpdateWorkOrderSetsStartedAt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)
	testutil.CreateTestWorkOrder(t, db, "WO-2026-0001", "FG-1", 100, "open")

	req := testutil.JSONRequest("PUT", "/api/v1/workorders/WO-2026-0001", map[string]interface{}{"status": "in_progress"})
	w := httptest.NewRecorder()
	h.Update(w, req, "WO-2026-0001")
	testutil.AssertStatus(t, w, 200)

	var wo models.WorkOrder
	testutil.DecodeEnvelope(t, w, &wo)
	if wo.StartedAt == nil {
		t.Error("Expected started_at to be set on in_progress transition")
	}
}

func TestUpdateWorkOrderKeepsOmittedFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)
	testutil.CreateTestWorkOrder(t, db, "WO-2026-0001", "FG-1", 100, "draft")
	mustExec(t, db, `UPDATE work_orders SET description='Machined bracket', sales_order_ref='SO-881', notes='rush order' WHERE id='WO-2026-0001'`)

	// A status-only update must not touch the other fields.
	req := testutil.JSONRequest("PUT", "/api/v1/workorders/WO-2026-0001", map[string]interface{}{"status": "open"})
	w := httptest.NewRecorder()
	h.Update(w, req, "WO-2026-0001")
	testutil.AssertStatus(t, w, 200)

	var wo models.WorkOrder
	testutil.DecodeEnvelope(t, w, &wo)
	if wo.Description != "Machined bracket" {
		t.Errorf("Expected description preserved, got %q", wo.Description)
	}
	if wo.SalesOrderRef != "SO-881" {
		t.Errorf("Expected sales_order_ref preserved, got %q", wo.SalesOrderRef)
	}
	if wo.Notes != "rush order" {
		t.Errorf("Expected notes preserved, got %q", wo.Notes)
	}

	// An explicit empty string still clears the field.
	req = testutil.JSONRequest("PUT", "/api/v1/workorders/WO-2026-0001", map[string]interface{}{"notes": ""})
	w = httptest.NewRecorder()
	h.Update(w, req, "WO-2026-0001")
	testutil.AssertStatus(t, w, 200)
	testutil.DecodeEnvelope(t, w, &wo)
	if wo.Notes != "" {
		t.Errorf("Expected notes cleared, got %q", wo.Notes)
	}
	if wo.Description != "Machined bracket" {
		t.Errorf("Expected description still preserved, got %q", wo.Description)
	}
}

func TestCreateWorkOrderAuditTrail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)

	req := testutil.JSONRequest("POST", "/api/v1/workorders", map[string]interface{}{
		"item_code":   "FG-2000",
		"ordered_qty": 500.0,
	})
	req.Header.Set("X-Actor", "jdoe")
	w := httptest.NewRecorder()
	h.Create(w, req)
	testutil.AssertStatus(t, w, 200)

	var actor, ip string
	err := db.QueryRow("SELECT actor, ip_address FROM audit_log ORDER BY id DESC LIMIT 1").Scan(&actor, &ip)
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}
	if actor != "jdoe" {
		t.Errorf("Expected actor jdoe, got %q", actor)
	}
	// httptest requests carry the TEST-NET-1 remote address.
	if ip != "192.0.2.1" {
		t.Errorf("Expected client IP 192.0.2.1, got %q", ip)
	}
}

func TestDeleteWorkOrderWithBatches(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)
	testutil.CreateTestWorkOrder(t, db, "WO-2026-0001", "FG-1", 100, "in_progress")
	if _, err := db.Exec(`INSERT INTO production_batches (id,work_order_id,stage,status) VALUES ('PB-2026-0001','WO-2026-0001','cutting','in_queue')`); err != nil {
		t.Fatalf("Failed to insert batch: %v", err)
	}

	req := testutil.JSONRequest("DELETE", "/api/v1/workorders/WO-2026-0001", nil)
	w := httptest.NewRecorder()
	h.Delete(w, req, "WO-2026-0001")
	testutil.AssertStatus(t, w, 400)

	// Without batches the delete goes through.
	testutil.CreateTestWorkOrder(t, db, "WO-2026-0002", "FG-2", 100, "draft")
	req = testutil.JSONRequest("DELETE", "/api/v1/workorders/WO-2026-0002", nil)
	w = httptest.NewRecorder()
	h.Delete(w, req, "WO-2026-0002")
	testutil.AssertStatus(t, w, 200)
}

func TestGetWorkOrderNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)

	req := testutil.JSONRequest("GET", "/api/v1/workorders/WO-9999-0001", nil)
	w := httptest.NewRecorder()
	h.Get(w, req, "WO-9999-0001")
	testutil.AssertStatus(t, w, 404)
}
