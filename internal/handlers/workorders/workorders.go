package workorders

import (
	"fmt"
	"net/http"
	"strconv"

	"wotrack/internal/audit"
	"wotrack/internal/database"
	"wotrack/internal/response"
	"wotrack/internal/validation"
)

// List handles GET /api/v1/workorders.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	query := "SELECT " + woColumns + " FROM work_orders"
	var args []interface{}
	if status := r.URL.Query().Get("status"); status != "" {
		query += " WHERE status=?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	all := []interface{}{}
	for rows.Next() {
		wo, err := scanWorkOrder(rows.Scan)
		if err != nil {
			response.Err(w, err.Error(), 500)
			return
		}
		all = append(all, wo)
	}
	if err := rows.Err(); err != nil {
		response.Err(w, err.Error(), 500)
		return
	}

	total := len(all)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	response.JSONMeta(w, all[start:end], total, page, limit)
}

// Get handles GET /api/v1/workorders/:id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, id string) {
	wo, err := loadWorkOrder(h.DB, id)
	if err != nil {
		response.Err(w, "not found", 404)
		return
	}
	response.JSON(w, wo)
}

// Create handles POST /api/v1/workorders.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var wo struct {
		ItemCode           string  `json:"item_code"`
		Description        string  `json:"description"`
		OrderedQty         float64 `json:"ordered_qty"`
		Status             string  `json:"status"`
		MaterialQCStatus   string  `json:"material_qc_status"`
		FirstPieceQCStatus string  `json:"first_piece_qc_status"`
		SalesOrderRef      string  `json:"sales_order_ref"`
		Notes              string  `json:"notes"`
	}
	if err := response.DecodeBody(r, &wo); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}

	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "item_code", wo.ItemCode)
	validation.ValidateMaxLength(ve, "item_code", wo.ItemCode, 100)
	validation.ValidateMaxLength(ve, "notes", wo.Notes, 10000)
	validation.ValidatePositiveFloat(ve, "ordered_qty", wo.OrderedQty)
	validation.ValidateMaxQuantity(ve, "ordered_qty", wo.OrderedQty)
	if wo.Status != "" {
		validation.ValidateEnum(ve, "status", wo.Status, validation.ValidWOStatuses)
	}
	if wo.Status == "completed" || wo.Status == "cancelled" {
		ve.Add("status", "cannot create a work order in a terminal state")
	}
	if ve.HasErrors() {
		response.Err(w, ve.Error(), 400)
		return
	}

	if wo.Status == "" {
		wo.Status = "draft"
	}
	id := h.NextID("WO", "work_orders", 4)
	now := database.Now()
	_, err := h.DB.Exec(`INSERT INTO work_orders (id,item_code,description,ordered_qty,status,material_qc_status,first_piece_qc_status,sales_order_ref,notes,created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		id, wo.ItemCode, wo.Description, wo.OrderedQty, wo.Status, wo.MaterialQCStatus, wo.FirstPieceQCStatus, wo.SalesOrderRef, wo.Notes, now)
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}

	audit.LogAudit(h.DB, h.Hub, r, "created", "workorder", id, "Created "+id+" for "+wo.ItemCode)
	created, _ := loadWorkOrder(h.DB, id)
	response.JSON(w, created)
}

// Update handles PUT /api/v1/workorders/:id. Status moves through the
// lifecycle state machine; the completed transition is reserved for the
// mark-complete endpoint so it always goes through readiness evaluation.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request, id string) {
	current, err := loadWorkOrder(h.DB, id)
	if err != nil {
		response.Err(w, "not found", 404)
		return
	}

	var body struct {
		ItemCode      string   `json:"item_code"`
		Description   *string  `json:"description"`
		OrderedQty    *float64 `json:"ordered_qty"`
		Status        string   `json:"status"`
		SalesOrderRef *string  `json:"sales_order_ref"`
		Notes         *string  `json:"notes"`
	}
	if err := response.DecodeBody(r, &body); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}

	if body.ItemCode == "" {
		body.ItemCode = current.ItemCode
	}
	orderedQty := current.OrderedQty
	if body.OrderedQty != nil {
		orderedQty = *body.OrderedQty
	}
	status := current.Status
	if body.Status != "" {
		status = body.Status
	}
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&current.Description, body.Description)
	apply(&current.SalesOrderRef, body.SalesOrderRef)
	apply(&current.Notes, body.Notes)

	ve := &validation.ValidationErrors{}
	validation.ValidateMaxLength(ve, "item_code", body.ItemCode, 100)
	validation.ValidateMaxLength(ve, "notes", current.Notes, 10000)
	validation.ValidatePositiveFloat(ve, "ordered_qty", orderedQty)
	validation.ValidateMaxQuantity(ve, "ordered_qty", orderedQty)
	if body.Status != "" {
		validation.ValidateEnum(ve, "status", body.Status, validation.ValidWOStatuses)
		if body.Status == "completed" && current.Status != "completed" {
			ve.Add("status", "use the complete endpoint to mark a work order complete")
		} else if !validation.ValidWOTransition(current.Status, body.Status) {
			ve.Add("status", fmt.Sprintf("invalid transition from %s to %s", current.Status, body.Status))
		}
	}
	if ve.HasErrors() {
		response.Err(w, ve.Error(), 400)
		return
	}

	now := database.Now()
	_, err = h.DB.Exec(`UPDATE work_orders SET item_code=?,description=?,ordered_qty=?,status=?,sales_order_ref=?,notes=?,
		started_at=CASE WHEN ?='in_progress' AND started_at IS NULL THEN ? ELSE started_at END WHERE id=?`,
		body.ItemCode, current.Description, orderedQty, status, current.SalesOrderRef, current.Notes, status, now, id)
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}

	audit.LogAudit(h.DB, h.Hub, r, "updated", "workorder", id, "Updated "+id+": status="+status)
	h.Get(w, r, id)
}

// Delete handles DELETE /api/v1/workorders/:id. A work order with recorded
// batches carries production history and cannot be removed.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := loadWorkOrder(h.DB, id); err != nil {
		response.Err(w, "not found", 404)
		return
	}

	var batchCount int
	h.DB.QueryRow("SELECT COUNT(*) FROM production_batches WHERE work_order_id=?", id).Scan(&batchCount)
	if batchCount > 0 {
		response.Err(w, fmt.Sprintf("cannot delete: %d production batch(es) reference this work order", batchCount), 400)
		return
	}

	if _, err := h.DB.Exec("DELETE FROM work_orders WHERE id=?", id); err != nil {
		response.Err(w, err.Error(), 500)
		return
	}
	audit.LogAudit(h.DB, h.Hub, r, "deleted", "workorder", id, "Deleted "+id)
	response.JSON(w, map[string]string{"deleted": id})
}

// Batches handles GET /api/v1/workorders/:id/batches.
func (h *Handler) Batches(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := loadWorkOrder(h.DB, id); err != nil {
		response.Err(w, "not found", 404)
		return
	}
	batches, err := loadBatches(h.DB, id)
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}
	response.JSON(w, batches)
}

// Cartons handles GET /api/v1/workorders/:id/cartons.
func (h *Handler) Cartons(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := loadWorkOrder(h.DB, id); err != nil {
		response.Err(w, "not found", 404)
		return
	}
	cartons, err := loadCartons(h.DB, id)
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}
	response.JSON(w, cartons)
}
