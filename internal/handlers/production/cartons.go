package production

import (
	"net/http"

	"wotrack/internal/audit"
	"wotrack/internal/models"
	"wotrack/internal/response"
	"wotrack/internal/validation"
)

// CreateCarton handles POST /api/v1/cartons. A carton records packed quantity
// against a work order and feeds the packing criterion of readiness.
func (h *Handler) CreateCarton(w http.ResponseWriter, r *http.Request) {
	var c models.Carton
	if err := response.DecodeBody(r, &c); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}

	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "work_order_id", c.WorkOrderID)
	if c.Quantity == nil {
		ve.Add("quantity", "is required")
	} else {
		validation.ValidatePositiveFloat(ve, "quantity", *c.Quantity)
		validation.ValidateMaxQuantity(ve, "quantity", *c.Quantity)
	}
	if ve.HasErrors() {
		response.Err(w, ve.Error(), 400)
		return
	}
	if !h.workOrderExists(c.WorkOrderID) {
		response.Err(w, "work order not found", 404)
		return
	}

	c.ID = h.NextID("CTN", "cartons", 4)
	_, err := h.DB.Exec("INSERT INTO cartons (id,work_order_id,quantity) VALUES (?,?,?)",
		c.ID, c.WorkOrderID, c.Quantity)
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}

	audit.LogAudit(h.DB, h.Hub, r, "created", "carton", c.ID, "Packed carton "+c.ID+" for "+c.WorkOrderID)
	row := h.DB.QueryRow("SELECT id,work_order_id,quantity,created_at FROM cartons WHERE id=?", c.ID)
	var out models.Carton
	if err := row.Scan(&out.ID, &out.WorkOrderID, &out.Quantity, &out.CreatedAt); err != nil {
		response.Err(w, err.Error(), 500)
		return
	}
	response.JSON(w, out)
}

// DeleteCarton handles DELETE /api/v1/cartons/:id.
func (h *Handler) DeleteCarton(w http.ResponseWriter, r *http.Request, id string) {
	res, err := h.DB.Exec("DELETE FROM cartons WHERE id=?", id)
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		response.Err(w, "not found", 404)
		return
	}
	audit.LogAudit(h.DB, h.Hub, r, "deleted", "carton", id, "Deleted carton "+id)
	response.JSON(w, map[string]string{"deleted": id})
}
