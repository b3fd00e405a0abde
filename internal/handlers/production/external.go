package production

import (
	"net/http"

	"wotrack/internal/audit"
	"wotrack/internal/models"
	"wotrack/internal/response"
	"wotrack/internal/validation"
)

const moveColumns = "id,work_order_id,process,COALESCE(partner,''),qty_sent,qty_returned,status,COALESCE(dispatch_date,''),COALESCE(expected_return,''),created_at"

func scanMove(scan func(dest ...interface{}) error) (models.ExternalMove, error) {
	var m models.ExternalMove
	err := scan(&m.ID, &m.WorkOrderID, &m.Process, &m.Partner, &m.QtySent, &m.QtyReturned,
		&m.Status, &m.DispatchDate, &m.ExpectedReturn, &m.CreatedAt)
	return m, err
}

// ListMoves handles GET /api/v1/external-moves with an optional
// ?work_order_id= filter.
func (h *Handler) ListMoves(w http.ResponseWriter, r *http.Request) {
	query := "SELECT " + moveColumns + " FROM external_moves"
	var args []interface{}
	if wo := r.URL.Query().Get("work_order_id"); wo != "" {
		query += " WHERE work_order_id=?"
		args = append(args, wo)
	}
	query += " ORDER BY created_at DESC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	moves := []models.ExternalMove{}
	for rows.Next() {
		m, err := scanMove(rows.Scan)
		if err != nil {
			response.Err(w, err.Error(), 500)
			return
		}
		moves = append(moves, m)
	}
	response.JSON(w, moves)
}

// CreateMove handles POST /api/v1/external-moves. Records material dispatched
// to an outside processing partner.
func (h *Handler) CreateMove(w http.ResponseWriter, r *http.Request) {
	var m models.ExternalMove
	if err := response.DecodeBody(r, &m); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}

	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "work_order_id", m.WorkOrderID)
	validation.RequireField(ve, "process", m.Process)
	validation.ValidatePositiveFloat(ve, "qty_sent", m.QtySent)
	validation.ValidateMaxQuantity(ve, "qty_sent", m.QtySent)
	if m.DispatchDate != "" {
		validation.ValidateDate(ve, "dispatch_date", m.DispatchDate)
	}
	if m.ExpectedReturn != "" {
		validation.ValidateDate(ve, "expected_return", m.ExpectedReturn)
	}
	if ve.HasErrors() {
		response.Err(w, ve.Error(), 400)
		return
	}
	if !h.workOrderExists(m.WorkOrderID) {
		response.Err(w, "work order not found", 404)
		return
	}

	m.ID = h.NextID("EXM", "external_moves", 4)
	_, err := h.DB.Exec(`INSERT INTO external_moves (id,work_order_id,process,partner,qty_sent,qty_returned,status,dispatch_date,expected_return)
		VALUES (?,?,?,?,?,0,'dispatched',?,?)`,
		m.ID, m.WorkOrderID, m.Process, m.Partner, m.QtySent, m.DispatchDate, m.ExpectedReturn)
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}

	audit.LogAudit(h.DB, h.Hub, r, "created", "external_move", m.ID, "Dispatched "+m.ID+" to "+m.Partner)
	created, _ := h.getMove(m.ID)
	response.JSON(w, created)
}

func (h *Handler) getMove(id string) (models.ExternalMove, error) {
	row := h.DB.QueryRow("SELECT "+moveColumns+" FROM external_moves WHERE id=?", id)
	return scanMove(row.Scan)
}

// ReceiveMove handles POST /api/v1/external-moves/:id/receive. Adds a
// returned quantity to the move; status flips to returned once the full
// sent quantity is back, partial otherwise.
func (h *Handler) ReceiveMove(w http.ResponseWriter, r *http.Request, id string) {
	m, err := h.getMove(id)
	if err != nil {
		response.Err(w, "not found", 404)
		return
	}
	if m.Status == "returned" || m.Status == "cancelled" {
		response.Err(w, "move already closed", 400)
		return
	}

	var body struct {
		Quantity float64 `json:"quantity"`
	}
	if err := response.DecodeBody(r, &body); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}

	ve := &validation.ValidationErrors{}
	validation.ValidatePositiveFloat(ve, "quantity", body.Quantity)
	if body.Quantity > m.QtySent-m.QtyReturned {
		ve.Add("quantity", "exceeds outstanding quantity")
	}
	if ve.HasErrors() {
		response.Err(w, ve.Error(), 400)
		return
	}

	returned := m.QtyReturned + body.Quantity
	status := "partial"
	if returned >= m.QtySent {
		status = "returned"
	}
	if _, err := h.DB.Exec("UPDATE external_moves SET qty_returned=?, status=? WHERE id=?", returned, status, id); err != nil {
		response.Err(w, err.Error(), 500)
		return
	}

	audit.LogAudit(h.DB, h.Hub, r, "received", "external_move", id, "Received against "+id)
	updated, _ := h.getMove(id)
	response.JSON(w, updated)
}
