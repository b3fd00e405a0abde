package quality

import (
	"net/http"

	"wotrack/internal/audit"
	"wotrack/internal/qc"
	"wotrack/internal/response"
)

// UpdateGates handles PUT /api/v1/workorders/:id/qc. Stores the raw gate
// statuses as reported and responds with their resolved view. Inputs are kept
// verbatim so a later change to the synonym table re-reads old rows correctly.
func (h *Handler) UpdateGates(w http.ResponseWriter, r *http.Request, workOrderID string) {
	var current struct {
		material   string
		firstPiece string
	}
	err := h.DB.QueryRow("SELECT COALESCE(material_qc_status,''),COALESCE(first_piece_qc_status,'') FROM work_orders WHERE id=?", workOrderID).
		Scan(&current.material, &current.firstPiece)
	if err != nil {
		response.Err(w, "work order not found", 404)
		return
	}

	var body struct {
		MaterialQCStatus   *string `json:"material_qc_status"`
		FirstPieceQCStatus *string `json:"first_piece_qc_status"`
	}
	if err := response.DecodeBody(r, &body); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}
	if body.MaterialQCStatus == nil && body.FirstPieceQCStatus == nil {
		response.Err(w, "no gate status given", 400)
		return
	}

	material := current.material
	if body.MaterialQCStatus != nil {
		material = *body.MaterialQCStatus
	}
	firstPiece := current.firstPiece
	if body.FirstPieceQCStatus != nil {
		firstPiece = *body.FirstPieceQCStatus
	}

	_, err = h.DB.Exec("UPDATE work_orders SET material_qc_status=?, first_piece_qc_status=? WHERE id=?",
		material, firstPiece, workOrderID)
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}

	view := qc.ResolveGates(material, firstPiece)
	audit.LogAudit(h.DB, h.Hub, r, "updated", "qc_gate", workOrderID,
		"QC gates on "+workOrderID+": material="+string(view.Material)+" first_piece="+string(view.FirstPiece))
	response.JSON(w, view)
}

// Gates handles GET /api/v1/workorders/:id/qc.
func (h *Handler) Gates(w http.ResponseWriter, r *http.Request, workOrderID string) {
	var material, firstPiece string
	err := h.DB.QueryRow("SELECT COALESCE(material_qc_status,''),COALESCE(first_piece_qc_status,'') FROM work_orders WHERE id=?", workOrderID).
		Scan(&material, &firstPiece)
	if err != nil {
		response.Err(w, "work order not found", 404)
		return
	}
	response.JSON(w, qc.ResolveGates(material, firstPiece))
}
