package production

import (
	"database/sql"
	"net/http"

	"wotrack/internal/audit"
	"wotrack/internal/database"
	"wotrack/internal/models"
	"wotrack/internal/response"
	"wotrack/internal/validation"
)

const batchColumns = `id,work_order_id,stage,status,produced_qty,qc_approved_qty,dispatched_qty,
	COALESCE(qc_status,''),COALESCE(external_process,''),COALESCE(external_partner,''),stage_entered_at,ended_at`

func scanBatch(scan func(dest ...interface{}) error) (models.ProductionBatch, error) {
	var b models.ProductionBatch
	var pq, aq, dq sql.NullFloat64
	var ea sql.NullString
	err := scan(&b.ID, &b.WorkOrderID, &b.Stage, &b.Status, &pq, &aq, &dq,
		&b.QCStatus, &b.ExternalProcess, &b.ExternalPartner, &b.StageEnteredAt, &ea)
	if err != nil {
		return b, err
	}
	b.ProducedQty = database.FP(pq)
	b.QCApprovedQty = database.FP(aq)
	b.DispatchedQty = database.FP(dq)
	b.EndedAt = database.SP(ea)
	return b, nil
}

func validateQty(ve *validation.ValidationErrors, field string, v *float64) {
	if v == nil {
		return
	}
	validation.ValidateNonNegativeFloat(ve, field, *v)
	validation.ValidateMaxQuantity(ve, field, *v)
}

// ListBatches handles GET /api/v1/batches with an optional
// ?work_order_id= filter.
func (h *Handler) ListBatches(w http.ResponseWriter, r *http.Request) {
	query := "SELECT " + batchColumns + " FROM production_batches"
	var args []interface{}
	if wo := r.URL.Query().Get("work_order_id"); wo != "" {
		query += " WHERE work_order_id=?"
		args = append(args, wo)
	}
	query += " ORDER BY stage_entered_at DESC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	batches := []models.ProductionBatch{}
	for rows.Next() {
		b, err := scanBatch(rows.Scan)
		if err != nil {
			response.Err(w, err.Error(), 500)
			return
		}
		batches = append(batches, b)
	}
	response.JSON(w, batches)
}

// CreateBatch handles POST /api/v1/batches.
func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var b models.ProductionBatch
	if err := response.DecodeBody(r, &b); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}

	ve := &validation.ValidationErrors{}
	validation.RequireField(ve, "work_order_id", b.WorkOrderID)
	if b.Stage != "" {
		validation.ValidateEnum(ve, "stage", b.Stage, validation.ValidBatchStages)
	}
	if b.Status != "" {
		validation.ValidateEnum(ve, "status", b.Status, validation.ValidBatchStatuses)
	}
	validateQty(ve, "produced_qty", b.ProducedQty)
	validateQty(ve, "qc_approved_qty", b.QCApprovedQty)
	validateQty(ve, "dispatched_qty", b.DispatchedQty)
	if ve.HasErrors() {
		response.Err(w, ve.Error(), 400)
		return
	}
	if !h.workOrderExists(b.WorkOrderID) {
		response.Err(w, "work order not found", 404)
		return
	}

	if b.Stage == "" {
		b.Stage = "cutting"
	}
	if b.Status == "" {
		b.Status = "in_queue"
	}
	b.ID = h.NextID("PB", "production_batches", 4)
	now := database.Now()
	_, err := h.DB.Exec(`INSERT INTO production_batches (id,work_order_id,stage,status,produced_qty,qc_approved_qty,dispatched_qty,qc_status,external_process,external_partner,stage_entered_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		b.ID, b.WorkOrderID, b.Stage, b.Status, b.ProducedQty, b.QCApprovedQty, b.DispatchedQty, b.QCStatus, b.ExternalProcess, b.ExternalPartner, now)
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}

	audit.LogAudit(h.DB, h.Hub, r, "created", "batch", b.ID, "Created "+b.ID+" on "+b.WorkOrderID)
	created, _ := h.getBatch(b.ID)
	response.JSON(w, created)
}

func (h *Handler) getBatch(id string) (models.ProductionBatch, error) {
	row := h.DB.QueryRow("SELECT "+batchColumns+" FROM production_batches WHERE id=?", id)
	return scanBatch(row.Scan)
}

// UpdateBatch handles PUT /api/v1/batches/:id. Reporting quantities, moving
// the batch to another stage and recording its QC sub-status all go through
// here. Entering a new stage resets stage_entered_at; a batch leaves the
// flow (ended_at set) when it completes the dispatched stage.
func (h *Handler) UpdateBatch(w http.ResponseWriter, r *http.Request, id string) {
	current, err := h.getBatch(id)
	if err != nil {
		response.Err(w, "not found", 404)
		return
	}
	if current.EndedAt != nil {
		response.Err(w, "batch already ended", 400)
		return
	}

	var body struct {
		Stage           string   `json:"stage"`
		Status          string   `json:"status"`
		ProducedQty     *float64 `json:"produced_qty"`
		QCApprovedQty   *float64 `json:"qc_approved_qty"`
		DispatchedQty   *float64 `json:"dispatched_qty"`
		QCStatus        *string  `json:"qc_status"`
		ExternalProcess *string  `json:"external_process"`
		ExternalPartner *string  `json:"external_partner"`
	}
	if err := response.DecodeBody(r, &body); err != nil {
		response.Err(w, "invalid body", 400)
		return
	}

	ve := &validation.ValidationErrors{}
	if body.Stage != "" {
		validation.ValidateEnum(ve, "stage", body.Stage, validation.ValidBatchStages)
	}
	if body.Status != "" {
		validation.ValidateEnum(ve, "status", body.Status, validation.ValidBatchStatuses)
	}
	validateQty(ve, "produced_qty", body.ProducedQty)
	validateQty(ve, "qc_approved_qty", body.QCApprovedQty)
	validateQty(ve, "dispatched_qty", body.DispatchedQty)
	if ve.HasErrors() {
		response.Err(w, ve.Error(), 400)
		return
	}

	stage := current.Stage
	if body.Stage != "" {
		stage = body.Stage
	}
	status := current.Status
	if body.Status != "" {
		status = body.Status
	}
	produced := current.ProducedQty
	if body.ProducedQty != nil {
		produced = body.ProducedQty
	}
	approved := current.QCApprovedQty
	if body.QCApprovedQty != nil {
		approved = body.QCApprovedQty
	}
	dispatched := current.DispatchedQty
	if body.DispatchedQty != nil {
		dispatched = body.DispatchedQty
	}
	qcStatus := current.QCStatus
	if body.QCStatus != nil {
		qcStatus = *body.QCStatus
	}
	extProcess := current.ExternalProcess
	if body.ExternalProcess != nil {
		extProcess = *body.ExternalProcess
	}
	extPartner := current.ExternalPartner
	if body.ExternalPartner != nil {
		extPartner = *body.ExternalPartner
	}

	now := database.Now()
	stageEntered := current.StageEnteredAt
	if stage != current.Stage {
		stageEntered = now
	}
	var endedAt interface{}
	if stage == "dispatched" && status == "completed" {
		endedAt = now
	}

	_, err = h.DB.Exec(`UPDATE production_batches SET stage=?,status=?,produced_qty=?,qc_approved_qty=?,dispatched_qty=?,
		qc_status=?,external_process=?,external_partner=?,stage_entered_at=?,ended_at=? WHERE id=?`,
		stage, status, produced, approved, dispatched, qcStatus, extProcess, extPartner, stageEntered, endedAt, id)
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}

	audit.LogAudit(h.DB, h.Hub, r, "updated", "batch", id, "Updated "+id+": stage="+stage+" status="+status)
	updated, _ := h.getBatch(id)
	response.JSON(w, updated)
}
