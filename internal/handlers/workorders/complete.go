package workorders

import (
	"errors"
	"fmt"
	"net/http"

	"wotrack/internal/audit"
	"wotrack/internal/database"
	"wotrack/internal/metrics"
	"wotrack/internal/response"
)

// ErrWriteRejected is returned when the mark-complete transition is declined,
// either because the readiness criteria are unmet or because the work order's
// state changed between evaluation and write. Callers must re-evaluate from
// fresh data; the rejection never toggles any previously computed verdict.
var ErrWriteRejected = errors.New("write rejected")

// Complete handles POST /api/v1/workorders/:id/complete. State is re-read
// and re-evaluated inside one transaction so the verdict and the write agree
// on the same snapshot.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request, id string) {
	tx, err := h.DB.Begin()
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}
	defer tx.Rollback()

	wo, err := loadWorkOrder(tx, id)
	if err != nil {
		response.Err(w, "not found", 404)
		return
	}

	if wo.Status == "completed" || wo.Status == "cancelled" {
		metrics.WriteRejectedTotal.Inc()
		response.Rejected(w, fmt.Sprintf("work order is already %s", wo.Status), nil)
		return
	}

	view, err := buildReadiness(tx, id)
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}
	metrics.EvaluationsTotal.Inc()

	if !view.Completion.CanMarkComplete {
		metrics.WriteRejectedTotal.Inc()
		response.Rejected(w, ErrWriteRejected.Error()+": completion criteria not met", view.Completion.Blockers)
		return
	}

	now := database.Now()
	res, err := tx.Exec("UPDATE work_orders SET status='completed', completed_at=? WHERE id=? AND status=?", now, id, wo.Status)
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Someone moved the work order between our read and write.
		metrics.WriteRejectedTotal.Inc()
		response.Rejected(w, ErrWriteRejected.Error()+": work order state changed concurrently", nil)
		return
	}

	// Completion books the packed quantity into finished goods against this
	// work order.
	if view.Totals.Packed > 0 {
		if _, err := tx.Exec("INSERT INTO finished_goods (item_code, work_order_id, qty_available, updated_at) VALUES (?,?,?,?)",
			wo.ItemCode, id, view.Totals.Packed, now); err != nil {
			response.Err(w, fmt.Errorf("record finished goods: %w", err).Error(), 500)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		response.Err(w, err.Error(), 500)
		return
	}

	metrics.CompletionsTotal.Inc()
	audit.LogAudit(h.DB, h.Hub, r, "completed", "workorder", id,
		fmt.Sprintf("Marked %s complete: %g produced, %g packed", id, view.Totals.Produced, view.Totals.Packed))

	completed, _ := loadWorkOrder(h.DB, id)
	response.JSON(w, completed)
}
