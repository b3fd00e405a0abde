package workorders

import (
	"net/http"

	"wotrack/internal/metrics"
	"wotrack/internal/qc"
	"wotrack/internal/response"
)

// readinessView is the full derived state for one work order: gate
// resolution, stage totals with both clamped and raw percentages, the
// per-stage breakdown and the completion verdict.
type readinessView struct {
	WorkOrderID string                   `json:"work_order_id"`
	ItemCode    string                   `json:"item_code"`
	OrderedQty  float64                  `json:"ordered_qty"`
	Status      string                   `json:"status"`
	Gates       qc.GateView              `json:"gates"`
	Totals      qc.StageTotals           `json:"totals"`
	Percent     stagePercents            `json:"percent"`
	Ratio       stagePercents            `json:"ratio"`
	Stages      map[string]qc.StageCount `json:"stages"`
	Completion  qc.CompletionStatus      `json:"completion"`
}

type stagePercents struct {
	Produced   float64 `json:"produced"`
	QCApproved float64 `json:"qc_approved"`
	Packed     float64 `json:"packed"`
	Dispatched float64 `json:"dispatched"`
}

func buildReadiness(q querier, id string) (readinessView, error) {
	wo, err := loadWorkOrder(q, id)
	if err != nil {
		return readinessView{}, err
	}
	batches, err := loadBatches(q, id)
	if err != nil {
		return readinessView{}, err
	}
	cartons, err := loadCartons(q, id)
	if err != nil {
		return readinessView{}, err
	}
	goods, err := loadFinishedGoods(q, id, wo.ItemCode)
	if err != nil {
		return readinessView{}, err
	}

	gates := qc.ResolveGates(wo.MaterialQCStatus, wo.FirstPieceQCStatus)
	completion := qc.EvaluateCompletion(wo.OrderedQty, batches, cartons, goods, gates.Overall)
	t := completion.Totals

	return readinessView{
		WorkOrderID: wo.ID,
		ItemCode:    wo.ItemCode,
		OrderedQty:  wo.OrderedQty,
		Status:      wo.Status,
		Gates:       gates,
		Totals:      t,
		Percent: stagePercents{
			Produced:   qc.Percent(t.Produced, wo.OrderedQty),
			QCApproved: qc.Percent(t.QCApproved, wo.OrderedQty),
			Packed:     qc.Percent(t.Packed, wo.OrderedQty),
			Dispatched: qc.Percent(t.Dispatched, wo.OrderedQty),
		},
		Ratio: stagePercents{
			Produced:   qc.Ratio(t.Produced, wo.OrderedQty),
			QCApproved: qc.Ratio(t.QCApproved, wo.OrderedQty),
			Packed:     qc.Ratio(t.Packed, wo.OrderedQty),
			Dispatched: qc.Ratio(t.Dispatched, wo.OrderedQty),
		},
		Stages:     qc.StageBreakdown(batches),
		Completion: completion,
	}, nil
}

// Readiness handles GET /api/v1/workorders/:id/readiness.
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request, id string) {
	view, err := buildReadiness(h.DB, id)
	if err != nil {
		response.Err(w, "not found", 404)
		return
	}
	metrics.EvaluationsTotal.Inc()
	response.JSON(w, view)
}

// StageView handles GET /api/v1/stage-view: the per-stage breakdown for
// every work order still in flight.
func (h *Handler) StageView(w http.ResponseWriter, r *http.Request) {
	rows, err := h.DB.Query("SELECT id FROM work_orders WHERE status NOT IN ('completed','cancelled') ORDER BY created_at DESC")
	if err != nil {
		response.Err(w, err.Error(), 500)
		return
	}
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			response.Err(w, err.Error(), 500)
			return
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		response.Err(w, err.Error(), 500)
		return
	}
	rows.Close()

	views := []readinessView{}
	for _, id := range ids {
		view, err := buildReadiness(h.DB, id)
		if err != nil {
			continue
		}
		metrics.EvaluationsTotal.Inc()
		views = append(views, view)
	}
	response.JSON(w, views)
}
