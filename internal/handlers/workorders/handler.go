// Package workorders serves the work order API: CRUD, the readiness view,
// the stage view and the mark-complete transition.
package workorders

import (
	"database/sql"

	"wotrack/internal/models"
	"wotrack/internal/websocket"
)

// Handler holds dependencies for work order handlers.
type Handler struct {
	DB  *sql.DB
	Hub *websocket.Hub

	// NextID generates sequential IDs (e.g. "WO-2026-0001").
	NextID func(prefix, table string, digits int) string
}

// querier is satisfied by both *sql.DB and *sql.Tx so the loaders can run
// inside the mark-complete transaction.
type querier interface {
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

const woColumns = `id,item_code,COALESCE(description,''),ordered_qty,status,COALESCE(material_qc_status,''),COALESCE(first_piece_qc_status,''),COALESCE(sales_order_ref,''),COALESCE(notes,''),created_at,started_at,completed_at`

func scanWorkOrder(scan func(dest ...interface{}) error) (models.WorkOrder, error) {
	var wo models.WorkOrder
	var sa, ca sql.NullString
	err := scan(&wo.ID, &wo.ItemCode, &wo.Description, &wo.OrderedQty, &wo.Status,
		&wo.MaterialQCStatus, &wo.FirstPieceQCStatus, &wo.SalesOrderRef, &wo.Notes,
		&wo.CreatedAt, &sa, &ca)
	if err != nil {
		return wo, err
	}
	if sa.Valid {
		wo.StartedAt = &sa.String
	}
	if ca.Valid {
		wo.CompletedAt = &ca.String
	}
	return wo, nil
}

func loadWorkOrder(q querier, id string) (models.WorkOrder, error) {
	row := q.QueryRow("SELECT "+woColumns+" FROM work_orders WHERE id=?", id)
	return scanWorkOrder(row.Scan)
}

func loadBatches(q querier, woID string) ([]models.ProductionBatch, error) {
	rows, err := q.Query(`SELECT id,work_order_id,stage,status,produced_qty,qc_approved_qty,dispatched_qty,
		COALESCE(qc_status,''),COALESCE(external_process,''),COALESCE(external_partner,''),stage_entered_at,ended_at
		FROM production_batches WHERE work_order_id=? ORDER BY id`, woID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	batches := []models.ProductionBatch{}
	for rows.Next() {
		var b models.ProductionBatch
		var pq, aq, dq sql.NullFloat64
		var ea sql.NullString
		if err := rows.Scan(&b.ID, &b.WorkOrderID, &b.Stage, &b.Status, &pq, &aq, &dq,
			&b.QCStatus, &b.ExternalProcess, &b.ExternalPartner, &b.StageEnteredAt, &ea); err != nil {
			return nil, err
		}
		if pq.Valid {
			b.ProducedQty = &pq.Float64
		}
		if aq.Valid {
			b.QCApprovedQty = &aq.Float64
		}
		if dq.Valid {
			b.DispatchedQty = &dq.Float64
		}
		if ea.Valid {
			b.EndedAt = &ea.String
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func loadCartons(q querier, woID string) ([]models.Carton, error) {
	rows, err := q.Query("SELECT id,work_order_id,quantity,created_at FROM cartons WHERE work_order_id=? ORDER BY id", woID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cartons := []models.Carton{}
	for rows.Next() {
		var c models.Carton
		var qty sql.NullFloat64
		if err := rows.Scan(&c.ID, &c.WorkOrderID, &qty, &c.CreatedAt); err != nil {
			return nil, err
		}
		if qty.Valid {
			c.Quantity = &qty.Float64
		}
		cartons = append(cartons, c)
	}
	return cartons, rows.Err()
}

// loadFinishedGoods returns rows tied to the work order plus untied rows for
// the same item code. The aggregator sums tied rows first and only falls back
// to the untied ones.
func loadFinishedGoods(q querier, woID, itemCode string) ([]models.FinishedGood, error) {
	rows, err := q.Query(`SELECT item_code,COALESCE(work_order_id,''),qty_available FROM finished_goods
		WHERE work_order_id=? OR (item_code=? AND COALESCE(work_order_id,'')='')`, woID, itemCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goods := []models.FinishedGood{}
	for rows.Next() {
		var g models.FinishedGood
		if err := rows.Scan(&g.ItemCode, &g.WorkOrderID, &g.QtyAvailable); err != nil {
			return nil, err
		}
		goods = append(goods, g)
	}
	return goods, rows.Err()
}
