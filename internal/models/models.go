package models

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// WorkOrder is a unit of manufacturing demand tracked through
// production, QC and dispatch stages.
type WorkOrder struct {
	ID                 string  `json:"id"`
	ItemCode           string  `json:"item_code"`
	Description        string  `json:"description"`
	OrderedQty         float64 `json:"ordered_qty"`
	Status             string  `json:"status"`
	MaterialQCStatus   string  `json:"material_qc_status"`
	FirstPieceQCStatus string  `json:"first_piece_qc_status"`
	SalesOrderRef      string  `json:"sales_order_ref"`
	Notes              string  `json:"notes"`
	CreatedAt          string  `json:"created_at"`
	StartedAt          *string `json:"started_at"`
	CompletedAt        *string `json:"completed_at"`
}

// ProductionBatch is a tracked sub-quantity of a work order moving through
// production stages. Quantity fields are pointers: the upstream logging flows
// leave them unset until the stage that fills them runs, and a missing value
// must sum as zero, never poison an aggregate.
type ProductionBatch struct {
	ID              string   `json:"id"`
	WorkOrderID     string   `json:"work_order_id"`
	Stage           string   `json:"stage"`
	Status          string   `json:"status"`
	ProducedQty     *float64 `json:"produced_qty"`
	QCApprovedQty   *float64 `json:"qc_approved_qty"`
	DispatchedQty   *float64 `json:"dispatched_qty"`
	QCStatus        string   `json:"qc_status"`
	ExternalProcess string   `json:"external_process"`
	ExternalPartner string   `json:"external_partner"`
	StageEnteredAt  string   `json:"stage_entered_at"`
	EndedAt         *string  `json:"ended_at"`
}

// Carton is a packed unit of finished goods belonging to a work order.
type Carton struct {
	ID          string   `json:"id"`
	WorkOrderID string   `json:"work_order_id"`
	Quantity    *float64 `json:"quantity"`
	CreatedAt   string   `json:"created_at"`
}

// ExternalMove records material sent to an outside processing partner
// and what has come back so far.
type ExternalMove struct {
	ID             string  `json:"id"`
	WorkOrderID    string  `json:"work_order_id"`
	Process        string  `json:"process"`
	Partner        string  `json:"partner"`
	QtySent        float64 `json:"qty_sent"`
	QtyReturned    float64 `json:"qty_returned"`
	Status         string  `json:"status"`
	DispatchDate   string  `json:"dispatch_date"`
	ExpectedReturn string  `json:"expected_return"`
	CreatedAt      string  `json:"created_at"`
}

// FinishedGood is available finished-goods stock, optionally tied to the
// work order that produced it.
type FinishedGood struct {
	ItemCode     string  `json:"item_code"`
	WorkOrderID  string  `json:"work_order_id"`
	QtyAvailable float64 `json:"qty_available"`
}

// NCR is a non-conformance report raised against a work order or item.
type NCR struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	WorkOrderID      string  `json:"work_order_id"`
	ItemCode         string  `json:"item_code"`
	DefectType       string  `json:"defect_type"`
	Severity         string  `json:"severity"`
	Status           string  `json:"status"`
	RootCause        string  `json:"root_cause"`
	CorrectiveAction string  `json:"corrective_action"`
	CreatedBy        string  `json:"created_by"`
	CreatedAt        string  `json:"created_at"`
	ResolvedAt       *string `json:"resolved_at"`
}
