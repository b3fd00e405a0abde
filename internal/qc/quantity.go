package qc

import "wotrack/internal/models"

// StageTotals are independent per-stage sums for one work order. Each figure
// is a straight sum over its own source collection, not a cumulative running
// total.
type StageTotals struct {
	Produced    float64 `json:"produced"`
	QCApproved  float64 `json:"qc_approved"`
	Packed      float64 `json:"packed"`
	Dispatched  float64 `json:"dispatched"`
	InInventory float64 `json:"in_inventory"`
}

func nz(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// SumStages computes the stage totals for a work order from its batches,
// cartons and finished-goods rows. Callers pass collections already filtered
// to the work order (goods may additionally include item-code matches with no
// work-order association, used as a fallback when nothing is tied directly).
func SumStages(batches []models.ProductionBatch, cartons []models.Carton, goods []models.FinishedGood) StageTotals {
	var t StageTotals
	for _, b := range batches {
		t.Produced += nz(b.ProducedQty)
		t.QCApproved += nz(b.QCApprovedQty)
		t.Dispatched += nz(b.DispatchedQty)
	}
	for _, c := range cartons {
		t.Packed += nz(c.Quantity)
	}
	t.InInventory = sumInventory(goods)
	return t
}

// sumInventory prefers rows tied to the work order; only when none are tied
// does it fall back to untied rows matched by item code. The fallback is
// additive stock, never a subtraction.
func sumInventory(goods []models.FinishedGood) float64 {
	var tied, untied float64
	haveTied := false
	for _, g := range goods {
		if g.WorkOrderID != "" {
			tied += g.QtyAvailable
			haveTied = true
		} else {
			untied += g.QtyAvailable
		}
	}
	if haveTied {
		return tied
	}
	return untied
}

// Percent returns qty as a percentage of ordered, clamped to [0, 100] for
// progress-bar display. Zero when nothing was ordered.
func Percent(qty, ordered float64) float64 {
	if ordered <= 0 {
		return 0
	}
	p := 100 * qty / ordered
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// Ratio returns the unclamped percentage, kept available for overflow
// indicators when production exceeds the ordered quantity.
func Ratio(qty, ordered float64) float64 {
	if ordered <= 0 {
		return 0
	}
	return 100 * qty / ordered
}

// StageCount is the slice of a work order currently sitting in one stage.
type StageCount struct {
	Batches int     `json:"batches"`
	Qty     float64 `json:"qty"`
}

// StageBreakdown groups open batches by their current stage. A batch counts
// toward exactly one stage at a time: the one it is in while ended_at is
// still null.
func StageBreakdown(batches []models.ProductionBatch) map[string]StageCount {
	out := make(map[string]StageCount)
	for _, b := range batches {
		if b.EndedAt != nil {
			continue
		}
		sc := out[b.Stage]
		sc.Batches++
		sc.Qty += nz(b.ProducedQty)
		out[b.Stage] = sc
	}
	return out
}
