package qc

import (
	"fmt"

	"wotrack/internal/models"
)

// BatchCompleted is the terminal production state for a batch.
const BatchCompleted = "completed"

// CompletionStatus is the derived readiness verdict for a work order. It is
// recomputed in full from the current snapshot on every call; nothing here is
// cached or patched incrementally.
type CompletionStatus struct {
	ProductionComplete bool          `json:"production_complete"`
	QCComplete         bool          `json:"qc_complete"`
	HasPacked          bool          `json:"has_packed"`
	Totals             StageTotals   `json:"totals"`
	Gate               OverallStatus `json:"gate"`
	CanMarkComplete    bool          `json:"can_mark_complete"`
	Blockers           []string      `json:"blockers"`
}

// EvaluateCompletion decides whether a work order may be marked complete.
// The three criteria are evaluated independently and combined with AND:
//
//   - production: every batch reached its terminal state and the produced
//     total covers the ordered quantity;
//   - QC: every batch's QC sub-status is passed or waived, and the overall
//     gate verdict is complete;
//   - packing: at least one packed unit exists.
//
// Blockers carry one human-readable line per failing criterion, always in
// production, QC, packing order, so identical inputs produce an identical
// list.
func EvaluateCompletion(orderedQty float64, batches []models.ProductionBatch, cartons []models.Carton, goods []models.FinishedGood, gate OverallStatus) CompletionStatus {
	totals := SumStages(batches, cartons, goods)

	openBatches := 0
	awaitingQC := 0
	for _, b := range batches {
		if b.Status != BatchCompleted {
			openBatches++
		}
		if !Satisfied(Normalize(b.QCStatus)) {
			awaitingQC++
		}
	}

	cs := CompletionStatus{
		ProductionComplete: openBatches == 0 && totals.Produced >= orderedQty,
		QCComplete:         awaitingQC == 0 && gate == OverallComplete,
		HasPacked:          totals.Packed > 0,
		Totals:             totals,
		Gate:               gate,
	}
	cs.CanMarkComplete = cs.ProductionComplete && cs.QCComplete && cs.HasPacked
	cs.Blockers = []string{}

	if !cs.ProductionComplete {
		if totals.Produced < orderedQty {
			cs.Blockers = append(cs.Blockers, fmt.Sprintf("production incomplete: %g of %g produced", totals.Produced, orderedQty))
		} else {
			cs.Blockers = append(cs.Blockers, fmt.Sprintf("production incomplete: %d batch(es) not yet completed", openBatches))
		}
	}
	if !cs.QCComplete {
		if awaitingQC > 0 {
			cs.Blockers = append(cs.Blockers, fmt.Sprintf("dispatch QC incomplete: %d batch(es) awaiting QC approval", awaitingQC))
		} else {
			cs.Blockers = append(cs.Blockers, fmt.Sprintf("quality gates not cleared: overall gate is %s", gate))
		}
	}
	if !cs.HasPacked {
		cs.Blockers = append(cs.Blockers, "no packed quantity recorded")
	}
	return cs
}
