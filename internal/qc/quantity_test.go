package qc

import (
	"math"
	"testing"

	"wotrack/internal/models"
)

func f(v float64) *float64 { return &v }

func TestSumStagesNilQuantitiesCountAsZero(t *testing.T) {
	batches := []models.ProductionBatch{
		{ProducedQty: f(100), QCApprovedQty: nil, DispatchedQty: nil},
		{ProducedQty: nil, QCApprovedQty: f(40), DispatchedQty: f(10)},
		{ProducedQty: nil, QCApprovedQty: nil, DispatchedQty: nil},
	}
	cartons := []models.Carton{{Quantity: f(25)}, {Quantity: nil}}

	totals := SumStages(batches, cartons, nil)
	if totals.Produced != 100 || totals.QCApproved != 40 || totals.Dispatched != 10 || totals.Packed != 25 {
		t.Errorf("unexpected totals: %+v", totals)
	}
	for name, v := range map[string]float64{
		"produced": totals.Produced, "qc_approved": totals.QCApproved,
		"packed": totals.Packed, "dispatched": totals.Dispatched,
	} {
		if math.IsNaN(v) {
			t.Errorf("%s is NaN", name)
		}
	}
}

func TestSumStagesIndependentNotCumulative(t *testing.T) {
	batches := []models.ProductionBatch{
		{ProducedQty: f(500), QCApprovedQty: f(450), DispatchedQty: f(200)},
		{ProducedQty: f(500), QCApprovedQty: f(400), DispatchedQty: f(100)},
	}
	totals := SumStages(batches, nil, nil)
	if totals.Produced != 1000 {
		t.Errorf("produced = %g, want 1000", totals.Produced)
	}
	if totals.QCApproved != 850 {
		t.Errorf("qc_approved = %g, want 850", totals.QCApproved)
	}
	if totals.Dispatched != 300 {
		t.Errorf("dispatched = %g, want 300", totals.Dispatched)
	}
}

func TestSumInventoryPrefersTiedRows(t *testing.T) {
	goods := []models.FinishedGood{
		{ItemCode: "FG-100", WorkOrderID: "WO-2026-0001", QtyAvailable: 30},
		{ItemCode: "FG-100", WorkOrderID: "WO-2026-0001", QtyAvailable: 20},
		{ItemCode: "FG-100", WorkOrderID: "", QtyAvailable: 999},
	}
	totals := SumStages(nil, nil, goods)
	if totals.InInventory != 50 {
		t.Errorf("in_inventory = %g, want 50 (tied rows only)", totals.InInventory)
	}
}

func TestSumInventoryFallsBackToItemCodeMatches(t *testing.T) {
	goods := []models.FinishedGood{
		{ItemCode: "FG-100", WorkOrderID: "", QtyAvailable: 15},
		{ItemCode: "FG-100", WorkOrderID: "", QtyAvailable: 5},
	}
	totals := SumStages(nil, nil, goods)
	if totals.InInventory != 20 {
		t.Errorf("in_inventory = %g, want 20 (untied fallback)", totals.InInventory)
	}
}

func TestPercentClampAndRatio(t *testing.T) {
	cases := []struct {
		qty, ordered float64
		percent      float64
		ratio        float64
	}{
		{500, 1000, 50, 50},
		{1200, 1000, 100, 120},
		{0, 1000, 0, 0},
		{100, 0, 0, 0},
		{100, -5, 0, 0},
	}
	for _, c := range cases {
		if got := Percent(c.qty, c.ordered); got != c.percent {
			t.Errorf("Percent(%g, %g) = %g, want %g", c.qty, c.ordered, got, c.percent)
		}
		if got := Ratio(c.qty, c.ordered); got != c.ratio {
			t.Errorf("Ratio(%g, %g) = %g, want %g", c.qty, c.ordered, got, c.ratio)
		}
	}
}

func TestStageBreakdownCountsOpenBatchesOnly(t *testing.T) {
	ended := "2026-08-01 10:00:00"
	batches := []models.ProductionBatch{
		{Stage: "production", ProducedQty: f(100)},
		{Stage: "production", ProducedQty: f(50)},
		{Stage: "qc", ProducedQty: f(80)},
		{Stage: "packing", ProducedQty: f(70), EndedAt: &ended},
	}
	bd := StageBreakdown(batches)
	if got := bd["production"]; got.Batches != 2 || got.Qty != 150 {
		t.Errorf("production = %+v, want 2 batches / 150", got)
	}
	if got := bd["qc"]; got.Batches != 1 || got.Qty != 80 {
		t.Errorf("qc = %+v, want 1 batch / 80", got)
	}
	if _, ok := bd["packing"]; ok {
		t.Error("ended batch should not count toward any stage")
	}
}
