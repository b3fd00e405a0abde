package common

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/xuri/excelize/v2"

	"wotrack/internal/qc"
)

// ExportWorkOrders handles GET /api/v1/export/workorders. Streams the work
// order list as CSV or Excel, optionally filtered by status.
func (h *Handler) ExportWorkOrders(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	query := `SELECT id,item_code,COALESCE(description,''),ordered_qty,status,
		COALESCE(material_qc_status,''),COALESCE(first_piece_qc_status,''),
		COALESCE(sales_order_ref,''),created_at,COALESCE(started_at,''),COALESCE(completed_at,'') FROM work_orders`
	var args []interface{}
	if status := r.URL.Query().Get("status"); status != "" {
		query += " WHERE status=?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	headers := []string{"ID", "Item Code", "Description", "Ordered Qty", "Status", "Material QC", "First Piece QC", "Sales Order", "Created At", "Started At", "Completed At"}
	var data [][]string

	for rows.Next() {
		var id, itemCode, description, st, matQC, fpQC, soRef, createdAt, startedAt, completedAt string
		var orderedQty float64
		rows.Scan(&id, &itemCode, &description, &orderedQty, &st, &matQC, &fpQC, &soRef, &createdAt, &startedAt, &completedAt)
		data = append(data, []string{id, itemCode, description, fmt.Sprintf("%g", orderedQty), st, matQC, fpQC, soRef, createdAt, startedAt, completedAt})
	}

	h.LogExport(r, "work_orders", format, len(data))

	if format == "xlsx" {
		ExportExcel(w, "WorkOrders", headers, data)
	} else {
		ExportCSV(w, "work_orders.csv", headers, data)
	}
}

// ExportReadiness handles GET /api/v1/export/readiness. One row per work
// order with its stage totals, resolved gates and completion percentage.
func (h *Handler) ExportReadiness(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	rows, err := h.DB.Query(`SELECT w.id, w.item_code, w.ordered_qty, w.status,
			COALESCE(w.material_qc_status,''), COALESCE(w.first_piece_qc_status,''),
			COALESCE((SELECT SUM(COALESCE(b.produced_qty,0)) FROM production_batches b WHERE b.work_order_id = w.id), 0),
			COALESCE((SELECT SUM(COALESCE(b.qc_approved_qty,0)) FROM production_batches b WHERE b.work_order_id = w.id), 0),
			COALESCE((SELECT SUM(COALESCE(b.dispatched_qty,0)) FROM production_batches b WHERE b.work_order_id = w.id), 0),
			COALESCE((SELECT SUM(COALESCE(c.quantity,0)) FROM cartons c WHERE c.work_order_id = w.id), 0)
		FROM work_orders w ORDER BY w.created_at DESC`)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	headers := []string{"ID", "Item Code", "Ordered Qty", "Status", "Material Gate", "First Piece Gate", "Overall Gate", "Produced", "QC Approved", "Packed", "Dispatched", "Produced %"}
	var data [][]string

	for rows.Next() {
		var id, itemCode, st, matRaw, fpRaw string
		var ordered, produced, approved, dispatched, packed float64
		rows.Scan(&id, &itemCode, &ordered, &st, &matRaw, &fpRaw, &produced, &approved, &dispatched, &packed)

		gates := qc.ResolveGates(matRaw, fpRaw)
		data = append(data, []string{
			id, itemCode, fmt.Sprintf("%g", ordered), st,
			string(gates.Material), string(gates.FirstPiece), string(gates.Overall),
			fmt.Sprintf("%g", produced), fmt.Sprintf("%g", approved),
			fmt.Sprintf("%g", packed), fmt.Sprintf("%g", dispatched),
			fmt.Sprintf("%.1f", qc.Percent(produced, ordered)),
		})
	}

	h.LogExport(r, "readiness", format, len(data))

	if format == "xlsx" {
		ExportExcel(w, "Readiness", headers, data)
	} else {
		ExportCSV(w, "readiness.csv", headers, data)
	}
}

// ExportCSV writes rows as a CSV attachment.
func ExportCSV(w http.ResponseWriter, filename string, headers []string, data [][]string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(headers); err != nil {
		http.Error(w, "failed to write CSV headers", 500)
		return
	}
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			http.Error(w, "failed to write CSV row", 500)
			return
		}
	}
}

// ExportExcel writes rows as an xlsx attachment with a styled header row.
func ExportExcel(w http.ResponseWriter, sheetName string, headers []string, data [][]string) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		http.Error(w, "failed to create sheet", 500)
		return
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		http.Error(w, "failed to create header style", 500)
		return
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}
	for rowIdx, row := range data {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}
	for i := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 15)
	}
	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+sheetName+".xlsx")

	if err := f.Write(w); err != nil {
		http.Error(w, "failed to write workbook", 500)
		return
	}
}
