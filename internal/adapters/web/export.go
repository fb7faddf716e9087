package web

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"order-ledger/internal/core"

	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{
	"Order ID", "Kind", "Date", "Customer / Supplier", "Total Qty", "Dispatched", "Remaining",
	"Total Value", "Paid", "Balance Due", "Fulfillment", "Payment",
}

// buildOrdersWorkbook renders the order list with a totals footer row.
func buildOrdersWorkbook(views []core.OrderView, totals core.FleetTotals) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Orders"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	boldStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return nil, err
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	row := 2
	for _, v := range views {
		values := []any{
			v.ID, string(v.Kind), v.Date, v.Counterpart(),
			v.TotalQuantity.InexactFloat64(), v.DispatchedQuantity.InexactFloat64(), v.RemainingQuantity.InexactFloat64(),
			v.TotalValue.InexactFloat64(), v.PaidAmount.InexactFloat64(), v.BalanceDue.InexactFloat64(),
			string(v.FulfillmentStatus), string(v.PaymentStatus),
		}
		for i, val := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, cell, val)
		}
		row++
	}

	footer := []any{
		"Total", fmt.Sprintf("%d orders", totals.Orders), "", "",
		totals.TotalQuantity.InexactFloat64(), totals.DispatchedQuantity.InexactFloat64(), totals.RemainingQuantity.InexactFloat64(),
		totals.TotalValue.InexactFloat64(), totals.PaidAmount.InexactFloat64(), totals.BalanceDue.InexactFloat64(),
	}
	for i, val := range footer {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, val)
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(exportHeaders), row)
	f.SetCellStyle(sheet, first, last, boldStyle)

	f.SetColWidth(sheet, "A", "A", 18)
	f.SetColWidth(sheet, "D", "D", 28)
	return f, nil
}

// apiExportOrders handles GET /api/orders/export.xlsx with the same filters as the list.
func (h *Handler) apiExportOrders(w http.ResponseWriter, r *http.Request) {
	filter, ok := filterFromRequest(w, r)
	if !ok {
		return
	}
	result, err := h.svc.ListOrders(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	f, err := buildOrdersWorkbook(result.Orders, result.Totals)
	if err != nil {
		writeDomainError(w, r, fmt.Errorf("failed to build workbook: %w", err))
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := f.Write(w); err != nil {
		log.Printf("export: failed to write workbook: %v", err)
	}
}
