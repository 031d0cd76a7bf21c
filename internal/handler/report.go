package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fieldtrack-backend/internal/repository"
	"fieldtrack-backend/internal/server/authctx"
	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"
)

type ReportHandler struct {
	Collections repository.CollectionRepository
}

func (h ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/owner/reports/collections", h.collections)
}

func (h ReportHandler) collections(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	start, err := parseDateQuery(r, "startDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate (use YYYY-MM-DD)")
		return
	}
	end, err := parseDateQuery(r, "endDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid endDate (use YYYY-MM-DD)")
		return
	}
	rows, err := h.Collections.Report(r.Context(), user.ID, start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	suffix := time.Now().Format("20060102")
	switch r.URL.Query().Get("format") {
	case "":
		writeJSON(w, http.StatusOK, reportJSON(rows))
	case "csv":
		data, err := exportReportCSV(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"collections_%s.csv\"", suffix))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := exportReportXLSX(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"collections_%s.xlsx\"", suffix))
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
	}
}

func reportJSON(rows []repository.ReportRow) map[string]any {
	var total float64
	items := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		total += row.Collection.Amount
		entry := collectionResponse(row.Collection)
		entry["shopName"] = row.ShopName
		entry["employeeName"] = row.EmployeeName
		items = append(items, entry)
	}
	return map[string]any{
		"totalAmount": total,
		"count":       len(rows),
		"items":       items,
	}
}

func exportReportCSV(rows []repository.ReportRow) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"id", "shop", "employee", "amount", "payment_mode", "remarks", "collected_at"})
	for _, row := range rows {
		c := row.Collection
		_ = w.Write([]string{
			strconv.FormatInt(c.ID, 10),
			row.ShopName,
			row.EmployeeName,
			strconv.FormatFloat(c.Amount, 'f', 2, 64),
			string(c.PaymentMode),
			c.Remarks,
			c.CollectedAt.Format(time.RFC3339),
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportReportXLSX(rows []repository.ReportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Collections"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"ID", "Shop", "Employee", "Amount", "Payment Mode", "Remarks", "Collected At"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for r, item := range rows {
		c := item.Collection
		row := r + 2
		values := []any{
			c.ID,
			item.ShopName,
			item.EmployeeName,
			c.Amount,
			string(c.PaymentMode),
			c.Remarks,
			c.CollectedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 10)
	_ = f.SetColWidth(sheet, "B", "C", 24)
	_ = f.SetColWidth(sheet, "D", "D", 14)
	_ = f.SetColWidth(sheet, "E", "E", 16)
	_ = f.SetColWidth(sheet, "F", "F", 28)
	_ = f.SetColWidth(sheet, "G", "G", 22)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	_ = f.SetCellStyle(sheet, "A1", "G1", style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
