package handler

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"fieldtrack-backend/internal/domain"
	"fieldtrack-backend/internal/repository"
	"fieldtrack-backend/internal/server/authctx"
	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"
)

type ShopHandler struct {
	Repo repository.ShopRepository
}

func (h ShopHandler) RegisterRoutes(r chi.Router) {
	r.Get("/owner/shops", h.list)
	r.Post("/owner/shops", h.create)
	r.Get("/owner/shops/export", h.export)
	r.Get("/owner/shops/{shopID}", h.get)
	r.Put("/owner/shops/{shopID}", h.update)
	r.Delete("/owner/shops/{shopID}", h.delete)
}

type createShopRequest struct {
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Mobile         string   `json:"mobile"`
	DueAmount      *float64 `json:"dueAmount"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	GeofenceRadius *int     `json:"geofenceRadius"`
}

func (h ShopHandler) create(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createShopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	params := repository.CreateShopParams{
		Name:      req.Name,
		Address:   req.Address,
		Mobile:    req.Mobile,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if req.DueAmount != nil {
		if math.IsNaN(*req.DueAmount) || math.IsInf(*req.DueAmount, 0) {
			writeError(w, http.StatusBadRequest, "invalid due amount")
			return
		}
		params.DueAmount = *req.DueAmount
	}
	if req.GeofenceRadius != nil {
		params.GeofenceRadius = *req.GeofenceRadius
	}
	shop, err := h.Repo.Create(r.Context(), user.ID, params)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, shopResponse(*shop))
}

func (h ShopHandler) get(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	shopID, err := strconv.ParseInt(chi.URLParam(r, "shopID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	shop, err := h.Repo.Get(r.Context(), user.ID, shopID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "shop not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, shopResponse(*shop))
}

func (h ShopHandler) list(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	shops, err := h.Repo.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]map[string]any, 0, len(shops))
	for _, s := range shops {
		out = append(out, shopResponse(s))
	}
	writeJSON(w, http.StatusOK, out)
}

type updateShopRequest struct {
	Name           *string  `json:"name"`
	Address        *string  `json:"address"`
	Mobile         *string  `json:"mobile"`
	DueAmount      *float64 `json:"dueAmount"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	GeofenceRadius *int     `json:"geofenceRadius"`
}

func (h ShopHandler) update(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	shopID, err := strconv.ParseInt(chi.URLParam(r, "shopID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	var req updateShopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.DueAmount != nil && (math.IsNaN(*req.DueAmount) || math.IsInf(*req.DueAmount, 0)) {
		writeError(w, http.StatusBadRequest, "invalid due amount")
		return
	}
	shop, err := h.Repo.Update(r.Context(), user.ID, shopID, repository.UpdateShopParams{
		Name:           req.Name,
		Address:        req.Address,
		Mobile:         req.Mobile,
		DueAmount:      req.DueAmount,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		GeofenceRadius: req.GeofenceRadius,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "shop not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, shopResponse(*shop))
}

func (h ShopHandler) delete(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	shopID, err := strconv.ParseInt(chi.URLParam(r, "shopID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop id")
		return
	}
	if err := h.Repo.Delete(r.Context(), user.ID, shopID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "shop not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h ShopHandler) export(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	shops, err := h.Repo.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	suffix := time.Now().Format("20060102")
	switch r.URL.Query().Get("format") {
	case "", "csv":
		data, err := exportShopsCSV(shops)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"shops_%s.csv\"", suffix))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := exportShopsXLSX(shops)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"shops_%s.xlsx\"", suffix))
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
	}
}

func exportShopsCSV(shops []domain.Shop) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"id", "name", "address", "mobile", "due_amount", "latitude", "longitude"})
	for _, s := range shops {
		_ = w.Write([]string{
			strconv.FormatInt(s.ID, 10),
			s.Name,
			s.Address,
			s.Mobile,
			strconv.FormatFloat(s.DueAmount, 'f', 2, 64),
			formatCoord(s.Latitude),
			formatCoord(s.Longitude),
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportShopsXLSX(shops []domain.Shop) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Shops"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"ID", "Name", "Address", "Mobile", "Due Amount", "Latitude", "Longitude"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for r, s := range shops {
		row := r + 2
		values := []any{s.ID, s.Name, s.Address, s.Mobile, s.DueAmount}
		if s.Latitude != nil {
			values = append(values, *s.Latitude)
		} else {
			values = append(values, "")
		}
		if s.Longitude != nil {
			values = append(values, *s.Longitude)
		} else {
			values = append(values, "")
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 10)
	_ = f.SetColWidth(sheet, "B", "B", 28)
	_ = f.SetColWidth(sheet, "C", "C", 36)
	_ = f.SetColWidth(sheet, "D", "D", 16)
	_ = f.SetColWidth(sheet, "E", "E", 14)
	_ = f.SetColWidth(sheet, "F", "G", 14)

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

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 6, 64)
}

func shopResponse(s domain.Shop) map[string]any {
	return map[string]any{
		"id":             s.ID,
		"name":           s.Name,
		"address":        s.Address,
		"mobile":         s.Mobile,
		"dueAmount":      s.DueAmount,
		"latitude":       floatOrNil(s.Latitude),
		"longitude":      floatOrNil(s.Longitude),
		"geofenceRadius": s.GeofenceRadius,
		"createdAt":      s.CreatedAt,
		"updatedAt":      s.UpdatedAt,
	}
}
