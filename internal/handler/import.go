package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"fieldtrack-backend/internal/domain"
	"fieldtrack-backend/internal/repository"
	"fieldtrack-backend/internal/server/authctx"
	"fieldtrack-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

// 8 MiB is generous for a shop spreadsheet.
const maxImportSize = 8 << 20

type ImportHandler struct {
	Service service.ImportService
}

func (h ImportHandler) RegisterRoutes(r chi.Router) {
	r.Post("/owner/shops/import", h.importShops)
	r.Post("/owner/shops/dues", h.updateDues)
	r.Post("/owner/imports/{batchID}/undo", h.undo)
}

func (h ImportHandler) importShops(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	data, err := readUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	batch, err := h.Service.ImportShops(r.Context(), user.ID, user.Email, data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, batchResponse(*batch, nil))
}

func (h ImportHandler) updateDues(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	data, err := readUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	batch, missing, err := h.Service.BulkUpdateDues(r.Context(), user.ID, user.Email, data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, batchResponse(*batch, missing))
}

func (h ImportHandler) undo(w http.ResponseWriter, r *http.Request) {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	batchID, err := strconv.ParseInt(chi.URLParam(r, "batchID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid batch id")
		return
	}
	if err := h.Service.Undo(r.Context(), user.ID, batchID, user.Email); err != nil {
		switch {
		case errors.Is(err, repository.ErrUndoExpired):
			writeError(w, http.StatusConflict, "undo window has expired")
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "import batch not found")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// readUpload pulls the spreadsheet bytes out of a multipart "file" field, or
// falls back to the raw request body for clients that post the file directly.
func readUpload(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(maxImportSize); err == nil {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, errors.New("missing file field")
		}
		defer file.Close()
		return io.ReadAll(io.LimitReader(file, maxImportSize))
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty upload")
	}
	return data, nil
}

func batchResponse(b domain.ImportBatch, missing []string) map[string]any {
	resp := map[string]any{
		"batchId":      b.ID,
		"kind":         b.Kind,
		"createdCount": b.CreatedCount,
		"updatedCount": b.UpdatedCount,
		"createdAt":    b.CreatedAt,
		"undoExpiresAt": b.CreatedAt.Add(repository.UndoWindow).Format(time.RFC3339),
	}
	if missing != nil {
		resp["missingShops"] = missing
	}
	return resp
}
