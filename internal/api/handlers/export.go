package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/treasurymatch/treasury-match/internal/api/dto"
	"github.com/treasurymatch/treasury-match/internal/application/service"
	"github.com/treasurymatch/treasury-match/internal/export"
)

// ExportHandler streams stored reports as downloadable files.
type ExportHandler struct {
	*Base
}

// NewExportHandler creates a new export handler.
func NewExportHandler(svc *service.Service) *ExportHandler {
	return &ExportHandler{Base: NewBase(svc)}
}

// Export handles GET /api/runs/{id}/export?format=csv|xlsx. CSV is the
// default format.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("run ID is required"))
		return
	}

	run, err := h.svc.Run(id)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "reconciliation-"+run.ID+".csv"))
		if err := export.WriteCSV(w, run.Report); err != nil {
			h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "reconciliation-"+run.ID+".xlsx"))
		if err := export.WriteXLSX(w, run.Report); err != nil {
			h.WriteError(w, http.StatusInternalServerError, dto.InternalError())
		}
	default:
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("format must be csv or xlsx"))
	}
}
