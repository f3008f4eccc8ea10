package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/treasurymatch/treasury-match/internal/api/dto"
	"github.com/treasurymatch/treasury-match/internal/application/service"
)

// maxUploadBytes caps a single workbook upload.
const maxUploadBytes = 32 << 20

// DatasetsHandler handles workbook upload and introspection requests.
type DatasetsHandler struct {
	*Base
}

// NewDatasetsHandler creates a new datasets handler.
func NewDatasetsHandler(svc *service.Service) *DatasetsHandler {
	return &DatasetsHandler{Base: NewBase(svc)}
}

// Upload handles POST /api/datasets - registers an uploaded workbook.
// The workbook is sent as multipart form data under the "file" field.
func (h *DatasetsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("could not read upload"))
		return
	}

	ds, err := h.svc.AddDataset(data, header.Filename)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	h.WriteJSON(w, http.StatusCreated, toDatasetResponse(ds))
}

// Get handles GET /api/datasets/{id} - returns sheet layout for one upload.
func (h *DatasetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("dataset ID is required"))
		return
	}

	ds, err := h.svc.Dataset(id)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, toDatasetResponse(ds))
}

// toDatasetResponse converts a service dataset to an API response.
func toDatasetResponse(ds *service.Dataset) dto.DatasetResponse {
	resp := dto.DatasetResponse{
		ID:         ds.ID,
		Filename:   ds.Filename,
		UploadedAt: ds.UploadedAt.Format(time.RFC3339),
	}
	for _, sheet := range ds.Workbook.Sheets() {
		resp.Sheets = append(resp.Sheets, dto.SheetResponse{
			Name:    sheet.Name,
			Columns: sheet.Table.Columns(),
			Rows:    sheet.Table.NumRows(),
		})
	}
	return resp
}
