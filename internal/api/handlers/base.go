package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/treasurymatch/treasury-match/internal/api/dto"
	"github.com/treasurymatch/treasury-match/internal/application/service"
	"github.com/treasurymatch/treasury-match/internal/domain/recon"
)

// Base provides shared functionality for all handlers.
type Base struct {
	svc *service.Service
}

// NewBase creates a new base handler around the reconciliation service.
func NewBase(svc *service.Service) *Base {
	return &Base{svc: svc}
}

// WriteJSON writes a JSON response with the given status code.
func (b *Base) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error response with the given status code.
func (b *Base) WriteError(w http.ResponseWriter, status int, err dto.APIError) {
	b.WriteJSON(w, status, err)
}

// WriteServiceError maps service and domain errors onto HTTP responses.
// Lookup misses become 404, a column missing from an uploaded table 422,
// bad request configuration 400, the rest 500.
func (b *Base) WriteServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrDatasetNotFound):
		b.WriteError(w, http.StatusNotFound, dto.NotFoundError("dataset"))
	case errors.Is(err, service.ErrRunNotFound):
		b.WriteError(w, http.StatusNotFound, dto.NotFoundError("run"))
	case errors.Is(err, service.ErrSheetNotFound):
		b.WriteError(w, http.StatusNotFound, dto.NotFoundError("sheet"))
	default:
		var schemaErr *recon.SchemaError
		if errors.As(err, &schemaErr) {
			b.WriteError(w, http.StatusUnprocessableEntity, dto.ValidationError(err.Error()))
			return
		}
		var cfgErr *recon.ConfigError
		if errors.As(err, &cfgErr) {
			b.WriteError(w, http.StatusBadRequest, dto.ValidationError(err.Error()))
			return
		}
		b.WriteError(w, http.StatusInternalServerError, dto.InternalError())
	}
}
