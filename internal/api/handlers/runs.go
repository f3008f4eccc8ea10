package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/treasurymatch/treasury-match/internal/api/dto"
	"github.com/treasurymatch/treasury-match/internal/application/service"
	"github.com/treasurymatch/treasury-match/internal/domain/recon"
)

const rowTimeFormat = "2006-01-02 15:04:05"

// RunsHandler handles reconciliation run requests.
type RunsHandler struct {
	*Base
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(svc *service.Service) *RunsHandler {
	return &RunsHandler{Base: NewBase(svc)}
}

// Create handles POST /api/reconcile - runs one reconciliation.
func (h *RunsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid JSON body"))
		return
	}
	if req.Query.DatasetID == "" || req.Treasury.DatasetID == "" {
		h.WriteError(w, http.StatusBadRequest, dto.ValidationError("query and treasury dataset IDs are required"))
		return
	}

	run, err := h.svc.Reconcile(service.ReconcileRequest{
		Query:          service.TableRef{DatasetID: req.Query.DatasetID, Sheet: req.Query.Sheet},
		Treasury:       service.TableRef{DatasetID: req.Treasury.DatasetID, Sheet: req.Treasury.Sheet},
		QueryName:      req.Columns.QueryName,
		QueryAmount:    req.Columns.QueryAmount,
		QueryDate:      req.Columns.QueryDate,
		TreasuryName:   req.Columns.TreasuryName,
		TreasuryAmount: req.Columns.TreasuryAmount,
		TreasuryDate:   req.Columns.TreasuryDate,
		Tolerance:      req.Tolerance,
	})
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, toRunResponse(run))
}

// Get handles GET /api/runs/{id} - returns a stored run with its full report.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	h.WriteJSON(w, http.StatusOK, toRunResponse(run))
}

// toRunResponse converts a stored run to an API response.
func toRunResponse(run *service.Run) dto.RunResponse {
	report := run.Report
	resp := dto.RunResponse{
		ID:           run.ID,
		CreatedAt:    run.CreatedAt.Format(time.RFC3339),
		Tolerance:    run.Tolerance.String(),
		Matched:      report.Matched,
		QueryOnly:    report.QueryOnly,
		TreasuryOnly: report.TreasuryOnly,
		TotalRows:    report.TotalRows(),
		ParseStats: dto.ParseStatsResponse{
			QueryAmountFailures:    report.ParseStats.QueryAmountFailures,
			QueryDateFailures:      report.ParseStats.QueryDateFailures,
			TreasuryAmountFailures: report.ParseStats.TreasuryAmountFailures,
			TreasuryDateFailures:   report.ParseStats.TreasuryDateFailures,
		},
		Rows: make([]dto.RowResponse, 0, len(report.Rows)),
	}
	for _, row := range report.Rows {
		resp.Rows = append(resp.Rows, toRowResponse(row))
	}
	return resp
}

func toRowResponse(row recon.Row) dto.RowResponse {
	return dto.RowResponse{
		QueryName:      nullStringString(row.QueryName),
		QueryAmount:    nullDecimalString(row.QueryAmount),
		OrderTime:      nullTimeString(row.OrderTime),
		TreasuryName:   nullStringString(row.TreasuryName),
		TreasuryAmount: nullDecimalString(row.TreasuryAmount),
		ReceiptDate:    nullTimeString(row.ReceiptDate),
		Matched:        row.Source == recon.SourceMatched,
		AmountDiff:     nullDecimalString(row.AmountDiff),
	}
}

func nullStringString(v recon.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullDecimalString(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}

func nullTimeString(t recon.NullTime) *string {
	if !t.Valid {
		return nil
	}
	s := t.Time.Format(rowTimeFormat)
	return &s
}
