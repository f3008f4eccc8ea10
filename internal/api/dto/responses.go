package dto

import "time"

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// SheetResponse describes one sheet of an uploaded dataset.
type SheetResponse struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
}

// DatasetResponse is returned after an upload and by dataset lookup.
type DatasetResponse struct {
	ID         string          `json:"id"`
	Filename   string          `json:"filename"`
	UploadedAt string          `json:"uploaded_at"`
	Sheets     []SheetResponse `json:"sheets"`
}

// RowResponse is one report row. Nullable fields are pointers: null in the
// JSON means the value is absent, never zero.
type RowResponse struct {
	QueryName      *string `json:"query_name"`
	QueryAmount    *string `json:"query_amount"`
	OrderTime      *string `json:"order_time"`
	TreasuryName   *string `json:"treasury_name"`
	TreasuryAmount *string `json:"treasury_amount"`
	ReceiptDate    *string `json:"receipt_date"`
	Matched        bool    `json:"matched"`
	AmountDiff     *string `json:"amount_diff"`
}

// ParseStatsResponse reports cell-level parse failures for one run.
type ParseStatsResponse struct {
	QueryAmountFailures    int `json:"query_amount_failures"`
	QueryDateFailures      int `json:"query_date_failures"`
	TreasuryAmountFailures int `json:"treasury_amount_failures"`
	TreasuryDateFailures   int `json:"treasury_date_failures"`
}

// RunResponse is one completed reconciliation run.
type RunResponse struct {
	ID           string             `json:"id"`
	CreatedAt    string             `json:"created_at"`
	Tolerance    string             `json:"tolerance"`
	Matched      int                `json:"matched"`
	QueryOnly    int                `json:"query_only"`
	TreasuryOnly int                `json:"treasury_only"`
	TotalRows    int                `json:"total_rows"`
	ParseStats   ParseStatsResponse `json:"parse_stats"`
	Rows         []RowResponse      `json:"rows"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
