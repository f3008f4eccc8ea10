package dto

// TableSelector names one table inside an uploaded dataset. Sheet may be
// empty, which selects the workbook's first sheet.
type TableSelector struct {
	DatasetID string `json:"dataset_id"`
	Sheet     string `json:"sheet,omitempty"`
}

// ColumnMapping binds header names to reconciliation roles. The treasury
// date column is optional; every other field is required.
type ColumnMapping struct {
	QueryName      string `json:"query_name"`
	QueryAmount    string `json:"query_amount"`
	QueryDate      string `json:"query_date"`
	TreasuryName   string `json:"treasury_name"`
	TreasuryAmount string `json:"treasury_amount"`
	TreasuryDate   string `json:"treasury_date,omitempty"`
}

// ReconcileRequest is the body of POST /api/reconcile. An empty tolerance
// uses the server's configured default.
type ReconcileRequest struct {
	Query     TableSelector `json:"query"`
	Treasury  TableSelector `json:"treasury"`
	Columns   ColumnMapping `json:"columns"`
	Tolerance string        `json:"tolerance,omitempty"`
}
