package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treasurymatch/treasury-match/internal/api"
	"github.com/treasurymatch/treasury-match/internal/api/dto"
	"github.com/treasurymatch/treasury-match/internal/application/service"
	"github.com/treasurymatch/treasury-match/internal/infrastructure/config"
)

const ordersCSV = "name,amount,order_time\n" +
	"Alice,100.00,2024-01-05 09:00:00\n" +
	"Bob,25.50,2024-01-06 10:00:00\n"

const receiptsCSV = "payee,paid,received\n" +
	"Alice,100.00,2024-01-05\n" +
	"Carol,40.00,2024-01-07\n"

func newTestServer(t *testing.T) (*api.Server, *service.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	svc, err := service.New(config.ReconcileConfig{DefaultTolerance: "0.01", MaxDatasets: 8, MaxRuns: 8}, logger)
	require.NoError(t, err)
	return api.NewServer(api.DefaultConfig(), svc, logger), svc
}

// uploadCSV posts csv bytes through the multipart upload endpoint and returns
// the dataset ID.
func uploadCSV(t *testing.T, server *api.Server, filename, content string) string {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	server.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp dto.DatasetResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func reconcileBody(queryID, treasuryID string) []byte {
	req := dto.ReconcileRequest{
		Query:    dto.TableSelector{DatasetID: queryID},
		Treasury: dto.TableSelector{DatasetID: treasuryID},
		Columns: dto.ColumnMapping{
			QueryName:      "name",
			QueryAmount:    "amount",
			QueryDate:      "order_time",
			TreasuryName:   "payee",
			TreasuryAmount: "paid",
			TreasuryDate:   "received",
		},
	}
	data, _ := json.Marshal(req)
	return data
}

func TestServer_HealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.HealthResponse
	err := json.NewDecoder(rec.Body).Decode(&response)
	require.NoError(t, err)
	assert.Equal(t, "ok", response.Status)
}

func TestServer_DatasetEndpoints(t *testing.T) {
	t.Run("POST /api/datasets registers upload and reports sheets", func(t *testing.T) {
		server, _ := newTestServer(t)

		id := uploadCSV(t, server, "orders.csv", ordersCSV)

		req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+id, nil)
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.DatasetResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "orders.csv", resp.Filename)
		require.Len(t, resp.Sheets, 1)
		assert.Equal(t, []string{"name", "amount", "order_time"}, resp.Sheets[0].Columns)
		assert.Equal(t, 2, resp.Sheets[0].Rows)
	})

	t.Run("POST /api/datasets without file field returns 400", func(t *testing.T) {
		server, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/datasets", bytes.NewBufferString("nope"))
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("GET /api/datasets/{id} unknown returns 404", func(t *testing.T) {
		server, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/api/datasets/unknown", nil)
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestServer_ReconcileEndpoint(t *testing.T) {
	t.Run("POST /api/reconcile returns the full report", func(t *testing.T) {
		server, _ := newTestServer(t)
		queryID := uploadCSV(t, server, "orders.csv", ordersCSV)
		treasuryID := uploadCSV(t, server, "receipts.csv", receiptsCSV)

		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", bytes.NewReader(reconcileBody(queryID, treasuryID)))
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var resp dto.RunResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

		assert.Equal(t, 1, resp.Matched)
		assert.Equal(t, 1, resp.QueryOnly)
		assert.Equal(t, 1, resp.TreasuryOnly)
		assert.Equal(t, 3, resp.TotalRows)
		require.Len(t, resp.Rows, 3)

		// Matched Alice row carries both sides and a zero diff.
		first := resp.Rows[0]
		require.NotNil(t, first.QueryName)
		assert.Equal(t, "Alice", *first.QueryName)
		assert.True(t, first.Matched)
		require.NotNil(t, first.AmountDiff)
		assert.True(t, decimal.RequireFromString(*first.AmountDiff).IsZero())

		// Treasury-only Carol row has no query side at all: the query fields
		// serialize as null, not as zero values.
		last := resp.Rows[len(resp.Rows)-1]
		assert.False(t, last.Matched)
		assert.Nil(t, last.QueryName)
		assert.Nil(t, last.QueryAmount)
		assert.Nil(t, last.OrderTime)
		require.NotNil(t, last.TreasuryName)
		assert.Equal(t, "Carol", *last.TreasuryName)
	})

	t.Run("bad column mapping returns 422 validation error", func(t *testing.T) {
		server, _ := newTestServer(t)
		queryID := uploadCSV(t, server, "orders.csv", ordersCSV)
		treasuryID := uploadCSV(t, server, "receipts.csv", receiptsCSV)

		body := dto.ReconcileRequest{
			Query:    dto.TableSelector{DatasetID: queryID},
			Treasury: dto.TableSelector{DatasetID: treasuryID},
			Columns: dto.ColumnMapping{
				QueryName:      "name",
				QueryAmount:    "no_such_column",
				QueryDate:      "order_time",
				TreasuryName:   "payee",
				TreasuryAmount: "paid",
			},
		}
		data, _ := json.Marshal(body)

		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", bytes.NewReader(data))
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var apiErr dto.APIError
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
		assert.Equal(t, dto.ErrCodeValidation, apiErr.Code)
		assert.Contains(t, apiErr.Message, "no_such_column")
	})

	t.Run("unknown dataset returns 404", func(t *testing.T) {
		server, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", bytes.NewReader(reconcileBody("a", "b")))
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid JSON returns 400", func(t *testing.T) {
		server, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/reconcile", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_RunEndpoints(t *testing.T) {
	server, _ := newTestServer(t)
	queryID := uploadCSV(t, server, "orders.csv", ordersCSV)
	treasuryID := uploadCSV(t, server, "receipts.csv", receiptsCSV)

	req := httptest.NewRequest(http.MethodPost, "/api/reconcile", bytes.NewReader(reconcileBody(queryID, treasuryID)))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created dto.RunResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	t.Run("GET /api/runs/{id} returns the stored run", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/runs/"+created.ID, nil)
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.RunResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, created.ID, resp.ID)
		assert.Equal(t, created.TotalRows, resp.TotalRows)
	})

	t.Run("GET /api/runs/{id} unknown returns 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/runs/unknown", nil)
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("GET export defaults to CSV with BOM", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/runs/"+created.ID+"/export", nil)
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
		assert.Contains(t, rec.Body.String(), "query_name")
	})

	t.Run("GET export xlsx sets spreadsheet content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/runs/"+created.ID+"/export?format=xlsx", nil)
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
		assert.NotZero(t, rec.Body.Len())
	})

	t.Run("GET export rejects unknown format", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/runs/"+created.ID+"/export?format=pdf", nil)
		rec := httptest.NewRecorder()
		server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
