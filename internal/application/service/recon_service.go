// Package service orchestrates uploads and reconciliation runs for the API
// and CLI surfaces.
//
// All state is session-scoped and in-memory: uploaded workbooks and completed
// reports live in capped, mutex-guarded registries keyed by UUID. Nothing
// survives a process restart. Each reconciliation invocation is stateless, so
// independent invocations may run concurrently.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/treasurymatch/treasury-match/internal/domain/recon"
	"github.com/treasurymatch/treasury-match/internal/domain/table"
	"github.com/treasurymatch/treasury-match/internal/infrastructure/config"
	"github.com/treasurymatch/treasury-match/internal/loader"
)

// Lookup errors returned by the registries.
var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrSheetNotFound   = errors.New("sheet not found")
	ErrRunNotFound     = errors.New("run not found")
)

// Dataset is one uploaded workbook held for the session.
type Dataset struct {
	ID         string
	Filename   string
	UploadedAt time.Time
	Workbook   *loader.Workbook
}

// TableRef names one table inside an uploaded dataset. An empty Sheet selects
// the workbook's first sheet.
type TableRef struct {
	DatasetID string
	Sheet     string
}

// ReconcileRequest binds two uploaded tables plus the column mapping for one
// reconciliation run. An empty Tolerance uses the configured default.
type ReconcileRequest struct {
	Query          TableRef
	Treasury       TableRef
	QueryName      string
	QueryAmount    string
	QueryDate      string
	TreasuryName   string
	TreasuryAmount string
	TreasuryDate   string
	Tolerance      string
}

// Run is one completed reconciliation kept for later retrieval and export.
type Run struct {
	ID        string
	CreatedAt time.Time
	Tolerance decimal.Decimal
	Report    *recon.Report
}

// Service owns the dataset and run registries.
type Service struct {
	logger           *slog.Logger
	defaultTolerance decimal.Decimal
	maxDatasets      int
	maxRuns          int

	mu           sync.RWMutex
	datasets     map[string]*Dataset
	datasetOrder []string
	runs         map[string]*Run
	runOrder     []string
}

// defaultMaxEntries caps a registry when the config carries no usable value.
const defaultMaxEntries = 32

// New creates the service from config. The configured default tolerance must
// parse as a non-negative decimal. Non-positive registry caps fall back to
// defaultMaxEntries; a cap of zero would evict every entry on arrival.
func New(cfg config.ReconcileConfig, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tol, err := decimal.NewFromString(cfg.DefaultTolerance)
	if err != nil {
		return nil, fmt.Errorf("default tolerance %q: %w", cfg.DefaultTolerance, err)
	}
	if tol.IsNegative() {
		return nil, &recon.ConfigError{Field: "default_tolerance", Reason: "must be non-negative"}
	}
	if cfg.MaxDatasets <= 0 {
		cfg.MaxDatasets = defaultMaxEntries
	}
	if cfg.MaxRuns <= 0 {
		cfg.MaxRuns = defaultMaxEntries
	}
	return &Service{
		logger:           logger,
		defaultTolerance: tol,
		maxDatasets:      cfg.MaxDatasets,
		maxRuns:          cfg.MaxRuns,
		datasets:         make(map[string]*Dataset),
		runs:             make(map[string]*Run),
	}, nil
}

// AddDataset parses uploaded bytes into a workbook and registers it.
func (s *Service) AddDataset(data []byte, filename string) (*Dataset, error) {
	wb, err := loader.Open(data, filename)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		ID:         uuid.NewString(),
		Filename:   filename,
		UploadedAt: time.Now().UTC(),
		Workbook:   wb,
	}

	s.mu.Lock()
	s.datasets[ds.ID] = ds
	s.datasetOrder = append(s.datasetOrder, ds.ID)
	if len(s.datasetOrder) > s.maxDatasets {
		oldest := s.datasetOrder[0]
		s.datasetOrder = s.datasetOrder[1:]
		delete(s.datasets, oldest)
		s.logger.Debug("evicted dataset", "id", oldest)
	}
	s.mu.Unlock()

	s.logger.Info("dataset registered", "id", ds.ID, "filename", filename, "sheets", len(wb.SheetNames()))
	return ds, nil
}

// Dataset looks up an uploaded workbook.
func (s *Service) Dataset(id string) (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.datasets[id]
	if !ok {
		return nil, fmt.Errorf("dataset %q: %w", id, ErrDatasetNotFound)
	}
	return ds, nil
}

// Reconcile resolves both table references, runs the core and stores the
// resulting report under a new run ID.
func (s *Service) Reconcile(req ReconcileRequest) (*Run, error) {
	query, err := s.resolveTable(req.Query)
	if err != nil {
		return nil, fmt.Errorf("query side: %w", err)
	}
	treasury, err := s.resolveTable(req.Treasury)
	if err != nil {
		return nil, fmt.Errorf("treasury side: %w", err)
	}

	tolerance := s.defaultTolerance
	if req.Tolerance != "" {
		tolerance, err = decimal.NewFromString(req.Tolerance)
		if err != nil {
			return nil, &recon.ConfigError{Field: "tolerance", Reason: "not a decimal: " + req.Tolerance}
		}
	}

	report, err := recon.Reconcile(query, treasury, recon.Options{
		QueryName:      req.QueryName,
		QueryAmount:    req.QueryAmount,
		QueryDate:      req.QueryDate,
		TreasuryName:   req.TreasuryName,
		TreasuryAmount: req.TreasuryAmount,
		TreasuryDate:   req.TreasuryDate,
		Tolerance:      tolerance,
	})
	if err != nil {
		return nil, err
	}

	run := &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Tolerance: tolerance,
		Report:    report,
	}

	s.mu.Lock()
	s.runs[run.ID] = run
	s.runOrder = append(s.runOrder, run.ID)
	if len(s.runOrder) > s.maxRuns {
		oldest := s.runOrder[0]
		s.runOrder = s.runOrder[1:]
		delete(s.runs, oldest)
	}
	s.mu.Unlock()

	s.logger.Info("reconciliation completed",
		"run", run.ID,
		"rows", report.TotalRows(),
		"matched", report.Matched,
		"query_only", report.QueryOnly,
		"treasury_only", report.TreasuryOnly,
		"parse_failures", report.ParseStats.Total(),
	)
	return run, nil
}

// Run looks up a stored reconciliation run.
func (s *Service) Run(id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %q: %w", id, ErrRunNotFound)
	}
	return run, nil
}

func (s *Service) resolveTable(ref TableRef) (*table.Table, error) {
	ds, err := s.Dataset(ref.DatasetID)
	if err != nil {
		return nil, err
	}
	if ref.Sheet == "" {
		sheets := ds.Workbook.Sheets()
		if len(sheets) == 0 {
			return nil, loader.ErrNoSheets
		}
		return sheets[0].Table, nil
	}
	tbl, ok := ds.Workbook.Table(ref.Sheet)
	if !ok {
		return nil, fmt.Errorf("sheet %q in dataset %q: %w", ref.Sheet, ref.DatasetID, ErrSheetNotFound)
	}
	return tbl, nil
}
