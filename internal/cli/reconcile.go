package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/treasurymatch/treasury-match/internal/domain/recon"
	"github.com/treasurymatch/treasury-match/internal/domain/table"
	"github.com/treasurymatch/treasury-match/internal/export"
	"github.com/treasurymatch/treasury-match/internal/infrastructure/config"
	"github.com/treasurymatch/treasury-match/internal/infrastructure/logging"
	"github.com/treasurymatch/treasury-match/internal/loader"
)

// RunReconcile performs a one-shot reconciliation between two workbook files
// and writes the report next to them.
func RunReconcile(cfg *config.Config, flags *ReconcileFlags) error {
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "reconcile")

	if flags.QueryFile == "" || flags.TreasuryFile == "" {
		return fmt.Errorf("both -query and -treasury files are required")
	}

	query, err := loadTable(flags.QueryFile, flags.QuerySheet)
	if err != nil {
		return fmt.Errorf("query side: %w", err)
	}
	treasury, err := loadTable(flags.TreasuryFile, flags.TreasurySheet)
	if err != nil {
		return fmt.Errorf("treasury side: %w", err)
	}

	toleranceStr := flags.Tolerance
	if toleranceStr == "" {
		toleranceStr = cfg.Reconcile.DefaultTolerance
	}
	tolerance, err := decimal.NewFromString(toleranceStr)
	if err != nil {
		return fmt.Errorf("tolerance %q: %w", toleranceStr, err)
	}

	logger.Debug("reconciling",
		"query", flags.QueryFile,
		"treasury", flags.TreasuryFile,
		"tolerance", tolerance.String(),
	)

	report, err := recon.Reconcile(query, treasury, recon.Options{
		QueryName:      flags.QueryName,
		QueryAmount:    flags.QueryAmount,
		QueryDate:      flags.QueryDate,
		TreasuryName:   flags.TreasuryName,
		TreasuryAmount: flags.TreasuryAmount,
		TreasuryDate:   flags.TreasuryDate,
		Tolerance:      tolerance,
	})
	if err != nil {
		return err
	}

	if err := writeReport(flags.Output, report); err != nil {
		return err
	}

	PrintSummary(report, flags.Output)
	return nil
}

func loadTable(path, sheet string) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	wb, err := loader.Open(data, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sheet == "" {
		sheets := wb.Sheets()
		if len(sheets) == 0 {
			return nil, loader.ErrNoSheets
		}
		return sheets[0].Table, nil
	}
	tbl, ok := wb.Table(sheet)
	if !ok {
		return nil, fmt.Errorf("%s: no sheet named %q", path, sheet)
	}
	return tbl, nil
}

func writeReport(path string, report *recon.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return export.WriteXLSX(f, report)
	default:
		return export.WriteCSV(f, report)
	}
}
