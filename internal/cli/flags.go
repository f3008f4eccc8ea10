package cli

import "flag"

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	Config  string
	Port    int
	Verbose bool
}

// ParseServeFlags parses command line flags for the serve command.
func ParseServeFlags() *ServeFlags {
	flags := &ServeFlags{}
	flag.StringVar(&flags.Config, "config", "", "Configuration file path")
	flag.IntVar(&flags.Port, "port", 0, "Port to listen on (overrides config)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}

// ReconcileFlags holds the CLI flags for a one-shot reconciliation run.
type ReconcileFlags struct {
	Config        string
	QueryFile     string
	TreasuryFile  string
	QuerySheet    string
	TreasurySheet string

	QueryName      string
	QueryAmount    string
	QueryDate      string
	TreasuryName   string
	TreasuryAmount string
	TreasuryDate   string

	Tolerance string
	Output    string
	Verbose   bool
}

// ParseReconcileFlags parses command line flags for the reconcile command.
func ParseReconcileFlags() *ReconcileFlags {
	flags := &ReconcileFlags{}
	flag.StringVar(&flags.Config, "config", "", "Configuration file path")
	flag.StringVar(&flags.QueryFile, "query", "", "Query-side workbook (orders)")
	flag.StringVar(&flags.TreasuryFile, "treasury", "", "Treasury-side workbook (receipts)")
	flag.StringVar(&flags.QuerySheet, "query-sheet", "", "Query sheet name (default: first sheet)")
	flag.StringVar(&flags.TreasurySheet, "treasury-sheet", "", "Treasury sheet name (default: first sheet)")
	flag.StringVar(&flags.QueryName, "query-name", "name", "Query name column header")
	flag.StringVar(&flags.QueryAmount, "query-amount", "amount", "Query amount column header")
	flag.StringVar(&flags.QueryDate, "query-date", "order_time", "Query order time column header")
	flag.StringVar(&flags.TreasuryName, "treasury-name", "name", "Treasury name column header")
	flag.StringVar(&flags.TreasuryAmount, "treasury-amount", "amount", "Treasury amount column header")
	flag.StringVar(&flags.TreasuryDate, "treasury-date", "", "Treasury receipt date column header (optional)")
	flag.StringVar(&flags.Tolerance, "tolerance", "", "Amount tolerance (overrides config default)")
	flag.StringVar(&flags.Output, "out", "result.csv", "Output report path (.csv or .xlsx)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}
