package cli

import (
	"fmt"
	"strings"

	"github.com/treasurymatch/treasury-match/internal/domain/recon"
)

// PrintSummary prints the reconciliation result summary.
func PrintSummary(report *recon.Report, outputPath string) {
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("Summary: Matched=%d QueryOnly=%d TreasuryOnly=%d Rows=%d\n",
		report.Matched,
		report.QueryOnly,
		report.TreasuryOnly,
		report.TotalRows())

	if total := report.ParseStats.Total(); total > 0 {
		fmt.Printf("\nUnparseable cells: %d\n", total)
		stats := report.ParseStats
		if stats.QueryAmountFailures > 0 {
			fmt.Printf("  - query amounts: %d\n", stats.QueryAmountFailures)
		}
		if stats.QueryDateFailures > 0 {
			fmt.Printf("  - query dates: %d\n", stats.QueryDateFailures)
		}
		if stats.TreasuryAmountFailures > 0 {
			fmt.Printf("  - treasury amounts: %d\n", stats.TreasuryAmountFailures)
		}
		if stats.TreasuryDateFailures > 0 {
			fmt.Printf("  - treasury dates: %d\n", stats.TreasuryDateFailures)
		}
	}

	fmt.Printf("\nReport written to %s\n", outputPath)
}
