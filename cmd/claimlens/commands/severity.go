package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/claimlens/internal/contracts"
	"github.com/wonny/claimlens/internal/severity"
)

// severityCmd represents the severity command
var severityCmd = &cobra.Command{
	Use:   "severity",
	Short: "차종별 평균 청구액 순위",
	Long: `make/Model 조합별 평균 청구액 상위/하위 N개를 출력합니다.

Example:
  go run ./cmd/claimlens severity --top 10`,
	RunE: runSeverity,
}

var severityTop int

func init() {
	rootCmd.AddCommand(severityCmd)
	severityCmd.Flags().IntVar(&severityTop, "top", 0, "pairs per side (default: profile severity.top_n)")
}

func runSeverity(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ds, err := a.load(context.Background())
	if err != nil {
		return err
	}

	topN := severityTop
	if topN == 0 {
		topN = a.profile.Severity.TopN
	}

	ranking, err := severity.NewRanker(a.log.Zerolog()).ByMakeModel(ds, a.profile.Columns, topN)
	if err != nil {
		return err
	}

	if outputJSON {
		return PrintJSON(ranking)
	}

	PrintHeader("Claim Severity by Make/Model", nil)
	printModelClaims("Highest average claim", ranking.Top)
	printModelClaims("Lowest average claim", ranking.Bottom)
	return nil
}

func printModelClaims(title string, rows []contracts.ModelClaim) {
	fmt.Printf("\n[%s]\n", title)
	widths := []int{40, 14, 8}
	PrintTableHeader([]string{"Make / Model", "AvgClaim", "Rows"}, widths)
	for _, m := range rows {
		PrintTableRow([]string{
			Truncate(m.Label(), widths[0]),
			FormatFloat(m.AvgClaimAmount, 2),
			fmt.Sprintf("%d", m.Count),
		}, widths)
	}
}
