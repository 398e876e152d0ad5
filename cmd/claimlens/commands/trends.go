package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/claimlens/internal/trends"
)

// trendsCmd represents the trends command
var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "월별 청구 추세",
	Long: `TransactionMonth 기준 월별 청구 건수, 청구 빈도, 총 청구액,
평균 청구 심도(양수 청구의 평균)를 계산합니다.

Example:
  go run ./cmd/claimlens trends`,
	RunE: runTrends,
}

func init() {
	rootCmd.AddCommand(trendsCmd)
}

func runTrends(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ds, err := a.load(context.Background())
	if err != nil {
		return err
	}

	stats, err := trends.NewAnalyzer(a.log.Zerolog()).Monthly(ds, a.profile.Columns)
	if err != nil {
		return err
	}

	if outputJSON {
		return PrintJSON(stats)
	}

	PrintHeader("Monthly Claim Trends", nil)
	widths := []int{8, 10, 10, 16, 14}
	PrintTableHeader([]string{"Month", "Policies", "Claims", "TotalClaims", "AvgSeverity"}, widths)
	for _, s := range stats {
		PrintTableRow([]string{
			s.Month.Format("2006-01"),
			fmt.Sprintf("%d", s.ClaimCount),
			fmt.Sprintf("%d", s.ClaimFrequency),
			FormatFloat(s.TotalClaims, 2),
			FormatOptional(s.AvgClaimSeverity, 2),
		}, widths)
	}
	fmt.Println()
	return nil
}
