package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/claimlens/internal/quality"
)

// missingCmd represents the missing command
var missingCmd = &cobra.Command{
	Use:   "missing",
	Short: "결측치 비율",
	Long: `프로파일 quality.categorical / quality.numerical 컬럼과 날짜 컬럼의
결측치 비율(%)을 높은 순으로 출력합니다. 날짜는 파싱 실패도 결측으로 봅니다.

Example:
  go run ./cmd/claimlens missing`,
	RunE: runMissing,
}

// describeCmd represents the describe command
var describeCmd = &cobra.Command{
	Use:   "describe [column...]",
	Short: "수치 컬럼 기술 통계",
	Long: `count, mean, std, min, 사분위수, max를 출력합니다.
컬럼을 생략하면 프로파일 quality.describe를 사용합니다.

Example:
  go run ./cmd/claimlens describe TotalClaims TotalPremium`,
	RunE: runDescribe,
}

func init() {
	rootCmd.AddCommand(missingCmd)
	rootCmd.AddCommand(describeCmd)
}

func runMissing(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ds, err := a.load(context.Background())
	if err != nil {
		return err
	}

	q := a.profile.Quality
	summary, err := quality.NewInspector(a.log.Zerolog()).MissingSummary(ds, q.Categorical, q.Numerical, a.profile.Columns.Date)
	if err != nil {
		return err
	}

	if outputJSON {
		return PrintJSON(summary)
	}

	PrintHeader("Missing Values", nil)
	widths := []int{28, 10}
	PrintTableHeader([]string{"Column", "Missing %"}, widths)
	for _, m := range summary {
		PrintTableRow([]string{m.Column, FormatFloat(m.Percent, 2)}, widths)
	}
	fmt.Println()
	return nil
}

func runDescribe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ds, err := a.load(context.Background())
	if err != nil {
		return err
	}

	columns := args
	if len(columns) == 0 {
		columns = a.profile.Quality.Describe
	}

	summary, err := quality.NewInspector(a.log.Zerolog()).Describe(ds, columns)
	if err != nil {
		return err
	}

	if outputJSON {
		return PrintJSON(summary)
	}

	PrintHeader("Describe", nil)
	widths := []int{20, 9, 12, 12, 12, 12, 12, 12, 12}
	PrintTableHeader([]string{"Column", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max"}, widths)
	for _, s := range summary {
		PrintTableRow([]string{
			Truncate(s.Column, widths[0]),
			fmt.Sprintf("%d", s.Count),
			FormatFloat(s.Mean, 2),
			FormatFloat(s.Std, 2),
			FormatFloat(s.Min, 2),
			FormatFloat(s.Q1, 2),
			FormatFloat(s.Median, 2),
			FormatFloat(s.Q3, 2),
			FormatFloat(s.Max, 2),
		}, widths)
	}
	fmt.Println()
	return nil
}
