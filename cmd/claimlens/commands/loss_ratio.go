package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/claimlens/internal/lossratio"
)

// lossRatioCmd represents the loss-ratio command
var lossRatioCmd = &cobra.Command{
	Use:   "loss-ratio [category...]",
	Short: "손해율 (TotalClaims / TotalPremium) 계산",
	Long: `전체 손해율과 카테고리별 손해율을 계산합니다.

카테고리를 생략하면 프로파일의 loss_ratio.categories를 사용합니다.
보험료 합계가 0인 그룹은 "undefined"로 표시되고 목록 끝에 정렬됩니다.

Example:
  go run ./cmd/claimlens loss-ratio
  go run ./cmd/claimlens loss-ratio Province Gender --dataset data/claims.txt`,
	RunE: runLossRatio,
}

func init() {
	rootCmd.AddCommand(lossRatioCmd)
}

func runLossRatio(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ds, err := a.load(context.Background())
	if err != nil {
		return err
	}

	categories := args
	if len(categories) == 0 {
		categories = a.profile.LossRatio.Categories
	}

	summary, err := lossratio.NewAggregator(a.log.Zerolog()).Summarize(ds, categories, a.profile.Columns)
	if err != nil {
		return err
	}

	if outputJSON {
		return PrintJSON(summary)
	}

	PrintHeader("Loss Ratio", map[string]string{
		"Rows":    fmt.Sprintf("%d", ds.Len()),
		"Overall": FormatRatio(summary.Overall),
	}, "Rows", "Overall")

	widths := []int{28, 16, 16, 10}
	for _, table := range summary.Tables {
		fmt.Printf("\n[%s]\n", table.Category)
		PrintTableHeader([]string{table.Category, "TotalClaims", "TotalPremium", "LossRatio"}, widths)
		for _, row := range table.Rows {
			PrintTableRow([]string{
				Truncate(row.Category, widths[0]),
				FormatFloat(row.Claims, 2),
				FormatFloat(row.Premium, 2),
				FormatRatio(row.LossRatio),
			}, widths)
		}
	}
	fmt.Println()
	return nil
}
