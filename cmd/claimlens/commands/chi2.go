package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/claimlens/internal/significance"
)

// chi2Cmd represents the chi2 command
var chi2Cmd = &cobra.Command{
	Use:   "chi2 <group>",
	Short: "Chi-squared 독립성 검정 (group × outcome)",
	Long: `group과 outcome(기본: HasClaim = TotalClaims > 0)의 교차표로
Pearson chi-squared 검정을 수행합니다. 2x2 표에는 Yates 보정을 적용합니다.

Example:
  go run ./cmd/claimlens chi2 Province
  go run ./cmd/claimlens chi2 Gender --outcome HasClaim`,
	Args: cobra.ExactArgs(1),
	RunE: runChi2,
}

var chi2Outcome string

func init() {
	rootCmd.AddCommand(chi2Cmd)
	chi2Cmd.Flags().StringVar(&chi2Outcome, "outcome", "", "outcome column (default: profile chi_squared.outcome)")
}

func runChi2(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ds, err := a.load(context.Background())
	if err != nil {
		return err
	}

	outcome := chi2Outcome
	if outcome == "" {
		outcome = a.profile.OutcomeColumn()
	}

	res, err := significance.NewTester(a.profile.Columns, a.log.Zerolog()).ChiSquared(ds, args[0], outcome)
	if err != nil {
		return err
	}

	if outputJSON {
		return PrintJSON(res)
	}

	PrintHeader(fmt.Sprintf("Chi-squared: %s x %s", res.GroupColumn, res.OutcomeColumn), nil)
	PrintKeyValue("Chi2", FormatFloat(res.Chi2, 4), 10)
	PrintKeyValue("p-value", FormatPValue(res.PValue), 10)
	PrintKeyValue("DOF", fmt.Sprintf("%d", res.DOF), 10)
	PrintKeyValue("N", fmt.Sprintf("%d", res.ContingencyTable.Total()), 10)

	table := res.ContingencyTable
	widths := []int{24}
	header := []string{res.GroupColumn}
	for _, c := range table.Columns {
		header = append(header, c)
		widths = append(widths, 10)
	}
	fmt.Println()
	PrintTableHeader(header, widths)
	for i, row := range table.Rows {
		values := []string{Truncate(row, widths[0])}
		for _, n := range table.Counts[i] {
			values = append(values, fmt.Sprintf("%d", n))
		}
		PrintTableRow(values, widths)
	}

	fmt.Println()
	PrintInfo(SignificanceLabel(res.Significant(significanceAlpha), significanceAlpha))
	return nil
}
