package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/claimlens/internal/contracts"
	"github.com/wonny/claimlens/internal/report"
	"github.com/wonny/claimlens/internal/significance"
)

const significanceAlpha = report.SignificanceAlpha

// anovaCmd represents the anova command
var anovaCmd = &cobra.Command{
	Use:   "anova <group> <value>",
	Short: "One-way ANOVA (value ~ group)",
	Long: `group 컬럼의 그룹 간 value 평균 차이를 one-way ANOVA로 검정합니다.

값이 1개뿐인 그룹은 제외되며, 남은 그룹이 2개 미만이면 검정을 건너뜁니다.

Example:
  go run ./cmd/claimlens anova Province TotalClaims
  go run ./cmd/claimlens anova Gender TotalClaims --where HasClaim --equals true`,
	Args: cobra.ExactArgs(2),
	RunE: runANOVA,
}

// marginANOVACmd represents the margin-anova command
var marginANOVACmd = &cobra.Command{
	Use:   "margin-anova <category>",
	Short: "마진(TotalPremium - TotalClaims) ANOVA",
	Long: `Margin 컬럼이 없으면 TotalPremium - TotalClaims로 파생한 뒤
category 그룹 간 마진 차이를 검정합니다.

Example:
  go run ./cmd/claimlens margin-anova PostalCode`,
	Args: cobra.ExactArgs(1),
	RunE: runMarginANOVA,
}

var (
	anovaWhere  string
	anovaEquals string
)

func init() {
	rootCmd.AddCommand(anovaCmd)
	rootCmd.AddCommand(marginANOVACmd)

	anovaCmd.Flags().StringVar(&anovaWhere, "where", "", "filter column")
	anovaCmd.Flags().StringVar(&anovaEquals, "equals", "", "filter value (with --where)")
}

func runANOVA(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ds, err := a.load(context.Background())
	if err != nil {
		return err
	}

	var cond *significance.Condition
	if anovaWhere != "" {
		cond = &significance.Condition{Column: anovaWhere, Value: anovaEquals}
	}

	res, err := significance.NewTester(a.profile.Columns, a.log.Zerolog()).ANOVA(ds, args[0], args[1], cond)
	if err != nil {
		return err
	}
	return printANOVA(fmt.Sprintf("ANOVA: %s by %s", args[1], args[0]), res)
}

func runMarginANOVA(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ds, err := a.load(context.Background())
	if err != nil {
		return err
	}

	res, err := significance.NewTester(a.profile.Columns, a.log.Zerolog()).MarginANOVA(ds, args[0])
	if err != nil {
		return err
	}
	return printANOVA(fmt.Sprintf("Margin ANOVA: %s", args[0]), res)
}

func printANOVA(title string, res *contracts.ANOVAResult) error {
	if outputJSON {
		return PrintJSON(res)
	}

	PrintHeader(title, nil)
	PrintKeyValue("Groups", fmt.Sprintf("%d", res.GroupCount), 12)
	PrintKeyValue("F", FormatOptional(res.FStatistic, 4), 12)
	PrintKeyValue("p-value", FormatOptional(res.PValue, 6), 12)

	if !res.Ran() {
		PrintWarning(res.Note)
		return nil
	}
	fmt.Println()
	PrintInfo(SignificanceLabel(res.Significant(significanceAlpha), significanceAlpha))
	return nil
}
