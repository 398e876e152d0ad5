package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/claimlens/internal/contracts"
	"github.com/wonny/claimlens/internal/report"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "전체 EDA 리포트 생성",
	Long: `프로파일에 정의된 모든 분석을 실행합니다.

이 명령어는:
- 손해율 (전체 + 카테고리별)
- Margin ANOVA / ANOVA 테스트
- Chi-squared 검정
- 월별 추세, 결측치, 기술 통계
- 차종별 청구 심도 순위

개별 분석이 실패해도 리포트는 계속 생성되며 실패 사유는 errors에 기록됩니다.

Example:
  go run ./cmd/claimlens report --profile configs/profile.yaml
  go run ./cmd/claimlens report --out report.json`,
	RunE: runReport,
}

var reportOut string

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "write the JSON report to a file")
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	ds, err := a.load(ctx)
	if err != nil {
		return err
	}

	rep, err := report.NewBuilder(a.log.Zerolog()).Build(ctx, ds, a.profile)
	if err != nil {
		return err
	}

	if reportOut != "" {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		if err := os.WriteFile(reportOut, data, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		PrintSuccess(fmt.Sprintf("Report written to %s", reportOut))
		return nil
	}

	if outputJSON {
		return PrintJSON(rep)
	}

	printReport(rep)
	return nil
}

func printReport(rep *contracts.Report) {
	PrintHeader("claimlens Report", map[string]string{
		"Generated": rep.GeneratedAt.Format("2006-01-02 15:04:05"),
		"Rows":      fmt.Sprintf("%d", rep.Rows),
		"Profile":   rep.ProfileHash[:12],
	}, "Generated", "Rows", "Profile")

	fmt.Println("\n📊 Loss Ratio")
	PrintKeyValue("Overall", FormatRatio(rep.LossRatio.Overall), 24)
	for _, table := range rep.LossRatio.Tables {
		if len(table.Rows) == 0 {
			continue
		}
		top := table.Rows[0]
		PrintKeyValue(table.Category, fmt.Sprintf("%d groups, highest %s (%s)",
			len(table.Rows), top.Category, FormatRatio(top.LossRatio)), 24)
	}

	if iv := rep.Interval; iv != nil && iv.Bounded() {
		PrintKeyValue(fmt.Sprintf("%.0f%% CI", iv.Confidence*100),
			fmt.Sprintf("[%s, %s] (%s, %d samples)", FormatRatio(iv.Lower), FormatRatio(iv.Upper), iv.Method, iv.Used), 24)
	}

	printANOVASection("📈 Margin ANOVA", rep.MarginANOVA)
	printANOVASection("📈 ANOVA", rep.ANOVA)

	if len(rep.ChiSquared) > 0 {
		fmt.Println("\n🔢 Chi-squared")
		for _, name := range sortedKeys(rep.ChiSquared) {
			res := rep.ChiSquared[name]
			PrintKeyValue(name, fmt.Sprintf("chi2=%s p=%s dof=%d", FormatFloat(res.Chi2, 2), FormatPValue(res.PValue), res.DOF), 24)
		}
	}

	if len(rep.Significant) > 0 {
		PrintKeyValue(fmt.Sprintf("p < %.2f", rep.Alpha), strings.Join(rep.Significant, ", "), 24)
	}

	if len(rep.Monthly) > 0 {
		first, last := rep.Monthly[0], rep.Monthly[len(rep.Monthly)-1]
		fmt.Println("\n📅 Monthly Trends")
		PrintKeyValue("Months", fmt.Sprintf("%d (%s ~ %s)", len(rep.Monthly),
			first.Month.Format("2006-01"), last.Month.Format("2006-01")), 24)
	}

	if len(rep.Missing) > 0 {
		fmt.Println("\n🔍 Missing Values")
		for _, m := range rep.Missing {
			if m.Percent == 0 {
				continue
			}
			PrintKeyValue(m.Column, FormatFloat(m.Percent, 2)+"%", 24)
		}
	}

	if rep.Severity != nil && len(rep.Severity.Top) > 0 {
		fmt.Println("\n🚗 Claim Severity")
		top := rep.Severity.Top[0]
		PrintKeyValue("Highest", fmt.Sprintf("%s (%s)", top.Label(), FormatFloat(top.AvgClaimAmount, 2)), 24)
	}

	if rep.HasErrors() {
		fmt.Println()
		for _, name := range sortedKeys(rep.Errors) {
			PrintWarning(fmt.Sprintf("%s: %s", name, rep.Errors[name]))
		}
	}
	fmt.Println()
}

func printANOVASection(title string, results map[string]*contracts.ANOVAResult) {
	if len(results) == 0 {
		return
	}
	fmt.Printf("\n%s\n", title)
	for _, name := range sortedKeys(results) {
		res := results[name]
		if !res.Ran() {
			PrintKeyValue(name, res.Note, 24)
			continue
		}
		PrintKeyValue(name, fmt.Sprintf("F=%s p=%s (%s)",
			FormatFloat(*res.FStatistic, 2), FormatPValue(*res.PValue),
			SignificanceLabel(res.Significant(significanceAlpha), significanceAlpha)), 24)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
