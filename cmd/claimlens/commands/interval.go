package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/claimlens/internal/bootstrap"
)

// intervalCmd represents the loss-ratio-ci command
var intervalCmd = &cobra.Command{
	Use:   "loss-ratio-ci",
	Short: "전체 손해율 bootstrap 신뢰구간",
	Long: `보험 계약 행을 복원 추출로 재표본하여 전체 손해율의 신뢰구간을 추정합니다.

플래그를 생략하면 프로파일 bootstrap 섹션 값을 사용합니다.
method: percentile (재표본 분위수) | normal (추정치 ± z × 표준오차)

Example:
  go run ./cmd/claimlens loss-ratio-ci --samples 2000 --confidence 0.95 --seed 42`,
	RunE: runInterval,
}

var (
	ciSamples    int
	ciConfidence float64
	ciMethod     string
	ciSeed       int64
)

func init() {
	rootCmd.AddCommand(intervalCmd)

	intervalCmd.Flags().IntVar(&ciSamples, "samples", 0, "number of resamples")
	intervalCmd.Flags().Float64Var(&ciConfidence, "confidence", 0, "confidence level in (0, 1)")
	intervalCmd.Flags().StringVar(&ciMethod, "method", "", "percentile | normal")
	intervalCmd.Flags().Int64Var(&ciSeed, "seed", 0, "random seed (0 = random)")
}

func runInterval(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	cfg := a.profile.Bootstrap.Config
	if ciSamples != 0 {
		cfg.Samples = ciSamples
	}
	if ciConfidence != 0 {
		cfg.Confidence = ciConfidence
	}
	if ciMethod != "" {
		cfg.Method = bootstrap.Method(ciMethod)
	}
	if ciSeed != 0 {
		cfg.Seed = ciSeed
	}

	resampler, err := bootstrap.NewResampler(cfg, a.log.Zerolog())
	if err != nil {
		return err
	}

	ctx := context.Background()
	ds, err := a.load(ctx)
	if err != nil {
		return err
	}

	res, err := resampler.LossRatio(ctx, ds, a.profile.Columns)
	if err != nil {
		return err
	}

	if outputJSON {
		return PrintJSON(res)
	}

	PrintHeader("Loss Ratio Confidence Interval", map[string]string{
		"Run":    res.RunID,
		"Method": res.Method,
		"Seed":   fmt.Sprintf("%d", res.Seed),
	}, "Run", "Method", "Seed")

	PrintKeyValue("Estimate", FormatRatio(res.Estimate), 12)
	PrintKeyValue("Samples", fmt.Sprintf("%d (%d defined)", res.Samples, res.Used), 12)
	PrintKeyValue("Std Err", FormatOptional(res.StdErr, 4), 12)

	if !res.Bounded() {
		PrintWarning(res.Note)
		return nil
	}
	PrintKeyValue(fmt.Sprintf("%.0f%% CI", res.Confidence*100),
		fmt.Sprintf("[%s, %s]", FormatRatio(res.Lower), FormatRatio(res.Upper)), 12)
	fmt.Println()
	return nil
}
