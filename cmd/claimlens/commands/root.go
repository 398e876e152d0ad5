package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	datasetPath string
	profilePath string
	sheetName   string
	outputJSON  bool
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "claimlens",
	Short: "claimlens - 자동차 보험 청구 데이터 탐색 분석",
	Long: `claimlens CLI

보험 청구 데이터셋(csv, pipe 구분 txt, xlsx, postgres 테이블)을 읽어
손해율, 유의성 검정, 월별 추세, 데이터 품질을 분석합니다.

Usage:
  go run ./cmd/claimlens [command]

Examples:
  go run ./cmd/claimlens loss-ratio Province VehicleType --dataset data/claims.txt
  go run ./cmd/claimlens margin-anova PostalCode
  go run ./cmd/claimlens report --profile configs/profile.yaml --json
  go run ./cmd/claimlens api`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&datasetPath, "dataset", "d", "", "dataset file (default: DATASET_PATH or profile dataset.path)")
	rootCmd.PersistentFlags().StringVarP(&profilePath, "profile", "p", "", "analysis profile YAML (default: PROFILE_PATH or built-in)")
	rootCmd.PersistentFlags().StringVar(&sheetName, "sheet", "", "xlsx sheet name (default: first sheet)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs)")
}
