package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/claimlens/pkg/database"
)

// dbCheckCmd represents the db-check command
var dbCheckCmd = &cobra.Command{
	Use:   "db-check",
	Short: "PostgreSQL 연결 및 데이터셋 테이블 확인",
	Long: `DATABASE_URL로 연결해 상태를 확인하고,
DATASET_TABLE이 설정되어 있으면 행 수와 컬럼 목록을 출력합니다.

Example:
  DATABASE_URL=postgres://... DATASET_TABLE=claims go run ./cmd/claimlens db-check`,
	RunE: runDBCheck,
}

func init() {
	rootCmd.AddCommand(dbCheckCmd)
}

func runDBCheck(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	db, err := database.New(a.cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}

	table := a.cfg.Dataset.Table
	var info *database.TableInfo
	if table != "" {
		info, err = db.DescribeTable(ctx, table)
		if err != nil {
			return err
		}
	}

	if outputJSON {
		return PrintJSON(map[string]interface{}{
			"health": status,
			"table":  info,
		})
	}

	PrintHeader("Database Check", nil)
	PrintKeyValue("Healthy", fmt.Sprintf("%t", status.Healthy), 16)
	PrintKeyValue("Response Time", status.ResponseTime.String(), 16)
	PrintKeyValue("Connections", fmt.Sprintf("%d / %d", status.Stats.TotalConns, status.Stats.MaxConns), 16)

	if info == nil {
		fmt.Println()
		PrintInfo("DATASET_TABLE not set, skipping table check")
		return nil
	}

	fmt.Println()
	PrintKeyValue("Table", info.Name, 16)
	PrintKeyValue("Rows", fmt.Sprintf("%d", info.Rows), 16)
	PrintKeyValue("Columns", strings.Join(info.Columns, ", "), 16)
	fmt.Println()
	return nil
}
