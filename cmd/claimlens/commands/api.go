package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/claimlens/internal/api"
	"github.com/wonny/claimlens/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

데이터셋은 첫 요청 시 한 번 로드되어 모든 요청이 공유합니다.
리포트는 메모리와 redis(REDIS_ENABLED=true)에 캐시됩니다.

Endpoints:
  GET  /health                          - Health check
  GET  /api/loss-ratio                  - 전체 + 카테고리별 손해율
  GET  /api/loss-ratio/{category}       - 카테고리별 손해율
  GET  /api/anova/margin/{category}     - Margin ANOVA
  GET  /api/anova/{category}/{value}    - ANOVA
  GET  /api/chi2/{category}             - Chi-squared
  GET  /api/trends/monthly              - 월별 추세
  GET  /api/quality/missing             - 결측치
  GET  /api/severity                    - 차종별 청구 심도
  GET  /api/report                      - 전체 리포트
  POST /api/report/refresh              - 데이터셋 재로드 + 리포트 재생성

Example:
  go run ./cmd/claimlens api
  go run ./cmd/claimlens api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== claimlens API Server ===")

	// 1. Load config, logger, profile
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	log := a.log
	log.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
		"env":  a.cfg.Env,
	}).Info("Initializing API server")

	// 2. Report service (dataset source + redis cache)
	svc, rc, err := a.reportService()
	if err != nil {
		return err
	}
	defer rc.Close()

	// 3. Create handlers
	analysisHandler := handlers.NewAnalysisHandler(svc, log)
	reportHandler := handlers.NewReportHandler(svc, log)

	// 4. Create router
	proxies, err := api.ParseTrustedProxies(a.cfg.TrustedProxies)
	if err != nil {
		return err
	}
	limiter := api.NewLimiter(rc, a.cfg.RateLimitRPS)
	router := api.NewRouter(analysisHandler, reportHandler, limiter, proxies, log)

	// 5. Create server
	server := api.New(a.cfg, log, router)

	// 6. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Printf("   Dataset: %s\n", svc.Source())
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-quit:
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
