package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/claimlens/internal/contracts"
	"github.com/wonny/claimlens/pkg/logger"
)

// ReportRefresher rebuilds the report from a fresh dataset load
type ReportRefresher interface {
	Refresh(ctx context.Context) (*contracts.Report, error)
}

// ReportRefreshJob reloads the dataset and rebuilds the cached report
type ReportRefreshJob struct {
	refresher ReportRefresher
	schedule  string
	logger    *logger.Logger
}

// NewReportRefreshJob creates a new report refresh job
func NewReportRefreshJob(refresher ReportRefresher, schedule string, log *logger.Logger) *ReportRefreshJob {
	return &ReportRefreshJob{
		refresher: refresher,
		schedule:  schedule,
		logger:    log,
	}
}

// Name returns the job name
func (j *ReportRefreshJob) Name() string {
	return "report_refresh"
}

// Schedule returns the cron schedule (REPORT_SCHEDULE)
func (j *ReportRefreshJob) Schedule() string {
	return j.schedule
}

// Run executes the report refresh
func (j *ReportRefreshJob) Run(ctx context.Context) error {
	j.logger.Debug("Starting scheduled report refresh")

	rep, err := j.refresher.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh report: %w", err)
	}

	log := j.logger.WithFields(map[string]interface{}{
		"rows":         rep.Rows,
		"profile_hash": rep.ProfileHash,
	})
	if rep.HasErrors() {
		// 일부 분석 실패는 재시도 대상 아님 (데이터 문제)
		log.WithField("failed", rep.Errors).Warn("Report refreshed with failed analyses")
		return nil
	}
	log.Info("Report refresh completed")
	return nil
}
