package jobs

import (
	"context"

	"fdms-kiosk-backend/internal/config"
	"fdms-kiosk-backend/internal/logger"
	"fdms-kiosk-backend/internal/service"
	"fdms-kiosk-backend/internal/workflow"
)

// JobRunner coordinates the kiosk's periodic maintenance jobs.
type JobRunner struct {
	admin     service.AdminService
	workflows *workflow.Manager
	config    *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(admin service.AdminService, workflows *workflow.Manager, cfg *config.Config) *JobRunner {
	return &JobRunner{
		admin:     admin,
		workflows: workflows,
		config:    cfg,
	}
}

// Config exposes the runner's configuration to the scheduler.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RefreshSettings re-fetches kiosk branding so stations pick up changes
// without a restart. Best-effort like the startup load.
func (jr *JobRunner) RefreshSettings() {
	jr.runWithRecovery("RefreshSettings", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jr.config.RemoteTimeout())
		defer cancel()
		jr.admin.LoadSettings(ctx)
	})
}

// SweepIdleSessions reclaims workflow sessions abandoned at a kiosk.
func (jr *JobRunner) SweepIdleSessions() {
	jr.runWithRecovery("SweepIdleSessions", func() {
		jr.workflows.SweepIdle()
	})
}

// RunAll runs every maintenance job once (for manual execution).
func (jr *JobRunner) RunAll() {
	jr.RefreshSettings()
	jr.SweepIdleSessions()
}
