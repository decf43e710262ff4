package job

import (
	"context"
	"time"

	"rotkit/internal/repository"

	"github.com/sirupsen/logrus"
)

type SecurityLogPruneJob struct {
	logs      repository.SecurityLogRepository
	retention time.Duration
	now       func() time.Time
	logger    logrus.FieldLogger
}

func NewSecurityLogPruneJob(logs repository.SecurityLogRepository, retention time.Duration, logger logrus.FieldLogger) *SecurityLogPruneJob {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SecurityLogPruneJob{logs: logs, retention: retention, now: time.Now, logger: logger}
}

func (j *SecurityLogPruneJob) Name() string {
	return "security_log_prune"
}

func (j *SecurityLogPruneJob) Run(ctx context.Context) error {
	if j.logs == nil {
		return nil
	}
	retention := j.retention
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	removed, err := j.logs.DeleteBefore(ctx, j.now().Add(-retention))
	if err != nil {
		return err
	}
	j.logger.WithField("removed", removed).Info("security logs pruned")
	return nil
}
