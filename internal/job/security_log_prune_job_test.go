package job

import (
	"context"
	"testing"
	"time"

	"rotkit/internal/entity"
	"rotkit/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestSecurityLogPruneJobRemovesOldEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 3, 0, 0, 0, time.UTC)
	logs := &testutil.SecurityLogStore{}
	require.NoError(t, logs.Log(ctx, &entity.SecurityLog{Action: entity.LoginSuccess, CreatedAt: now.Add(-100 * 24 * time.Hour)}))
	require.NoError(t, logs.Log(ctx, &entity.SecurityLog{Action: entity.OTPSent, CreatedAt: now.Add(-time.Hour)}))

	job := NewSecurityLogPruneJob(logs, 90*24*time.Hour, nil)
	job.now = func() time.Time { return now }
	require.Equal(t, "security_log_prune", job.Name())
	require.NoError(t, job.Run(ctx))

	require.Equal(t, []entity.SecurityAction{entity.OTPSent}, logs.Actions())
}

func TestCronSchedulerRejectsBadSpec(t *testing.T) {
	scheduler := NewCronScheduler(nil)
	job := NewSecurityLogPruneJob(&testutil.SecurityLogStore{}, 0, nil)
	require.Error(t, scheduler.AddJob(job, "not a cron spec"))
	require.NoError(t, scheduler.AddJob(job, "0 3 * * *"))
}
