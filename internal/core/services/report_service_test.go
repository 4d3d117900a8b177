package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sogecredit/internal/core/domain"
)

func seedReportData(t *testing.T, env *testEnv) {
	t.Helper()
	env.seedApp(t, 2, uintPtr(3), domain.StatusPending)
	env.seedApp(t, 2, uintPtr(3), domain.StatusApproved)
	env.seedApp(t, 2, uintPtr(4), domain.StatusRejected)

	// One old dossier, outside the 30-day window
	old := env.seedApp(t, 2, nil, domain.StatusPending)
	old.CreatedAt = time.Now().AddDate(0, -3, 0)
}

func TestReport_Scoped(t *testing.T) {
	env := newTestEnv()
	svc := NewReportService(env.apps, env.users)
	ctx := context.Background()
	seedReportData(t, env)

	manager, err := svc.Report(ctx, env.actor(1), &ReportInput{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, manager.Stats.Total)
	assert.EqualValues(t, 2, manager.Stats.Pending)
	assert.EqualValues(t, 1, manager.Stats.Approved)
	assert.EqualValues(t, 1, manager.Stats.Rejected)
	assert.EqualValues(t, 100000, manager.Stats.TotalAmount)
	assert.Len(t, manager.Applications, 4)

	officer, err := svc.Report(ctx, env.actor(3), &ReportInput{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, officer.Stats.Total)

	secretary, err := svc.Report(ctx, env.actor(2), &ReportInput{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, secretary.Stats.Total)
}

func TestReport_StatusFilter(t *testing.T) {
	env := newTestEnv()
	svc := NewReportService(env.apps, env.users)
	seedReportData(t, env)

	out, err := svc.Report(context.Background(), env.actor(1), &ReportInput{Status: statusPtr(domain.StatusApproved)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, out.Stats.Total)
	assert.Len(t, out.Applications, 1)
}

func TestDashboard(t *testing.T) {
	env := newTestEnv()
	svc := NewReportService(env.apps, env.users)
	ctx := context.Background()
	seedReportData(t, env)

	t.Run("manager", func(t *testing.T) {
		stats, err := svc.Dashboard(ctx, env.actor(1))
		require.NoError(t, err)
		assert.EqualValues(t, 4, stats.Total)
		assert.EqualValues(t, 3, stats.Last30Days)
		assert.EqualValues(t, 4, stats.ActiveUsers)
	})

	t.Run("officer", func(t *testing.T) {
		stats, err := svc.Dashboard(ctx, env.actor(3))
		require.NoError(t, err)
		assert.EqualValues(t, 2, stats.Total)
		assert.Zero(t, stats.ActiveUsers)
	})
}
