package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identityCommands "github.com/felixgeelhaar/studyload/internal/identity/application/commands"
	workloadCommands "github.com/felixgeelhaar/studyload/internal/workload/application/commands"
	workloadQueries "github.com/felixgeelhaar/studyload/internal/workload/application/queries"
	"github.com/felixgeelhaar/studyload/internal/workload/application/services"
	"github.com/felixgeelhaar/studyload/pkg/config"
	"github.com/felixgeelhaar/studyload/pkg/observability"
)

func localConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:            "test",
		SQLitePath:        filepath.Join(t.TempDir(), "studyload.db"),
		TokenTTL:          time.Hour,
		DashboardCacheTTL: time.Minute,
		NarrativeProvider: config.NarrativeProviderTemplate,

		ScoringMaxDailyHours: 12,
		ScoringRiskLowMax:    35,
		ScoringRiskMediumMax: 65,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func TestNewContainer_LocalMode(t *testing.T) {
	ctx := context.Background()
	c, err := NewContainer(ctx, localConfig(t), testLogger())
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.DeadlineRepo)
	assert.NotNil(t, c.UserRepo)
	assert.NotNil(t, c.AuthService)
	assert.NotNil(t, c.PredictStressHandler)
	assert.NotNil(t, c.ExportCalendarHandler)

	health := c.Health.GetOverallHealth(ctx)
	assert.Equal(t, observability.HealthStatusHealthy, health.Status)
	assert.Contains(t, health.Checks, "database")
}

func TestContainer_WorkloadFlow(t *testing.T) {
	ctx := context.Background()
	c, err := NewContainer(ctx, localConfig(t), testLogger())
	require.NoError(t, err)
	defer c.Close()

	registered, err := c.RegisterUserHandler.Handle(ctx, identityCommands.RegisterUserCommand{
		Name: "Ada", Email: "ada@example.com", Password: "analytical-engine",
	})
	require.NoError(t, err)

	user, err := c.ResolveUser(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, registered.UserID, user.ID)

	login, err := c.AuthService.Login(ctx, "ada@example.com", "analytical-engine")
	require.NoError(t, err)
	resolved, err := c.AuthService.Resolve(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved)

	due := services.DateOf(time.Now()).AddDate(0, 0, 2)
	_, err = c.CreateDeadlineHandler.Handle(ctx, workloadCommands.CreateDeadlineCommand{
		UserID: user.ID, Title: "Essay", DueDate: due, EstimatedEffort: 6, Importance: "high",
	})
	require.NoError(t, err)

	dashboard, err := c.GetDashboardHandler.Handle(ctx, workloadQueries.GetDashboardQuery{UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, dashboard.UpcomingDeadlines)
	assert.Equal(t, 6, dashboard.TotalHours)

	stress, err := c.PredictStressHandler.Handle(ctx, workloadQueries.PredictStressQuery{UserID: user.ID})
	require.NoError(t, err)
	// 6h -> 30, one deadline -> 10
	assert.Equal(t, 40, stress.WeeklyStressScore)
	assert.Equal(t, "medium", stress.RiskLevel)
	assert.NotEmpty(t, stress.Explanation)

	priorities, err := c.RankPrioritiesHandler.Handle(ctx, workloadQueries.RankPrioritiesQuery{UserID: user.ID})
	require.NoError(t, err)
	require.Len(t, priorities, 1)
	assert.Equal(t, 1, priorities[0].Rank)
	assert.NotEmpty(t, priorities[0].Reason)

	ics, err := c.ExportCalendarHandler.Handle(ctx, workloadQueries.ExportCalendarQuery{UserID: user.ID})
	require.NoError(t, err)
	assert.Contains(t, string(ics), "SUMMARY:Essay")

	assert.Positive(t, c.Metrics.GetCounter(observability.MetricDashboardCache, observability.T("result", "miss")))
}

func TestContainer_OutboxProcessorFallsBackToNoop(t *testing.T) {
	ctx := context.Background()
	c, err := NewContainer(ctx, localConfig(t), testLogger())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.RegisterUserHandler.Handle(ctx, identityCommands.RegisterUserCommand{
		Name: "Ada", Email: "ada@example.com", Password: "analytical-engine",
	})
	require.NoError(t, err)

	processor, err := c.OutboxProcessor()
	require.NoError(t, err)
	require.NoError(t, processor.ProcessOnce(ctx))

	pending, err := c.OutboxRepo.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)
}

func TestResolveUser_RequiresEmail(t *testing.T) {
	ctx := context.Background()
	c, err := NewContainer(ctx, localConfig(t), testLogger())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.ResolveUser(ctx, "")
	assert.Error(t, err)

	_, err = c.ResolveUser(ctx, "nobody@example.com")
	assert.ErrorContains(t, err, "user register")
}
