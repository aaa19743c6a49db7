package queries

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/studyload/internal/workload/application/services"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/deadline"
	"github.com/felixgeelhaar/studyload/pkg/observability"
)

// DefaultDashboardTTL bounds how stale a dashboard can be when an
// invalidation is lost.
const DefaultDashboardTTL = 5 * time.Minute

// WeeklyLoadDay is one bucket of the dashboard.
type WeeklyLoadDay struct {
	Day       string `json:"day"`
	Date      string `json:"date"`
	Deadlines int    `json:"deadlines"`
	Hours     int    `json:"hours"`
}

// DashboardDTO is the seven day summary starting at WindowStart.
type DashboardDTO struct {
	UpcomingDeadlines int             `json:"upcoming_deadlines"`
	TotalHours        int             `json:"total_hours"`
	WeeklyLoad        []WeeklyLoadDay `json:"weekly_load"`
	WindowStart       string          `json:"window_start"`
}

// Buckets converts the weekly load back into scoring buckets.
func (d DashboardDTO) Buckets() []services.DayBucket {
	buckets := make([]services.DayBucket, len(d.WeeklyLoad))
	for i, day := range d.WeeklyLoad {
		date, _ := time.Parse(time.DateOnly, day.Date)
		buckets[i] = services.DayBucket{
			DayLabel:  day.Day,
			Date:      date,
			Deadlines: day.Deadlines,
			Hours:     day.Hours,
		}
	}
	return buckets
}

func newDashboardDTO(start time.Time, buckets []services.DayBucket) *DashboardDTO {
	deadlines, hours := services.Totals(buckets)
	dto := &DashboardDTO{
		UpcomingDeadlines: deadlines,
		TotalHours:        hours,
		WeeklyLoad:        make([]WeeklyLoadDay, len(buckets)),
		WindowStart:       start.Format(time.DateOnly),
	}
	for i, b := range buckets {
		dto.WeeklyLoad[i] = WeeklyLoadDay{
			Day:       b.DayLabel,
			Date:      b.Date.Format(time.DateOnly),
			Deadlines: b.Deadlines,
			Hours:     b.Hours,
		}
	}
	return dto
}

// LoaderConfig wires a WorkloadLoader.
type LoaderConfig struct {
	Deadlines  deadline.Repository
	Aggregator *services.WorkloadAggregator
	Cache      cache.Cache
	TTL        time.Duration
	Clock      Clock
	Logger     *slog.Logger
	Metrics    observability.Metrics
}

// WorkloadLoader builds the user's weekly load with an explicit cache-aside
// on the dashboard key. A cached summary computed on an earlier day is
// treated as a miss so the window always starts today.
type WorkloadLoader struct {
	deadlines  deadline.Repository
	aggregator *services.WorkloadAggregator
	cache      cache.Cache
	ttl        time.Duration
	clock      Clock
	logger     *slog.Logger
	metrics    observability.Metrics
}

func NewWorkloadLoader(cfg LoaderConfig) *WorkloadLoader {
	if cfg.Aggregator == nil {
		cfg.Aggregator = services.NewWorkloadAggregator(services.DefaultAggregatorConfig())
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultDashboardTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetrics{}
	}
	return &WorkloadLoader{
		deadlines:  cfg.Deadlines,
		aggregator: cfg.Aggregator,
		cache:      cfg.Cache,
		ttl:        cfg.TTL,
		clock:      cfg.Clock,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
	}
}

// Load returns the dashboard for userID, from cache when possible.
func (l *WorkloadLoader) Load(ctx context.Context, userID uuid.UUID) (*DashboardDTO, error) {
	today := l.clock.today()
	key := cache.DashboardKey(userID)

	if cached, ok := l.fromCache(ctx, key, today); ok {
		l.metrics.Counter(observability.MetricDashboardCache, 1, observability.T("result", "hit"))
		return cached, nil
	}
	l.metrics.Counter(observability.MetricDashboardCache, 1, observability.T("result", "miss"))

	start, end := l.aggregator.Window(today)
	deadlines, err := l.deadlines.FindDueBetween(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	dto := newDashboardDTO(start, l.aggregator.Aggregate(today, recordsFromDeadlines(deadlines)))

	if l.cache != nil {
		if err := cache.SetJSON(ctx, l.cache, key, dto, l.ttl); err != nil {
			l.logger.WarnContext(ctx, "dashboard cache write failed",
				observability.UserIDKey, userID,
				observability.ErrorKey, err,
			)
		}
	}
	return dto, nil
}

func (l *WorkloadLoader) fromCache(ctx context.Context, key string, today time.Time) (*DashboardDTO, bool) {
	if l.cache == nil {
		return nil, false
	}
	var dto DashboardDTO
	if err := cache.GetJSON(ctx, l.cache, key, &dto); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			l.logger.WarnContext(ctx, "dashboard cache read failed", observability.ErrorKey, err)
		}
		return nil, false
	}
	if dto.WindowStart != today.Format(time.DateOnly) {
		return nil, false
	}
	return &dto, true
}

type GetDashboardQuery struct {
	UserID uuid.UUID
}

// GetDashboardHandler returns the seven day summary.
type GetDashboardHandler struct {
	loader *WorkloadLoader
}

func NewGetDashboardHandler(loader *WorkloadLoader) *GetDashboardHandler {
	return &GetDashboardHandler{loader: loader}
}

func (h *GetDashboardHandler) Handle(ctx context.Context, query GetDashboardQuery) (*DashboardDTO, error) {
	return h.loader.Load(ctx, query.UserID)
}
