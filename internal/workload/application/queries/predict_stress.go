package queries

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/studyload/internal/workload/application/services"
)

// WeekDays is the number of entries a caller-supplied weekly load must have.
const WeekDays = 7

// Upper bounds on one caller-supplied day of load.
const (
	MaxDayHours     = 10000
	MaxDayDeadlines = 1000
)

// WeeklyLoadInput is one caller-supplied day of load.
type WeeklyLoadInput struct {
	Day       string `json:"day"`
	Deadlines int    `json:"deadlines"`
	Hours     int    `json:"hours"`
}

// PredictStressQuery scores the stored load of UserID, or WeeklyLoad when it
// is non-nil.
type PredictStressQuery struct {
	UserID     uuid.UUID
	WeeklyLoad []WeeklyLoadInput
}

// DailyStressDTO exposes both stress representations of one day. StressLevel
// is the day's share of the week; AbsoluteStress is the 0..100 score.
type DailyStressDTO struct {
	Day            string `json:"day"`
	StressLevel    int    `json:"stress_level"`
	AbsoluteStress int    `json:"absolute_stress"`
	Hours          int    `json:"hours"`
	Deadlines      int    `json:"deadlines"`
}

// StressPredictionDTO is the weekly stress summary.
type StressPredictionDTO struct {
	DailyStress       []DailyStressDTO `json:"daily_stress"`
	WeeklyStressScore int              `json:"weekly_stress_score"`
	RiskLevel         string           `json:"risk_level"`
	PeakStressDay     string           `json:"peak_stress_day"`
	Explanation       string           `json:"explanation"`
}

// PredictStressHandler runs the stress engine and asks the narrator for an
// explanation. Every number in the result comes from the engine.
type PredictStressHandler struct {
	loader   *WorkloadLoader
	engine   *services.StressEngine
	narrator *services.Narrator
}

func NewPredictStressHandler(loader *WorkloadLoader, engine *services.StressEngine, narrator *services.Narrator) *PredictStressHandler {
	return &PredictStressHandler{loader: loader, engine: engine, narrator: narrator}
}

func (h *PredictStressHandler) Handle(ctx context.Context, query PredictStressQuery) (*StressPredictionDTO, error) {
	var buckets []services.DayBucket
	if query.WeeklyLoad != nil {
		var err error
		if buckets, err = bucketsFromInput(query.WeeklyLoad); err != nil {
			return nil, err
		}
	} else {
		dashboard, err := h.loader.Load(ctx, query.UserID)
		if err != nil {
			return nil, err
		}
		buckets = dashboard.Buckets()
	}

	report := h.engine.Evaluate(buckets)
	explanation := h.narrator.ExplainStress(ctx, report)

	dto := &StressPredictionDTO{
		DailyStress:       make([]DailyStressDTO, len(report.Days)),
		WeeklyStressScore: report.WeeklyScore,
		RiskLevel:         string(report.Risk),
		PeakStressDay:     report.PeakDay,
		Explanation:       explanation,
	}
	for i, d := range report.Days {
		dto.DailyStress[i] = DailyStressDTO{
			Day:            d.DayLabel,
			StressLevel:    d.Share,
			AbsoluteStress: d.Absolute,
			Hours:          d.Bucket.Hours,
			Deadlines:      d.Bucket.Deadlines,
		}
	}
	return dto, nil
}

// bucketsFromInput accepts exactly one entry per weekday, in any order.
func bucketsFromInput(load []WeeklyLoadInput) ([]services.DayBucket, error) {
	if len(load) != WeekDays {
		return nil, services.NewValidationError("weekly_load", "must contain exactly "+strconv.Itoa(WeekDays)+" days")
	}
	seen := make(map[string]bool, WeekDays)
	buckets := make([]services.DayBucket, len(load))
	for i, day := range load {
		field := "weekly_load[" + strconv.Itoa(i) + "]"
		switch {
		case services.WeekdayIndex(day.Day) < 0:
			return nil, services.NewValidationError(field+".day", "must be one of Mon, Tue, Wed, Thu, Fri, Sat, Sun")
		case seen[day.Day]:
			return nil, services.NewValidationError(field+".day", "is repeated")
		case day.Hours < 0:
			return nil, services.NewValidationError(field+".hours", "must not be negative")
		case day.Hours > MaxDayHours:
			return nil, services.NewValidationError(field+".hours", "must not exceed "+strconv.Itoa(MaxDayHours))
		case day.Deadlines < 0:
			return nil, services.NewValidationError(field+".deadlines", "must not be negative")
		case day.Deadlines > MaxDayDeadlines:
			return nil, services.NewValidationError(field+".deadlines", "must not exceed "+strconv.Itoa(MaxDayDeadlines))
		}
		seen[day.Day] = true
		buckets[i] = services.DayBucket{DayLabel: day.Day, Deadlines: day.Deadlines, Hours: day.Hours}
	}
	return buckets, nil
}
