package narrative

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/studyload/internal/workload/application/services"
)

// TemplateGenerator writes fixed sentences from the facts. It never fails
// and needs no network, which makes it the local-mode generator.
type TemplateGenerator struct{}

func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

func (TemplateGenerator) ExplainStress(_ context.Context, facts services.StressFacts) (string, error) {
	if facts.PeakDay == services.PeakDayNone {
		return "Nothing is due in the next seven days, so your stress estimate is 0 and your risk is low.", nil
	}

	var peak services.StressDayFact
	busy := 0
	for _, d := range facts.Days {
		if d.Day == facts.PeakDay {
			peak = d
		}
		if d.Stress > 0 {
			busy++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your weekly stress score is %d, which is %s risk. ", facts.WeeklyScore, facts.RiskLevel)
	fmt.Fprintf(&b, "%s is the heaviest day with %s and %s due. ",
		facts.PeakDay, plural(peak.Deadlines, "deadline"), plural(peak.Hours, "hour"))
	switch {
	case busy == 1:
		b.WriteString("The rest of the week is clear.")
	case facts.RiskLevel == services.RiskHigh:
		b.WriteString("Consider starting the largest tasks early to spread the load.")
	default:
		fmt.Fprintf(&b, "Work is spread over %d days.", busy)
	}
	return b.String(), nil
}

func (TemplateGenerator) ExplainPriorities(_ context.Context, facts []services.PriorityFacts) ([]string, error) {
	reasons := make([]string, len(facts))
	for i, f := range facts {
		var when string
		switch {
		case f.DaysOverdue > 0:
			when = "is overdue by " + plural(f.DaysOverdue, "day")
		case f.DaysUntilDue == 0:
			when = "is due today"
		case f.DaysUntilDue == 1:
			when = "is due tomorrow"
		default:
			when = fmt.Sprintf("is due in %d days", f.DaysUntilDue)
		}
		reasons[i] = fmt.Sprintf("%s %s, needs about %s and has %s importance.",
			f.Title, when, plural(f.EstimatedEffort, "hour"), f.Importance)
	}
	return reasons, nil
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
