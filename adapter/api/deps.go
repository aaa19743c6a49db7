package api

import "github.com/felixgeelhaar/studyload/internal/app"

// DependenciesFrom takes the route handlers from a wired container.
func DependenciesFrom(c *app.Container) Dependencies {
	return Dependencies{
		Auth:   c.AuthService,
		Health: c.Health,

		RegisterUser:   c.RegisterUserHandler,
		UpdateProfile:  c.UpdateProfileHandler,
		GetUser:        c.GetUserHandler,
		GetUserByEmail: c.GetUserByEmailHandler,

		CreateDeadline: c.CreateDeadlineHandler,
		UpdateDeadline: c.UpdateDeadlineHandler,
		DeleteDeadline: c.DeleteDeadlineHandler,
		ListDeadlines:  c.ListDeadlinesHandler,
		GetDeadline:    c.GetDeadlineHandler,
		ExportCalendar: c.ExportCalendarHandler,

		GetDashboard:       c.GetDashboardHandler,
		PredictStress:      c.PredictStressHandler,
		RankPriorities:     c.RankPrioritiesHandler,
		StressContributors: c.StressContributorsHandler,
	}
}
