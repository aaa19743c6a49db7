package api

import (
	"errors"
	"net/http"
	"time"

	workloadCommands "github.com/felixgeelhaar/studyload/internal/workload/application/commands"
	workloadQueries "github.com/felixgeelhaar/studyload/internal/workload/application/queries"
)

// handleCreateDeadline handles POST /api/v1/deadlines
func (s *Server) handleCreateDeadline(w http.ResponseWriter, r *http.Request) {
	var req deadlineRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	due, err := parseDate("due_date", req.DueDate)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	userID := userIDFrom(r)
	result, err := s.deps.CreateDeadline.Handle(r.Context(), workloadCommands.CreateDeadlineCommand{
		UserID:          userID,
		Title:           req.Title,
		DueDate:         due,
		EstimatedEffort: req.EstimatedEffort,
		Importance:      importanceOrDefault(req.Importance),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	dto, err := s.deps.GetDeadline.Handle(r.Context(), workloadQueries.GetDeadlineQuery{UserID: userID, DeadlineID: result.DeadlineID})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/deadlines/"+result.DeadlineID.String())
	writeJSON(w, http.StatusCreated, dto)
}

// handleListDeadlines handles GET /api/v1/deadlines
func (s *Server) handleListDeadlines(w http.ResponseWriter, r *http.Request) {
	dtos, err := s.deps.ListDeadlines.Handle(r.Context(), workloadQueries.ListDeadlinesQuery{UserID: userIDFrom(r)})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deadlines": dtos,
		"total":     len(dtos),
	})
}

// handleGetDeadline handles GET /api/v1/deadlines/{id}
func (s *Server) handleGetDeadline(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	dto, err := s.deps.GetDeadline.Handle(r.Context(), workloadQueries.GetDeadlineQuery{UserID: userIDFrom(r), DeadlineID: id})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// handleUpdateDeadline handles PUT /api/v1/deadlines/{id}. Omitted fields
// keep their stored value.
func (s *Server) handleUpdateDeadline(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var req deadlinePatch
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := userIDFrom(r)
	cmd := workloadCommands.UpdateDeadlineCommand{
		UserID:          userID,
		DeadlineID:      id,
		Title:           req.Title,
		EstimatedEffort: req.EstimatedEffort,
		Importance:      req.Importance,
	}
	if req.DueDate != nil {
		due, err := parseDate("due_date", *req.DueDate)
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		cmd.DueDate = &due
	}

	if err := s.deps.UpdateDeadline.Handle(r.Context(), cmd); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	dto, err := s.deps.GetDeadline.Handle(r.Context(), workloadQueries.GetDeadlineQuery{UserID: userID, DeadlineID: id})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// handleDeleteDeadline handles DELETE /api/v1/deadlines/{id}
func (s *Server) handleDeleteDeadline(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := s.deps.DeleteDeadline.Handle(r.Context(), workloadCommands.DeleteDeadlineCommand{UserID: userIDFrom(r), DeadlineID: id}); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExportCalendar handles GET /api/v1/deadlines/calendar.ics
func (s *Server) handleExportCalendar(w http.ResponseWriter, r *http.Request) {
	doc, err := s.deps.ExportCalendar.Handle(r.Context(), workloadQueries.ExportCalendarQuery{UserID: userIDFrom(r)})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="studyload-deadlines.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// handleDashboard handles GET /api/v1/dashboard/summary
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dto, err := s.deps.GetDashboard.Handle(r.Context(), workloadQueries.GetDashboardQuery{UserID: userIDFrom(r)})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// handleStressPrediction handles GET and POST /api/v1/stress/prediction.
// A POST body may carry a seven-day weekly_load to score instead of the
// stored deadlines.
func (s *Server) handleStressPrediction(w http.ResponseWriter, r *http.Request) {
	query := workloadQueries.PredictStressQuery{UserID: userIDFrom(r)}
	if r.Method == http.MethodPost {
		var req stressRequest
		if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		query.WeeklyLoad = req.WeeklyLoad
	}

	dto, err := s.deps.PredictStress.Handle(r.Context(), query)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// handleStressContributors handles GET and POST /api/v1/stress/contributors
func (s *Server) handleStressContributors(w http.ResponseWriter, r *http.Request) {
	inputs, ok := s.scoringInputs(w, r)
	if !ok {
		return
	}
	dto, err := s.deps.StressContributors.Handle(r.Context(), workloadQueries.StressContributorsQuery{
		UserID:    userIDFrom(r),
		Deadlines: inputs,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// handlePriorities handles GET and POST /api/v1/priorities
func (s *Server) handlePriorities(w http.ResponseWriter, r *http.Request) {
	inputs, ok := s.scoringInputs(w, r)
	if !ok {
		return
	}
	start := time.Now()
	dtos, err := s.deps.RankPriorities.Handle(r.Context(), workloadQueries.RankPrioritiesQuery{
		UserID:    userIDFrom(r),
		Deadlines: inputs,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.logger.DebugContext(r.Context(), "priorities ranked", "tasks", len(dtos), "elapsed", time.Since(start))
	writeJSON(w, http.StatusOK, map[string]any{"priorities": dtos})
}

// scoringInputs reads the optional deadline list of a POST body. It writes
// the error response itself and reports false when the request is unusable.
func (s *Server) scoringInputs(w http.ResponseWriter, r *http.Request) ([]workloadQueries.DeadlineInput, bool) {
	if r.Method != http.MethodPost {
		return nil, true
	}
	var req scoringRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	inputs, err := req.inputs()
	if err != nil {
		s.writeDomainError(w, r, err)
		return nil, false
	}
	return inputs, true
}
