package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	workloadQueries "github.com/felixgeelhaar/studyload/internal/workload/application/queries"
	"github.com/felixgeelhaar/studyload/internal/workload/application/services"
	"github.com/felixgeelhaar/studyload/internal/workload/domain/value_objects"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is empty")

// decodeJSON reads one JSON document into dst. errEmptyBody is returned
// for a missing body so optional-body routes can tell it apart.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("malformed JSON body: %w", err)
	}
	return nil
}

func parseDate(field, value string) (time.Time, error) {
	return workloadQueries.ParseDueDate(field, value)
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, services.NewValidationError(name, "must be a UUID")
	}
	return id, nil
}

type deadlineRequest struct {
	Title           string `json:"title"`
	DueDate         string `json:"due_date"`
	EstimatedEffort int    `json:"estimated_effort"`
	Importance      string `json:"importance_level"`
}

// importanceOrDefault applies the medium default to an omitted level.
func importanceOrDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return value_objects.ImportanceMedium.String()
	}
	return s
}

type deadlinePatch struct {
	Title           *string `json:"title"`
	DueDate         *string `json:"due_date"`
	EstimatedEffort *int    `json:"estimated_effort"`
	Importance      *string `json:"importance_level"`
}

type scoringRequest struct {
	Deadlines []workloadQueries.RawDeadline `json:"deadlines"`
}

// inputs returns nil when no list was sent so the query falls back to the
// stored deadlines. An explicit empty list is scored as empty.
func (req scoringRequest) inputs() ([]workloadQueries.DeadlineInput, error) {
	return workloadQueries.ParseDeadlineInputs(req.Deadlines)
}

type stressRequest struct {
	WeeklyLoad []workloadQueries.WeeklyLoadInput `json:"weekly_load"`
}
