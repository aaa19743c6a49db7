package cli

import (
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/studyload/internal/shared/infrastructure/security"
	workloadQueries "github.com/felixgeelhaar/studyload/internal/workload/application/queries"
)

// readDeadlineFile loads a JSON array of deadlines. Entries without an id
// are numbered from 1.
func readDeadlineFile(path string) ([]workloadQueries.DeadlineInput, error) {
	data, err := security.SafeReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var entries []workloadQueries.RawDeadline
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if entries == nil {
		entries = []workloadQueries.RawDeadline{}
	}
	inputs, err := workloadQueries.ParseDeadlineInputs(entries)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return inputs, nil
}

// readWeeklyLoadFile loads a JSON array of seven day entries.
func readWeeklyLoadFile(path string) ([]workloadQueries.WeeklyLoadInput, error) {
	data, err := security.SafeReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var load []workloadQueries.WeeklyLoadInput
	if err := json.Unmarshal(data, &load); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if load == nil {
		load = []workloadQueries.WeeklyLoadInput{}
	}
	return load, nil
}
