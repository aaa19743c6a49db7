package deadline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/studyload/adapter/cli"
	"github.com/felixgeelhaar/studyload/internal/workload/application/queries"
)

// Cmd is the deadline command group
var Cmd = &cobra.Command{
	Use:     "deadline",
	Aliases: []string{"deadlines", "dl"},
	Short:   "Manage deadlines",
	Long:    `Add, list, update, delete and export your academic deadlines.`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(exportCmd)
}

// resolveID accepts a full deadline id or a unique prefix of one, as shown
// by `deadline list`.
func resolveID(ctx context.Context, app *cli.App, userID uuid.UUID, arg string) (uuid.UUID, error) {
	if id, err := uuid.Parse(arg); err == nil {
		return id, nil
	}
	prefix := strings.ToLower(strings.TrimSpace(arg))
	if prefix == "" {
		return uuid.Nil, errors.New("deadline id is required")
	}

	deadlines, err := app.Container.ListDeadlinesHandler.Handle(ctx, queries.ListDeadlinesQuery{UserID: userID})
	if err != nil {
		return uuid.Nil, err
	}
	var match uuid.UUID
	for _, d := range deadlines {
		if !strings.HasPrefix(d.ID.String(), prefix) {
			continue
		}
		if match != uuid.Nil {
			return uuid.Nil, fmt.Errorf("deadline id %q is ambiguous", arg)
		}
		match = d.ID
	}
	if match == uuid.Nil {
		return uuid.Nil, fmt.Errorf("no deadline matches %q", arg)
	}
	return match, nil
}
