package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/studyload/internal/workload/application/commands"
	"github.com/felixgeelhaar/studyload/internal/workload/application/queries"
)

type deadlineCreateInput struct {
	Title           string `json:"title" jsonschema:"required"`
	DueDate         string `json:"due_date" jsonschema:"required"`
	EstimatedEffort int    `json:"estimated_effort,omitempty"`
	Importance      string `json:"importance_level,omitempty"`
}

type deadlineUpdateInput struct {
	DeadlineID      string  `json:"deadline_id" jsonschema:"required"`
	Title           *string `json:"title,omitempty"`
	DueDate         *string `json:"due_date,omitempty"`
	EstimatedEffort *int    `json:"estimated_effort,omitempty"`
	Importance      *string `json:"importance_level,omitempty"`
}

type deadlineIDInput struct {
	DeadlineID string `json:"deadline_id" jsonschema:"required"`
}

func registerDeadlineTools(srv *mcp.Server, t *toolset) {
	srv.Tool("deadline.create").
		Description("Add a deadline. due_date is YYYY-MM-DD, estimated_effort is in hours, importance_level is low, medium or high (default medium).").
		Handler(t.createDeadline)

	srv.Tool("deadline.list").
		Description("List all deadlines, earliest first").
		Handler(t.listDeadlines)

	srv.Tool("deadline.update").
		Description("Change a deadline. Omitted fields keep their value.").
		Handler(t.updateDeadline)

	srv.Tool("deadline.delete").
		Description("Delete a deadline").
		Handler(t.deleteDeadline)

	srv.Tool("deadline.export").
		Description("Export all deadlines as an iCalendar document").
		Handler(t.exportDeadlines)
}

func (t *toolset) createDeadline(ctx context.Context, input deadlineCreateInput) (*queries.DeadlineDTO, error) {
	userID, err := t.userID(ctx)
	if err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, errors.New("title is required")
	}
	due, err := parseDueDate("due_date", input.DueDate)
	if err != nil {
		return nil, err
	}
	importance := input.Importance
	if importance == "" {
		importance = "medium"
	}

	result, err := t.c.CreateDeadlineHandler.Handle(ctx, commands.CreateDeadlineCommand{
		UserID:          userID,
		Title:           input.Title,
		DueDate:         due,
		EstimatedEffort: input.EstimatedEffort,
		Importance:      importance,
	})
	if err != nil {
		return nil, err
	}
	return t.c.GetDeadlineHandler.Handle(ctx, queries.GetDeadlineQuery{UserID: userID, DeadlineID: result.DeadlineID})
}

func (t *toolset) listDeadlines(ctx context.Context, _ struct{}) ([]queries.DeadlineDTO, error) {
	userID, err := t.userID(ctx)
	if err != nil {
		return nil, err
	}
	return t.c.ListDeadlinesHandler.Handle(ctx, queries.ListDeadlinesQuery{UserID: userID})
}

func (t *toolset) updateDeadline(ctx context.Context, input deadlineUpdateInput) (*queries.DeadlineDTO, error) {
	userID, err := t.userID(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseDeadlineID(input.DeadlineID)
	if err != nil {
		return nil, err
	}

	cmd := commands.UpdateDeadlineCommand{
		UserID:          userID,
		DeadlineID:      id,
		Title:           input.Title,
		EstimatedEffort: input.EstimatedEffort,
		Importance:      input.Importance,
	}
	if input.DueDate != nil {
		due, err := parseDueDate("due_date", *input.DueDate)
		if err != nil {
			return nil, err
		}
		cmd.DueDate = &due
	}
	if err := t.c.UpdateDeadlineHandler.Handle(ctx, cmd); err != nil {
		return nil, err
	}
	return t.c.GetDeadlineHandler.Handle(ctx, queries.GetDeadlineQuery{UserID: userID, DeadlineID: id})
}

func (t *toolset) deleteDeadline(ctx context.Context, input deadlineIDInput) (map[string]any, error) {
	userID, err := t.userID(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseDeadlineID(input.DeadlineID)
	if err != nil {
		return nil, err
	}
	if err := t.c.DeleteDeadlineHandler.Handle(ctx, commands.DeleteDeadlineCommand{UserID: userID, DeadlineID: id}); err != nil {
		return nil, err
	}
	return map[string]any{"deadline_id": id, "deleted": true}, nil
}

func (t *toolset) exportDeadlines(ctx context.Context, _ struct{}) (map[string]string, error) {
	userID, err := t.userID(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := t.c.ExportCalendarHandler.Handle(ctx, queries.ExportCalendarQuery{UserID: userID})
	if err != nil {
		return nil, err
	}
	return map[string]string{"format": "ics", "content": string(doc)}, nil
}
