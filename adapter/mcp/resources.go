package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterResources registers read-only views of the current user's data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	t := &toolset{c: deps.Container, email: deps.UserEmail}

	srv.Resource("studyload://deadlines").
		Name("Deadlines").
		Description("All deadlines for the current user").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			deadlines, err := t.listDeadlines(ctx, struct{}{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, deadlines)
		})

	srv.Resource("studyload://dashboard").
		Name("Weekly workload").
		Description("Deadlines and hours per day for the coming week").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			dashboard, err := t.dashboard(ctx, struct{}{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, dashboard)
		})

	srv.Resource("studyload://stress").
		Name("Stress prediction").
		Description("This week's stress prediction from the stored deadlines").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			prediction, err := t.stress(ctx, stressInput{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, prediction)
		})

	srv.Resource("studyload://deadlines.ics").
		Name("Deadline calendar").
		Description("All deadlines as an iCalendar document").
		MimeType("text/calendar").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			doc, err := t.exportDeadlines(ctx, struct{}{})
			if err != nil {
				return nil, err
			}
			return &mcp.ResourceContent{URI: uri, MimeType: "text/calendar", Text: doc["content"]}, nil
		})

	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
