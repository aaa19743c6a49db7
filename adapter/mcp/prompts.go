package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers prompts for the common study-planning flows.
func RegisterPrompts(srv *mcp.Server, _ ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("weekly_stress_review").
		Description("Review the coming week's workload and stress and agree on a plan to bring it down.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Weekly Stress Review", `Help me review my coming week. Please:

1. Read my workload from the studyload://dashboard resource
2. Get my stress prediction with the workload.stress tool
3. Find the deadlines behind it with the workload.contributors tool

Then:
- Tell me which day is the hardest and why, using the numbers from the tools
- Suggest which deadlines I could start earlier to flatten the peak
- If the risk is high, suggest what to renegotiate or drop

Do not invent scores: quote only what the tools return.`), nil
		})

	srv.Prompt("what_next").
		Description("Decide what to work on next from the ranked deadline list.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("What To Work On Next", `I have some time to study now. Please:

1. Rank my deadlines with the workload.priorities tool
2. Take the top entry and explain in one or two sentences why it comes first
3. Suggest a realistic first step I can finish in one sitting

If I have no deadlines, offer to add one with the deadline.create tool.`), nil
		})

	return nil
}

func userPrompt(description, text string) *mcp.PromptResult {
	return &mcp.PromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: text,
				},
			},
		},
	}
}
