package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var (
	highColor   = color.New(color.FgRed, color.Bold)
	mediumColor = color.New(color.FgYellow)
	lowColor    = color.New(color.FgGreen)
	mutedColor  = color.New(color.FgHiBlack)
)

// Level colors a risk or importance level for terminal output.
func Level(level string) string {
	switch strings.ToLower(level) {
	case "high":
		return highColor.Sprint(level)
	case "medium":
		return mediumColor.Sprint(level)
	case "low":
		return lowColor.Sprint(level)
	default:
		return level
	}
}

// Muted renders secondary text.
func Muted(s string) string {
	return mutedColor.Sprint(s)
}

// Bar draws a percentage as a fixed-width bar.
func Bar(percent, width int) string {
	percent = min(max(percent, 0), 100)
	filled := percent * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// RenderTable writes rows under headers.
func RenderTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ParseDate parses a YYYY-MM-DD flag value.
func ParseDate(flag, value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s format (use YYYY-MM-DD): %w", flag, err)
	}
	return t, nil
}
