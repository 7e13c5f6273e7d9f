package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"agentbuilder/internal/app"
	"agentbuilder/internal/domain"
)

func renderSummary(w io.Writer, summary app.CatalogSummary) {
	fmt.Fprintf(w, "%s %s: %d tools\n", color.GreenString("✓"), summary.Path, summary.Tools)
	types := make([]string, 0, len(summary.ByType))
	for toolType := range summary.ByType {
		types = append(types, string(toolType))
	}
	sort.Strings(types)
	for _, toolType := range types {
		fmt.Fprintf(w, "  %-15s %d\n", toolType, summary.ByType[domain.ToolType(toolType)])
	}
}

func renderTools(w io.Writer, tools []domain.ToolSummary) {
	if len(tools) == 0 {
		fmt.Fprintln(w, color.HiBlackString("no tools"))
		return
	}
	for _, tool := range tools {
		fmt.Fprintf(w, "%-20s %-15s %-8s %s\n", tool.ID, tool.Type, tool.Source, color.HiBlackString(tool.Name))
	}
}

// renderHealth prints one line per result and returns the unhealthy count.
func renderHealth(w io.Writer, results []domain.HealthResult) int {
	unhealthy := 0
	for _, result := range results {
		marker := color.GreenString("✓")
		if result.Status != domain.HealthStatusHealthy {
			marker = color.RedString("✗")
			unhealthy++
		}
		fmt.Fprintf(w, "%s %s: %s\n", marker, result.ToolID, result.Message)
		keys := make([]string, 0, len(result.Details))
		for key := range result.Details {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(w, "    %s %v\n", color.HiBlackString(key+":"), formatDetail(result.Details[key]))
		}
	}
	return unhealthy
}

func formatDetail(value any) string {
	if list, ok := value.([]string); ok {
		return strings.Join(list, ", ")
	}
	return fmt.Sprint(value)
}
