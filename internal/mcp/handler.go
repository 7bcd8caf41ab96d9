package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handler handles MCP tool requests and responses: parses input, calls the service, formats MCP result.
type Handler struct {
	service contextService
}

// NewHandler builds a handler with the given service.
func NewHandler(service contextService) *Handler {
	return &Handler{
		service: service,
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}
}

// NoInput is the input of tools without arguments.
type NoInput struct{}

// GetWorkoutStatsTool returns the MCP tool handler for get_workout_stats.
func (h *Handler) GetWorkoutStatsTool() func(context.Context, *mcp.CallToolRequest, NoInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		report, err := h.service.WorkoutStats(ctx)
		if err != nil {
			return errorResult("Error computing stats: " + err.Error()), nil, nil
		}
		return jsonResult(report), nil, nil
	}
}

// EntriesForDateInput is the input for get_entries_for_date.
type EntriesForDateInput struct {
	Date string `json:"date" jsonschema:"Day (YYYY-MM-DD)"`
}

// GetEntriesForDateTool returns the MCP tool handler for get_entries_for_date.
func (h *Handler) GetEntriesForDateTool() func(context.Context, *mcp.CallToolRequest, EntriesForDateInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in EntriesForDateInput) (*mcp.CallToolResult, any, error) {
		day, err := h.service.EntriesForDate(ctx, in.Date)
		if err != nil {
			if IsInputError(err) {
				return errorResult("Invalid date: use YYYY-MM-DD"), nil, nil
			}
			return errorResult("Error fetching entries: " + err.Error()), nil, nil
		}
		return jsonResult(day), nil, nil
	}
}

// GetWeekSummaryTool returns the MCP tool handler for get_week_summary.
func (h *Handler) GetWeekSummaryTool() func(context.Context, *mcp.CallToolRequest, NoInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, any, error) {
		week, err := h.service.WeekSummary(ctx)
		if err != nil {
			return errorResult("Error computing week summary: " + err.Error()), nil, nil
		}
		return jsonResult(week), nil, nil
	}
}

// ListExercisesInput is the input for list_exercises.
type ListExercisesInput struct {
	Group string `json:"group,omitempty" jsonschema:"Filter by muscle group id (e.g. pectoraux, dos)"`
	Query string `json:"query,omitempty" jsonschema:"Search exercise names, case and accent insensitive"`
}

// ListExercisesTool returns the MCP tool handler for list_exercises.
func (h *Handler) ListExercisesTool() func(context.Context, *mcp.CallToolRequest, ListExercisesInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ListExercisesInput) (*mcp.CallToolResult, any, error) {
		exercises, err := h.service.ListExercises(ctx, in.Group, in.Query)
		if err != nil {
			if IsInputError(err) {
				return errorResult("Unknown muscle group: " + in.Group), nil, nil
			}
			return errorResult("Error listing exercises: " + err.Error()), nil, nil
		}
		return jsonResult(exercises), nil, nil
	}
}
