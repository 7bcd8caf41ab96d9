package mcp

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server with the workout log tools: stats, entries of a day,
// current week summary, exercise catalog.
// Used by the main backend when mounting MCP at /mcp (internal/server) and by cmd/gymlog_mcp over stdio.
func NewServer(statsReporter statsReporter, entries entryReader, catalogView catalogViewer) *mcp.Server {
	h := NewHandler(NewContextService(statsReporter, entries, catalogView))
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "gymlog-context",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_workout_stats",
		Description: "Returns the training statistics: total workout days, total volume (kg), distinct exercises, current and best streak, average workouts per week over the last 12 weeks, top 5 exercises and muscle group distribution.",
	}, h.GetWorkoutStatsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_entries_for_date",
		Description: "Returns the logged entries (exercise, sets, reps, weight) of one day with its summary. Arg: date (YYYY-MM-DD).",
	}, h.GetEntriesForDateTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_week_summary",
		Description: "Returns the current Monday-to-Sunday week: workout days, number of entries and volume.",
	}, h.GetWeekSummaryTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_exercises",
		Description: "Returns catalog exercises (static and custom). Optional: group (muscle group id, e.g. pectoraux), query (name search, accents ignored).",
	}, h.ListExercisesTool())

	return s
}

// HTTPHandler serves s over the streamable HTTP transport.
func HTTPHandler(s *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s
	}, nil)
}
