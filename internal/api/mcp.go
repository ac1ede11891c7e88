package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"punchlog/internal/composer"
	"punchlog/internal/fragment"
	"punchlog/internal/intent"
	"punchlog/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store    *storage.Store
	Composer *composer.Composer
	Now      func() time.Time
}

// NewMCPServer creates an MCP server with the work-log tools and resources
// registered, so agents can record and review fragments alongside humans.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Composer == nil {
		deps.Composer = composer.New(0)
	}

	s := server.NewMCPServer(
		"punchlog",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("punchlog: append-only work log of daily fact fragments, clock-in confirmations, and daily summaries."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("record_fragment",
			mcp.WithDescription("Record one clean fact fragment of work performed (append-only)."),
			mcp.WithString("content", mcp.Description("The fact to record"), mcp.Required()),
			mcp.WithString("author", mcp.Description("Author the fragment belongs to"), mcp.Required()),
			mcp.WithString("occurred_date", mcp.Description("YYYY-MM-DD; defaults to today")),
			mcp.WithArray("tags", mcp.Description("Optional tags for categorization")),
		),
		mcpRecordFragment(deps),
	)

	s.AddTool(
		mcp.NewTool("get_fragments",
			mcp.WithDescription("List the fragments recorded for a date, oldest first."),
			mcp.WithString("date", mcp.Description("YYYY-MM-DD; defaults to today")),
			mcp.WithString("author", mcp.Description("Filter by author; omit or pass \"all\" for everyone")),
		),
		mcpGetFragments(deps),
	)

	s.AddTool(
		mcp.NewTool("clock_in",
			mcp.WithDescription("Record a clock-in confirmation for an author on a date."),
			mcp.WithString("author", mcp.Description("Author confirming attendance"), mcp.Required()),
			mcp.WithString("date", mcp.Description("YYYY-MM-DD; defaults to today")),
		),
		mcpClockIn(deps),
	)

	s.AddTool(
		mcp.NewTool("clock_status",
			mcp.WithDescription("Read the clock events recorded for a date."),
			mcp.WithString("date", mcp.Description("YYYY-MM-DD; defaults to today")),
		),
		mcpClockStatus(deps),
	)

	s.AddTool(
		mcp.NewTool("summarize_day",
			mcp.WithDescription("Compose and store the daily summary fragment for an author's date."),
			mcp.WithString("author", mcp.Description("Author to summarize, or \"all\" for everyone"), mcp.Required()),
			mcp.WithString("date", mcp.Description("YYYY-MM-DD; defaults to today")),
		),
		mcpSummarizeDay(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"worklog://today",
			"Today's Work Log",
			mcp.WithResourceDescription("All fragments recorded today, as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceToday(deps),
	)

	return s
}

func mcpRecordFragment(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := req.RequireString("content")
		if err != nil {
			return mcpError("content is required"), nil
		}
		author, err := req.RequireString("author")
		if err != nil {
			return mcpError("author is required"), nil
		}
		if author == fragment.AuthorAll {
			return mcpError("author must be a specific name"), nil
		}

		now := deps.Now()
		date := req.GetString("occurred_date", now.Format(intent.DateFormat))
		tags := req.GetStringSlice("tags", nil)

		tagsJSON := "[]"
		if len(tags) > 0 {
			b, err := json.Marshal(tags)
			if err != nil {
				return mcpError(fmt.Sprintf("failed to marshal tags: %v", err)), nil
			}
			tagsJSON = string(b)
		}

		id := uuid.New().String()
		rec := storage.FragmentRecord{
			ID:           id,
			Type:         fragment.TypeNote,
			Content:      content,
			OccurredDate: date,
			Source:       "mcp",
			Author:       author,
			Tags:         tagsJSON,
			CreatedAt:    now,
		}
		if err := deps.Store.SaveFragment(rec); err != nil {
			return mcpError(fmt.Sprintf("failed to save: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Recorded fragment %s for %s on %s", id, author, date)), nil
	}
}

func mcpGetFragments(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		now := deps.Now()
		date := req.GetString("date", now.Format(intent.DateFormat))
		author := req.GetString("author", "")
		if author == fragment.AuthorAll {
			author = ""
		}

		items, err := deps.Store.FragmentsByDate(date, author)
		if err != nil {
			return mcpError(fmt.Sprintf("query failed: %v", err)), nil
		}

		b, err := json.Marshal(toWire(items))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal fragments: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpClockIn(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		author, err := req.RequireString("author")
		if err != nil {
			return mcpError("author is required"), nil
		}

		now := deps.Now()
		date := req.GetString("date", now.Format(intent.DateFormat))

		if err := deps.Store.SaveClockEvent(storage.ClockEvent{
			Date:        date,
			EventType:   storage.EventStartWork,
			Status:      storage.ClockConfirmed,
			ConfirmedAt: now,
			Channel:     "mcp",
		}); err != nil {
			return mcpError(fmt.Sprintf("failed to record clock event: %v", err)), nil
		}

		if err := deps.Store.SaveFragment(storage.FragmentRecord{
			ID:           uuid.New().String(),
			Type:         fragment.TypeNote,
			Content:      "clocked in for work",
			OccurredDate: date,
			Source:       "mcp",
			Author:       author,
			CreatedAt:    now,
		}); err != nil {
			return mcpError(fmt.Sprintf("clock event saved but fragment failed: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Clock-in confirmed for %s on %s", author, date)), nil
	}
}

func mcpClockStatus(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		now := deps.Now()
		date := req.GetString("date", now.Format(intent.DateFormat))

		events, err := deps.Store.ClockEventsByDate(date)
		if err != nil {
			return mcpError(fmt.Sprintf("query failed: %v", err)), nil
		}

		type eventResult struct {
			EventType   string `json:"event_type"`
			Status      string `json:"status"`
			ConfirmedAt string `json:"confirmed_at"`
			Channel     string `json:"channel"`
		}
		results := make([]eventResult, len(events))
		for i, e := range events {
			results[i] = eventResult{
				EventType:   e.EventType,
				Status:      e.Status,
				ConfirmedAt: e.ConfirmedAt.Format(time.RFC3339),
				Channel:     e.Channel,
			}
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal events: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpSummarizeDay(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		author, err := req.RequireString("author")
		if err != nil {
			return mcpError("author is required"), nil
		}

		now := deps.Now()
		date := req.GetString("date", now.Format(intent.DateFormat))

		queryAuthor := author
		if queryAuthor == fragment.AuthorAll {
			queryAuthor = ""
		}

		items, err := deps.Store.FragmentsByDate(date, queryAuthor)
		if err != nil {
			return mcpError(fmt.Sprintf("query failed: %v", err)), nil
		}

		content, ok := deps.Composer.Compose(date, author, items)
		if !ok {
			return mcpError(fmt.Sprintf("nothing to summarize for %s on %s", author, date)), nil
		}

		if err := deps.Store.SaveFragment(storage.FragmentRecord{
			ID:           uuid.New().String(),
			Type:         fragment.TypeSummary,
			Content:      content,
			OccurredDate: date,
			Source:       "mcp",
			Author:       author,
			CreatedAt:    now,
		}); err != nil {
			return mcpError(fmt.Sprintf("summary composed but failed to save: %v", err)), nil
		}

		return mcpText(content), nil
	}
}

func mcpResourceToday(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		date := deps.Now().Format(intent.DateFormat)

		items, err := deps.Store.FragmentsByDate(date, "")
		if err != nil {
			return nil, fmt.Errorf("failed to get fragments: %w", err)
		}

		b, err := json.Marshal(toWire(items))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal fragments: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
