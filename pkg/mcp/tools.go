package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/locstats/pkg/commits"
	"github.com/Sumatoshi-tech/locstats/pkg/dataset"
	"github.com/Sumatoshi-tech/locstats/pkg/linelog"
	"github.com/Sumatoshi-tech/locstats/pkg/timeline"
)

// Tool name constants.
const (
	ToolNameSummary   = "locstats_summary"
	ToolNameWindow    = "locstats_window"
	ToolNameSelection = "locstats_selection"
)

// Tool defaults.
const (
	// DefaultFileLimit caps file lists when neither the server nor the call sets one.
	DefaultFileLimit = 20
	// DefaultChartWidth and DefaultChartHeight size the scatterplot a brush is drawn on.
	DefaultChartWidth  = 1000
	DefaultChartHeight = 600
)

// Sentinel errors for tool input validation.
var (
	// ErrNoSource indicates the server was built without a dataset source.
	ErrNoSource = errors.New("no dataset source configured")
	// ErrPartialBrush indicates some but not all brush corners were given.
	ErrPartialBrush = errors.New("brush needs all of x0, y0, x1, y1")
	// ErrInvalidChartSize indicates a non-positive chart width or height.
	ErrInvalidChartSize = errors.New("chart width and height must be positive")
)

// Input types (auto-generate JSON schemas via struct tags).

// SummaryInput is the input schema for the locstats_summary tool.
type SummaryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of files to list (default: 20)"`
}

// WindowInput is the input schema for the locstats_window tool.
type WindowInput struct {
	Cutoff   string   `json:"cutoff,omitempty"   jsonschema:"RFC 3339 timestamp; commits at or before it are included"`
	Progress *float64 `json:"progress,omitempty" jsonschema:"slider position from 0 (first commit) to 100 (last commit)"`
	Step     *int     `json:"step,omitempty"     jsonschema:"0-based commit index; the window ends at that commit"`
	Limit    int      `json:"limit,omitempty"    jsonschema:"maximum number of files to list (default: 20)"`
}

// SelectionInput is the input schema for the locstats_selection tool.
type SelectionInput struct {
	X0     *float64 `json:"x0,omitempty"     jsonschema:"brush corner x in pixels"`
	Y0     *float64 `json:"y0,omitempty"     jsonschema:"brush corner y in pixels"`
	X1     *float64 `json:"x1,omitempty"     jsonschema:"opposite brush corner x in pixels"`
	Y1     *float64 `json:"y1,omitempty"     jsonschema:"opposite brush corner y in pixels"`
	Width  float64  `json:"width,omitempty"  jsonschema:"chart width in pixels (default: 1000)"`
	Height float64  `json:"height,omitempty" jsonschema:"chart height in pixels (default: 600)"`
}

// Output type (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// SummaryResult is the payload of locstats_summary.
type SummaryResult struct {
	Summary   commits.Summary       `json:"summary"`
	Languages commits.Breakdown     `json:"languages"`
	Files     []commits.FileSummary `json:"files"`
}

// SelectionResult is the payload of locstats_selection.
type SelectionResult struct {
	Active    bool                    `json:"active"`
	Commits   []commits.CommitSummary `json:"commits"`
	Breakdown commits.Breakdown       `json:"breakdown"`
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

func (s *Server) load(ctx context.Context) (*dataset.Dataset, error) {
	if s.source == nil {
		return nil, ErrNoSource
	}

	ds, err := s.source.Initialize(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	return ds, nil
}

func (s *Server) limit(requested int) int {
	if requested > 0 {
		return requested
	}

	return s.fileLimit
}

// handleSummary processes locstats_summary tool calls.
func (s *Server) handleSummary(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input SummaryInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return errorResult(err)
	}

	files := ds.Files
	if limit := s.limit(input.Limit); len(files) > limit {
		files = files[:limit]
	}

	summaries := make([]commits.FileSummary, 0, len(files))
	for _, f := range files {
		summaries = append(summaries, f.Summary())
	}

	return jsonResult(SummaryResult{
		Summary:   ds.Summary(),
		Languages: ds.Breakdown(),
		Files:     summaries,
	})
}

// handleWindow processes locstats_window tool calls.
func (s *Server) handleWindow(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input WindowInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	query := dataset.WindowQuery{Progress: input.Progress, Step: input.Step}

	if input.Cutoff != "" {
		cutoff, err := linelog.ParseTimestamp(input.Cutoff)
		if err != nil {
			return errorResult(fmt.Errorf("cutoff: %w", err))
		}

		query.Cutoff = &cutoff
	}

	validateErr := query.Validate()
	if validateErr != nil {
		return errorResult(validateErr)
	}

	ds, err := s.load(ctx)
	if err != nil {
		return errorResult(err)
	}

	window, err := ds.Query(query)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(ds.View(window, s.limit(input.Limit)))
}

// handleSelection processes locstats_selection tool calls.
func (s *Server) handleSelection(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input SelectionInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	brush, err := selectionBrush(input)
	if err != nil {
		return errorResult(err)
	}

	width, height := input.Width, input.Height
	if width == 0 {
		width = DefaultChartWidth
	}

	if height == 0 {
		height = DefaultChartHeight
	}

	if width < 0 || height < 0 {
		return errorResult(fmt.Errorf("%w: %vx%v", ErrInvalidChartSize, width, height))
	}

	ds, err := s.load(ctx)
	if err != nil {
		return errorResult(err)
	}

	selection, err := ds.Select(width, height, brush)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(SelectionResult{
		Active:    selection.Active,
		Commits:   commits.Summaries(selection.Commits),
		Breakdown: selection.Breakdown,
	})
}

// selectionBrush returns nil when no corner is given.
func selectionBrush(input SelectionInput) (*timeline.Brush, error) {
	corners := []*float64{input.X0, input.Y0, input.X1, input.Y1}

	set := 0

	for _, c := range corners {
		if c != nil {
			set++
		}
	}

	switch set {
	case 0:
		return nil, nil //nolint:nilnil // nil brush means no selection.
	case len(corners):
		return &timeline.Brush{X0: *input.X0, Y0: *input.Y0, X1: *input.X1, Y1: *input.Y1}, nil
	default:
		return nil, ErrPartialBrush
	}
}
