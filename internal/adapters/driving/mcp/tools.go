package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/core/services/diffing"
)

// latestNWindow bounds how far back get_new_content looks for the
// occurrence preceding the requested date.
const latestNWindow = 52

// SeriesInfo is one series row in the list_series output.
type SeriesInfo struct {
	SeriesID    string  `json:"series_id"`
	Title       string  `json:"title"`
	Organiser   string  `json:"organizer"` //nolint:misspell // wire key uses American spelling
	Schedule    string  `json:"schedule"`
	Occurrences int     `json:"occurrences"`
	Confidence  float64 `json:"confidence"`
	LastSeen    string  `json:"last_seen"`
}

// ListSeriesOutput is the output schema for the list_series tool.
type ListSeriesOutput struct {
	Series []SeriesInfo `json:"series"`
	Count  int          `json:"count"`
}

// GetSeriesInput is the input schema for the get_series tool.
type GetSeriesInput struct {
	SeriesID string `json:"series_id" jsonschema:"the series identifier, as returned by list_series"`
}

// GetSeriesOutput is the output schema for the get_series tool.
type GetSeriesOutput struct {
	Series domain.Series `json:"series"`
}

// DiffOccurrencesInput is the input schema for the diff_occurrences tool.
type DiffOccurrencesInput struct {
	SeriesID string `json:"series_id" jsonschema:"the series identifier"`
	OldDate  string `json:"old_date" jsonschema:"the older occurrence date, YYYY-MM-DD"`
	NewDate  string `json:"new_date" jsonschema:"the newer occurrence date, YYYY-MM-DD"`
}

// DiffOccurrencesOutput is the output schema for the diff_occurrences tool.
type DiffOccurrencesOutput struct {
	Summary         string  `json:"summary"`
	Added           int     `json:"added"`
	Removed         int     `json:"removed"`
	Modified        int     `json:"modified"`
	Moved           int     `json:"moved"`
	WordsAdded      int     `json:"words_added"`
	WordsRemoved    int     `json:"words_removed"`
	SimilarityRatio float64 `json:"similarity_ratio"`
	Unchanged       bool    `json:"unchanged"`
}

// GetNewContentInput is the input schema for the get_new_content tool.
type GetNewContentInput struct {
	SeriesID string `json:"series_id" jsonschema:"the series identifier"`
	Date     string `json:"date" jsonschema:"the occurrence date to extract new content for, YYYY-MM-DD"`
}

// GetNewContentOutput is the output schema for the get_new_content tool.
type GetNewContentOutput struct {
	SeriesID string `json:"series_id"`
	Date     string `json:"date"`

	// PreviousDate is the occurrence the content was diffed against.
	// Empty when no earlier occurrence is cached; the whole occurrence
	// is then new.
	PreviousDate string `json:"previous_date,omitempty"`

	Markdown string `json:"markdown"`
	Summary  string `json:"summary"`
}

// CacheStatsOutput is the output schema for the cache_stats tool.
type CacheStatsOutput struct {
	Stats domain.CacheStats `json:"stats"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_series",
		Description: "List all tracked recurring meeting series",
	}, s.handleListSeries)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_series",
		Description: "Get one series record including its dated occurrences",
	}, s.handleGetSeries)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "diff_occurrences",
		Description: "Structurally diff two cached occurrences of a series",
	}, s.handleDiffOccurrences)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_new_content",
		Description: "Render the content an occurrence adds over its predecessor as markdown",
	}, s.handleGetNewContent)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "cache_stats",
		Description: "Summarise the signature cache",
	}, s.handleCacheStats)
}

// handleListSeries handles the list_series tool invocation.
func (s *Server) handleListSeries(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ListSeriesOutput, error) {
	series, err := s.ports.Resolver.List(ctx)
	if err != nil {
		return nil, ListSeriesOutput{}, err
	}

	output := ListSeriesOutput{
		Series: make([]SeriesInfo, len(series)),
		Count:  len(series),
	}
	for i := range series {
		output.Series[i] = SeriesInfo{
			SeriesID:    series[i].SeriesID,
			Title:       series[i].NormalisedTitle,
			Organiser:   series[i].Organiser,
			Schedule:    series[i].SchedulePattern,
			Occurrences: len(series[i].Occurrences),
			Confidence:  series[i].Confidence,
			LastSeen:    series[i].LastSeen.Format("2006-01-02"),
		}
	}
	return nil, output, nil
}

// handleGetSeries handles the get_series tool invocation.
func (s *Server) handleGetSeries(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetSeriesInput,
) (*mcp.CallToolResult, GetSeriesOutput, error) {
	series, err := s.ports.Resolver.Get(ctx, input.SeriesID)
	if err != nil {
		return nil, GetSeriesOutput{}, err
	}
	return nil, GetSeriesOutput{Series: *series}, nil
}

// handleDiffOccurrences handles the diff_occurrences tool invocation.
func (s *Server) handleDiffOccurrences(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DiffOccurrencesInput,
) (*mcp.CallToolResult, DiffOccurrencesOutput, error) {
	previous, err := s.ports.Cache.Get(ctx, input.SeriesID, input.OldDate)
	if err != nil {
		return nil, DiffOccurrencesOutput{}, fmt.Errorf("occurrence %s: %w", input.OldDate, err)
	}
	current, err := s.ports.Cache.Get(ctx, input.SeriesID, input.NewDate)
	if err != nil {
		return nil, DiffOccurrencesOutput{}, fmt.Errorf("occurrence %s: %w", input.NewDate, err)
	}

	diff := s.engine.Diff(previous, current)
	return nil, DiffOccurrencesOutput{
		Summary:         diffing.Summary(diff),
		Added:           len(diff.Added),
		Removed:         len(diff.Removed),
		Modified:        len(diff.Modified),
		Moved:           len(diff.Moved),
		WordsAdded:      diff.WordsAdded(),
		WordsRemoved:    diff.WordsRemoved(),
		SimilarityRatio: diff.SimilarityRatio,
		Unchanged:       diff.Unchanged(),
	}, nil
}

// handleGetNewContent handles the get_new_content tool invocation.
func (s *Server) handleGetNewContent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetNewContentInput,
) (*mcp.CallToolResult, GetNewContentOutput, error) {
	current, err := s.ports.Cache.Get(ctx, input.SeriesID, input.Date)
	if err != nil {
		return nil, GetNewContentOutput{}, fmt.Errorf("occurrence %s: %w", input.Date, err)
	}

	previous, err := s.predecessor(ctx, input.SeriesID, input.Date)
	if err != nil {
		return nil, GetNewContentOutput{}, err
	}

	output := GetNewContentOutput{
		SeriesID: input.SeriesID,
		Date:     input.Date,
	}
	if previous == nil {
		// First cached occurrence: everything is new.
		previous = &domain.Signature{}
	} else {
		output.PreviousDate = previous.OccurrenceKey.Date
	}

	diff := s.engine.Diff(previous, current)
	output.Markdown = s.engine.RenderNewContent(diff, current)
	output.Summary = diffing.Summary(diff)
	return nil, output, nil
}

// predecessor returns the newest cached signature strictly before date,
// or nil when none exists within the lookback window.
func (s *Server) predecessor(ctx context.Context, seriesID, date string) (*domain.Signature, error) {
	signatures, err := s.ports.Cache.LatestN(ctx, seriesID, latestNWindow)
	if err != nil {
		return nil, fmt.Errorf("listing signatures: %w", err)
	}

	var best *domain.Signature
	for i := range signatures {
		// LatestN orders oldest to newest, so the last qualifying
		// signature wins.
		if signatures[i].OccurrenceKey.Date < date {
			best = &signatures[i]
		}
	}
	return best, nil
}

// handleCacheStats handles the cache_stats tool invocation.
func (s *Server) handleCacheStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, CacheStatsOutput, error) {
	stats, err := s.ports.Cache.Stats(ctx)
	if err != nil {
		return nil, CacheStatsOutput{}, err
	}
	return nil, CacheStatsOutput{Stats: stats}, nil
}
