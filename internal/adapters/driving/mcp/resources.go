package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for notes resources.
const uriScheme = "notes://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource listing the stored week directories.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "weeks",
		Name:        "weeks",
		Description: "Week directories with saved meeting notes",
		MIMEType:    "application/json",
	}, s.handleWeeksResource)

	// Template for the note files of one week.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "weeks/{week}",
		Name:        "week-notes",
		Description: "Note files saved for a specific ISO week",
		MIMEType:    "application/json",
	}, s.handleWeekNotesResource)
}

// handleWeeksResource returns the list of week directories.
func (s *Server) handleWeeksResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Notes == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	weeks, err := s.ports.Notes.ListWeeks()
	if err != nil {
		return nil, fmt.Errorf("listing weeks: %w", err)
	}

	data, err := json.MarshalIndent(weeks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling weeks: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleWeekNotesResource returns the note files of one week.
func (s *Server) handleWeekNotesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Notes == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	week := extractWeek(req.Params.URI)
	if week == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	files, err := s.ports.Notes.ListMeetings(week)
	if err != nil {
		return nil, fmt.Errorf("listing meetings: %w", err)
	}

	type fileInfo struct {
		Name       string `json:"name"`
		SizeBytes  int64  `json:"size_bytes"`
		ModifiedAt string `json:"modified_at"`
	}

	infos := make([]fileInfo, len(files))
	for i := range files {
		infos[i] = fileInfo{
			Name:       files[i].Name,
			SizeBytes:  files[i].SizeBytes,
			ModifiedAt: files[i].ModifiedAt.Format("2006-01-02 15:04"),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling meetings: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractWeek extracts the week from a URI like notes://weeks/{week}.
func extractWeek(uri string) string {
	const prefix = uriScheme + "weeks/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	return strings.TrimPrefix(uri, prefix)
}
