// Package docs converts Google Docs and other Drive files to markdown,
// preferring the native Drive export and falling back to a structural
// read through the Docs API.
package docs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"

	"github.com/matburt/meeting-notes-handler/internal/connectors/google"
	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/core/ports/driven"
	"github.com/matburt/meeting-notes-handler/internal/logger"
)

// Ensure Converter implements the interface.
var _ driven.DocConverter = (*Converter)(nil)

// Google Workspace MIME types that can be exported.
const (
	MimeTypeGoogleDoc    = "application/vnd.google-apps.document"
	MimeTypeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	MimeTypeGoogleSlides = "application/vnd.google-apps.presentation"
)

// Export formats.
const (
	ExportMimeMarkdown = "text/markdown"
	ExportMimeText     = "text/plain"
	ExportMimeCSV      = "text/csv"
)

// MaxExportSize is the maximum size for exported content (5MB).
const MaxExportSize = 5 * 1024 * 1024

var docIDRe = regexp.MustCompile(`/(?:document|file|presentation|spreadsheets)/d/([a-zA-Z0-9_-]+)`)

// ExtractDocID pulls the file id out of a Docs or Drive URL. Returns ""
// when the URL carries no recognisable id.
func ExtractDocID(url string) string {
	m := docIDRe.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// Config tunes the conversion strategy.
type Config struct {
	// UseNativeExport prefers the Drive markdown export over the
	// structural Docs API read.
	UseNativeExport bool

	// FallbackToManual enables the structural read when the native
	// export fails.
	FallbackToManual bool
}

// DefaultConfig mirrors the shipped configuration defaults.
func DefaultConfig() Config {
	return Config{UseNativeExport: true, FallbackToManual: true}
}

// Converter is the Drive/Docs-backed implementation of driven.DocConverter.
type Converter struct {
	drive        *drive.Service
	docs         *docs.Service
	driveLimiter *google.RateLimiter
	docsLimiter  *google.RateLimiter
	cfg          Config
}

// NewConverter creates a converter over authenticated Drive and Docs
// services.
func NewConverter(driveSvc *drive.Service, docsSvc *docs.Service, cfg Config) *Converter {
	return &Converter{
		drive:        driveSvc,
		docs:         docsSvc,
		driveLimiter: google.NewRateLimiter(google.ServiceDrive),
		docsLimiter:  google.NewRateLimiter(google.ServiceDocs),
		cfg:          cfg,
	}
}

// DocIDFromURL extracts the file id from a document link.
func (c *Converter) DocIDFromURL(url string) string {
	return ExtractDocID(url)
}

// ToMarkdown fetches and converts the document with the given id.
func (c *Converter) ToMarkdown(ctx context.Context, docID string) (string, driven.DocMeta, error) {
	meta := driven.DocMeta{DocID: docID}

	var file *drive.File
	err := google.Call(ctx, c.driveLimiter, func() error {
		var err error
		file, err = c.drive.Files.Get(docID).Fields("id", "name", "mimeType").Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", meta, fmt.Errorf("get file metadata: %w", err)
	}
	meta.Title = file.Name
	meta.MimeType = file.MimeType

	switch file.MimeType {
	case MimeTypeGoogleDoc:
		return c.convertDocument(ctx, docID, meta)
	case MimeTypeGoogleSheet:
		content, err := c.export(ctx, docID, ExportMimeCSV)
		if err != nil {
			return "", meta, err
		}
		meta.ExportedNatively = true
		return content, meta, nil
	case MimeTypeGoogleSlides:
		content, err := c.export(ctx, docID, ExportMimeText)
		if err != nil {
			return "", meta, err
		}
		meta.ExportedNatively = true
		return content, meta, nil
	default:
		return "", meta, fmt.Errorf("%w: unsupported mime type %s", domain.ErrInvalidInput, file.MimeType)
	}
}

// convertDocument handles Google Docs: native markdown export first,
// structural read as the fallback.
func (c *Converter) convertDocument(ctx context.Context, docID string, meta driven.DocMeta) (string, driven.DocMeta, error) {
	if c.cfg.UseNativeExport {
		content, err := c.export(ctx, docID, ExportMimeMarkdown)
		if err == nil {
			meta.ExportedNatively = true
			return content, meta, nil
		}
		// A too-large export will not shrink on the fallback path.
		if errors.Is(err, domain.ErrExportTooLarge) || !c.cfg.FallbackToManual {
			return "", meta, err
		}
		logger.Warn("native export of %s failed, falling back to structural read: %v", docID, err)
	}

	var doc *docs.Document
	err := google.Call(ctx, c.docsLimiter, func() error {
		var err error
		doc, err = c.docs.Documents.Get(docID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", meta, fmt.Errorf("read document structure: %w", err)
	}

	if meta.Title == "" {
		meta.Title = doc.Title
	}
	return renderDocument(doc), meta, nil
}

// export runs a native Drive export with the size cap applied.
func (c *Converter) export(ctx context.Context, docID, mimeType string) (string, error) {
	var content string
	err := google.Call(ctx, c.driveLimiter, func() error {
		resp, err := c.drive.Files.Export(docID, mimeType).Context(ctx).Download()
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, MaxExportSize+1))
		if err != nil {
			return fmt.Errorf("read export: %w", err)
		}
		if len(data) > MaxExportSize {
			return fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrExportTooLarge, docID, MaxExportSize)
		}
		content = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}
