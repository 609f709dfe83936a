package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/noah-isme/registrar-api/internal/dto"
	"github.com/noah-isme/registrar-api/internal/models"
	appErrors "github.com/noah-isme/registrar-api/pkg/errors"
	"github.com/noah-isme/registrar-api/pkg/export"
)

// DatasetRenderer turns a tabular dataset into a downloadable file.
type DatasetRenderer interface {
	ContentType() string
	Extension() string
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered export ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Export renders the enriched request list in the requested format (csv or pdf).
func (s *RequestService) Export(ctx context.Context, format string, query dto.RequestQuery) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	renderer, ok := s.exporters[format]
	if !ok {
		return nil, appErrors.InvalidArgument("unsupported export format %q", format)
	}

	items, err := s.list(ctx, models.RequestFilter{UserID: query.UserID, Status: query.Status})
	if err != nil {
		return nil, err
	}

	data := export.Dataset{Headers: dto.RequestExportHeaders, Rows: make([]map[string]string, 0, len(items))}
	for _, item := range items {
		data.Rows = append(data.Rows, item.ExportRow(s.loc))
	}
	body, err := renderer.Render(data, "Document Requests")
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("requests-%s.%s", s.now().In(s.loc).Format("20060102"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}
