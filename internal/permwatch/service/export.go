package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// ExportFormats lists the formats Export understands.
var ExportFormats = []string{"json", "csv"}

var csvHeader = []string{
	"id", "receivedAt", "occurredAt", "kind", "action",
	"originHost", "pageUrl", "pageTitle", "isVisible",
}

// Export writes the current usage log to w, newest first.
func (s *LogService) Export(ctx context.Context, w io.Writer, format string) error {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "json"
	}
	if !slices.Contains(ExportFormats, format) {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	recs, err := s.Fetch(ctx)
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(recs)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range recs {
		if err := cw.Write([]string{
			r.ID, r.ReceivedAt, r.OccurredAt, string(r.Kind), string(r.Action),
			r.OriginHost, r.PageURL, r.PageTitle, strconv.FormatBool(r.IsVisible),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
