package report

import (
	"context"
	"fmt"
	"io"

	"github.com/domfun/domfun/internal/source"
)

// Exporter writes rendered reports to any location the opener accepts.
type Exporter struct {
	opener *source.Opener
}

// NewExporter creates an exporter.
func NewExporter(o *source.Opener) *Exporter {
	return &Exporter{opener: o}
}

// Export writes content to uri.
func (e *Exporter) Export(ctx context.Context, uri, content string) error {
	w, err := e.opener.Create(ctx, uri)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, content); err != nil {
		w.Close()
		return fmt.Errorf("failed to write %s: %w", uri, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", uri, err)
	}
	return nil
}
