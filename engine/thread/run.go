package thread

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "github.com/WessleyAI/reddit-flatten/engine/thread"

// Request selects the extractor for one Run.
type Request struct {
	Shape  Shape
	Filter ProfileFilter
	Marker string
}

// Result is the output of a successful Run.
type Result struct {
	Shape  Shape
	Blocks []Block
}

// Empty reports whether the export held nothing worth rendering. It is an
// informational outcome, not an error.
func (r Result) Empty() bool { return len(r.Blocks) == 0 }

// Count returns the number of blocks.
func (r Result) Count() int { return len(r.Blocks) }

// Texts returns the rendered blocks.
func (r Result) Texts() []string { return Texts(r.Blocks) }

// Run classifies doc against req.Shape and extracts its blocks. Shape
// mismatches and invalid selectors fail before any block is produced.
func Run(ctx context.Context, doc Document, req Request, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	_, span := otel.Tracer(tracerName).Start(ctx, "thread.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("reddit.shape", req.Shape.String()),
		attribute.Int("reddit.document_bytes", len(doc)),
	)

	opts := []Option{WithProfileFilter(req.Filter)}
	if req.Marker != "" {
		opts = append(opts, WithMarker(req.Marker))
	}
	ex, err := New(req.Shape, opts...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	blocks, err := ex.Extract(doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Debug("extraction rejected", "shape", req.Shape.String(), "layout", doc.Layout().String(), "err", err)
		return Result{}, err
	}

	span.SetAttributes(attribute.Int("reddit.blocks", len(blocks)))
	logger.Debug("extracted blocks", "shape", req.Shape.String(), "blocks", len(blocks))
	return Result{Shape: req.Shape, Blocks: blocks}, nil
}
