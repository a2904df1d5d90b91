package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/nats-io/nats.go"

	"github.com/WessleyAI/reddit-flatten/engine/export"
	"github.com/WessleyAI/reddit-flatten/engine/thread"
	"github.com/WessleyAI/reddit-flatten/pkg/natsutil"
)

// errReported signals a failure already explained to the user.
var errReported = errors.New("reported")

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed, color.Bold)
)

// app runs one flatten pass. Content goes to out, status lines to status.
type app struct {
	prompt      *prompter
	out         io.Writer
	status      io.Writer
	interactive bool
	logger      *slog.Logger
	connect     func(url string) (*nats.Conn, error)
}

func (a *app) fail(format string, args ...any) error {
	failColor.Fprintf(a.status, "✗ "+format+"\n", args...)
	return errReported
}

func (a *app) run(ctx context.Context, opts options) error {
	doc, err := export.Load(opts.File)
	switch {
	case errors.Is(err, export.ErrNotFound):
		return a.fail("Error: '%s' not found. Make sure you named your file correctly or pass --file.", opts.File)
	case errors.Is(err, export.ErrInvalidJSON):
		return a.fail("Error: '%s' is not valid JSON.", opts.File)
	case err != nil:
		return a.fail("Error: %v", err)
	}
	a.logger.Debug("export loaded", "file", opts.File, "bytes", len(doc), "layout", doc.Layout().String())

	req, err := a.request(opts)
	if err != nil {
		if errors.Is(err, thread.ErrInvalidSelector) {
			return a.fail("Invalid choice: %v", err)
		}
		return err
	}

	res, err := thread.Run(ctx, doc, req, a.logger)
	if err != nil {
		var se *thread.ShapeError
		if errors.As(err, &se) {
			return a.fail("This export does not match the %s shape: %s.", se.Shape, se.Hint)
		}
		return a.fail("Error: %v", err)
	}

	if res.Empty() {
		warnColor.Fprintln(a.status, "\n⚠ No usable content extracted.")
		return nil
	}
	okColor.Fprintf(a.status, "\n✓ Extracted %d blocks.\n", res.Count())

	if opts.NATSURL != "" {
		if err := a.publish(ctx, opts, res); err != nil {
			return a.fail("Error: publish to %s: %v", opts.NATSURL, err)
		}
	}

	return a.emit(opts, export.Join(res.Blocks, opts.Separator))
}

// request resolves shape and profile filter from options or the menus.
func (a *app) request(opts options) (thread.Request, error) {
	shapeAnswer := opts.Shape
	if shapeAnswer == "" {
		if !a.interactive {
			return thread.Request{}, fmt.Errorf("no shape given: pass --shape (feed, single-post, profile or comments-only)")
		}
		var err error
		if shapeAnswer, err = a.prompt.shape(); err != nil {
			return thread.Request{}, err
		}
	}
	shape, err := thread.ParseShape(shapeAnswer)
	if err != nil {
		return thread.Request{}, err
	}

	req := thread.Request{Shape: shape, Filter: thread.FilterBoth, Marker: opts.Marker}
	if shape != thread.ShapeProfile {
		return req, nil
	}
	filterAnswer := opts.Filter
	if filterAnswer == "" && a.interactive {
		if filterAnswer, err = a.prompt.filter(); err != nil {
			return thread.Request{}, err
		}
	}
	if filterAnswer != "" {
		if req.Filter, err = thread.ParseProfileFilter(filterAnswer); err != nil {
			return thread.Request{}, err
		}
	}
	return req, nil
}

func (a *app) publish(ctx context.Context, opts options, res thread.Result) error {
	nc, err := a.connect(opts.NATSURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer nc.Close()

	n, err := natsutil.PublishAll(ctx, nc, opts.Subject, natsutil.NewLimiter(opts.Rate, 1), export.Messages(opts.File, res))
	if err != nil {
		return err
	}
	a.logger.Info("published blocks", "subject", opts.Subject, "count", n)
	okColor.Fprintf(a.status, "✓ Published %d blocks to %s.\n", n, opts.Subject)
	return nil
}

// emit writes the joined text to a file or the terminal.
func (a *app) emit(opts options, text string) error {
	path := opts.Out
	if path == "" && !opts.Print && a.interactive {
		save, err := a.prompt.saveChoice()
		if err != nil {
			return err
		}
		if save {
			path = export.DefaultOutput
		}
	}

	if path == "" {
		fmt.Fprintln(a.out, "\n"+text)
		return nil
	}
	if err := export.WriteFile(path, text); err != nil {
		return a.fail("Error: %v", err)
	}
	okColor.Fprintf(a.status, "✓ Saved to '%s'\n", path)
	return nil
}
