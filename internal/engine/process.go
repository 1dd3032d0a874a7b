package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/wtp/internal/rules"
	"github.com/gnolang/wtp/scanner"
)

// Processor handles one file and returns what it found there.
type Processor[T any] func(e *Engine, path string) ([]T, error)

// InspectFile is the Processor behind `wtp args`.
func InspectFile(e *Engine, path string) ([]Record, error) {
	return e.Inspect(path)
}

// FixFunc returns the Processor behind `wtp fix`.
func FixFunc(dryRun bool) Processor[rules.Change] {
	return func(e *Engine, path string) ([]rules.Change, error) {
		return e.Fix(path, dryRun)
	}
}

// Options controls how paths are processed.
type Options struct {
	// Progress receives the progress bar for directories; nil hides it.
	Progress io.Writer
	// Workers bounds concurrent files; zero means one per CPU.
	Workers int
}

// ProcessFiles runs processor over every path in order.
func ProcessFiles[T any](
	ctx context.Context,
	logger *zap.Logger,
	e *Engine,
	paths []string,
	opts Options,
	processor Processor[T],
) ([]T, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var all []T
	for _, path := range paths {
		results, err := ProcessPath(ctx, logger, e, path, opts, processor)
		if err != nil {
			logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			return nil, err
		}
		all = append(all, results...)
	}
	return all, nil
}

// ProcessPath runs processor over a file, or over every target file below a
// directory using a bounded pool of workers. Results keep the order of the
// scanned files. A file that fails is logged and skipped.
func ProcessPath[T any](
	ctx context.Context,
	logger *zap.Logger,
	e *Engine,
	path string,
	opts Options,
	processor Processor[T],
) ([]T, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !e.IsTarget(path) {
			logger.Debug("Skipping file", zap.String("file", path))
			return nil, nil
		}
		return processor(e, path)
	}

	files, err := scanner.New(path, e.extensions...).Scan()
	if err != nil {
		return nil, fmt.Errorf("error scanning %s: %w", path, err)
	}

	bar := newProgressBar(opts.Progress, len(files), path)
	results := make([][]T, len(files))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := processor(e, file.Path)
			if err != nil {
				logger.Error("Error processing file", zap.String("file", file.Path), zap.Error(err))
			}
			results[i] = out
			_ = bar.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_ = bar.Finish()

	var all []T
	for _, r := range results {
		all = append(all, r...)
	}
	logger.Debug("Processed directory",
		zap.String("path", filepath.Clean(path)),
		zap.Int("files", len(files)),
		zap.Int("results", len(all)))
	return all, nil
}

func newProgressBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
