package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/wtp/internal/engine"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "List the arguments of wikitext files whenever they change",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			args = []string{"."}
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		e, err := newEngine()
		if err != nil {
			logger.Fatal("Failed to initialize engine", zap.Error(err))
		}
		if err := runWatch(ctx, logger, e, args, cmd.OutOrStdout()); err != nil {
			logger.Fatal("Error watching", zap.Error(err))
		}
	},
}

func runWatch(ctx context.Context, logger *zap.Logger, e *engine.Engine, dirs []string, out io.Writer) error {
	e.SetCache(engine.NewCache(0))
	w, err := engine.NewWatcher(e, logger, dirs...)
	if err != nil {
		return err
	}
	logger.Info("Watching for changes", zap.Strings("dirs", dirs))

	return w.Run(ctx, func(path string) {
		records, err := e.Inspect(path)
		if err != nil {
			logger.Error("Error inspecting file", zap.String("file", path), zap.Error(err))
			return
		}
		fmt.Fprintf(out, "%s: %d argument(s)\n", path, len(records))
		if err := printRecords(logger, records, recordLayout, out); err != nil {
			logger.Error("Error printing arguments", zap.String("file", path), zap.Error(err))
		}
	})
}
