package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/wtp/formatter"
	"github.com/gnolang/wtp/internal/engine"
	"github.com/gnolang/wtp/internal/rules"
)

var (
	dryRun        bool
	fixJSONOutput bool
)

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Apply the rewrite rules to template arguments",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		e, err := newEngine()
		if err != nil {
			logger.Fatal("Failed to initialize engine", zap.Error(err))
		}
		if len(e.Rules()) == 0 {
			logger.Warn("No rewrite rules configured; set rules_file in the configuration")
			return
		}

		opts := engine.Options{Progress: os.Stderr}
		if err := runAutoFix(ctx, logger, e, args, opts, cmd.OutOrStdout()); err != nil {
			logger.Error("Error fixing files", zap.Error(err))
			os.Exit(1)
		}
	},
}

func init() {
	fixCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run in dry-run mode (show changes without applying them)")
	fixCmd.Flags().BoolVar(&fixJSONOutput, "json", false, "Output changes in JSON format")
}

// fileChange is a change with the file it was made in.
type fileChange struct {
	File string `json:"file"`
	rules.Change
}

func runAutoFix(ctx context.Context, logger *zap.Logger, e *engine.Engine, paths []string, opts engine.Options, out io.Writer) error {
	fix := func(e *engine.Engine, path string) ([]fileChange, error) {
		changes, err := e.Fix(path, dryRun)
		if err != nil {
			// rules that failed on some templates do not undo the others
			logger.Warn("Some rules could not be applied", zap.String("file", path), zap.Error(err))
		}
		result := make([]fileChange, 0, len(changes))
		for _, c := range changes {
			result = append(result, fileChange{File: path, Change: c})
		}
		return result, nil
	}

	changes, err := engine.ProcessFiles(ctx, logger, e, paths, opts, fix)
	if err != nil {
		return err
	}
	if fixJSONOutput {
		return writeJSON(changes, "", out)
	}

	byFile := make(map[string][]rules.Change)
	for _, c := range changes {
		byFile[c.File] = append(byFile[c.File], c.Change)
	}
	for _, file := range sortedKeys(byFile) {
		fmt.Fprint(out, formatter.GenerateFormattedChanges(file, byFile[file]))
	}
	if dryRun {
		fmt.Fprintf(out, "%d change(s) would be made\n", len(changes))
	} else {
		fmt.Fprintf(out, "%d change(s) made\n", len(changes))
	}
	return nil
}
