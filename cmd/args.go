package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/wtp/formatter"
	"github.com/gnolang/wtp/internal/config"
	"github.com/gnolang/wtp/internal/engine"
)

var (
	argsJSONOutput bool
	outPath        string
	recordLayout   string
)

var argsCmd = &cobra.Command{
	Use:   "args [paths...]",
	Short: "List the arguments of every template",
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

		opts := engine.Options{Progress: os.Stderr}
		if err := runArgs(ctx, logger, e, args, opts, cmd.OutOrStdout()); err != nil {
			logger.Error("Error listing arguments", zap.Error(err))
			os.Exit(1)
		}
	},
}

func init() {
	argsCmd.Flags().BoolVar(&argsJSONOutput, "json", false, "Output arguments in JSON format")
	argsCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	argsCmd.Flags().StringVar(&recordLayout, "template", "", "Go text/template used for each argument")
}

func newEngine() (*engine.Engine, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	return engine.New(cfg)
}

func runArgs(ctx context.Context, logger *zap.Logger, e *engine.Engine, paths []string, opts engine.Options, out io.Writer) error {
	records, err := engine.ProcessFiles(ctx, logger, e, paths, opts, engine.InspectFile)
	if err != nil {
		return err
	}
	if argsJSONOutput {
		return writeJSON(records, outPath, out)
	}
	return printRecords(logger, records, recordLayout, out)
}

func printRecords(logger *zap.Logger, records []engine.Record, layout string, out io.Writer) error {
	tmpl, err := formatter.ParseRecordTemplate(layout)
	if err != nil {
		return fmt.Errorf("error parsing template: %w", err)
	}

	recordsByFile := make(map[string][]engine.Record)
	for _, r := range records {
		recordsByFile[r.File] = append(recordsByFile[r.File], r)
	}
	for _, filename := range sortedKeys(recordsByFile) {
		code, err := formatter.ReadSourceCode(filename)
		if err != nil {
			logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
			continue
		}
		output, err := formatter.GenerateFormattedRecords(recordsByFile[filename], code, tmpl)
		if err != nil {
			return err
		}
		fmt.Fprint(out, output)
	}
	return nil
}

// writeJSON writes v to path, or to out when path is empty.
func writeJSON(v any, path string, out io.Writer) error {
	d, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error marshalling to JSON: %w", err)
	}
	if path == "" {
		_, err = fmt.Fprintln(out, string(d))
		return err
	}
	return os.WriteFile(path, d, 0o644)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
