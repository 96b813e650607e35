package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"inpdiff/internal/compare"
	"inpdiff/internal/pipeline"
	"inpdiff/internal/report"
)

var (
	// Global flags
	verbose    bool
	outputPath string
	tolPath    string
	noProgress bool

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "inpdiff",
	Short: "inpdiff - geometry-aware model file comparison",
	Long: `inpdiff compares two versions of a section-based hydraulic model
definition, matching renamed elements by spatial proximity and reporting
per-field differences, or joins two simulation report files side by side.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare [file1] [file2]",
	Short: "Compare two model definition files",
	Long: `Parses both model files, extracts geometry, reconciles renamed
elements spatially, and writes the structured diff as JSON.

Example:
  inpdiff compare old.inp new.inp --tolerances tol.yaml -o diff.json`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

var reportCmd = &cobra.Command{
	Use:   "report [report1] [report2]",
	Short: "Join two simulation report files side by side",
	Long: `Parses both fixed-format report files and joins their known summary
tables row by row, flagging added, removed, and changed rows and
computing each table's difference metric.

Example:
  inpdiff report old.rpt new.rpt -o sidebyside.json`,
	Args: cobra.ExactArgs(2),
	RunE: runReport,
}

func runCompare(cmd *cobra.Command, args []string) error {
	data1, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	data2, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[1], err)
	}

	var tol compare.Tolerances
	if tolPath != "" {
		tol, err = compare.LoadTolerances(tolPath)
		if err != nil {
			return err
		}
	}

	opts := pipeline.Options{Tolerances: tol, Logger: logger}
	var bar *uiprogress.Bar
	if !noProgress {
		uiprogress.Start()
		stage := "starting"
		// Stage count: parse x2, geometry, reconcile, diff, filter, assemble.
		bar = uiprogress.AddBar(7).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return fmt.Sprintf("%-24s", stage)
		})
		lastStage := ""
		opts.Progress = func(s, detail string) {
			stage = s
			if detail != "" {
				stage = s + " " + detail
			}
			if s != lastStage {
				bar.Incr()
				lastStage = s
			}
		}
	}

	res, err := pipeline.Run(data1, data2, opts)
	if !noProgress {
		uiprogress.Stop()
	}
	if err != nil {
		return err
	}

	logger.Info("comparison complete",
		zap.String("run_id", res.RunID),
		zap.Int("differing_sections", len(res.Diffs)),
		zap.Int("warnings", len(res.Warnings)))
	return writeJSON(res)
}

func runReport(cmd *cobra.Command, args []string) error {
	data1, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	data2, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[1], err)
	}

	res := report.CompareTexts(string(data1), string(data2), logger)
	logger.Info("report join complete", zap.Int("sections", len(res.Sections)))
	return writeJSON(res)
}

func writeJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	out = append(out, '\n')
	if outputPath == "" || outputPath == "-" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "Output file (default stdout)")

	compareCmd.Flags().StringVar(&tolPath, "tolerances", "", "YAML file of tolerance thresholds")
	compareCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")

	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(reportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
