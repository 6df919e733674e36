package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/reviewer"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

// exit is replaced in tests.
var exit = os.Exit

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] <sql-file>...",
	Short: "Score SQL queries against the rule catalog",
	Long: `Analyze SQL queries against the rule catalog of the selected platform.

Each query gets a 0-100 score per category (best practices, performance,
modularization, cost) and a weighted overall score. Pass several files to
analyze them concurrently; use - to read a single query from stdin.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().Bool("fail-on-error", false, "exit with non-zero code if high severity issues are found")
	analyzeCmd.Flags().Bool("fail-on-warning", false, "exit with non-zero code if medium severity issues are found")
	analyzeCmd.Flags().Int("concurrency", 0, "number of files analyzed at once (default 8)")

	_ = viper.BindPFlag("fail-on-error", analyzeCmd.Flags().Lookup("fail-on-error"))
	_ = viper.BindPFlag("fail-on-warning", analyzeCmd.Flags().Lookup("fail-on-warning"))
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	s.logger.Debug("Starting analyze command", "args", args)

	concurrency, _ := cmd.Flags().GetInt("concurrency")
	r, err := s.reviewer(reviewer.WithConcurrency(concurrency))
	if err != nil {
		return err
	}

	queries := make([]string, len(args))
	for i, path := range args {
		if queries[i], err = readSQL(cmd.InOrStdin(), path); err != nil {
			return err
		}
		s.logger.Debug("SQL file read successfully", "file", path, "size", len(queries[i]))
	}

	out := cmd.OutOrStdout()
	var results []*types.AnalysisResult
	if len(args) == 1 {
		result := r.Analyze(queries[0])
		results = append(results, result)
		if err := outputAnalysis(out, s.settings.Output, args[0], result); err != nil {
			return err
		}
	} else {
		batch, err := r.AnalyzeBatch(cmd.Context(), queries)
		if err != nil {
			return err
		}
		for _, item := range batch.Items {
			results = append(results, item.Result)
		}
		encoded, err := encode(out, s.settings.Output, batch)
		if err != nil {
			return err
		}
		if !encoded {
			renderBatch(out, args, batch)
		}
	}

	checkExitCode(results)
	return nil
}

func outputAnalysis(w io.Writer, format, name string, result *types.AnalysisResult) error {
	encoded, err := encode(w, format, result)
	if err != nil || encoded {
		return err
	}
	renderAnalysis(w, name, result)
	return nil
}

// checkExitCode exits with status 1 when --fail-on-error or
// --fail-on-warning is set and a matching issue was raised.
func checkExitCode(results []*types.AnalysisResult) {
	hasErrors := false
	hasWarnings := false
	for _, result := range results {
		if result == nil {
			continue
		}
		if result.CountBySeverity(types.SeverityHigh) > 0 {
			hasErrors = true
		}
		if result.CountBySeverity(types.SeverityMedium) > 0 {
			hasWarnings = true
		}
	}

	if hasErrors && viper.GetBool("fail-on-error") {
		exit(1)
	}
	if hasWarnings && viper.GetBool("fail-on-warning") {
		exit(1)
	}
}
