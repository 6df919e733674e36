package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/fixer"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/reviewer"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <sql-file>",
	Short: "Fix common syntax problems in a query",
	Long: `Fix misspelled keywords, NULL comparisons, unclosed quotes and
parentheses, a missing trailing semicolon and platform naming conventions.
Problems that cannot be fixed safely are reported only.`,
	Args: cobra.ExactArgs(1),
	RunE: runFix,
}

func init() {
	rootCmd.AddCommand(fixCmd)

	fixCmd.Flags().Bool("format", false, "pretty-print the query (parsed on Snowflake and Databricks, clause per line otherwise)")
	fixCmd.Flags().BoolP("write", "w", false, "write the fixed query back to the file")
}

func runFix(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	var opts []reviewer.Option
	if format, _ := cmd.Flags().GetBool("format"); format {
		opts = append(opts, reviewer.WithFormatter(fixer.ParserFormatter{Fallback: fixer.ClauseFormatter{}}))
	}
	r, err := s.reviewer(opts...)
	if err != nil {
		return err
	}

	path := args[0]
	sql, err := readSQL(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}
	result := r.Fix(sql)
	changed := result.FixedQuery != result.OriginalQuery
	s.logger.Debug("Query fixed", "changed", changed, "issues", len(result.Issues))

	if write, _ := cmd.Flags().GetBool("write"); write && changed {
		if path == "-" {
			return errors.New("--write cannot be used with stdin")
		}
		if err := os.WriteFile(path, []byte(result.FixedQuery+"\n"), 0o644); err != nil {
			return errors.Wrapf(err, "failed to write fixed query to %s", path)
		}
		s.logger.Info("Fixed query written", "file", path)
	}

	out := cmd.OutOrStdout()
	encoded, err := encode(out, s.settings.Output, result)
	if err != nil || encoded {
		return err
	}
	renderFix(out, result)
	return nil
}
