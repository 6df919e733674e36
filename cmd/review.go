package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/reviewer"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

var reviewCmd = &cobra.Command{
	Use:   "review [flags] <sql-file>",
	Short: "Run every engine over a query",
	Long: `Analyze, extract lineage, fix and price a query in one go, and
optionally migrate it to one or more other platforms.`,
	Example: `  warehouse-sql review -p bigquery --to snowflake --to databricks -o json query.sql`,
	Args:    cobra.ExactArgs(1),
	RunE:    runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().StringSlice("to", nil, "migration target platforms")
	reviewCmd.Flags().Bool("no-lineage", false, "skip lineage extraction")
	reviewCmd.Flags().Int64("seed", 0, "seed for the cost estimate variance")
}

func runReview(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	if seed, _ := cmd.Flags().GetInt64("seed"); seed != 0 {
		s.settings.Seed = seed
	}

	var opts []reviewer.ReviewOption
	to, _ := cmd.Flags().GetStringSlice("to")
	for _, name := range to {
		target, err := types.ParsePlatform(name)
		if err != nil {
			return errors.Wrap(err, "invalid --to platform")
		}
		opts = append(opts, reviewer.WithMigrationTargets(target))
	}
	if noLineage, _ := cmd.Flags().GetBool("no-lineage"); noLineage {
		opts = append(opts, reviewer.WithoutLineage())
	}

	r, err := s.reviewer()
	if err != nil {
		return err
	}
	sql, err := readSQL(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	report, err := r.Review(cmd.Context(), sql, opts...)
	if err != nil {
		return err
	}
	s.logger.Debug("Review finished", "report", report.String())

	out := cmd.OutOrStdout()
	encoded, err := encode(out, s.settings.Output, report)
	if err != nil || encoded {
		return err
	}

	renderAnalysis(out, args[0], report.Analysis)
	if report.Lineage != nil {
		_, _ = fmt.Fprintln(out)
		renderLineage(out, report.Lineage)
	}
	_, _ = fmt.Fprintln(out)
	renderFix(out, report.Fix)
	_, _ = fmt.Fprintln(out)
	renderCost(out, report.Cost)
	for _, migration := range report.Migrations {
		_, _ = fmt.Fprintln(out)
		renderMigration(out, migration)
	}

	checkExitCode([]*types.AnalysisResult{report.Analysis})
	return nil
}
