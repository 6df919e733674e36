package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [flags] --to <platform> <sql-file>",
	Short: "Rewrite a query for another platform",
	Long: `Rewrite a query written for --platform so it runs on --to.

Functions, date arithmetic, type names, identifier quoting and partitioning
clauses are converted where a mapping exists. Constructs that cannot be
converted are reported with a suggestion and lower the compatibility score.`,
	Example: `  warehouse-sql migrate -p bigquery --to snowflake query.sql
  cat query.sql | warehouse-sql migrate -p sf --to dbx -`,
	Args: cobra.ExactArgs(1),
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().String("to", "", "target platform (bigquery, snowflake, databricks)")
	_ = migrateCmd.MarkFlagRequired("to")
	migrateCmd.Flags().Int("min-score", 0, "exit with non-zero code if the compatibility score is below this value")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	to, _ := cmd.Flags().GetString("to")
	target, err := types.ParsePlatform(to)
	if err != nil {
		return errors.Wrap(err, "invalid --to platform")
	}

	r, err := s.reviewer()
	if err != nil {
		return err
	}
	sql, err := readSQL(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	result := r.Migrate(sql, target)
	s.logger.Debug("Query migrated", "source", s.platform, "target", target, "score", result.CompatibilityScore)

	out := cmd.OutOrStdout()
	encoded, err := encode(out, s.settings.Output, result)
	if err != nil {
		return err
	}
	if !encoded {
		renderMigration(out, result)
	}

	if minScore, _ := cmd.Flags().GetInt("min-score"); result.CompatibilityScore < minScore {
		exit(1)
	}
	return nil
}
