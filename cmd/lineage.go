package cmd

import (
	"github.com/spf13/cobra"
)

var lineageCmd = &cobra.Command{
	Use:   "lineage [flags] <sql-file>",
	Short: "Extract the table and column lineage of a query",
	Long: `Extract the tables, CTEs and aliased subqueries a query reads, the
columns it uses on each of them and the join, subquery and reference
relationships between them.`,
	Args: cobra.ExactArgs(1),
	RunE: runLineage,
}

func init() {
	rootCmd.AddCommand(lineageCmd)
}

func runLineage(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	r, err := s.reviewer()
	if err != nil {
		return err
	}
	sql, err := readSQL(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	graph := r.Lineage(sql)
	if err := graph.Validate(); err != nil {
		s.logger.Warn("Lineage graph is inconsistent", "error", err)
	}
	s.logger.Debug("Lineage extracted", "tables", len(graph.Tables), "relationships", len(graph.Relationships))

	out := cmd.OutOrStdout()
	encoded, err := encode(out, s.settings.Output, graph)
	if err != nil || encoded {
		return err
	}
	renderLineage(out, graph)
	return nil
}
