package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var costCmd = &cobra.Command{
	Use:   "cost [flags] <sql-file>",
	Short: "Estimate what a query costs to run",
	Long: `Estimate the processing units, cost, data scanned and execution time
of a query on the selected platform, with recommendations to reduce it.

Estimates carry up to 20% random variance. Pass --seed to make them
repeatable. Prices are read from the pricing section of the config file.`,
	Args: cobra.ExactArgs(1),
	RunE: runCost,
}

func init() {
	rootCmd.AddCommand(costCmd)

	costCmd.Flags().Int64("seed", 0, "seed for the estimate variance (0 picks a random seed)")
	_ = viper.BindPFlag("seed", costCmd.Flags().Lookup("seed"))
}

func runCost(cmd *cobra.Command, args []string) error {
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

	estimate := r.Estimate(sql)
	s.logger.Debug("Cost estimated", "platform", s.platform, "units", estimate.ProcessingUnits, "seed", s.settings.Seed)

	out := cmd.OutOrStdout()
	encoded, err := encode(out, s.settings.Output, estimate)
	if err != nil || encoded {
		return err
	}
	renderCost(out, estimate)
	return nil
}
