package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/config"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List and edit the rule catalog",
	Long: `List the effective rule catalog: the file given with --rules, or the
built-in catalog of the platform.

Use --enable and --disable to toggle rules, and --save to write the edited
catalog to a YAML or JSON file.`,
	Example: `  warehouse-sql rules -p snowflake --disable cost_no_sampling --save team-rules.yaml`,
	Args:    cobra.NoArgs,
	RunE:    runRules,
}

var rulesAddCmd = &cobra.Command{
	Use:   "add [flags] <name>",
	Short: "Add a custom rule to a catalog file",
	Long: `Add a custom rule to the catalog and save it.

Custom rules have no built-in check. A query matches when it contains the
longest words of the rule description.`,
	Example: `  warehouse-sql rules add -r team-rules.yaml --category bestPractices \
    --description "Avoid reading from staging tables" "No staging reads"`,
	Args: cobra.ExactArgs(1),
	RunE: runRulesAdd,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesAddCmd)

	rulesCmd.PersistentFlags().String("save", "", "write the catalog to this file (defaults to --rules for add)")
	rulesCmd.Flags().StringSlice("enable", nil, "rule ids to enable")
	rulesCmd.Flags().StringSlice("disable", nil, "rule ids to disable")

	rulesAddCmd.Flags().String("id", "", "rule id (derived from the name when empty)")
	rulesAddCmd.Flags().String("category", string(types.CategoryBestPractices), "rule category")
	rulesAddCmd.Flags().String("severity", "medium", "rule severity (low, medium, high)")
	rulesAddCmd.Flags().String("description", "", "rule description")
	_ = rulesAddCmd.MarkFlagRequired("description")
}

func loadCatalog(s *session) (*types.RuleCatalog, error) {
	catalog, err := config.CatalogFor(s.settings.Rules, s.platform)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load catalog from %s", s.settings.Rules)
	}
	return catalog, nil
}

func runRules(cmd *cobra.Command, _ []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(s)
	if err != nil {
		return err
	}

	enable, _ := cmd.Flags().GetStringSlice("enable")
	for _, id := range enable {
		if err := catalog.Enable(id); err != nil {
			return err
		}
	}
	disable, _ := cmd.Flags().GetStringSlice("disable")
	for _, id := range disable {
		if err := catalog.Disable(id); err != nil {
			return err
		}
	}

	save, _ := cmd.Flags().GetString("save")
	if save != "" {
		if err := config.SaveCatalog(save, catalog); err != nil {
			return err
		}
		s.logger.Info("Rule catalog saved", "file", save, "version", catalog.Version)
	} else if len(enable)+len(disable) > 0 {
		s.logger.Warn("Rule changes are not persisted without --save")
	}

	return outputCatalog(cmd, s, catalog)
}

func runRulesAdd(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	save, _ := cmd.Flags().GetString("save")
	if save == "" {
		save = s.settings.Rules
	}
	if save == "" {
		return errors.New("rules add needs --rules or --save to know where to write the catalog")
	}

	catalog, err := loadCatalog(s)
	if err != nil {
		return err
	}

	categoryName, _ := cmd.Flags().GetString("category")
	category, err := types.ParseCategory(categoryName)
	if err != nil {
		return err
	}
	severityName, _ := cmd.Flags().GetString("severity")
	severity, err := types.ParseSeverity(severityName)
	if err != nil {
		return err
	}
	id, _ := cmd.Flags().GetString("id")
	description, _ := cmd.Flags().GetString("description")

	rule, err := catalog.AddCustomRule(category, types.Rule{
		ID:          id,
		Name:        args[0],
		Description: description,
		Severity:    severity,
		Enabled:     true,
	})
	if err != nil {
		return err
	}
	if err := config.SaveCatalog(save, catalog); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s (%s)\n", rule.ID, save, categoryTitle(category))
	return nil
}

func outputCatalog(cmd *cobra.Command, s *session, catalog *types.RuleCatalog) error {
	out := cmd.OutOrStdout()
	encoded, err := encode(out, s.settings.Output, catalog)
	if err != nil || encoded {
		return err
	}
	renderCatalog(out, catalog)
	return nil
}
