package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/nsxbet/warehouse-sql-analyzer/pkg/config"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/reviewer"
	"github.com/nsxbet/warehouse-sql-analyzer/pkg/types"
)

var titleCaser = cases.Title(language.English)

// readSQL reads a query from path, or from stdin when path is "-".
func readSQL(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", errors.Wrap(err, "failed to read SQL from stdin")
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read SQL file: %s", path)
	}
	return string(data), nil
}

// encode writes v as JSON or YAML. It returns false for the text format so
// the caller renders its own table.
func encode(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case config.OutputJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return true, encoder.Encode(v)
	case config.OutputYAML:
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return true, encoder.Encode(v)
	case config.OutputText:
		return false, nil
	default:
		return false, errors.Errorf("unsupported output format: %s", format)
	}
}

// categoryTitle turns bestPractices into "Best Practices".
func categoryTitle(c types.Category) string {
	var b strings.Builder
	for i, r := range string(c) {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return titleCaser.String(b.String())
}

func severityTitle(s types.Severity) string {
	return titleCaser.String(s.String())
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func position(line, column *int) string {
	switch {
	case line == nil:
		return ""
	case column == nil:
		return fmt.Sprintf("%d", *line)
	default:
		return fmt.Sprintf("%d:%d", *line, *column)
	}
}

func renderAnalysis(w io.Writer, name string, result *types.AnalysisResult) {
	if !result.Valid {
		_, _ = fmt.Fprintf(w, "%s: nothing to analyze\n", name)
		return
	}

	scores := newTable(w)
	scores.SetTitle("%s (%s)", name, result.Platform.DisplayName())
	scores.AppendHeader(table.Row{"Category", "Score", "Issues"})
	for _, c := range types.Categories {
		scores.AppendRow(table.Row{categoryTitle(c), result.Summary.CategoryScores.Get(c), len(result.Issues[c])})
	}
	scores.AppendFooter(table.Row{"Overall", result.Summary.OverallScore, len(result.AllIssues())})
	scores.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	scores.Render()

	issues := result.AllIssues()
	if len(issues) == 0 {
		_, _ = fmt.Fprintln(w, "No issues found.")
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Severity", "Rule", "Position", "Message", "Recommendation"})
	for _, issue := range issues {
		t.AppendRow(table.Row{
			severityTitle(issue.Severity),
			issue.ID,
			position(issue.Line, issue.Column),
			issue.Message,
			issue.Recommendation,
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, WidthMax: 60},
		{Number: 5, WidthMax: 60},
	})
	t.Render()

	_, _ = fmt.Fprintf(w, "Summary: %d high, %d medium, %d low\n",
		result.CountBySeverity(types.SeverityHigh),
		result.CountBySeverity(types.SeverityMedium),
		result.CountBySeverity(types.SeverityLow))
}

func renderBatch(w io.Writer, names []string, batch *reviewer.BatchResult) {
	t := newTable(w)
	t.AppendHeader(table.Row{"File", "Score", "High", "Medium", "Low"})
	for _, item := range batch.Items {
		if item.Result == nil {
			t.AppendRow(table.Row{names[item.Index], "cancelled", "", "", ""})
			continue
		}
		if !item.Result.Valid {
			t.AppendRow(table.Row{names[item.Index], "empty", "", "", ""})
			continue
		}
		t.AppendRow(table.Row{
			names[item.Index],
			item.Result.Summary.OverallScore,
			item.Result.CountBySeverity(types.SeverityHigh),
			item.Result.CountBySeverity(types.SeverityMedium),
			item.Result.CountBySeverity(types.SeverityLow),
		})
	}
	t.Render()
	_, _ = fmt.Fprintln(w, batch.String())
}

func renderLineage(w io.Writer, graph *types.SchemaGraph) {
	if graph.Empty() {
		_, _ = fmt.Fprintln(w, "No tables found.")
		return
	}

	tables := newTable(w)
	tables.SetTitle("Tables")
	tables.AppendHeader(table.Row{"Table", "Kind", "Columns", "References", "Referenced By"})
	for _, node := range graph.Tables {
		columns := make([]string, 0, len(node.Columns))
		for _, col := range node.Columns {
			columns = append(columns, col.Name)
		}
		tables.AppendRow(table.Row{
			node.DisplayName,
			titleCaser.String(string(node.Kind)),
			strings.Join(columns, ", "),
			strings.Join(node.References, ", "),
			strings.Join(node.ReferencedBy, ", "),
		})
	}
	tables.Render()

	if len(graph.Relationships) == 0 {
		return
	}
	edges := newTable(w)
	edges.SetTitle("Relationships")
	edges.AppendHeader(table.Row{"Source", "Target", "Kind", "On"})
	for _, rel := range graph.Relationships {
		on := ""
		if rel.HasColumns() {
			on = fmt.Sprintf("%s.%s = %s.%s", rel.SourceTableID, rel.SourceColumn, rel.TargetTableID, rel.TargetColumn)
		}
		edges.AppendRow(table.Row{rel.SourceTableID, rel.TargetTableID, titleCaser.String(string(rel.Kind)), on})
	}
	edges.Render()
}

func renderMigration(w io.Writer, result *types.MigrationResult) {
	_, _ = fmt.Fprintf(w, "-- %s -> %s, compatibility %d/100\n",
		result.SourcePlatform.DisplayName(), result.TargetPlatform.DisplayName(), result.CompatibilityScore)
	_, _ = fmt.Fprintln(w, result.ConvertedQuery)
	if len(result.Issues) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w)
	t := newTable(w)
	t.AppendHeader(table.Row{"Severity", "Line", "Message", "Suggestion"})
	for _, issue := range result.Issues {
		t.AppendRow(table.Row{severityTitle(issue.Severity), position(issue.Line, nil), issue.Message, issue.Suggestion})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 4, WidthMax: 60}})
	t.Render()
}

func renderFix(w io.Writer, result *types.FixResult) {
	_, _ = fmt.Fprintln(w, result.FixedQuery)
	if len(result.Issues) == 0 {
		_, _ = fmt.Fprintln(w, "\nNo issues found.")
		return
	}
	_, _ = fmt.Fprintln(w)
	t := newTable(w)
	t.AppendHeader(table.Row{"Severity", "Line", "Fixed", "Message", "Suggestion"})
	fixed := 0
	for _, issue := range result.Issues {
		mark := ""
		if issue.AutoFixed {
			mark = "yes"
			fixed++
		}
		t.AppendRow(table.Row{severityTitle(issue.Severity), position(issue.Line, nil), mark, issue.Message, issue.Suggestion})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 5, WidthMax: 60}})
	t.Render()
	_, _ = fmt.Fprintf(w, "Summary: %d issue(s), %d fixed automatically\n", len(result.Issues), fixed)
}

func renderCost(w io.Writer, estimate *types.CostEstimate) {
	t := newTable(w)
	t.SetTitle("Cost estimate (%s)", estimate.Platform.DisplayName())
	t.AppendRows([]table.Row{
		{"Complexity", string(estimate.Complexity)},
		{"Data scanned", estimate.DataScanned},
		{"Processing", fmt.Sprintf("%.4f %s", estimate.ProcessingUnits, estimate.UnitName)},
		{"Estimated cost", fmt.Sprintf("%.4f %s", estimate.EstimatedCost, estimate.Currency)},
		{"Execution time", estimate.ExecutionTime},
	})
	t.Render()
	for _, rec := range estimate.Recommendations {
		_, _ = fmt.Fprintf(w, "  - %s\n", rec)
	}
}

func renderCatalog(w io.Writer, catalog *types.RuleCatalog) {
	t := newTable(w)
	t.SetTitle("%s v%d (%s)", catalog.ID, catalog.Version, catalog.Platform.DisplayName())
	t.AppendHeader(table.Row{"Category", "Rule", "Severity", "Enabled", "Name"})
	for _, c := range types.Categories {
		for _, rule := range catalog.Rules[c] {
			enabled := "no"
			if rule.Enabled {
				enabled = "yes"
			}
			id := rule.ID
			if rule.Custom {
				id += " (custom)"
			}
			t.AppendRow(table.Row{categoryTitle(c), id, severityTitle(rule.Severity), enabled, rule.Name})
		}
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "%d rule(s)\n", catalog.Len())
}
