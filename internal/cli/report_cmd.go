package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/pmreport/internal/api"
	"github.com/sadopc/pmreport/internal/cli/formatter"
	"github.com/sadopc/pmreport/internal/report"
	"github.com/sadopc/pmreport/internal/snapshot"
)

// rangeFlags select the date range of a report.
type rangeFlags struct {
	preset string
	from   string
	to     string
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.preset, "preset", "", "Date preset: month, 7d or 30d (default month)")
	cmd.Flags().StringVar(&f.from, "from", "", "Start date (YYYY-MM-DD), requires --to")
	cmd.Flags().StringVar(&f.to, "to", "", "End date (YYYY-MM-DD), requires --from")
}

func (f *rangeFlags) resolve(app *App) (snapshot.DateRange, error) {
	preset := f.preset
	if preset == "" && f.from == "" && f.to == "" {
		if prefs, err := app.Store.Preferences(); err == nil {
			preset = prefs.DefaultPreset
		}
	}
	return snapshot.Resolve(preset, f.from, f.to, app.Now())
}

type reportOutput struct {
	Type    report.Type       `json:"type"`
	Start   string            `json:"start"`
	End     string            `json:"end"`
	Rows    []report.Row      `json:"rows"`
	Summary report.Summary    `json:"summary"`
	Status  map[string]string `json:"status"`
	Partial bool              `json:"partial"`
}

func newReportCmd(app *App) *cobra.Command {
	var (
		typ    string
		format string
		rf     rangeFlags
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a project, task, time or workload report",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := report.ParseType(typ)
			if err != nil {
				return err
			}
			if format != "table" && format != "json" {
				return fmt.Errorf("unknown output format %q", format)
			}
			dr, err := rf.resolve(app)
			if err != nil {
				return err
			}

			s := app.Loader.Load(cmd.Context(), dr)
			rows, err := report.Aggregate(t, s)
			if err != nil {
				return err
			}
			warnPartial(cmd.ErrOrStderr(), s)

			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(reportOutput{
					Type:    t,
					Start:   dr.Start.Format(api.DateLayout),
					End:     dr.End.Format(api.DateLayout),
					Rows:    rows,
					Summary: report.Summarize(t, s),
					Status:  s.Statuses(),
					Partial: s.Partial(),
				})
			}

			fmt.Fprint(cmd.OutOrStdout(), formatReport(t, dr, rows, report.Summarize(t, s)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", string(report.TypeProject), "Report type: project, task, time or workload")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")
	rf.register(cmd)

	return cmd
}

func formatReport(t report.Type, dr snapshot.DateRange, rows []report.Row, sum report.Summary) string {
	var b strings.Builder

	b.WriteString(formatter.StyleHeader.Render(t.Title()))
	b.WriteString("  ")
	b.WriteString(formatter.StyleDim.Render(dr.String()))
	b.WriteString("\n\n")

	labels := make([]string, len(sum.Cards))
	values := make([]string, len(sum.Cards))
	for i, c := range sum.Cards {
		labels[i] = c.Label
		values[i] = c.Value
	}
	if len(labels) > 0 {
		b.WriteString(formatter.RenderCards(labels, values))
		b.WriteString("\n\n")
	}

	if len(rows) == 0 {
		b.WriteString(formatter.StyleDim.Render("No data for this period."))
		b.WriteString("\n")
		return b.String()
	}

	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = r.Values()
	}
	b.WriteString(formatter.RenderTable(rows[0].Columns(), cells))
	return b.String()
}

// warnPartial notes collections that failed to load.
func warnPartial(w io.Writer, s snapshot.Snapshot) {
	failed := s.Failed()
	if len(failed) == 0 {
		return
	}
	names := make([]string, len(failed))
	for i, f := range failed {
		names[i] = f.String()
	}
	fmt.Fprintln(w, formatter.StyleWarning.Render(
		"Warning: failed to load "+strings.Join(names, ", ")+"; figures are incomplete"))
}
