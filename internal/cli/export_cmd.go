package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sadopc/pmreport/internal/cli/formatter"
	"github.com/sadopc/pmreport/internal/export"
	"github.com/sadopc/pmreport/internal/report"
	"github.com/sadopc/pmreport/internal/store"
)

func newExportCmd(app *App) *cobra.Command {
	var (
		typ    string
		format string
		out    string
		rf     rangeFlags
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a report to a CSV or JSON file",
		Long: `Export writes the rows of a report to <type>_report_<YYYY-MM-DD>.<format>
in the output directory. Use --out - to write to standard output instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := report.ParseType(typ)
			if err != nil {
				return err
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			dr, err := rf.resolve(app)
			if err != nil {
				return err
			}

			s := app.Loader.Load(cmd.Context(), dr)
			rows, err := report.ExportRows(t, s)
			if err != nil {
				return err
			}
			warnPartial(cmd.ErrOrStderr(), s)

			now := app.Now()
			if out == "-" {
				if len(rows) == 0 {
					fmt.Fprintln(cmd.ErrOrStderr(), "Nothing to export.")
					return nil
				}
				return export.Encode(cmd.OutOrStdout(), t, rows, f, now)
			}

			dir := out
			if dir == "" {
				dir = exportDir(app)
			}
			path, err := export.ToFile(dir, t, rows, f, now)
			if errors.Is(err, export.ErrNoRows) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Nothing to export.")
				return nil
			}
			if err != nil {
				return err
			}

			if _, err := app.Store.RecordExport(store.ExportRecord{
				ReportType: string(t),
				Format:     string(f),
				Path:       path,
				Rows:       len(rows),
			}); err != nil {
				app.Logger.Warn().Err(err).Str("path", path).Msg("failed to record export")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", len(rows), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", string(report.TypeProject), "Report type: project, task, time or workload")
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSV), "File format: csv or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output directory, or - for stdout (default from settings)")
	rf.register(cmd)

	cmd.AddCommand(newExportHistoryCmd(app))

	return cmd
}

// exportDir prefers the directory chosen in settings over the configured
// default.
func exportDir(app *App) string {
	if prefs, err := app.Store.Preferences(); err == nil && prefs.ExportDir != "" {
		return prefs.ExportDir
	}
	return app.Config.Export.Dir
}

func newExportHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := app.Store.ListExports(limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleDim.Render("No exports yet."))
				return nil
			}

			rows := make([][]string, len(records))
			for i, r := range records {
				rows[i] = []string{
					r.CreatedAt.Local().Format("2006-01-02 15:04"),
					r.ReportType,
					r.Format,
					strconv.Itoa(r.Rows),
					r.Path,
				}
			}
			fmt.Fprint(cmd.OutOrStdout(),
				formatter.RenderTable([]string{"WHEN", "TYPE", "FORMAT", "ROWS", "PATH"}, rows))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of exports to show (0 for all)")

	return cmd
}
