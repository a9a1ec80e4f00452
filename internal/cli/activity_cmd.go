package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/pmreport/internal/activity"
	"github.com/sadopc/pmreport/internal/api"
	"github.com/sadopc/pmreport/internal/cli/formatter"
)

func newActivityCmd(app *App) *cobra.Command {
	var (
		projectID string
		limit     int
		locale    string
	)

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the recent activity feed grouped by day",
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := app.Store.Preferences()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				limit = prefs.ActivityLimit
			}
			if limit <= 0 {
				return fmt.Errorf("limit must be positive, got %d", limit)
			}
			if locale == "" {
				locale = prefs.Locale
			}
			loc, err := activity.ParseLocale(locale)
			if err != nil {
				return err
			}

			entries, err := app.Client.ListActivities(cmd.Context(), api.ActivityQuery{Limit: limit, ProjectID: projectID})
			if err != nil {
				return err
			}

			now := app.Now()
			buckets := activity.Group(activity.FilterByProject(entries, projectID), now, loc)
			if len(buckets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleDim.Render("No activity yet."))
				return nil
			}

			var b strings.Builder
			for i, bucket := range buckets {
				if i > 0 {
					b.WriteString("\n")
				}
				b.WriteString(formatter.StyleHeader.Render(bucket.Label))
				b.WriteString("\n")
				for _, e := range bucket.Entries {
					fmt.Fprintf(&b, "  %s  %s\n",
						activity.Describe(e),
						formatter.StyleDim.Render(activity.TimeAgo(e.CreatedAt, now, loc)))
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), b.String())
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectID, "project", "p", "", "Only show activity of this project ID")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Number of entries to fetch (default from settings)")
	cmd.Flags().StringVar(&locale, "locale", "", "Locale for day labels: id_ID or en_US (default from settings)")

	return cmd
}
