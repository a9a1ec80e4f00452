package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sadopc/pmreport/internal/activity"
	"github.com/sadopc/pmreport/internal/server"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reports, exports and the activity feed over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.Config.Server.Addr
			}

			prefs, err := app.Store.Preferences()
			if err != nil {
				return err
			}
			locale, err := activity.ParseLocale(prefs.Locale)
			if err != nil {
				locale = activity.DefaultLocale
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			web := server.NewWebAPI(app.Logger, server.Config{
				Addr:          addr,
				Locale:        locale,
				ActivityLimit: prefs.ActivityLimit,
				Now:           app.Now,
				Dependencies: server.Dependencies{
					Loader:     app.Loader,
					Activities: app.Client,
				},
			})
			return web.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default server.addr)")

	return cmd
}
