package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/pmreport/internal/tui"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "tui",
		Short:       "Open the interactive dashboard",
		Annotations: map[string]string{logToFile: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			model := tui.NewApp(cmd.Context(), tui.Deps{
				Store:      app.Store,
				Loader:     app.Loader,
				Activities: app.Client,
				ExportDir:  app.Config.Export.Dir,
				Now:        app.Now,
			})
			p := tea.NewProgram(model,
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err := p.Run()
			return err
		},
	}
}
