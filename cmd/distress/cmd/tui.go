package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"distress/internal/ui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive UI (default)",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The UI owns the terminal, so logs go to a file.
	logFile, err := tea.LogToFile(cfg.LogFile, "distress")
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	ctx := cmd.Context()
	c, err := wire(ctx, cfg, wireOptions{logOut: logFile, events: true})
	if err != nil {
		return err
	}
	defer c.close()

	model := ui.NewAppModel(ctx, c.ctrl, c.doc, cfg.Locator(), c.events).AsTeaModel()
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}
