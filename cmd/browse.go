package cmd

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/tokenchar/internal/log"
	"github.com/theirongolddev/tokenchar/internal/pipeline"
	"github.com/theirongolddev/tokenchar/internal/tui"
	"github.com/theirongolddev/tokenchar/internal/tui/theme"
)

var browseCmd = &cobra.Command{
	Use:     "browse",
	Aliases: []string{"tui"},
	Short:   "Browse sessions and turns interactively",
	RunE:    runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	theme.SetActive(cfg.General.Theme)

	// The terminal belongs to the browser; only the log file sink stays.
	logger, closeLog := log.New(log.Options{
		Debug:  cfg.Log.Debug,
		File:   cfg.Log.File,
		Writer: io.Discard,
	})
	defer func() { _ = closeLog() }()

	// Force TrueColor so surface backgrounds render on every terminal profile.
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(pipeline.OptionsFromConfig(cfg, logger), flagProject, flagModel)
	p := tea.NewProgram(app, tea.WithAltScreen())

	defer log.RecoverPanic("browse", func() { p.Kill() })
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browser error: %w", err)
	}
	return nil
}
