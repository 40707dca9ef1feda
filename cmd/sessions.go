package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/tokenchar/internal/cli"
	"github.com/theirongolddev/tokenchar/internal/pipeline"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent sessions across sources",
	RunE:  runSessions,
}

var sessionsLimit int

func init() {
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "l", 20, "Number of sessions to show (0 for all)")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog := newLogger(cfg)
	defer func() { _ = closeLog() }()

	_, sessions, _ := loadData(cfg, logger)
	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "\n  No sessions found.")
		return nil
	}

	sessions = pipeline.Newest(sessions)
	total := len(sessions)
	if sessionsLimit > 0 && len(sessions) > sessionsLimit {
		sessions = sessions[:sessionsLimit]
	}

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		created := "-"
		if !s.CreatedAt.IsZero() {
			created = s.CreatedAt.UTC().Format("Jan 02 15:04")
		}
		rows = append(rows, []string{
			created,
			string(s.Source),
			cli.Ellipsize(cli.ShortProject(s.Project), 18),
			cli.Ellipsize(s.Title, 32),
			cli.ShortModel(s.Model),
			cli.FormatNumber(int64(s.TurnsAssistant)),
			cli.FormatTokens(s.TotalTokens),
			cli.FormatMinutes(s.DurationMin),
		})
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle(fmt.Sprintf("SESSIONS  showing %d of %d", len(sessions), total)))
	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Headers: []string{"Created", "Source", "Project", "Title", "Model", "Turns", "Tokens", "Duration"},
		Rows:    rows,
		Numeric: map[int]bool{5: true, 6: true, 7: true},
	}))
	return nil
}
