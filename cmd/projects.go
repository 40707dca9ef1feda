package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/tokenchar/internal/cli"
	"github.com/theirongolddev/tokenchar/internal/model"
	"github.com/theirongolddev/tokenchar/internal/pipeline"
	"github.com/theirongolddev/tokenchar/internal/stats"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Per-project usage for each source",
	RunE:  runProjects,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog := newLogger(cfg)
	defer func() { _ = closeLog() }()

	turns, sessions, _ := loadData(cfg, logger)
	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "\n  No sessions found.")
		return nil
	}

	for _, src := range model.Sources {
		st := stats.ForSource(pipeline.FilterBySource(turns, sessions, src))
		if st == nil || len(st.Projects) == 0 {
			continue
		}

		rows := make([][]string, 0, len(st.Projects))
		for _, p := range st.Projects {
			rows = append(rows, []string{
				cli.Ellipsize(cli.ShortProject(p.Project), 24),
				cli.FormatNumber(int64(p.Sessions)),
				cli.FormatNumber(int64(p.Turns)),
				cli.ShortModel(p.Model),
				cli.FormatTokens(p.TotalTokens),
			})
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, cli.RenderTitle("PROJECTS  "+src.Label()))
		fmt.Fprintln(out)
		fmt.Fprint(out, cli.RenderTable(cli.Table{
			Headers: []string{"Project", "Sessions", "Turns", "Model", "Tokens"},
			Rows:    rows,
			Numeric: map[int]bool{1: true, 2: true, 4: true},
		}))
	}
	return nil
}
