package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/tokenchar/internal/cli"
	"github.com/theirongolddev/tokenchar/internal/stats"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Token usage by model",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog := newLogger(cfg)
	defer func() { _ = closeLog() }()

	turns, _, _ := loadData(cfg, logger)
	out := cmd.OutOrStdout()
	models := stats.ByModel(turns)
	if len(models) == 0 {
		fmt.Fprintln(out, "\n  No turns found.")
		return nil
	}

	rows := make([][]string, 0, len(models))
	for _, ms := range models {
		rows = append(rows, []string{
			ms.Model,
			string(ms.Family),
			cli.FormatNumber(int64(ms.Sessions)),
			cli.FormatNumber(int64(ms.Turns)),
			cli.FormatTokens(ms.OutputTokens),
			cli.FormatTokens(ms.TotalTokens),
			cli.FormatPercent(ms.Share),
		})
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle("MODELS"))
	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Headers: []string{"Model", "Family", "Sessions", "Turns", "Output", "Total", "Share"},
		Rows:    rows,
		Numeric: map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true},
	}))
	return nil
}
