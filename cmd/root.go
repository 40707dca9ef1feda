// Package cmd implements the tokenchar CLI commands.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/tokenchar/internal/config"
	"github.com/theirongolddev/tokenchar/internal/log"
	"github.com/theirongolddev/tokenchar/internal/model"
	"github.com/theirongolddev/tokenchar/internal/pipeline"
)

// version is overridden at build time with -ldflags "-X ...cmd.version=...".
var version = "0.1.0"

var (
	flagSource        string
	flagCoworkDir     string
	flagClaudeCodeDir string
	flagCodexDir      string
	flagMachine       string
	flagProjectMap    []string
	flagSkipFirstN    int
	flagQuiet         bool
	flagDebug         bool
	flagLogFile       string
	flagProject       string
	flagModel         string
)

var rootCmd = &cobra.Command{
	Use:   "tokenchar",
	Short: "Token usage extractor for AI coding assistants",
	Long: "Extract per-turn and per-session token usage from Claude Desktop (Cowork),\n" +
		"Claude Code and OpenAI Codex session logs.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runExtract,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate("tokenchar {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagSource, "source", "all", "Which source to extract (cowork, claude_code, codex, all)")
	pf.StringVar(&flagCoworkDir, "cowork-dir", "", "Override Cowork data directory")
	pf.StringVar(&flagClaudeCodeDir, "claude-code-dir", "", "Override Claude Code projects directory")
	pf.StringVar(&flagCodexDir, "codex-dir", "", "Override Codex sessions directory")
	pf.StringVar(&flagMachine, "machine", "", "Machine name override (default: hostname)")
	pf.StringArrayVar(&flagProjectMap, "project-map", nil, "Map directory names to friendly project names, KEY=VAL (repeatable)")
	pf.IntVar(&flagSkipFirstN, "skip-first-n", 0, "Skip the N oldest Cowork sessions")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress messages")
	pf.BoolVar(&flagDebug, "debug", false, "Log skipped records and timings")
	pf.StringVar(&flagLogFile, "log-file", "", "Also write JSON logs to this file (rotated)")
	pf.StringVarP(&flagProject, "project", "p", "", "Filter to project (substring match)")
	pf.StringVarP(&flagModel, "model", "m", "", "Filter to model (substring match)")
}

// loadConfig reads the config file and environment, then applies the
// flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}

	f := cmd.Flags()
	if f.Changed("source") {
		cfg.General.Source = flagSource
	}
	if f.Changed("cowork-dir") {
		cfg.Paths.CoworkDir = flagCoworkDir
	}
	if f.Changed("claude-code-dir") {
		cfg.Paths.ClaudeCodeDir = flagClaudeCodeDir
	}
	if f.Changed("codex-dir") {
		cfg.Paths.CodexDir = flagCodexDir
	}
	if f.Changed("machine") {
		cfg.General.Machine = flagMachine
	}
	if f.Changed("skip-first-n") {
		cfg.Cowork.SkipFirstN = flagSkipFirstN
	}
	if f.Changed("debug") {
		cfg.Log.Debug = flagDebug
	}
	if f.Changed("log-file") {
		cfg.Log.File = flagLogFile
	}
	cfg.ClaudeCode.ProjectMap = config.ParseProjectMap(cfg.ClaudeCode.ProjectMap, flagProjectMap)
	applyOutputFlags(f, &cfg)

	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config) (*slog.Logger, func() error) {
	return log.New(log.Options{
		Quiet: flagQuiet,
		Debug: cfg.Log.Debug,
		File:  cfg.Log.File,
	})
}

// loadData runs the extraction for cfg and applies the --project and
// --model filters.
func loadData(cfg config.Config, logger *slog.Logger) ([]model.Turn, []model.Session, *pipeline.LoadResult) {
	res := pipeline.Load(pipeline.OptionsFromConfig(cfg, logger), nil)
	turns, sessions := applyFilters(res.Turns, res.Sessions)
	return turns, sessions, res
}

// applyFilters narrows sessions and their turns by the substring flags.
func applyFilters(turns []model.Turn, sessions []model.Session) ([]model.Turn, []model.Session) {
	if flagProject != "" {
		turns, sessions = pipeline.FilterByProject(turns, sessions, flagProject)
	}
	if flagModel != "" {
		turns, sessions = pipeline.FilterByModel(turns, sessions, flagModel)
	}
	return turns, sessions
}
