package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/tokenchar/internal/config"
	"github.com/theirongolddev/tokenchar/internal/source"
	"github.com/theirongolddev/tokenchar/internal/tui/theme"
)

// SetupValues holds the answers of the setup form.
type SetupValues struct {
	Machine string
	Source  string
	Format  string
	Detail  string
	Theme   string
	ASCII   bool

	CoworkDir     string
	ClaudeCodeDir string
	CodexDir      string
}

// SetupValuesFrom seeds the form from an existing config.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		Machine:       cfg.General.Machine,
		Source:        cfg.General.Source,
		Format:        cfg.General.Format,
		Detail:        cfg.General.Detail,
		Theme:         cfg.General.Theme,
		ASCII:         cfg.General.ASCII,
		CoworkDir:     cfg.Paths.CoworkDir,
		ClaudeCodeDir: cfg.Paths.ClaudeCodeDir,
		CodexDir:      cfg.Paths.CodexDir,
	}
}

// Apply writes the answers into cfg. Blank paths fall back to the
// platform defaults.
func (v SetupValues) Apply(cfg *config.Config) {
	cfg.General.Machine = strings.TrimSpace(v.Machine)
	cfg.General.Source = v.Source
	cfg.General.Format = v.Format
	cfg.General.Detail = v.Detail
	cfg.General.Theme = v.Theme
	cfg.General.ASCII = v.ASCII
	cfg.Paths.CoworkDir = strings.TrimSpace(v.CoworkDir)
	cfg.Paths.ClaudeCodeDir = strings.TrimSpace(v.ClaudeCodeDir)
	cfg.Paths.CodexDir = strings.TrimSpace(v.CodexDir)
}

// NewSetupForm builds the setup form bound to vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("tokenchar setup").
				Description("Defaults for extraction runs.\nFlags always override these."),
			huh.NewInput().
				Title("Machine label").
				Description("Stored on every record. Blank uses the host name.").
				Placeholder(source.Hostname()).
				Value(&vals.Machine),
			huh.NewSelect[string]().
				Title("Sources").
				Options(huh.NewOptions(config.SourceChoices...)...).
				Value(&vals.Source),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Output format").
				Options(huh.NewOptions(config.FormatChoices...)...).
				Value(&vals.Format),
			huh.NewSelect[string]().
				Title("Table detail").
				Options(huh.NewOptions(config.DetailChoices...)...).
				Value(&vals.Detail),
			huh.NewConfirm().
				Title("ASCII tables?").
				Description("Use plain ASCII rules instead of box drawing.").
				Value(&vals.ASCII),
			huh.NewSelect[string]().
				Title("Browser theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&vals.Theme),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Cowork data directory").
				Placeholder("platform default").
				Value(&vals.CoworkDir),
			huh.NewInput().
				Title("Claude Code projects directory").
				Placeholder("~/.claude/projects").
				Value(&vals.ClaudeCodeDir),
			huh.NewInput().
				Title("Codex sessions directory").
				Placeholder("~/.codex/sessions").
				Value(&vals.CodexDir),
		),
	).WithTheme(huh.ThemeCatppuccin())
}

// RunSetup runs the form in the terminal and returns cfg with the answers
// applied. The returned config is validated.
func RunSetup(cfg config.Config) (config.Config, error) {
	vals := SetupValuesFrom(cfg)
	if err := NewSetupForm(&vals).Run(); err != nil {
		return cfg, fmt.Errorf("setup form: %w", err)
	}
	vals.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
