// Package config loads tokenchar settings from a TOML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/tokenchar/internal/model"
	"github.com/theirongolddev/tokenchar/internal/source"
)

// Environment variables read on top of the config file.
const (
	EnvMachine   = "TOKENCHAR_MACHINE"
	EnvCodexHome = "CODEX_HOME"
)

// Accepted values of the general settings.
var (
	SourceChoices = []string{"all", string(model.SourceCowork), string(model.SourceClaudeCode), string(model.SourceCodex)}
	FormatChoices = []string{"json", "csv", "jsonl", "table"}
	DetailChoices = []string{"summary", "sessions", "all"}
)

// Config holds all tokenchar configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Paths      PathsConfig      `toml:"paths"`
	Cowork     CoworkConfig     `toml:"cowork"`
	ClaudeCode ClaudeCodeConfig `toml:"claude_code"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds output preferences.
type GeneralConfig struct {
	Machine string `toml:"machine,omitempty"`
	Source  string `toml:"source"`
	Format  string `toml:"format"`
	Detail  string `toml:"detail"`
	ASCII   bool   `toml:"ascii"`
	Theme   string `toml:"theme"`
}

// PathsConfig overrides the per-source data directories.
type PathsConfig struct {
	CoworkDir     string `toml:"cowork_dir,omitempty"`
	ClaudeCodeDir string `toml:"claude_code_dir,omitempty"`
	CodexDir      string `toml:"codex_dir,omitempty"`
}

// CoworkConfig holds desktop-agent extraction settings.
type CoworkConfig struct {
	SkipFirstN  int    `toml:"skip_first_n"`
	ProjectName string `toml:"project_name,omitempty"`
}

// ClaudeCodeConfig holds CLI transcript extraction settings.
type ClaudeCodeConfig struct {
	ProjectMap map[string]string `toml:"project_map,omitempty"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	File  string `toml:"file,omitempty"`
	Debug bool   `toml:"debug"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Source: "all",
			Format: "json",
			Detail: "sessions",
			Theme:  "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tokenchar")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "tokenchar")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file and applies environment overrides. A missing
// file yields the defaults.
func Load() (Config, error) {
	cfg, err := LoadFrom(ConfigPath())
	if err != nil {
		return cfg, err
	}
	ApplyEnv(&cfg, os.Getenv)
	return cfg, nil
}

// LoadFrom reads the config at path without consulting the environment.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user-chosen config path
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment settings onto cfg. CODEX_HOME only
// replaces the platform default; an explicit paths.codex_dir wins.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if m := getenv(EnvMachine); m != "" {
		cfg.General.Machine = m
	}
	if home := getenv(EnvCodexHome); home != "" && cfg.Paths.CodexDir == "" {
		cfg.Paths.CodexDir = filepath.Join(home, "sessions")
	}
}

// Save writes the config to the default path.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-chosen config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return f.Close()
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	if !oneOf(c.General.Source, SourceChoices) {
		return fmt.Errorf("unknown source %q (want one of %s)", c.General.Source, strings.Join(SourceChoices, ", "))
	}
	if !oneOf(c.General.Format, FormatChoices) {
		return fmt.Errorf("unknown format %q (want one of %s)", c.General.Format, strings.Join(FormatChoices, ", "))
	}
	if !oneOf(c.General.Detail, DetailChoices) {
		return fmt.Errorf("unknown detail %q (want one of %s)", c.General.Detail, strings.Join(DetailChoices, ", "))
	}
	if c.Cowork.SkipFirstN < 0 {
		return fmt.Errorf("skip_first_n must not be negative, got %d", c.Cowork.SkipFirstN)
	}
	return nil
}

func oneOf(v string, choices []string) bool {
	for _, c := range choices {
		if v == c {
			return true
		}
	}
	return false
}

// Machine returns the configured machine name, or the host name.
func (c Config) Machine() string {
	if c.General.Machine != "" {
		return c.General.Machine
	}
	return source.Hostname()
}

// Sources returns the sources selected by general.source, in fixed order.
func (c Config) Sources() []model.Source {
	if c.General.Source == "" || c.General.Source == "all" {
		return model.Sources
	}
	return []model.Source{model.Source(c.General.Source)}
}

// DataDir returns the directory to read for src: the configured path, else
// the platform default. ok is false when the platform has no default.
func (c Config) DataDir(src model.Source) (dir string, ok bool) {
	switch src {
	case model.SourceCowork:
		dir = c.Paths.CoworkDir
	case model.SourceClaudeCode:
		dir = c.Paths.ClaudeCodeDir
	case model.SourceCodex:
		dir = c.Paths.CodexDir
	}
	if dir != "" {
		return expandHome(dir), true
	}
	home, _ := os.UserHomeDir()
	return source.DefaultDataDir(src, source.CurrentOS(), home)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// ParseProjectMap merges KEY=VAL pairs over base. Entries without "=" are
// ignored.
func ParseProjectMap(base map[string]string, pairs []string) map[string]string {
	out := make(map[string]string, len(base)+len(pairs))
	for k, v := range base {
		out[k] = v
	}
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		out[k] = v
	}
	return out
}

// Pairs flattens cfg into key/value rows in display order.
func (c Config) Pairs() [][2]string {
	pairs := [][2]string{
		{"general.machine", c.Machine()},
		{"general.source", c.General.Source},
		{"general.format", c.General.Format},
		{"general.detail", c.General.Detail},
		{"general.ascii", fmt.Sprint(c.General.ASCII)},
		{"general.theme", c.General.Theme},
	}
	for _, src := range model.Sources {
		dir, ok := c.DataDir(src)
		if !ok {
			dir = "(no default on this platform)"
		}
		pairs = append(pairs, [2]string{"paths." + string(src) + "_dir", dir})
	}
	pairs = append(pairs,
		[2]string{"cowork.skip_first_n", fmt.Sprint(c.Cowork.SkipFirstN)},
		[2]string{"cowork.project_name", c.Cowork.ProjectName},
	)
	keys := make([]string, 0, len(c.ClaudeCode.ProjectMap))
	for k := range c.ClaudeCode.ProjectMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pairs = append(pairs, [2]string{"claude_code.project_map." + k, c.ClaudeCode.ProjectMap[k]})
	}
	pairs = append(pairs,
		[2]string{"log.file", c.Log.File},
		[2]string{"log.debug", fmt.Sprint(c.Log.Debug)},
	)
	return pairs
}
