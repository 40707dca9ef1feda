package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/theirongolddev/tokenchar/internal/cli"
	"github.com/theirongolddev/tokenchar/internal/config"
	"github.com/theirongolddev/tokenchar/internal/model"
	"github.com/theirongolddev/tokenchar/internal/output"
)

var (
	flagOutput string
	flagFormat string
	flagDetail string
	flagASCII  bool
)

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&flagOutput, "output", "o", "", "Output file or directory (default: stdout)")
	f.StringVarP(&flagFormat, "format", "f", "json", "Output format (json, csv, jsonl, table)")
	f.StringVar(&flagDetail, "detail", "sessions", "Detail level for table format (summary, sessions, all)")
	f.BoolVar(&flagASCII, "ascii", false, "Force ASCII output (no Unicode box-drawing characters)")
}

func applyOutputFlags(f *pflag.FlagSet, cfg *config.Config) {
	if f.Changed("format") {
		cfg.General.Format = flagFormat
	}
	if f.Changed("detail") {
		cfg.General.Detail = flagDetail
	}
	if f.Changed("ascii") {
		cfg.General.ASCII = flagASCII
	}
}

func runExtract(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog := newLogger(cfg)
	defer func() { _ = closeLog() }()

	turns, sessions, res := loadData(cfg, logger)
	sources := activeSources(res.Active, turns, sessions)

	return writeOutput(cmd.OutOrStdout(), logger, cfg, flagOutput, sources, turns, sessions)
}

// activeSources keeps the sources that still have records after filtering.
func activeSources(active []model.Source, turns []model.Turn, sessions []model.Session) []model.Source {
	return lo.Filter(active, func(src model.Source, _ int) bool {
		return lo.ContainsBy(sessions, func(s model.Session) bool { return s.Source == src }) ||
			lo.ContainsBy(turns, func(t model.Turn) bool { return t.Source == src })
	})
}

// writeOutput renders the records in cfg's format. stdout receives JSON,
// JSONL and table output when dest is empty.
func writeOutput(stdout io.Writer, logger *slog.Logger, cfg config.Config, dest string,
	sources []model.Source, turns []model.Turn, sessions []model.Session) error {
	switch cfg.General.Format {
	case "json":
		env := output.NewEnvelope(version, cfg.Machine(), sources, turns, sessions)
		return writeTo(stdout, logger, resolveDest(dest, "tokenchar.json"), func(w io.Writer) error {
			return output.WriteJSON(w, env)
		})

	case "jsonl":
		return writeTo(stdout, logger, resolveDest(dest, "tokenchar.jsonl"), func(w io.Writer) error {
			return output.WriteJSONL(w, turns, sessions)
		})

	case "csv":
		if dest == "" {
			return errors.New("--output required for CSV format")
		}
		paths, err := output.WriteCSV(dest, turns, sessions)
		for _, p := range paths {
			logger.Info("wrote " + p)
		}
		return err

	case "table":
		if dest != "" {
			logger.Warn("--output ignored for table format (writes to stdout)")
		}
		cs := cli.DetectCharset()
		if cfg.General.ASCII {
			cs = cli.ASCIICharset
		}
		return cli.WriteReport(stdout, turns, sessions, cli.ReportOptions{
			Detail:  cfg.General.Detail,
			Charset: cs,
		})
	}
	return fmt.Errorf("unknown format %q", cfg.General.Format)
}

// resolveDest places name inside dest when dest is an existing directory.
func resolveDest(dest, name string) string {
	if dest == "" {
		return ""
	}
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		return filepath.Join(dest, name)
	}
	return dest
}

func writeTo(stdout io.Writer, logger *slog.Logger, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}
	w, closeFn, err := output.Create(path)
	if err != nil {
		return err
	}
	if err := write(w); err != nil {
		_ = closeFn()
		return err
	}
	if err := closeFn(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	logger.Info("wrote " + path)
	return nil
}
