// Package pipeline runs the source extractors in fixed order and narrows
// their combined output.
package pipeline

import (
	"io"
	"log/slog"

	"github.com/theirongolddev/tokenchar/internal/config"
	"github.com/theirongolddev/tokenchar/internal/model"
	"github.com/theirongolddev/tokenchar/internal/source"
)

// Options selects the sources to read and how to label them.
type Options struct {
	Sources []model.Source
	// Dirs holds the data directory per source. A source without an entry
	// is reported as not found.
	Dirs map[model.Source]string

	Machine     string
	ProjectName string
	SkipFirstN  int
	ProjectMap  map[string]string

	Logger *slog.Logger
}

// SourceResult is the per-source outcome of a load.
type SourceResult struct {
	Source      model.Source
	Dir         string
	Found       bool
	Sessions    int
	Turns       int
	ParseErrors int
	FileErrors  int
}

// LoadResult holds the output of the full extraction.
type LoadResult struct {
	Turns    []model.Turn
	Sessions []model.Session

	// Active lists the sources that produced at least one record, in
	// extraction order.
	Active    []model.Source
	PerSource []SourceResult

	ParseErrors int
	FileErrors  int
}

// ProgressFunc is called after each source with the number of sources
// processed so far and the total.
type ProgressFunc func(current, total int)

type extractor func(dir string, opts source.Options) source.Result

var extractors = map[model.Source]extractor{
	model.SourceCowork:     source.ExtractCowork,
	model.SourceClaudeCode: source.ExtractClaudeCode,
	model.SourceCodex:      source.ExtractCodex,
}

// OptionsFromConfig resolves the directories and labels in cfg.
func OptionsFromConfig(cfg config.Config, logger *slog.Logger) Options {
	opts := Options{
		Sources:     cfg.Sources(),
		Dirs:        make(map[model.Source]string),
		Machine:     cfg.Machine(),
		ProjectName: cfg.Cowork.ProjectName,
		SkipFirstN:  cfg.Cowork.SkipFirstN,
		ProjectMap:  cfg.ClaudeCode.ProjectMap,
		Logger:      logger,
	}
	for _, src := range opts.Sources {
		if dir, ok := cfg.DataDir(src); ok {
			opts.Dirs[src] = dir
		}
	}
	return opts
}

// Load runs every selected source sequentially. Missing directories are
// logged and skipped; they are never an error.
func Load(opts Options, progressFn ProgressFunc) *LoadResult {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	srcOpts := source.Options{
		Machine:     opts.Machine,
		ProjectName: opts.ProjectName,
		SkipFirstN:  opts.SkipFirstN,
		ProjectMap:  opts.ProjectMap,
		Logger:      logger,
	}

	result := &LoadResult{}
	for i, src := range opts.Sources {
		sr := SourceResult{Source: src, Dir: opts.Dirs[src]}
		extract, known := extractors[src]
		switch {
		case !known:
			logger.Warn(string(src) + ": unknown source, skipping")
		case sr.Dir == "" || !isDir(sr.Dir):
			logger.Info(string(src) + ": data directory not found, skipping")
		default:
			sr.Found = true
			res := extract(sr.Dir, srcOpts)
			sr.Sessions, sr.Turns = len(res.Sessions), len(res.Turns)
			sr.ParseErrors, sr.FileErrors = res.ParseErrors, res.FileErrors

			result.Turns = append(result.Turns, res.Turns...)
			result.Sessions = append(result.Sessions, res.Sessions...)
			result.ParseErrors += res.ParseErrors
			result.FileErrors += res.FileErrors
			if len(res.Turns) > 0 || len(res.Sessions) > 0 {
				result.Active = append(result.Active, src)
			}

			logger.Info(string(src)+": "+plural(sr.Sessions, "session")+", "+plural(sr.Turns, "turn"),
				"dir", sr.Dir)
			if sr.ParseErrors > 0 || sr.FileErrors > 0 {
				logger.Debug(string(src)+": skipped malformed input",
					"parse_errors", sr.ParseErrors, "file_errors", sr.FileErrors)
			}
		}
		result.PerSource = append(result.PerSource, sr)
		if progressFn != nil {
			progressFn(i+1, len(opts.Sources))
		}
	}

	logger.Info("Total: " + plural(len(result.Turns), "turn") + ", " + plural(len(result.Sessions), "session"))
	return result
}
