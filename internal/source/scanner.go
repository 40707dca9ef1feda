package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
)

// globFiles returns the regular files under dir matching pattern, as
// sorted absolute paths. A missing or unreadable dir yields nothing.
func globFiles(dir, pattern string) []string {
	return globPaths(dir, pattern, false)
}

// globDirs is globFiles for directories.
func globDirs(dir, pattern string) []string {
	return globPaths(dir, pattern, true)
}

func globPaths(dir, pattern string, wantDir bool) []string {
	if !isDir(dir) {
		return nil
	}
	matches, err := doublestar.Glob(os.DirFS(dir), pattern)
	if err != nil {
		return nil
	}
	var out []string
	for _, m := range matches {
		path := filepath.Join(dir, filepath.FromSlash(m))
		info, err := os.Stat(path)
		if err != nil {
			continue //nolint:nilerr // skip entries that vanished or cannot be read
		}
		if info.IsDir() == wantDir {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// fileStem returns the base name of path without its extension.
func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DecodeProjectDir turns a Claude Code project directory name back into the
// path it encodes. Claude Code replaces path separators with "-":
//
//	"-home-user-project" -> "/home/user/project"
//	"C--Users-x-code"    -> `C:\Users\x\code`
//
// Names in neither form pass through unchanged. Hyphens that were part of
// the original path cannot be told apart from separators.
func DecodeProjectDir(name string) string {
	if len(name) >= 3 && isASCIILetter(rune(name[0])) && name[1:3] == "--" {
		return name[:1] + `:\` + strings.ReplaceAll(name[3:], "-", `\`)
	}
	if strings.HasPrefix(name, "-") {
		return "/" + strings.ReplaceAll(name[1:], "-", "/")
	}
	return name
}

func isASCIILetter(r rune) bool {
	return r < unicode.MaxASCII && unicode.IsLetter(r)
}

// projectFromCwd derives a project name from a working directory in
// either separator style.
func projectFromCwd(cwd string) string {
	if cwd == "" {
		return "(unknown)"
	}
	trimmed := strings.TrimRight(cwd, `/\`)
	if i := strings.LastIndexAny(trimmed, `/\`); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if trimmed == "" {
		return cwd
	}
	return trimmed
}
