package source

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
)

// maxLineSize bounds a single JSONL record. Transcripts can embed images,
// so this is much larger than typical lines. Longer lines are skipped.
var maxLineSize = 32 * 1024 * 1024

// scanLines streams a JSONL file and calls fn for every non-blank line.
// The slice passed to fn is only valid until fn returns. Lines longer than
// maxLineSize are dropped up to the next newline and counted in oversized.
// A non-nil error means the file could not be opened or a read failed;
// lines already delivered stay delivered.
func scanLines(path string, fn func(line []byte)) (oversized int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	r := bufio.NewReaderSize(f, 256*1024)
	var (
		buf      []byte
		skipping bool
	)
	for {
		chunk, err := r.ReadSlice('\n')
		if !skipping {
			if len(buf)+len(chunk) > maxLineSize {
				skipping = true
				oversized++
				buf = buf[:0]
			} else {
				buf = append(buf, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}

		if !skipping {
			if line := bytes.TrimSpace(buf); len(line) > 0 {
				fn(line)
			}
		}
		buf = buf[:0]
		skipping = false

		if errors.Is(err, io.EOF) {
			return oversized, nil
		}
		if err != nil {
			return oversized, err
		}
	}
}

// typeKey is the byte sequence for a JSON key named "type" (with quotes).
var typeKey = []byte(`"type"`)

// extractTopLevelType finds the top-level "type" field in a JSONL line.
// Tracks brace depth and string boundaries so nested "type" keys are ignored.
// Stops at the first top-level match, so cost does not grow with line length.
func extractTopLevelType(line []byte) string {
	depth := 0
	for i := 0; i < len(line); {
		switch line[i] {
		case '"':
			if depth == 1 && bytes.HasPrefix(line[i:], typeKey) {
				val, isKey := classifyType(line, i+len(typeKey))
				if isKey {
					return val
				}
			}
			i = skipJSONString(line, i)
		case '{':
			depth++
			i++
		case '}':
			depth--
			i++
		default:
			i++
		}
	}
	return ""
}

// maxTypeLen bounds the type values worth returning; record types are short.
const maxTypeLen = 32

// classifyType checks whether pos follows a JSON key (expects : then value).
// isKey=false means "type" appeared as a value, not a key, and the caller
// should keep scanning.
func classifyType(line []byte, pos int) (val string, isKey bool) {
	i := skipSpaces(line, pos)
	if i >= len(line) || line[i] != ':' {
		return "", false
	}
	i = skipSpaces(line, i+1)
	if i >= len(line) || line[i] != '"' {
		return "", true // null, number, etc.
	}
	i++

	end := bytes.IndexByte(line[i:], '"')
	if end < 0 || end > maxTypeLen {
		return "", true
	}
	v := line[i : i+end]
	if bytes.IndexByte(v, '\\') >= 0 {
		return "", true
	}
	return string(v), true
}

// skipJSONString advances past a JSON string starting at the opening quote.
//
//nolint:gosec // manual bounds checking throughout
func skipJSONString(line []byte, i int) int {
	i++ // skip opening quote
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return i
}

func skipSpaces(line []byte, i int) int {
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return i
}
