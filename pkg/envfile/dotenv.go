// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"strings"
	"unicode"
)

const byteOrderMark = "\uFEFF"

type (
	// SkippedLine describes a dotenv line that was ignored because it could not
	// be turned into an assignment.
	SkippedLine struct {
		// Line is the 1-based physical line number.
		Line int
		// Reason is a short human-readable explanation.
		Reason string
	}
)

// ParseDotenv parses dotenv content into a Mapping.
// Supported format:
//   - Blank lines and lines starting with # are ignored
//   - KEY=value, with an optional "export " or "export<TAB>" prefix
//   - KEY= binds the empty string
//   - KEY="value" or KEY='value' keep the interior verbatim (no escape processing)
//   - In unquoted values everything from the first # on is a comment
//
// Malformed lines (no '=', empty key) are skipped; ParseDotenv never fails.
// When a key repeats, the last line wins.
func ParseDotenv(content []byte) Mapping {
	env, _ := ParseDotenvLines(content)
	return env
}

// ParseDotenvLines behaves like ParseDotenv and additionally reports the
// lines that were skipped as malformed. Comments and blank lines are not
// reported.
func ParseDotenvLines(content []byte) (Mapping, []SkippedLine) {
	env := make(Mapping)
	var skipped []SkippedLine

	for i, line := range strings.Split(string(content), "\n") {
		if i == 0 {
			line = strings.TrimPrefix(line, byteOrderMark)
		}

		key, value, reason := parseDotenvLine(line)
		if reason != "" {
			skipped = append(skipped, SkippedLine{Line: i + 1, Reason: reason})
			continue
		}
		if key == "" {
			continue
		}
		env[key] = value
	}

	return env, skipped
}

// parseDotenvLine parses a single physical line. It returns an empty key and
// reason for lines that carry no assignment (blank, comment), and a non-empty
// reason for malformed lines.
func parseDotenvLine(line string) (key, value, reason string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", ""
	}

	if rest, ok := strings.CutPrefix(line, "export "); ok {
		line = rest
	} else if rest, ok := strings.CutPrefix(line, "export\t"); ok {
		line = rest
	}
	line = strings.TrimSpace(line)

	idx := strings.IndexByte(line, '=')
	switch {
	case idx < 0:
		return "", "", "missing '='"
	case idx == 0:
		return "", "", "empty variable name"
	}

	key = strings.TrimSpace(line[:idx])
	if key == "" {
		return "", "", "empty variable name"
	}

	return key, parseDotenvValue(line[idx+1:]), ""
}

// parseDotenvValue trims the raw value, strips one pair of matching quotes or,
// for unquoted values, an inline comment.
func parseDotenvValue(value string) string {
	value = strings.TrimSpace(value)

	if isQuoted(value, '"') || isQuoted(value, '\'') {
		return value[1 : len(value)-1]
	}

	if hash := strings.IndexByte(value, '#'); hash >= 0 {
		value = strings.TrimRightFunc(value[:hash], unicode.IsSpace)
	}
	return value
}

func isQuoted(value string, quote byte) bool {
	return len(value) >= 2 && value[0] == quote && value[len(value)-1] == quote
}
