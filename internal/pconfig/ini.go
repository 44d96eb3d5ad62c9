// Package pconfig implements the scoped configuration system (component
// C6): an INI dialect with variable substitution, directory-hierarchy
// rule inheritance, and a dependency graph between per-plugin configs.
//
// No INI library in the retrieval pack (or the wider ecosystem) speaks
// this dialect — "+Key=" append, "!Key" clear, "-Key=" remove, "//" line
// comments alongside ";", trailing "\" continuation, and predicate-valued
// rule keys are all bespoke to Crysknife's own format — so the parser
// below is hand-rolled rather than built on a general-purpose INI reader.
package pconfig

import (
	"fmt"
	"strings"
)

// directive is the mutation one INI line applies to a key: set replaces
// it outright, append adds a value to a multi-value key, remove deletes
// one value from it, and clear removes the key entirely.
type directive int

const (
	dirSet directive = iota
	dirAppend
	dirRemove
	dirClear
)

// rawLine is one parsed, uncommented, continuation-joined INI line.
type rawLine struct {
	Directive directive
	Key       string
	Value     string
}

// rawSection is one "[Name|Name|...]" block with its lines in file order.
type rawSection struct {
	Names []string
	Lines []rawLine
}

// parseINI tokenizes text into its section blocks, stripping ";" and "//"
// line comments, joining trailing-"\" continuations, and unquoting values.
func parseINI(text string) ([]rawSection, error) {
	lines := joinContinuations(stripComments(splitLines(text)))

	var sections []rawSection
	var cur *rawSection
	for lineNo, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, fmt.Errorf("pconfig: malformed section header at line %d: %q", lineNo+1, line)
			}
			names := strings.Split(line[1:len(line)-1], "|")
			for i := range names {
				names[i] = strings.TrimSpace(names[i])
			}
			sections = append(sections, rawSection{Names: names})
			cur = &sections[len(sections)-1]
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("pconfig: line %d outside of any section: %q", lineNo+1, line)
		}
		rl, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("pconfig: line %d: %w", lineNo+1, err)
		}
		cur.Lines = append(cur.Lines, rl)
	}
	return sections, nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// stripComments removes a trailing ";" or "//" comment from each line,
// respecting neither escaping nor quoting (Crysknife values never contain
// either sequence in practice).
func stripComments(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		if idx := strings.Index(line, ";"); idx >= 0 {
			line = line[:idx]
		}
		out[i] = line
	}
	return out
}

// joinContinuations merges a line ending in "\" with the line that follows.
func joinContinuations(lines []string) []string {
	var out []string
	var pending string
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if strings.HasSuffix(trimmed, `\`) {
			pending += strings.TrimSuffix(trimmed, `\`)
			continue
		}
		out = append(out, pending+line)
		pending = ""
	}
	if pending != "" {
		out = append(out, pending)
	}
	return out
}

func parseLine(line string) (rawLine, error) {
	dir := dirSet
	switch {
	case strings.HasPrefix(line, "+"):
		dir, line = dirAppend, line[1:]
	case strings.HasPrefix(line, "-"):
		dir, line = dirRemove, line[1:]
	case strings.HasPrefix(line, "!"):
		dir, line = dirClear, line[1:]
	}

	key, value, hasEq := strings.Cut(line, "=")
	key = strings.TrimSpace(key)
	if key == "" {
		return rawLine{}, fmt.Errorf("empty key in %q", line)
	}
	if !hasEq {
		if dir != dirClear {
			return rawLine{}, fmt.Errorf("missing '=' in %q", line)
		}
		return rawLine{Directive: dirClear, Key: key}, nil
	}
	value = strings.TrimSpace(value)
	value = unquote(value)
	return rawLine{Directive: dir, Key: key, Value: value}, nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// materialize applies a rawSection's directives in order, turning
// "Key=", "+Key=", "-Key=", "!Key" lines into a final key -> []value map.
func materialize(lines []rawLine) map[string][]string {
	out := map[string][]string{}
	for _, l := range lines {
		switch l.Directive {
		case dirSet:
			out[l.Key] = []string{l.Value}
		case dirAppend:
			out[l.Key] = append(out[l.Key], l.Value)
		case dirRemove:
			vals := out[l.Key]
			kept := vals[:0]
			for _, v := range vals {
				if v != l.Value {
					kept = append(kept, v)
				}
			}
			out[l.Key] = kept
		case dirClear:
			delete(out, l.Key)
		}
	}
	return out
}

// first returns the last-set single value for key, or "" if absent; rule
// keys and RemapTarget are single-valued in practice even though the
// underlying materialized map is a slice (append semantics still apply
// when a config uses "+SkipIf=" to OR in another predicate expression).
func first(m map[string][]string, key string) string {
	vals := m[key]
	if len(vals) == 0 {
		return ""
	}
	return vals[len(vals)-1]
}

// joined returns every value for key, comma-joined — the natural OR
// composition for a predicate expression assembled via repeated "+Key=".
func joined(m map[string][]string, key string) string {
	return strings.Join(m[key], ",")
}
