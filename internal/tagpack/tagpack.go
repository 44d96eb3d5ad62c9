// Package tagpack implements the comment-tag packer (component C3): it
// rewrites the guard comments surrounding an Insert diff between the
// canonical on-disk form ("// <Tag>: Begin") a serialized .patch file
// stores and the configured in-tree form a given engine installation
// actually expects, carrying named captures through a side channel so
// Unpack can reconstruct exactly what Pack saw.
package tagpack

import (
	"fmt"
	"regexp"
	"strings"

	"crysknife/internal/injection"
)

// Field is one of a ConfiguredFormat's four slots (Prefix/Suffix/Begin/
// End): a regex that recognizes the in-tree spelling, with capture groups
// available to the reconstructor template, and a template used to rebuild
// that spelling from canonical text plus the variable map.
type Field struct {
	// Pattern is matched against the in-tree source at Pack time. An
	// empty Pattern matches the empty string (the field is absent).
	Pattern *regexp.Regexp
	// Template reconstructs the in-tree spelling on Unpack. It may
	// reference ${Name} (a named capture group from another field, or a
	// variable) and ${Name|Fallback}.
	Template string
}

// ConfiguredFormat is the in-tree regex/template quadruple the on-disk
// CommentTagFormat packs to and unpacks from. Anastrophe swaps the
// expected ordering of Tag and Suffix around Begin/End, for engines whose
// house style puts the suffix before the tag.
type ConfiguredFormat struct {
	Prefix, Suffix, Begin, End Field
	Anastrophe                bool
}

// canonicalToken renders the on-disk form of one guard comment:
// "// <Tag>", optionally with ": Begin" or ": End" appended.
func canonicalToken(tag string, marker injection.Form, isBegin, isEnd bool) string {
	var b strings.Builder
	b.WriteString("// ")
	b.WriteString(tag)
	switch {
	case isBegin:
		b.WriteString(": Begin")
	case isEnd:
		b.WriteString(": End")
	}
	return b.String()
}

// Capture is one named regex group captured during Pack, preserved so
// Unpack (or a later re-pack) can reproduce the exact in-tree spelling.
type Capture struct {
	Name  string
	Value string
}

// PackResult is the outcome of packing one occurrence: the canonical
// replacement text, the captures sidelined for storage alongside the
// hunk (empty when SkipCaptures is set), and the signed character delta
// (len(canonical) - len(match)) the caller applies to length2/start2 of
// any diff downstream of the match.
type PackResult struct {
	Canonical string
	Captures  []Capture
	Delta     int
}

// inTreeRegex composes the single regex a Pack pass scans with:
// <PrefixRE><Tag?><SuffixRE>(Begin|End)?, honoring Anastrophe's swap of
// Tag and Suffix around the Begin/End marker.
func (f ConfiguredFormat) inTreeRegex() *regexp.Regexp {
	tag := `(?P<PackTag>[^\s]+?)`
	prefix := patternSource(f.Prefix.Pattern)
	suffix := patternSource(f.Suffix.Pattern)
	begin := patternSource(f.Begin.Pattern)
	end := patternSource(f.End.Pattern)

	var body string
	if f.Anastrophe {
		body = prefix + suffix + tag + `(?P<PackMarker>` + begin + `|` + end + `)?`
	} else {
		body = prefix + tag + suffix + `(?P<PackMarker>` + begin + `|` + end + `)?`
	}
	return regexp.MustCompile(`(?m)` + body)
}

func patternSource(re *regexp.Regexp) string {
	if re == nil {
		return ""
	}
	return re.String()
}

// Pack scans text (in-tree source surrounding an Insert diff) for every
// match of format's composed regex and replaces it with the canonical
// on-disk form, returning the rewritten text and the per-match results in
// source order. When skipCaptures is true the side channel is empty
// (used when serializing the published, non-protected .patch).
func Pack(text string, format ConfiguredFormat, skipCaptures bool) (string, []PackResult) {
	re := format.inTreeRegex()
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text, nil
	}

	var b strings.Builder
	var results []PackResult
	last := 0
	names := re.SubexpNames()

	for _, m := range matches {
		start, end := m[0], m[1]
		b.WriteString(text[last:start])

		tag := subexpByName(text, m, names, "PackTag")
		marker := subexpByName(text, m, names, "PackMarker")
		isBegin := marker != "" && format.Begin.Pattern != nil && format.Begin.Pattern.MatchString(marker)
		isEnd := marker != "" && !isBegin && format.End.Pattern != nil && format.End.Pattern.MatchString(marker)

		canon := canonicalToken(tag, injection.Multiline, isBegin, isEnd)
		b.WriteString(canon)

		var captures []Capture
		if !skipCaptures {
			for i, name := range names {
				if name == "" || name == "PackTag" || name == "PackMarker" {
					continue
				}
				if m[2*i] < 0 {
					continue
				}
				captures = append(captures, Capture{Name: name, Value: text[m[2*i]:m[2*i+1]]})
			}
		}
		results = append(results, PackResult{
			Canonical: canon,
			Captures:  captures,
			Delta:     len(canon) - (end - start),
		})
		last = end
	}
	b.WriteString(text[last:])
	return b.String(), results
}

func subexpByName(text string, m []int, names []string, name string) string {
	for i, n := range names {
		if n == name && m[2*i] >= 0 {
			return text[m[2*i]:m[2*i+1]]
		}
	}
	return ""
}

// canonicalTokenRegex recognizes a canonical on-disk guard comment,
// capturing Tag and an optional ": Begin"/": End" marker.
var canonicalTokenRegex = regexp.MustCompile(`// (?P<Tag>[^\s:]+)(?P<Marker>: Begin|: End)?`)

// UnpackWarning reports a variable reference Unpack could not resolve; per
// spec §4.3/§7 this is a Recoverable-warn, not fatal, and the literal
// "${Name}" text is left in place.
type UnpackWarning struct {
	Name string
}

func (w UnpackWarning) Error() string {
	return fmt.Sprintf("tagpack: unresolved variable %q", w.Name)
}

// Unpack reverses Pack: every canonical guard comment in text is replaced
// by format's reconstructor template, with ${Name} and ${Name|Fallback}
// expanded against the match's Tag and its captures first and vars
// second, consuming captures in the same order Pack produced them.
func Unpack(text string, format ConfiguredFormat, vars map[string]string, captures [][]Capture) (string, []UnpackWarning) {
	var warnings []UnpackWarning
	idx := 0

	result := canonicalTokenRegex.ReplaceAllStringFunc(text, func(match string) string {
		sub := canonicalTokenRegex.FindStringSubmatch(match)
		tag := sub[1]
		marker := sub[2]

		var field Field
		switch marker {
		case ": Begin":
			field = format.Begin
		case ": End":
			field = format.End
		default:
			field = format.Prefix
		}

		local := map[string]string{"Tag": tag}
		if idx < len(captures) {
			for _, c := range captures[idx] {
				local[c.Name] = c.Value
			}
		}
		idx++

		rendered, warns := expandTemplate(field.Template, local, vars)
		warnings = append(warnings, warns...)
		if rendered == "" && field.Template == "" {
			return match
		}
		return rendered
	})
	return result, warnings
}

var varRefRegex = regexp.MustCompile(`\$\{([^}|]+)(?:\|([^}]*))?\}`)

// expandTemplate substitutes ${Name} and ${Name|Fallback} in tmpl,
// preferring a local (per-match capture) binding over the shared variable
// map. An unresolved reference with no fallback warns and is left
// literal.
func expandTemplate(tmpl string, local, vars map[string]string) (string, []UnpackWarning) {
	var warnings []UnpackWarning
	out := varRefRegex.ReplaceAllStringFunc(tmpl, func(ref string) string {
		m := varRefRegex.FindStringSubmatch(ref)
		name, fallback, hasFallback := m[1], m[2], strings.Contains(ref, "|")
		if v, ok := local[name]; ok {
			return v
		}
		if v, ok := vars[name]; ok {
			return v
		}
		if hasFallback {
			return fallback
		}
		warnings = append(warnings, UnpackWarning{Name: name})
		return ref
	})
	return out, warnings
}
