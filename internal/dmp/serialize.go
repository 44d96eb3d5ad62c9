package dmp

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// unescaper restores the subset of punctuation that net/url.QueryEscape
// percent-encodes but GNU-unidiff-style patch text leaves literal, so
// round-tripping through PatchToText/PatchFromText is byte-identical to
// what a human-edited .patch file would contain.
var unescaper = strings.NewReplacer(
	"%21", "!", "%7E", "~", "%27", "'",
	"%28", "(", "%29", ")", "%3B", ";",
	"%2F", "/", "%3F", "?", "%3A", ":",
	"%40", "@", "%26", "&", "%3D", "=",
	"%2B", "+", "%24", "$", "%2C", ",", "%23", "#", "%2A", "*",
)

// String renders a single hunk in GNU-unidiff-like form: a
// "@@ -start1,length1 +start2,length2 @@" header (1-based, with bare
// "N" when length is 1 and "N,0" when length is 0) followed by one
// percent-escaped line per diff, prefixed "-"/"+"/" ".
func (p Patch) String() string {
	coords1 := unidiffCoords(p.Start1, p.Length1)
	coords2 := unidiffCoords(p.Start2, p.Length2)

	var b strings.Builder
	b.WriteString("@@ -" + coords1 + " +" + coords2 + " @@\n")
	for _, d := range p.Diffs {
		switch d.Op {
		case DiffInsert:
			b.WriteByte('+')
		case DiffDelete:
			b.WriteByte('-')
		case DiffEqual:
			b.WriteByte(' ')
		}
		b.WriteString(strings.Replace(url.QueryEscape(d.Text), "+", " ", -1))
		b.WriteByte('\n')
	}
	return unescaper.Replace(b.String())
}

func unidiffCoords(start, length int) string {
	switch length {
	case 0:
		return strconv.Itoa(start) + ",0"
	case 1:
		return strconv.Itoa(start + 1)
	default:
		return strconv.Itoa(start+1) + "," + strconv.Itoa(length)
	}
}

// PatchToText renders a hunk list as a single patch-text blob.
func PatchToText(patches []Patch) string {
	var b strings.Builder
	for _, p := range patches {
		b.WriteString(p.String())
	}
	return b.String()
}

var patchHeader = regexp.MustCompile(`^@@ -(\d+),?(\d*) \+(\d+),?(\d*) @@$`)

// PatchFromText parses patch text produced by PatchToText (or an
// equivalent GNU-unidiff-style blob) back into a hunk list.
func PatchFromText(text string) ([]Patch, error) {
	if len(text) == 0 {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	var patches []Patch
	i := 0
	for i < len(lines) {
		m := patchHeader.FindStringSubmatch(lines[i])
		if m == nil {
			return nil, fmt.Errorf("dmp: invalid patch header: %q", lines[i])
		}
		p := NewPatch()
		p.Start1, _ = strconv.Atoi(m[1])
		switch {
		case m[2] == "":
			p.Start1--
			p.Length1 = 1
		case m[2] == "0":
			p.Length1 = 0
		default:
			p.Start1--
			p.Length1, _ = strconv.Atoi(m[2])
		}
		p.Start2, _ = strconv.Atoi(m[3])
		switch {
		case m[4] == "":
			p.Start2--
			p.Length2 = 1
		case m[4] == "0":
			p.Length2 = 0
		default:
			p.Start2--
			p.Length2, _ = strconv.Atoi(m[4])
		}
		i++

		for i < len(lines) {
			line := lines[i]
			if line == "" {
				i++
				continue
			}
			sign := line[0]
			if sign == '@' {
				break
			}
			body := strings.Replace(line[1:], "+", "%2b", -1)
			unescaped, err := url.QueryUnescape(body)
			if err != nil {
				return nil, fmt.Errorf("dmp: invalid patch body %q: %w", line, err)
			}
			switch sign {
			case '-':
				p.Diffs = append(p.Diffs, Diff{Op: DiffDelete, Text: unescaped})
			case '+':
				p.Diffs = append(p.Diffs, Diff{Op: DiffInsert, Text: unescaped})
			case ' ':
				p.Diffs = append(p.Diffs, Diff{Op: DiffEqual, Text: unescaped})
			default:
				return nil, fmt.Errorf("dmp: invalid patch line mode %q in %q", string(sign), line)
			}
			i++
		}
		patches = append(patches, p)
	}
	return patches, nil
}
