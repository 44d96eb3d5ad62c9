package injection

import (
	"sort"
	"strings"
)

// Boundaries returns the byte ranges, sorted by start offset, of every
// guarded region this plugin's tag matches in content: each outermost
// multiline Begin/End block, each singleline tagged line, and each
// nextline marker-plus-code-line pair. Ranges may overlap: a Begin or End
// line also matches the nextline marker form, so it is reported again
// together with the line that follows it. The patcher layer uses these to
// force a diff boundary at every injection seam so a guarded region never
// shares a hunk with unrelated surrounding text.
func (r *Regex) Boundaries(content string) [][2]int {
	lines := strings.Split(content, "\n")
	offsets := lineByteOffsets(lines)

	var spans [][2]int

	var stack []int
	for i, line := range lines {
		if r.endLine.MatchString(line) && len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				spans = append(spans, [2]int{offsets[top], offsets[i] + len(lines[i])})
			}
			continue
		}
		if r.beginLine.MatchString(line) {
			stack = append(stack, i)
		}
	}

	for _, m := range r.singleLine.FindAllStringIndex(content, -1) {
		spans = append(spans, [2]int{m[0], m[1]})
	}

	for i := 0; i < len(lines); i++ {
		if r.nextMarker.MatchString(lines[i]) && i+1 < len(lines) {
			spans = append(spans, [2]int{offsets[i], offsets[i+1] + len(lines[i+1])})
			i++
		}
	}

	sort.Slice(spans, func(a, b int) bool { return spans[a][0] < spans[b][0] })
	return spans
}

// lineByteOffsets returns the byte offset of the start of each line within
// the "\n"-joined text lines was split from.
func lineByteOffsets(lines []string) []int {
	offsets := make([]int, len(lines))
	off := 0
	for i, l := range lines {
		offsets[i] = off
		off += len(l) + 1
	}
	return offsets
}
