package injection

import (
	"regexp"
	"strings"
)

// Composer runs several plugins' Regex matchers over one file, as when a
// patch root pulls in dependency plugins that each own a tag in the same
// engine source.
type Composer struct {
	Regexes []*Regex
}

// NewComposer compiles one Regex per plugin, all sharing format.
func NewComposer(format CommentTagFormat, plugins ...string) *Composer {
	c := &Composer{Regexes: make([]*Regex, len(plugins))}
	for i, p := range plugins {
		c.Regexes[i] = Compile(p, format)
	}
	return c
}

// Unpatch intersects the effect of every composed plugin's Unpatch by
// applying them one after another.
func (c *Composer) Unpatch(content string) string {
	for _, r := range c.Regexes {
		content = r.Unpatch(content)
	}
	return content
}

// ClearResidual blanks out any guarded region belonging to a plugin other
// than owner (each name in knownPlugins is compiled and cleared in
// turn), so that diff
// computation for owner's patch operates against owner-local canonical
// text undisturbed by sibling plugins' tags. format must match the format
// those sibling plugins were woven with.
func ClearResidual(content, owner string, format CommentTagFormat, knownPlugins []string) string {
	for _, p := range knownPlugins {
		if p == owner {
			continue
		}
		content = Compile(p, format).clearAll(content)
	}
	return content
}

// clearAll behaves like Unpatch but always empties the guarded region,
// regardless of deletion-restore marking: residual sibling tags are never
// meant to surface in the owner's canonical text.
func (r *Regex) clearAll(content string) string {
	for {
		lines := strings.Split(content, "\n")
		begin, end, _, ok := r.findInnermostRegion(lines)
		if !ok {
			break
		}
		var out []string
		out = append(out, lines[:begin]...)
		out = append(out, lines[end+1:]...)
		content = strings.Join(out, "\n")
	}
	content = r.replaceLineMatches(content, r.singleLine, func(m []string) string { return "" })
	content = clearNextlineMarkers(content, r.nextMarker)
	return content
}

func clearNextlineMarkers(content string, marker *regexp.Regexp) string {
	lines := strings.Split(content, "\n")
	var out []string
	for i := 0; i < len(lines); i++ {
		if marker.MatchString(lines[i]) && i+1 < len(lines) {
			i++ // drop marker and the code line it guards
			continue
		}
		out = append(out, lines[i])
	}
	return strings.Join(out, "\n")
}
