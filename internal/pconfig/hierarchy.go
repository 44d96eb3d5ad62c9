package pconfig

import (
	"path"
	"strings"

	"crysknife/internal/predicate"
)

// Rule is a two-domain predicate: Base may only be overruled by another
// Base-domain rule, so a repo-wide BaseCrysknife.ini default resists a
// per-plugin override written in the user domain. Evaluation is
// base.eval(target) OR user.eval(target) (spec §4.6).
type Rule struct {
	Base string
	User string
}

// Eval evaluates both domains and ORs them, collecting warnings from
// either side.
func (r Rule) Eval(ctx predicate.Context, target string) (bool, []predicate.Warning) {
	var warnings []predicate.Warning
	result := false
	if r.Base != "" {
		ok, w := predicate.Eval(ctx, r.Base, target)
		warnings = append(warnings, w...)
		result = result || ok
	}
	if r.User != "" {
		ok, w := predicate.Eval(ctx, r.User, target)
		warnings = append(warnings, w...)
		result = result || ok
	}
	return result, warnings
}

// merge combines r with an ancestor rule so the ancestor's predicate is
// also considered at this section, without letting a Base-domain
// ancestor rule migrate into the User domain (which would let a
// per-plugin override reach above the config that guarded it with
// ^Base).
func (r Rule) merge(ancestor Rule) Rule {
	return Rule{
		Base: orExpr(ancestor.Base, r.Base),
		User: orExpr(ancestor.User, r.User),
	}
}

func orExpr(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "," + b
	}
}

// Section is one "[Name|Name|...]" INI block's rule content: the set of
// target path prefixes it applies to, plus the Skip/Flatten/Remap rules
// and remap destination (spec §3/§4.6). "Global" (or an empty header)
// matches every path.
type Section struct {
	Prefixes    []string
	SkipIf      Rule
	FlattenIf   Rule
	RemapIf     Rule
	RemapTarget string
}

// buildSection turns one rawSection into a Section, splitting each rule
// key's value into the Base or User domain by its "^Base" prefix.
func buildSection(rs rawSection) Section {
	m := materialize(rs.Lines)
	sec := Section{RemapTarget: first(m, "RemapTarget")}

	for _, name := range rs.Names {
		if strings.EqualFold(name, "Global") {
			sec.Prefixes = append(sec.Prefixes, "")
		} else {
			sec.Prefixes = append(sec.Prefixes, normalizePrefix(name))
		}
	}

	assign := func(target *Rule, key string) {
		if v := joined(m, key); v != "" {
			target.User = v
		}
		if v := joined(m, "^Base"+key); v != "" {
			target.Base = v
		}
	}
	assign(&sec.SkipIf, "SkipIf")
	assign(&sec.FlattenIf, "FlattenIf")
	assign(&sec.RemapIf, "RemapIf")
	return sec
}

func normalizePrefix(p string) string {
	return strings.Trim(filepathToSlash(p), "/")
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// node is one component of the directory trie; at most one Section is
// attached per node (the section that named this exact path prefix).
type node struct {
	children map[string]*node
	section  *Section
	effSkip  Rule
	effFlat  Rule
	effRemap Rule
	effTarget string
	hasSection bool
}

// Hierarchy is the trie on path components described by spec §3: each
// node may carry one section, and a child section's rules are the
// nearest ancestor's rules prepended exactly once (merged at Insert
// time, not re-walked on every lookup).
type Hierarchy struct {
	root *node
}

// NewHierarchy returns an empty trie.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{root: &node{children: map[string]*node{}}}
}

// Insert adds sec at every one of its prefixes. A section inherits only
// from ancestors already inserted, so nearest-ancestor merging sees a
// fully-built ancestor only when sections arrive outermost-first. Build
// inserts them in file order (BaseCrysknife.ini before the per-plugin
// config, each file top to bottom) and does not reorder them.
func (h *Hierarchy) Insert(sec Section) {
	for _, prefix := range sec.Prefixes {
		h.insertOne(prefix, sec)
	}
}

func (h *Hierarchy) insertOne(prefix string, sec Section) {
	parts := splitPrefix(prefix)
	cur := h.root
	ancestorSkip, ancestorFlat, ancestorRemap := Rule{}, Rule{}, Rule{}
	ancestorTarget := ""
	if cur.hasSection {
		ancestorSkip, ancestorFlat, ancestorRemap, ancestorTarget = cur.effSkip, cur.effFlat, cur.effRemap, cur.effTarget
	}

	for _, part := range parts {
		child, ok := cur.children[part]
		if !ok {
			child = &node{children: map[string]*node{}}
			cur.children[part] = child
		}
		if cur.hasSection {
			ancestorSkip, ancestorFlat, ancestorRemap, ancestorTarget = cur.effSkip, cur.effFlat, cur.effRemap, cur.effTarget
		}
		cur = child
	}

	s := sec
	cur.section = &s
	cur.hasSection = true
	cur.effSkip = sec.SkipIf.merge(ancestorSkip)
	cur.effFlat = sec.FlattenIf.merge(ancestorFlat)
	cur.effRemap = sec.RemapIf.merge(ancestorRemap)
	cur.effTarget = sec.RemapTarget
	if cur.effTarget == "" {
		cur.effTarget = ancestorTarget
	}
}

func splitPrefix(prefix string) []string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return nil
	}
	return strings.Split(prefix, "/")
}

// deepestMatch finds the node for the longest prefix of target's
// directory components that has a section attached, walking from the
// trie root. The root's own section (if any, i.e. a Global rule) is the
// fallback when nothing deeper matches.
func (h *Hierarchy) deepestMatch(target string) *node {
	parts := splitPrefix(path.Dir(normalizePrefix(target)))
	if path.Dir(normalizePrefix(target)) == "." {
		parts = nil
	}
	cur := h.root
	var best *node
	if cur.hasSection {
		best = cur
	}
	for _, part := range parts {
		next, ok := cur.children[part]
		if !ok {
			break
		}
		cur = next
		if cur.hasSection {
			best = cur
		}
	}
	return best
}

// Resolution is the outcome of resolving one path against the hierarchy.
type Resolution struct {
	Skipped bool
	Dest    string
}

// Resolve implements spec §4.6: find the deepest matching node, then
// evaluate Skip, Flatten, Remap in that order. Remap combines with
// Flatten by taking RemapTarget/(flatten ? basename(target) : target);
// with only Flatten the destination is prefix/basename(target); with
// neither, identity. isPatchFile appends a ".patch" suffix to dest (not
// to the lookup target) so path-based rules downstream of remap can
// still discriminate, per §4.6.
func (h *Hierarchy) Resolve(ctx predicate.Context, target string, isPatchFile bool) (Resolution, []predicate.Warning) {
	target = normalizePrefix(target)
	n := h.deepestMatch(target)
	if n == nil {
		return Resolution{Dest: maybeSuffix(target, isPatchFile)}, nil
	}

	var warnings []predicate.Warning
	if skip, w := n.effSkip.Eval(ctx, target); skip {
		warnings = append(warnings, w...)
		return Resolution{Skipped: true}, warnings
	} else {
		warnings = append(warnings, w...)
	}

	flatten, w := n.effFlat.Eval(ctx, target)
	warnings = append(warnings, w...)
	remap, w := n.effRemap.Eval(ctx, target)
	warnings = append(warnings, w...)

	var dest string
	switch {
	case remap:
		base := target
		if flatten {
			base = path.Base(target)
		}
		dest = path.Join(n.effTarget, base)
	case flatten:
		dest = path.Join(prefixOf(n), path.Base(target))
	default:
		dest = target
	}
	return Resolution{Dest: maybeSuffix(dest, isPatchFile)}, warnings
}

func prefixOf(n *node) string {
	if n.section == nil {
		return ""
	}
	if len(n.section.Prefixes) > 0 {
		return n.section.Prefixes[0]
	}
	return ""
}

func maybeSuffix(p string, isPatchFile bool) string {
	if isPatchFile && !strings.HasSuffix(p, ".patch") {
		return p + ".patch"
	}
	return p
}
