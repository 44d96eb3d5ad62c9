package pconfig

import (
	"fmt"
	"sort"
	"strings"

	"crysknife/internal/predicate"
)

const localConfigPredicateVar = "CRYSKNIFE_LOCAL_CONFIG_PREDICATE"

// ConfigSystem is one plugin's view of the configuration: its resolved
// variable map, the merged directory hierarchy of Skip/Flatten/Remap
// rules, and the dependency plugins it pulls in (spec §3/§4.6).
type ConfigSystem struct {
	Plugin       string
	Vars         map[string]string
	Hierarchy    *Hierarchy
	Dependencies map[string]string // dependency plugin name -> overrides text
	Children     map[string]*ConfigSystem

	Warnings []predicate.Warning
}

// Build parses baseText (the repo-wide BaseCrysknife.ini, may be empty)
// followed by mainText (the plugin's own Crysknife.ini) into one
// ConfigSystem. overrides is appended after mainText as if it were one
// more, highest-priority section block — the mechanism [Dependencies]
// entries use to parameterize a child plugin's config without it owning
// a separate overrides file.
//
// loadDependency resolves a dependency plugin name to its own
// Crysknife.ini text so its ConfigSystem can be built recursively;
// passing nil disables recursive child construction (Dependencies is
// still populated, just not Children).
func Build(plugin, baseText, mainText, overrides string, ctx predicate.Context, loadDependency func(name string) (string, error)) (*ConfigSystem, error) {
	cs := &ConfigSystem{
		Plugin:       plugin,
		Vars:         map[string]string{},
		Hierarchy:    NewHierarchy(),
		Dependencies: map[string]string{},
		Children:     map[string]*ConfigSystem{},
	}

	rawVars := map[string]string{}
	for _, text := range []string{baseText, mainText, overrides} {
		if strings.TrimSpace(text) == "" {
			continue
		}
		sections, err := parseINI(text)
		if err != nil {
			return nil, err
		}
		if err := cs.ingest(sections, rawVars); err != nil {
			return nil, err
		}
	}

	vars, warnings, err := resolveVariables(rawVars, ctx)
	if err != nil {
		return nil, fmt.Errorf("pconfig: %s: %w", plugin, err)
	}
	cs.Vars = vars
	cs.Warnings = append(cs.Warnings, warnings...)

	if loadDependency != nil {
		// Deterministic order (spec §5): dependency dispatch must not
		// depend on map iteration order.
		names := make([]string, 0, len(cs.Dependencies))
		for name := range cs.Dependencies {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			childText, err := loadDependency(name)
			if err != nil {
				return nil, fmt.Errorf("pconfig: loading dependency %q: %w", name, err)
			}
			child, err := Build(name, "", childText, cs.Dependencies[name], ctx, loadDependency)
			if err != nil {
				return nil, err
			}
			cs.Children[name] = child
		}
	}

	return cs, nil
}

// ingest folds one parsed INI file's sections into cs: [Variables] and
// [Dependencies] are special, everything else becomes a hierarchy
// Section. [Children] (the residual-tag plugin cache) is recognized and
// skipped here; ParseCache reads it from CrysknifeCache.ini.
func (cs *ConfigSystem) ingest(sections []rawSection, rawVars map[string]string) error {
	for _, rs := range sections {
		switch {
		case hasName(rs.Names, "Variables"):
			for _, l := range rs.Lines {
				if l.Directive == dirClear {
					delete(rawVars, l.Key)
					continue
				}
				rawVars[l.Key] = l.Value
			}
		case hasName(rs.Names, "Dependencies"):
			for _, l := range rs.Lines {
				if l.Directive == dirClear {
					delete(cs.Dependencies, l.Key)
					continue
				}
				cs.Dependencies[l.Key] = l.Value
			}
		case hasName(rs.Names, "Children"):
			// Cached residual-tag plugin list; read by ParseCache, not
			// part of the rule hierarchy.
			continue
		default:
			cs.Hierarchy.Insert(buildSection(rs))
		}
	}
	return nil
}

func hasName(names []string, want string) bool {
	for _, n := range names {
		if strings.EqualFold(n, want) {
			return true
		}
	}
	return false
}

// SelectLocalConfig evaluates CRYSKNIFE_LOCAL_CONFIG_PREDICATE out of
// each candidate BaseCrysknife<Tag>Local.ini's [Variables] section,
// returning the one active tag. More than one active candidate is fatal
// (spec §4.6/§6.5: exit code 1).
func SelectLocalConfig(candidates map[string]string, ctx predicate.Context) (string, error) {
	tags := make([]string, 0, len(candidates))
	for tag := range candidates {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	var active []string
	for _, tag := range tags {
		sections, err := parseINI(candidates[tag])
		if err != nil {
			return "", fmt.Errorf("pconfig: local config %q: %w", tag, err)
		}
		expr := ""
		for _, rs := range sections {
			if !hasName(rs.Names, "Variables") {
				continue
			}
			m := materialize(rs.Lines)
			expr = first(m, localConfigPredicateVar)
		}
		if expr == "" {
			continue
		}
		if ok, _ := predicate.Eval(ctx, expr, ""); ok {
			active = append(active, tag)
		}
	}

	switch len(active) {
	case 0:
		return "", nil
	case 1:
		return active[0], nil
	default:
		return "", fmt.Errorf("pconfig: multiple active local configs: %v", active)
	}
}

// Cache is the on-disk CrysknifeCache.ini content: the active
// local-config suffix (so a later invocation doesn't re-evaluate
// CRYSKNIFE_LOCAL_CONFIG_PREDICATE) and the residual-tag plugin list
// injection.ClearResidual needs (spec §4.2, §4.6, §6.1).
type Cache struct {
	LocalConfigSuffix string
	Children          []string
}

// String renders the cache in the same INI dialect Build reads, so it
// round-trips through ParseCache.
func (c Cache) String() string {
	var b strings.Builder
	b.WriteString("[Variables]\n")
	if c.LocalConfigSuffix != "" {
		fmt.Fprintf(&b, "LocalConfigSuffix=%s\n", c.LocalConfigSuffix)
	}
	if len(c.Children) > 0 {
		b.WriteString("[Children]\n")
		for _, child := range c.Children {
			fmt.Fprintf(&b, "%s=1\n", child)
		}
	}
	return b.String()
}

// ParseCache reads a CrysknifeCache.ini previously written by Cache.String.
func ParseCache(text string) (Cache, error) {
	sections, err := parseINI(text)
	if err != nil {
		return Cache{}, err
	}
	var c Cache
	for _, rs := range sections {
		switch {
		case hasName(rs.Names, "Variables"):
			m := materialize(rs.Lines)
			c.LocalConfigSuffix = first(m, "LocalConfigSuffix")
		case hasName(rs.Names, "Children"):
			for _, l := range rs.Lines {
				c.Children = append(c.Children, l.Key)
			}
		}
	}
	return c, nil
}
