package pconfig

import (
	"fmt"
	"regexp"
	"strings"

	"crysknife/internal/predicate"
)

// varRefRegex recognizes "${Name}" and "${Name|Fallback}" references
// inside a raw variable value.
var varRefRegex = regexp.MustCompile(`\$\{([^}|]+)(?:\|([^}]*))?\}`)

// predicateRefRegex recognizes a value that is entirely an
// "@Predicate(expr)" expression (spec §4.6: "a variable assigned a
// predicate expression is resolved to 1/0 once during config build").
var predicateRefRegex = regexp.MustCompile(`^@Predicate\((.*)\)$`)

// resolveVariables recursively substitutes ${Name}/${Name|Fallback}
// references in raw against itself, resolves any value that is entirely
// an @Predicate(...) expression to "1"/"0", and detects substitution
// cycles as a fatal error. An unresolved reference with no fallback
// warns and is left as literal text, per spec §7.
func resolveVariables(raw map[string]string, ctx predicate.Context) (map[string]string, []predicate.Warning, error) {
	resolved := map[string]string{}
	var warnings []predicate.Warning
	var cycleErr error

	var resolve func(name string, visiting map[string]bool) (string, error)
	resolve = func(name string, visiting map[string]bool) (string, error) {
		if v, ok := resolved[name]; ok {
			return v, nil
		}
		value, known := raw[name]
		if !known {
			return "", fmt.Errorf("pconfig: unknown variable %q", name)
		}
		if visiting[name] {
			cycleErr = fmt.Errorf("pconfig: cyclic variable reference at %q", name)
			return "", cycleErr
		}
		visiting[name] = true
		defer delete(visiting, name)

		substituted := varRefRegex.ReplaceAllStringFunc(value, func(ref string) string {
			m := varRefRegex.FindStringSubmatch(ref)
			refName, fallback, hasFallback := m[1], m[2], strings.Contains(ref, "|")
			v, err := resolve(refName, visiting)
			if err == nil {
				return v
			}
			if hasFallback {
				return fallback
			}
			warnings = append(warnings, predicate.Warning{Term: refName, Msg: "unresolved variable, no fallback"})
			return ref
		})
		if cycleErr != nil {
			return "", cycleErr
		}

		if m := predicateRefRegex.FindStringSubmatch(strings.TrimSpace(substituted)); m != nil {
			ok, w := predicate.Eval(ctx, m[1], "")
			warnings = append(warnings, w...)
			if ok {
				substituted = "1"
			} else {
				substituted = "0"
			}
		}

		resolved[name] = substituted
		return substituted, nil
	}

	for name := range raw {
		if _, err := resolve(name, map[string]bool{}); err != nil {
			return nil, warnings, err
		}
	}
	return resolved, warnings, nil
}
