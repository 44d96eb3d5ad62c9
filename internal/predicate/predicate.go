// Package predicate evaluates the boolean expressions config rules and
// decorators gate behavior on (component C7): a comma-separated list of
// terms, each a keyword with a "|"-separated value list, combined with
// OR-by-default/AND-on-Conjunction logic at both the per-term and the
// root scope.
package predicate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"crysknife/internal/engineversion"
)

// Context supplies the evaluation-time facts a predicate expression reads:
// the engine source root for TargetExists, and the current engine version
// for NewerThan. Both are process-global per spec §5; Context exists so
// tests can substitute fakes without touching the global state.
type Context interface {
	EngineRoot() string
	CurrentVersion() engineversion.Version
}

// Global is the Context backed by the process-global engineversion state
// and a fixed engine root, the shape every ConfigSystem uses in practice.
type Global struct {
	Root string
}

func (g Global) EngineRoot() string                     { return g.Root }
func (g Global) CurrentVersion() engineversion.Version   { return engineversion.Current() }

// Warning is a non-fatal evaluation issue (unknown keyword, unparseable
// value) logged by the caller per spec §7's Recoverable-warn category.
type Warning struct {
	Term string
	Msg  string
}

func (w Warning) Error() string { return fmt.Sprintf("predicate: %s: %s", w.Term, w.Msg) }

const conjunctionValue = "conjunction"

// Eval evaluates expr against target, returning the boolean result and any
// non-fatal warnings encountered along the way (unknown terms evaluate to
// false rather than aborting).
func Eval(ctx Context, expr, target string) (bool, []Warning) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return false, nil
	}

	terms := splitTop(expr, ',')
	var warnings []Warning
	rootConjunction := false
	var results []bool

	for _, raw := range terms {
		term := strings.TrimSpace(raw)
		if term == "" {
			continue
		}
		if strings.EqualFold(term, "Conjunction") {
			rootConjunction = true
			continue
		}
		val, warns := evalTerm(ctx, term, target)
		warnings = append(warnings, warns...)
		results = append(results, val)
	}

	return combine(results, rootConjunction), warnings
}

// evalTerm evaluates one comma-delimited term: either a bare "Always"/
// "Never" constant, or "Keyword:v1|v2|...". Always and Never also accept
// the keyword form ("Always:1"), where each value is the constant itself,
// negated when it carries a "!".
func evalTerm(ctx Context, term string, target string) (bool, []Warning) {
	switch {
	case strings.EqualFold(term, "Always"):
		return true, nil
	case strings.EqualFold(term, "Never"):
		return false, nil
	}

	keyword, rest, ok := strings.Cut(term, ":")
	if !ok {
		return false, []Warning{{Term: term, Msg: "missing ':' after keyword"}}
	}
	keyword = strings.TrimSpace(keyword)
	values := splitTop(rest, '|')

	conjunction := false
	var cleaned []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if strings.EqualFold(stripNegation(v), conjunctionValue) {
			conjunction = true
			continue
		}
		cleaned = append(cleaned, v)
	}

	var warnings []Warning
	var results []bool
	for _, v := range cleaned {
		negate := strings.HasPrefix(v, "!")
		raw := strings.TrimPrefix(v, "!")
		val, warn := evalValue(ctx, keyword, raw, target)
		if warn != nil {
			warnings = append(warnings, *warn)
		}
		if negate {
			val = !val
		}
		results = append(results, val)
	}

	return combine(results, conjunction), warnings
}

// evalValue evaluates a single (already-negation-stripped) value against
// one keyword's semantics.
func evalValue(ctx Context, keyword, value, target string) (bool, *Warning) {
	switch strings.ToLower(keyword) {
	case "always":
		return true, nil

	case "never":
		return false, nil

	case "namematches":
		re, err := regexp.Compile("(?i)" + value)
		if err != nil {
			return false, &Warning{Term: keyword + ":" + value, Msg: "invalid regexp: " + err.Error()}
		}
		return re.MatchString(filepath.Base(target)), nil

	case "targetexists":
		path := value
		if ctx != nil && ctx.EngineRoot() != "" {
			path = filepath.Join(ctx.EngineRoot(), filepath.FromSlash(value))
		}
		_, err := os.Stat(path)
		return err == nil, nil

	case "istruthy":
		return isTruthy(value), nil

	case "newerthan":
		v, err := engineversion.Parse(value)
		if err != nil {
			return false, &Warning{Term: keyword + ":" + value, Msg: err.Error()}
		}
		if ctx == nil {
			return false, &Warning{Term: keyword + ":" + value, Msg: "no context for current engine version"}
		}
		return ctx.CurrentVersion().NewerThan(v), nil

	default:
		return false, &Warning{Term: keyword, Msg: "unknown predicate keyword"}
	}
}

var comparisonOps = []string{">=", "<=", "==", "!=", ">", "<"}

// isTruthy implements spec §4.7's IsTruthy: numeric "> 0", a "T"/"On"
// prefix (case-insensitive), or a binary comparison between two operands.
func isTruthy(value string) bool {
	value = strings.TrimSpace(value)
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return n > 0
	}
	lower := strings.ToLower(value)
	if strings.HasPrefix(lower, "t") || strings.HasPrefix(lower, "on") {
		return true
	}
	for _, op := range comparisonOps {
		if idx := strings.Index(value, op); idx >= 0 {
			left := strings.TrimSpace(value[:idx])
			right := strings.TrimSpace(value[idx+len(op):])
			return compareOperands(left, op, right)
		}
	}
	return false
}

func compareOperands(left, op, right string) bool {
	lf, lerr := strconv.ParseFloat(left, 64)
	rf, rerr := strconv.ParseFloat(right, 64)
	if lerr == nil && rerr == nil {
		switch op {
		case "==":
			return lf == rf
		case "!=":
			return lf != rf
		case ">":
			return lf > rf
		case "<":
			return lf < rf
		case ">=":
			return lf >= rf
		case "<=":
			return lf <= rf
		}
	}
	switch op {
	case "==":
		return left == right
	case "!=":
		return left != right
	case ">":
		return left > right
	case "<":
		return left < right
	case ">=":
		return left >= right
	case "<=":
		return left <= right
	}
	return false
}

func stripNegation(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "!")
}

// combine ORs results together, or ANDs them when conjunction is set. An
// empty result set evaluates to false, matching an empty term list
// contributing nothing truthy.
func combine(results []bool, conjunction bool) bool {
	if len(results) == 0 {
		return false
	}
	if conjunction {
		for _, r := range results {
			if !r {
				return false
			}
		}
		return true
	}
	for _, r := range results {
		if r {
			return true
		}
	}
	return false
}

// splitTop splits s on sep at the top level only (no nesting in this
// grammar, but trims surrounding whitespace per element and drops empties
// produced by trailing separators).
func splitTop(s string, sep byte) []string {
	parts := strings.Split(s, string(sep))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
