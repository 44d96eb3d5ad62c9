// Package decorator parses and applies the hunk-local @Crysknife(...)
// directives described by spec component C4: per-hunk match-direction and
// match-length overrides, and engine-version gates that flip a hunk's
// Skip flag.
package decorator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"crysknife/internal/dmp"
	"crysknife/internal/engineversion"
)

// Directive is one parsed "Key=Value" clause from inside a single
// @Crysknife(...) call.
type Directive struct {
	Key   string
	Value string
}

var crysknifeCall = regexp.MustCompile(`@Crysknife\(([^)]*)\)`)

// Extract finds every @Crysknife(...) occurrence in text (an Insert
// diff's content, or the surrounding guarded block) and returns the
// flattened, in-order list of directives across all occurrences.
func Extract(text string) []Directive {
	var out []Directive
	for _, m := range crysknifeCall.FindAllStringSubmatch(text, -1) {
		for _, clause := range strings.Split(m[1], ",") {
			clause = strings.TrimSpace(clause)
			if clause == "" {
				continue
			}
			key, value, ok := strings.Cut(clause, "=")
			if !ok {
				out = append(out, Directive{Key: strings.TrimSpace(clause)})
				continue
			}
			out = append(out, Directive{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)})
		}
	}
	return out
}

// Decoration accumulates the directives seen for one hunk before they are
// attached to a dmp.Patch. Conflicting assignments across multiple
// directives in the same hunk are a fatal error (spec §7); re-asserting
// an identical value is a no-op.
type Decoration struct {
	contextDir    dmp.ContextDir
	contextDirSet bool
	contextLen    int
	contextLenSet bool
	skip          dmp.Skip

	Warnings []string
}

// NewDecoration returns an empty accumulator.
func NewDecoration() *Decoration {
	return &Decoration{skip: dmp.SkipUnspecified}
}

// Apply folds one directive into d, using current as the engine version
// EngineNewerThan/EngineOlderThan gates compare against. Unknown keys are
// recorded as warnings, never an error; conflicting known directives
// return an error.
func (d *Decoration) Apply(dir Directive, current engineversion.Version) error {
	switch dir.Key {
	case "MatchContext":
		cd, err := parseContextDir(dir.Value)
		if err != nil {
			return err
		}
		if d.contextDirSet && d.contextDir != cd {
			return fmt.Errorf("decorator: conflicting MatchContext directives in one hunk (%v vs %v)", d.contextDir, cd)
		}
		d.contextDir, d.contextDirSet = cd, true

	case "MatchLength":
		n, err := strconv.Atoi(dir.Value)
		if err != nil {
			return fmt.Errorf("decorator: invalid MatchLength=%q: %w", dir.Value, err)
		}
		if d.contextLenSet && d.contextLen != n {
			return fmt.Errorf("decorator: conflicting MatchLength directives in one hunk (%d vs %d)", d.contextLen, n)
		}
		d.contextLen, d.contextLenSet = n, true

	case "EngineNewerThan", "EngineOlderThan":
		v, err := engineversion.Parse(dir.Value)
		if err != nil {
			return fmt.Errorf("decorator: invalid %s=%q: %w", dir.Key, dir.Value, err)
		}
		var skip dmp.Skip
		if dir.Key == "EngineNewerThan" {
			skip = boolSkip(!current.NewerThan(v))
		} else {
			skip = boolSkip(current.NewerThan(v))
		}
		if d.skip != dmp.SkipUnspecified && d.skip != skip {
			return fmt.Errorf("decorator: conflicting engine-version gates in one hunk")
		}
		d.skip = skip

	default:
		d.Warnings = append(d.Warnings, fmt.Sprintf("unknown @Crysknife directive %q", dir.Key))
	}
	return nil
}

func boolSkip(skip bool) dmp.Skip {
	if skip {
		return dmp.SkipTrue
	}
	return dmp.SkipFalse
}

func parseContextDir(v string) (dmp.ContextDir, error) {
	switch v {
	case "Upper":
		return dmp.ContextUpper, nil
	case "Lower":
		return dmp.ContextLower, nil
	case "All":
		return dmp.ContextUpper | dmp.ContextLower, nil
	default:
		return 0, fmt.Errorf("decorator: invalid MatchContext=%q", v)
	}
}

// ApplyTo merges the accumulated decoration into patch, leaving fields the
// decoration never touched at their existing (NewPatch default) value.
func (d *Decoration) ApplyTo(patch dmp.Patch) dmp.Patch {
	if d.contextDirSet {
		patch.ContextDir = d.contextDir
	}
	if d.contextLenSet {
		patch.ContextLength = d.contextLen
	}
	if d.skip != dmp.SkipUnspecified {
		patch.Skip = d.skip
	}
	return patch
}

// ForHunk is a convenience that extracts, applies, and merges every
// @Crysknife directive found across insertText (the concatenation of a
// hunk's Insert diffs) into patch, against current. It returns the
// decorated patch, any warnings for unknown directives, and the first
// conflict error encountered (fatal, per spec §7).
func ForHunk(patch dmp.Patch, insertText string, current engineversion.Version) (dmp.Patch, []string, error) {
	dec := NewDecoration()
	for _, directive := range Extract(insertText) {
		if err := dec.Apply(directive, current); err != nil {
			return patch, dec.Warnings, err
		}
	}
	return dec.ApplyTo(patch), dec.Warnings, nil
}
