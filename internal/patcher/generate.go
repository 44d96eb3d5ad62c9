package patcher

import (
	"fmt"

	"crysknife/internal/decorator"
	"crysknife/internal/dmp"
	"crysknife/internal/engineversion"
	"crysknife/internal/injection"
)

// Generate builds the PatchBundle that turns before (the clean, unpatched
// engine source) into after (the same file with this plugin's guarded
// regions woven in), per spec §4.5: the diff is split at every injection
// boundary in after before patch_make runs with split-on-insertion, so
// each guarded region becomes its own hunk, and every hunk's
// @Crysknife(...) directives are extracted and applied immediately.
func Generate(engine *dmp.Engine, before, after string, regex *injection.Regex, current engineversion.Version) (PatchBundle, []string, error) {
	diffs := makeDiffs(engine, before, after, regex)

	if diffs.Text1() != before {
		return PatchBundle{}, nil, fmt.Errorf("patcher: generated diff does not reconstruct the pre-text")
	}
	if diffs.Text2() != after {
		return PatchBundle{}, nil, fmt.Errorf("patcher: generated diff does not reconstruct the post-text")
	}

	splitEngine := *engine
	splitEngine.PatchSplitOnInsertion = true
	hunks := splitEngine.PatchMakeFromDiffs(before, diffs)

	var warnings []string
	for i, h := range hunks {
		decorated, warns, err := decorator.ForHunk(h, insertText(h.Diffs), current)
		if err != nil {
			return PatchBundle{}, warnings, fmt.Errorf("patcher: hunk %d: %w", i, err)
		}
		warnings = append(warnings, warns...)
		hunks[i] = decorated
	}

	return newBundle(hunks), warnings, nil
}

// makeDiffs computes the edit script between before and after, then
// splits any Equal/Insert diff segment that straddles an injection
// boundary in after so the boundary is respected by patch_make without
// changing the reconstructed text of either side.
func makeDiffs(engine *dmp.Engine, before, after string, regex *injection.Regex) dmp.Diffs {
	diffs := engine.DiffMain(before, after)
	if regex == nil {
		return diffs
	}
	boundaries := flattenBoundaries(regex.Boundaries(after))
	if len(boundaries) == 0 {
		return diffs
	}
	return splitAtBoundaries(diffs, boundaries)
}

func flattenBoundaries(spans [][2]int) []int {
	set := map[int]bool{}
	for _, s := range spans {
		set[s[0]] = true
		set[s[1]] = true
	}
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sortInts(out)
	return out
}

func sortInts(a []int) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j-1] > a[j]; j-- {
			a[j-1], a[j] = a[j], a[j-1]
		}
	}
}

// splitAtBoundaries walks diffs tracking each segment's position in text2
// (after), cutting Equal/Insert diffs at any boundary point that falls
// strictly inside them. Delete diffs have no text2 footprint and are
// never split.
func splitAtBoundaries(diffs dmp.Diffs, boundaries []int) dmp.Diffs {
	out := make(dmp.Diffs, 0, len(diffs))
	pos2 := 0
	for _, d := range diffs {
		if d.Op == dmp.DiffDelete {
			out = append(out, d)
			continue
		}
		start := pos2
		end := pos2 + len(d.Text)

		var cuts []int
		for _, b := range boundaries {
			if b > start && b < end {
				cuts = append(cuts, b-start)
			}
		}
		if len(cuts) == 0 {
			out = append(out, d)
		} else {
			prev := 0
			for _, c := range cuts {
				if c > prev {
					out = append(out, dmp.Diff{Op: d.Op, Text: d.Text[prev:c]})
				}
				prev = c
			}
			if prev < len(d.Text) {
				out = append(out, dmp.Diff{Op: d.Op, Text: d.Text[prev:]})
			}
		}
		pos2 = end
	}
	return out
}
