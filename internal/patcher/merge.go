package patcher

import (
	"strings"

	"crysknife/internal/decorator"
	"crysknife/internal/dmp"
	"crysknife/internal/engineversion"
)

// MergeMode selects how a freshly generated bundle reconciles with the
// on-disk history bundle for the same file (spec §4.5.1).
type MergeMode int

const (
	// MergeDisabled always takes the new bundle, re-inserting any
	// historical hunk that was version-gated out (skip=True).
	MergeDisabled MergeMode = iota
	// MergeEnabled additionally drops a live historical hunk that is
	// currently skippable under the active engine version.
	MergeEnabled
	// MergeStrict behaves like MergeEnabled but never drops a historical
	// hunk purely for being currently skippable; only a failed apply or
	// supersession by a near-equal new hunk removes it.
	MergeStrict
)

// Merge reconciles history against fresh per spec §4.5.1. currentCleared
// is the file's current on-disk text with this plugin's own guarded
// regions already removed (as injection.Regex.Unpatch does), the surface
// history hunks are tested for re-application against.
func Merge(engine *dmp.Engine, mode MergeMode, history, fresh PatchBundle, currentCleared string, current engineversion.Version) PatchBundle {
	if mode == MergeDisabled {
		hunks := append([]dmp.Patch{}, fresh.Hunks...)
		for _, h := range history.Hunks {
			if h.Skip == dmp.SkipTrue {
				hunks = append(hunks, h)
			}
		}
		return newBundle(hunks)
	}

	type liveHunk struct {
		patch  dmp.Patch
		lo, hi int
	}

	var live []liveHunk
	var preserved []dmp.Patch

	for _, h := range history.Hunks {
		if h.Skip == dmp.SkipTrue {
			preserved = append(preserved, h)
			continue
		}
		if mode == MergeEnabled && reEvaluateSkip(h, current) == dmp.SkipTrue {
			continue
		}
		if !appliesCleanly(engine, h, currentCleared) {
			continue
		}
		lo, hi := matchWindow(h)
		live = append(live, liveHunk{h, lo, hi})
	}

	for _, lh := range live {
		related := relatedFresh(fresh.Hunks, lh.lo, lh.hi)
		if historyPreserved(lh.patch, related) {
			preserved = append(preserved, lh.patch)
		}
	}

	discarded := make([]bool, len(fresh.Hunks))
	for i, nh := range fresh.Hunks {
		var relatedHistory []dmp.Patch
		for _, lh := range live {
			if withinWindow(nh, lh.lo, lh.hi) {
				relatedHistory = append(relatedHistory, lh.patch)
			}
		}
		if len(relatedHistory) > 0 && newDiscardedBy(nh, relatedHistory) {
			discarded[i] = true
		}
	}

	hunks := append([]dmp.Patch{}, preserved...)
	for i, nh := range fresh.Hunks {
		if !discarded[i] {
			hunks = append(hunks, nh)
		}
	}
	return newBundle(hunks)
}

// reEvaluateSkip re-derives a hunk's Skip flag against current by
// re-extracting its @Crysknife(...) directives, since a historical
// bundle's stored Skip reflects whatever engine version was active when
// it was generated, not necessarily the one active now.
func reEvaluateSkip(h dmp.Patch, current engineversion.Version) dmp.Skip {
	dec := decorator.NewDecoration()
	for _, d := range decorator.Extract(insertText(h.Diffs)) {
		_ = dec.Apply(d, current)
	}
	return dec.ApplyTo(dmp.NewPatch()).Skip
}

func appliesCleanly(engine *dmp.Engine, h dmp.Patch, text string) bool {
	h.Skip = dmp.SkipFalse
	result := engine.PatchApply([]dmp.Patch{h}, text)
	return len(result.Applied) > 0 && result.Applied[0]
}

// matchWindow is the valid-match window [start2+first_diff_len-64,
// start2+length2-last_diff_len+64] a fresh hunk must overlap to be
// considered related to h (spec §4.5.1).
func matchWindow(h dmp.Patch) (int, int) {
	firstLen, lastLen := 0, 0
	if len(h.Diffs) > 0 {
		firstLen = len([]rune(h.Diffs[0].Text))
		lastLen = len([]rune(h.Diffs[len(h.Diffs)-1].Text))
	}
	lo := h.Start2 + firstLen - 64
	hi := h.Start2 + h.Length2 - lastLen + 64
	return lo, hi
}

func withinWindow(h dmp.Patch, lo, hi int) bool {
	return h.Start2 < hi && h.Start2+h.Length2 > lo
}

func relatedFresh(fresh []dmp.Patch, lo, hi int) []dmp.Patch {
	var out []dmp.Patch
	for _, h := range fresh {
		if withinWindow(h, lo, hi) {
			out = append(out, h)
		}
	}
	return out
}

func insertsOf(h dmp.Patch) []string {
	var out []string
	for _, d := range h.Diffs {
		if d.Op == dmp.DiffInsert {
			out = append(out, strings.TrimSpace(d.Text))
		}
	}
	return out
}

// historyPreserved reports whether every Insert in h has a near-equal
// Insert (Levenshtein < 3 on trimmed text) among related's Inserts.
func historyPreserved(h dmp.Patch, related []dmp.Patch) bool {
	hIns := insertsOf(h)
	if len(hIns) == 0 {
		return true
	}
	var relIns []string
	for _, r := range related {
		relIns = append(relIns, insertsOf(r)...)
	}
	for _, ins := range hIns {
		if !hasNearEqual(ins, relIns) {
			return false
		}
	}
	return true
}

// newDiscardedBy reports whether every Insert in nh has a near-equal
// Insert among relatedHistory's Inserts.
func newDiscardedBy(nh dmp.Patch, relatedHistory []dmp.Patch) bool {
	nIns := insertsOf(nh)
	if len(nIns) == 0 {
		return false
	}
	var histIns []string
	for _, r := range relatedHistory {
		histIns = append(histIns, insertsOf(r)...)
	}
	for _, ins := range nIns {
		if !hasNearEqual(ins, histIns) {
			return false
		}
	}
	return true
}

func hasNearEqual(s string, candidates []string) bool {
	for _, c := range candidates {
		if levenshteinStrings(s, c) < 3 {
			return true
		}
	}
	return false
}

func levenshteinStrings(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur := make([]int, len(rb)+1)
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = minOf3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev = cur
	}
	return prev[len(rb)]
}

func minOf3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
