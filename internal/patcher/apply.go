package patcher

import (
	"strconv"

	"crysknife/internal/dmp"
)

// FailureReport describes one hunk that failed to apply: its index in
// the original bundle, the hunk's expected pre/post text, and a rendered
// HTML diff a driver can write to disk for inspection (spec §4.5.2/§7).
type FailureReport struct {
	HunkIndex int
	Expected  string
	Actual    string
	DiffHTML  string
}

// Apply deep-copies bundle, constrains/pads/splits it, and runs
// patch_apply against text (the file's current on-disk content). It
// returns the resulting text, a deduplicated FailureReport per hunk that
// failed to apply, and whether at least one hunk applied successfully.
func Apply(engine *dmp.Engine, bundle PatchBundle, text string) (string, []FailureReport, bool) {
	b := bundle.Clone()
	result := engine.PatchApply(b.Hunks, text)

	seen := map[int]bool{}
	var failures []FailureReport
	anyApplied := false
	for i, ok := range result.Applied {
		if ok {
			anyApplied = true
			continue
		}
		srcIdx := i
		if i < len(result.SourceIndex) {
			srcIdx = result.SourceIndex[i]
		}
		if seen[srcIdx] {
			continue
		}
		seen[srcIdx] = true

		h := result.Patches[i]
		diffs := engine.DiffMain(h.Diffs.Text1(), h.Diffs.Text2())
		failures = append(failures, FailureReport{
			HunkIndex: srcIdx,
			Expected:  h.Diffs.Text1(),
			Actual:    h.Diffs.Text2(),
			DiffHTML:  dmp.DiffPrettyHTML(diffs),
		})
	}
	return result.Text, failures, anyApplied
}

// RenderText renders a FailureReport as a plain-text summary, the default
// the thin CLI driver uses when it has no HTML sink configured.
func (f FailureReport) RenderText() string {
	return "hunk " + strconv.Itoa(f.HunkIndex) + " failed to apply\n--- expected ---\n" + f.Expected + "\n--- actual ---\n" + f.Actual
}
