// Package patcher implements the orchestration layer (component C5) that
// ties the diff/match/patch core, injection detection, the comment-tag
// packer, and the decorator layer into the generate/apply/serialize
// operations a driver calls once per guarded file.
package patcher

import (
	"sort"

	"github.com/google/uuid"

	"crysknife/internal/dmp"
)

// PatchBundle is the ordered, value-type hunk list for one file described
// by spec §3: immutable once returned by Generate or Deserialize, cloned
// before Apply mutates anything. ID is a random identifier assigned when
// the bundle is built; it is not serialized, so a deserialized bundle
// gets a new one.
type PatchBundle struct {
	ID    uuid.UUID
	Hunks []dmp.Patch
}

func newBundle(hunks []dmp.Patch) PatchBundle {
	sortHunks(hunks)
	return PatchBundle{ID: uuid.New(), Hunks: hunks}
}

func sortHunks(hunks []dmp.Patch) {
	sort.SliceStable(hunks, func(i, j int) bool { return hunks[i].Start1 < hunks[j].Start1 })
}

// Clone deep-copies the bundle's hunks, the prerequisite Apply performs
// before patch_apply is allowed to touch anything (spec §4.5.2).
func (b PatchBundle) Clone() PatchBundle {
	return PatchBundle{ID: b.ID, Hunks: dmp.PatchDeepCopy(b.Hunks)}
}

// insertText concatenates a hunk's Insert diffs, the text decorator.Extract
// scans for @Crysknife(...) directives.
func insertText(diffs dmp.Diffs) string {
	var out []byte
	for _, d := range diffs {
		if d.Op == dmp.DiffInsert {
			out = append(out, d.Text...)
		}
	}
	return string(out)
}
