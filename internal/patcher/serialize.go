package patcher

import (
	"fmt"

	"crysknife/internal/decorator"
	"crysknife/internal/dmp"
	"crysknife/internal/engineversion"
	"crysknife/internal/tagpack"
)

// Serialize renders bundle as .patch text (spec §4.5.3): each hunk's
// diffs are packed from the configured in-tree comment spelling to the
// canonical on-disk spelling before patch_to_text runs. protected selects
// which extension the caller should write the result under (.patch when
// false, .protected.patch when true) — a protected bundle is stored with
// its in-tree spelling untouched (no canonicalization) so the exact local
// capture groups Pack would otherwise discard survive a round trip
// without needing a side-channel format of their own.
func Serialize(bundle PatchBundle, format tagpack.ConfiguredFormat, protected bool) string {
	if protected {
		return dmp.PatchToText(bundle.Hunks)
	}

	hunks := make([]dmp.Patch, len(bundle.Hunks))
	for i, h := range bundle.Hunks {
		packed := make(dmp.Diffs, len(h.Diffs))
		for j, d := range h.Diffs {
			canon, _ := tagpack.Pack(d.Text, format, true)
			packed[j] = dmp.Diff{Op: d.Op, Text: canon}
		}
		h.Diffs = packed
		hunks[i] = h
	}
	return dmp.PatchToText(hunks)
}

// Deserialize reverses Serialize (spec §4.5.3): patch_from_text, then
// unpack each hunk's diffs back to the configured in-tree spelling
// (skipped for a protected bundle, whose text is already in-tree form),
// then re-extract and re-apply each hunk's @Crysknife(...) directives
// against current — the Skip/ContextDir/ContextLength metadata Generate
// computed is not itself encoded in the unidiff text, only the directive
// text that produced it, so it must be rebuilt on load.
func Deserialize(text string, format tagpack.ConfiguredFormat, vars map[string]string, protected bool, current engineversion.Version) (PatchBundle, []string, error) {
	hunks, err := dmp.PatchFromText(text)
	if err != nil {
		return PatchBundle{}, nil, fmt.Errorf("patcher: %w", err)
	}

	var warnings []string
	for i, h := range hunks {
		if !protected {
			unpacked := make(dmp.Diffs, len(h.Diffs))
			for j, d := range h.Diffs {
				out, warns := tagpack.Unpack(d.Text, format, vars, nil)
				for _, w := range warns {
					warnings = append(warnings, w.Error())
				}
				unpacked[j] = dmp.Diff{Op: d.Op, Text: out}
			}
			h.Diffs = unpacked
		}

		decorated, warns, err := decorator.ForHunk(h, insertText(h.Diffs), current)
		if err != nil {
			return PatchBundle{}, warnings, fmt.Errorf("patcher: hunk %d: %w", i, err)
		}
		warnings = append(warnings, warns...)
		hunks[i] = decorated
	}
	return newBundle(hunks), warnings, nil
}
