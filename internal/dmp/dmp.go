// Package dmp implements the diff/match/patch core described by spec
// component C1: character-level diff, fuzzy bitap match, and
// context-padded patch build/apply/serialize, all with bounded tolerance
// instead of requiring an exact textual match.
//
// The algorithm shape follows the published Google diff-match-patch
// design as ported by github.com/sergi/go-diff and by the independent
// kenshaw/diffmatchpatch port, reimplemented here so that patch hunks can
// carry the directional-context and engine-version-gate metadata the
// higher layers (injection, decorator, patcher) attach to them.
package dmp

import "time"

// Op is the kind of a Diff.
type Op int8

const (
	// DiffDelete marks text present only in the first (pre) document.
	DiffDelete Op = -1
	// DiffEqual marks text common to both documents.
	DiffEqual Op = 0
	// DiffInsert marks text present only in the second (post) document.
	DiffInsert Op = 1
)

func (o Op) String() string {
	switch o {
	case DiffDelete:
		return "delete"
	case DiffInsert:
		return "insert"
	default:
		return "equal"
	}
}

// Diff is one operation in an edit script.
type Diff struct {
	Op   Op
	Text string
}

// Diffs is an edit script, the output of diff_main.
type Diffs []Diff

// Text1 reconstructs the pre-text (Delete+Equal diffs concatenated).
func (d Diffs) Text1() string {
	var b []byte
	for _, diff := range d {
		if diff.Op != DiffInsert {
			b = append(b, diff.Text...)
		}
	}
	return string(b)
}

// Text2 reconstructs the post-text (Insert+Equal diffs concatenated).
func (d Diffs) Text2() string {
	var b []byte
	for _, diff := range d {
		if diff.Op != DiffDelete {
			b = append(b, diff.Text...)
		}
	}
	return string(b)
}

// Engine holds the tunable parameters for diff/match/patch, mirroring the
// stateful "Config"/"DiffMatchPatch" struct pattern used by every
// diff-match-patch port in the retrieval pack.
type Engine struct {
	// DiffTimeout bounds diff_main's bisect search; 0 means unbounded.
	DiffTimeout time.Duration
	// DiffEditCost is the cost of an empty edit operation, used by
	// cleanup_efficiency.
	DiffEditCost int

	// MatchThreshold is the score ceiling (0.0 = perfect match required).
	MatchThreshold float64
	// MatchDistance weights how far a match may be from the expected
	// location; a very large value effectively disables the penalty.
	MatchDistance int
	// MatchMaxBits bounds the pattern length the bitap matcher can handle.
	MatchMaxBits int

	// PatchDeleteThreshold is the maximum normalized Levenshtein distance
	// tolerated between the matched region and the hunk's expected length
	// before the hunk is dropped as a bad match.
	PatchDeleteThreshold float64
	// PatchMargin is the amount of context kept around each hunk, and the
	// minimum run of Equal text that splits two hunks apart.
	PatchMargin int
	// PatchSplitOnInsertion forces patch_make to open a new hunk after
	// every Insert diff, used by generate() so every injection becomes
	// its own hunk (spec §4.5).
	PatchSplitOnInsertion bool
	// MatchSequentially makes patch_apply search for the n-th hunk only
	// after the (n-1)-th hunk's match location, instead of always
	// relative to the hunk's recorded start.
	MatchSequentially bool
}

// NewEngine returns an Engine with the reference parameter defaults.
func NewEngine() *Engine {
	return &Engine{
		DiffTimeout:           time.Second,
		DiffEditCost:          4,
		MatchThreshold:        0.5,
		MatchDistance:         1000,
		MatchMaxBits:          64,
		PatchDeleteThreshold:  0.5,
		PatchMargin:           4,
		PatchSplitOnInsertion: false,
		MatchSequentially:     false,
	}
}

func (e *Engine) deadline() time.Time {
	if e.DiffTimeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(e.DiffTimeout)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
