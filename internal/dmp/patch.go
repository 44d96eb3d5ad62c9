package dmp

// ContextDir restricts which side of a hunk's leading/trailing Equal
// context survives PatchConstrain.
type ContextDir uint8

const (
	// ContextNone keeps neither side (equivalent to ContextLength 0).
	ContextNone ContextDir = 0
	// ContextUpper keeps the leading (pre-hunk) Equal context.
	ContextUpper ContextDir = 1 << iota
	// ContextLower keeps the trailing (post-hunk) Equal context.
	ContextLower
)

func (d ContextDir) Has(bit ContextDir) bool { return d&bit != 0 }

// Skip is the tri-state engine-version gate a hunk may carry.
type Skip int8

const (
	SkipUnspecified Skip = iota
	SkipTrue
	SkipFalse
)

// Patch is one hunk: an edit script plus its location in the pre/post
// text, with the directional-context and version-gate metadata that the
// injection/decorator layers attach via @Crysknife(...) directives.
type Patch struct {
	Diffs           Diffs
	Start1, Length1 int
	Start2, Length2 int

	// ContextDir and ContextLength bound how much of the leading/trailing
	// Equal diff PatchConstrain keeps before apply. ContextLength -1 means
	// unbounded (the whole Equal is kept on the sides ContextDir allows).
	ContextDir    ContextDir
	ContextLength int

	// Skip marks a hunk as excluded from apply (engine-version gated).
	Skip Skip
}

// NewPatch returns a Patch with the reference defaults: unbounded context
// on both sides, no skip.
func NewPatch() Patch {
	return Patch{ContextDir: ContextUpper | ContextLower, ContextLength: -1, Skip: SkipUnspecified}
}

// PatchAddContext grows patch's leading/trailing Equal diffs using text
// (the pre-patch document) until the hunk's matched region is unique in
// text, or the pattern hits MatchMaxBits-2*PatchMargin.
func (e *Engine) PatchAddContext(patch Patch, text []rune) Patch {
	if len(text) == 0 {
		return patch
	}
	pattern := text[patch.Start2 : patch.Start2+patch.Length1]
	padding := 0

	for runesCount(text, pattern) > 1 && len(pattern) < e.MatchMaxBits-2*e.PatchMargin {
		padding += e.PatchMargin
		maxStart := maxInt(0, patch.Start2-padding)
		minEnd := minInt(len(text), patch.Start2+patch.Length1+padding)
		pattern = text[maxStart:minEnd]
	}
	padding += e.PatchMargin

	prefix := text[maxInt(0, patch.Start2-padding):patch.Start2]
	if len(prefix) != 0 {
		patch.Diffs = append(Diffs{{Op: DiffEqual, Text: string(prefix)}}, patch.Diffs...)
	}
	suffix := text[patch.Start2+patch.Length1 : minInt(len(text), patch.Start2+patch.Length1+padding)]
	if len(suffix) != 0 {
		patch.Diffs = append(patch.Diffs, Diff{Op: DiffEqual, Text: string(suffix)})
	}

	patch.Start1 -= len(prefix)
	patch.Start2 -= len(prefix)
	patch.Length1 += len(prefix) + len(suffix)
	patch.Length2 += len(prefix) + len(suffix)
	return patch
}

// runesCount counts non-overlapping-free occurrences of needle in
// haystack, stopping once it finds a second one (PatchAddContext only
// cares whether the match is unique).
func runesCount(haystack, needle []rune) int {
	n := 0
	from := 0
	for {
		idx := runesIndexFrom(haystack, needle, from)
		if idx == -1 {
			return n
		}
		n++
		if n > 1 {
			return n
		}
		from = idx + 1
	}
}

// PatchMake computes the hunks that turn text1 into text2, via a fresh
// diff_main.
func (e *Engine) PatchMake(text1, text2 string) []Patch {
	diffs := e.DiffMain(text1, text2)
	if len(diffs) > 2 {
		diffs = e.DiffCleanupSemantic(diffs)
		diffs = e.DiffCleanupEfficiency(diffs)
	}
	return e.PatchMakeFromDiffs(text1, diffs)
}

// PatchMakeFromDiffs computes hunks from a precomputed edit script
// between text1 and its implied text2.
func (e *Engine) PatchMakeFromDiffs(text1 string, diffs Diffs) []Patch {
	if len(diffs) == 0 {
		return nil
	}
	var patches []Patch
	patch := NewPatch()
	charCount1, charCount2 := 0, 0

	prepatchText := []rune(text1)
	postpatchText := append([]rune(nil), prepatchText...)

	for i, d := range diffs {
		if len(patch.Diffs) == 0 && d.Op != DiffEqual {
			patch.Start1 = charCount1
			patch.Start2 = charCount2
		}

		dr := []rune(d.Text)
		switch d.Op {
		case DiffInsert:
			patch.Diffs = append(patch.Diffs, d)
			patch.Length2 += len(dr)
			postpatchText = append(postpatchText[:charCount2:charCount2], append(append([]rune(nil), dr...), postpatchText[charCount2:]...)...)
		case DiffDelete:
			patch.Length1 += len(dr)
			patch.Diffs = append(patch.Diffs, d)
			postpatchText = append(postpatchText[:charCount2:charCount2], postpatchText[charCount2+len(dr):]...)
		case DiffEqual:
			if len(dr) <= 2*e.PatchMargin && len(patch.Diffs) != 0 && i != len(diffs)-1 {
				patch.Diffs = append(patch.Diffs, d)
				patch.Length1 += len(dr)
				patch.Length2 += len(dr)
			}
			if len(dr) >= 2*e.PatchMargin && len(patch.Diffs) != 0 {
				patch = e.PatchAddContext(patch, prepatchText)
				patches = append(patches, patch)
				patch = NewPatch()
				prepatchText = append([]rune(nil), postpatchText...)
				charCount1 = charCount2
			}
			if e.PatchSplitOnInsertion && len(patch.Diffs) != 0 && hasInsert(patch.Diffs) {
				patch = e.PatchAddContext(patch, prepatchText)
				patches = append(patches, patch)
				patch = NewPatch()
				prepatchText = append([]rune(nil), postpatchText...)
				charCount1 = charCount2
			}
		}

		if d.Op != DiffInsert {
			charCount1 += len(dr)
		}
		if d.Op != DiffDelete {
			charCount2 += len(dr)
		}
	}

	if len(patch.Diffs) != 0 {
		patch = e.PatchAddContext(patch, prepatchText)
		patches = append(patches, patch)
	}
	return patches
}

func hasInsert(diffs Diffs) bool {
	for _, d := range diffs {
		if d.Op == DiffInsert {
			return true
		}
	}
	return false
}

// PatchConstrain trims a hunk's leading/trailing Equal diffs down to
// ContextLength chars, respecting ContextDir; ContextLength -1 leaves the
// side unbounded as long as ContextDir permits it at all.
func (e *Engine) PatchConstrain(p Patch) Patch {
	if len(p.Diffs) == 0 {
		return p
	}
	diffs := append(Diffs(nil), p.Diffs...)

	trim := func(keep bool) {
		if len(diffs) == 0 || diffs[0].Op != DiffEqual {
			return
		}
		limit := p.ContextLength
		r := []rune(diffs[0].Text)
		var want int
		if !keep {
			want = 0
		} else if limit < 0 {
			want = len(r)
		} else {
			want = minInt(limit, len(r))
		}
		if want == len(r) {
			return
		}
		dropped := len(r) - want
		diffs[0].Text = string(r[dropped:])
		p.Start1 += dropped
		p.Start2 += dropped
		p.Length1 -= dropped
		p.Length2 -= dropped
		if diffs[0].Text == "" {
			diffs = diffs[1:]
		}
	}
	trimEnd := func(keep bool) {
		if len(diffs) == 0 || diffs[len(diffs)-1].Op != DiffEqual {
			return
		}
		limit := p.ContextLength
		r := []rune(diffs[len(diffs)-1].Text)
		var want int
		if !keep {
			want = 0
		} else if limit < 0 {
			want = len(r)
		} else {
			want = minInt(limit, len(r))
		}
		if want == len(r) {
			return
		}
		dropped := len(r) - want
		diffs[len(diffs)-1].Text = string(r[:want])
		p.Length1 -= dropped
		p.Length2 -= dropped
		if diffs[len(diffs)-1].Text == "" {
			diffs = diffs[:len(diffs)-1]
		}
	}

	trim(p.ContextDir.Has(ContextUpper))
	trimEnd(p.ContextDir.Has(ContextLower))
	p.Diffs = diffs
	return p
}

// PatchDeepCopy returns a patch slice with independent underlying arrays.
func PatchDeepCopy(patches []Patch) []Patch {
	out := make([]Patch, len(patches))
	for i, p := range patches {
		p.Diffs = append(Diffs(nil), p.Diffs...)
		out[i] = p
	}
	return out
}

// ApplyResult is the outcome of PatchApply.
type ApplyResult struct {
	Text string
	// Applied[i] reports whether the i-th (post-split) hunk matched.
	Applied []bool
	// SourceIndex[i] maps the i-th post-split hunk back to its index in
	// the patches slice PatchApply was called with.
	SourceIndex []int
	// Patches is the post-split, post-skip-filter hunk list actually
	// walked during apply.
	Patches []Patch
}

// PatchApply fuzzy-applies patches to text, in order, tolerating drift
// via MatchMain and a local diff_main for imperfect matches. Hunks with
// Skip == SkipTrue are dropped before anything else.
func (e *Engine) PatchApply(patches []Patch, text string) ApplyResult {
	live := make([]Patch, 0, len(patches))
	sourceOf := make([]int, 0, len(patches))
	for i, p := range patches {
		if p.Skip == SkipTrue {
			continue
		}
		live = append(live, e.PatchConstrain(p))
		sourceOf = append(sourceOf, i)
	}
	if len(live) == 0 {
		return ApplyResult{Text: text}
	}

	live = PatchDeepCopy(live)
	padding := e.patchAddPadding(live)
	r := append([]rune(padding), append([]rune(text), []rune(padding)...)...)

	live, sourceOf = e.patchSplitMax(live, sourceOf)

	applied := make([]bool, len(live))
	delta := 0
	lastMatchEnd := -1
	for i, p := range live {
		expectedLoc := p.Start2 + delta
		if e.MatchSequentially && lastMatchEnd != -1 {
			expectedLoc = lastMatchEnd
		}
		text1 := []rune(p.Diffs.Text1())
		startLoc := -1
		endLoc := -1

		if len(text1) > e.MatchMaxBits {
			startLoc = e.MatchMain(string(r), string(text1[:e.MatchMaxBits]), expectedLoc)
			if startLoc != -1 {
				endLoc = e.MatchMain(string(r), string(text1[len(text1)-e.MatchMaxBits:]), expectedLoc+len(text1)-e.MatchMaxBits)
				if endLoc == -1 || startLoc >= endLoc {
					startLoc = -1
				}
			}
		} else {
			startLoc = e.MatchMain(string(r), string(text1), expectedLoc)
		}

		if startLoc == -1 {
			applied[i] = false
			delta -= p.Length2 - p.Length1
			continue
		}

		applied[i] = true
		delta = startLoc - expectedLoc
		lastMatchEnd = startLoc + p.Length2

		var text2 []rune
		if endLoc == -1 {
			text2 = r[startLoc:minInt(startLoc+len(text1), len(r))]
		} else {
			text2 = r[startLoc:minInt(endLoc+e.MatchMaxBits, len(r))]
		}

		if string(text1) == string(text2) {
			replacement := []rune(p.Diffs.Text2())
			r = append(r[:startLoc:startLoc], append(replacement, r[startLoc+len(text1):]...)...)
		} else {
			localDiffs := e.DiffMainRaw(string(text1), string(text2))
			if len(text1) > e.MatchMaxBits && float64(DiffLevenshtein(localDiffs))/float64(len(text1)) > e.PatchDeleteThreshold {
				applied[i] = false
			} else {
				localDiffs = e.DiffCleanupSemanticLossless(localDiffs)
				index1 := 0
				for _, d := range p.Diffs {
					if d.Op != DiffEqual {
						index2 := diffXIndex(localDiffs, index1)
						switch d.Op {
						case DiffInsert:
							ins := []rune(d.Text)
							r = append(r[:startLoc+index2:startLoc+index2], append(ins, r[startLoc+index2:]...)...)
						case DiffDelete:
							startIndex := startLoc + index2
							endIndex := startLoc + diffXIndex(localDiffs, index1+len([]rune(d.Text))) - index2
							r = append(r[:startIndex:startIndex], r[startIndex+(endIndex-startIndex):]...)
						}
					}
					if d.Op != DiffDelete {
						index1 += len([]rune(d.Text))
					}
				}
			}
		}
	}

	out := string(r[len(padding) : len(r)-len(padding)])
	return ApplyResult{Text: out, Applied: applied, SourceIndex: sourceOf, Patches: live}
}

// diffXIndex maps loc1, an index into diffs' Text1, to the corresponding
// index into diffs' Text2.
func diffXIndex(diffs Diffs, loc1 int) int {
	chars1, chars2 := 0, 0
	lastChars1, lastChars2 := 0, 0
	var lastDiff Diff
	found := false
	for _, d := range diffs {
		if d.Op != DiffInsert {
			chars1 += len([]rune(d.Text))
		}
		if d.Op != DiffDelete {
			chars2 += len([]rune(d.Text))
		}
		if chars1 > loc1 {
			lastDiff = d
			found = true
			break
		}
		lastChars1 = chars1
		lastChars2 = chars2
	}
	if found && lastDiff.Op == DiffDelete {
		return lastChars2
	}
	return lastChars2 + (loc1 - lastChars1)
}

// patchAddPadding bumps every hunk's offsets forward and pads the first
// and last hunk's Equal edges with low-codepoint sentinels, so that
// content at the very start/end of the document can still match.
func (e *Engine) patchAddPadding(patches []Patch) string {
	paddingLen := e.PatchMargin
	pad := make([]rune, paddingLen)
	for i := range pad {
		pad[i] = rune(i + 1)
	}
	padding := string(pad)

	for i := range patches {
		patches[i].Start1 += paddingLen
		patches[i].Start2 += paddingLen
	}

	first := &patches[0]
	if len(first.Diffs) == 0 || first.Diffs[0].Op != DiffEqual {
		first.Diffs = append(Diffs{{Op: DiffEqual, Text: padding}}, first.Diffs...)
		first.Start1 -= paddingLen
		first.Start2 -= paddingLen
		first.Length1 += paddingLen
		first.Length2 += paddingLen
	} else if extra := paddingLen - len([]rune(first.Diffs[0].Text)); extra > 0 {
		first.Diffs[0].Text = string(pad[paddingLen-extra:]) + first.Diffs[0].Text
		first.Start1 -= extra
		first.Start2 -= extra
		first.Length1 += extra
		first.Length2 += extra
	}

	last := &patches[len(patches)-1]
	if len(last.Diffs) == 0 || last.Diffs[len(last.Diffs)-1].Op != DiffEqual {
		last.Diffs = append(last.Diffs, Diff{Op: DiffEqual, Text: padding})
		last.Length1 += paddingLen
		last.Length2 += paddingLen
	} else if extra := paddingLen - len([]rune(last.Diffs[len(last.Diffs)-1].Text)); extra > 0 {
		last.Diffs[len(last.Diffs)-1].Text += string(pad[:extra])
		last.Length1 += extra
		last.Length2 += extra
	}

	return padding
}

// patchSplitMax breaks up any hunk longer than MatchMaxBits into several
// smaller ones chained by rolling context, preserving sourceOf mapping.
func (e *Engine) patchSplitMax(patches []Patch, sourceOf []int) ([]Patch, []int) {
	patchSize := e.MatchMaxBits
	for x := 0; x < len(patches); x++ {
		if patches[x].Length1 <= patchSize {
			continue
		}
		big := patches[x]
		src := sourceOf[x]
		patches = append(patches[:x], patches[x+1:]...)
		sourceOf = append(sourceOf[:x], sourceOf[x+1:]...)
		x--

		start1, start2 := big.Start1, big.Start2
		var precontext []rune
		for len(big.Diffs) != 0 {
			patch := NewPatch()
			patch.ContextDir = big.ContextDir
			patch.ContextLength = big.ContextLength
			patch.Skip = big.Skip
			empty := true
			patch.Start1 = start1 - len(precontext)
			patch.Start2 = start2 - len(precontext)
			if len(precontext) != 0 {
				patch.Length1 = len(precontext)
				patch.Length2 = len(precontext)
				patch.Diffs = append(patch.Diffs, Diff{Op: DiffEqual, Text: string(precontext)})
			}
			for len(big.Diffs) != 0 && patch.Length1 < patchSize-e.PatchMargin {
				op := big.Diffs[0].Op
				dr := []rune(big.Diffs[0].Text)
				switch {
				case op == DiffInsert:
					patch.Length2 += len(dr)
					start2 += len(dr)
					patch.Diffs = append(patch.Diffs, big.Diffs[0])
					big.Diffs = big.Diffs[1:]
					empty = false
				case op == DiffDelete && len(patch.Diffs) == 1 && patch.Diffs[0].Op == DiffEqual && len(dr) > 2*patchSize:
					patch.Length1 += len(dr)
					start1 += len(dr)
					empty = false
					patch.Diffs = append(patch.Diffs, Diff{Op: op, Text: string(dr)})
					big.Diffs = big.Diffs[1:]
				default:
					take := minInt(len(dr), patchSize-patch.Length1-e.PatchMargin)
					chunk := dr[:take]
					patch.Length1 += len(chunk)
					start1 += len(chunk)
					if op == DiffEqual {
						patch.Length2 += len(chunk)
						start2 += len(chunk)
					} else {
						empty = false
					}
					patch.Diffs = append(patch.Diffs, Diff{Op: op, Text: string(chunk)})
					if len(chunk) == len(dr) {
						big.Diffs = big.Diffs[1:]
					} else {
						big.Diffs[0].Text = string(dr[take:])
					}
				}
			}

			pre2 := []rune(patch.Diffs.Text2())
			precontext = pre2[maxInt(0, len(pre2)-e.PatchMargin):]

			text1Rest := []rune(big.Diffs.Text1())
			var postcontext []rune
			if len(text1Rest) > e.PatchMargin {
				postcontext = text1Rest[:e.PatchMargin]
			} else {
				postcontext = text1Rest
			}
			if len(postcontext) != 0 {
				patch.Length1 += len(postcontext)
				patch.Length2 += len(postcontext)
				if len(patch.Diffs) != 0 && patch.Diffs[len(patch.Diffs)-1].Op == DiffEqual {
					patch.Diffs[len(patch.Diffs)-1].Text += string(postcontext)
				} else {
					patch.Diffs = append(patch.Diffs, Diff{Op: DiffEqual, Text: string(postcontext)})
				}
			}
			if !empty {
				x++
				patches = append(patches[:x], append([]Patch{patch}, patches[x:]...)...)
				sourceOf = append(sourceOf[:x], append([]int{src}, sourceOf[x:]...)...)
			}
		}
	}
	return patches, sourceOf
}
