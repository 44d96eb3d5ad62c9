package dmp

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// DiffMain computes the edit script turning text1 into text2. It strips a
// common prefix/suffix, tries a half-match speedup, falls back to a
// deadline-bounded bisect, and runs semantic + lossless cleanup.
func (e *Engine) DiffMain(text1, text2 string) Diffs {
	return e.diffMain(text1, text2, true)
}

// DiffMainRaw skips the line-mode speedup; useful for the small strings
// patch_apply re-diffs when mapping an imperfect match.
func (e *Engine) DiffMainRaw(text1, text2 string) Diffs {
	return e.diffMain(text1, text2, false)
}

func (e *Engine) diffMain(text1, text2 string, checklines bool) Diffs {
	deadline := e.deadline()

	if text1 == text2 {
		if text1 == "" {
			return Diffs{}
		}
		return Diffs{{Op: DiffEqual, Text: text1}}
	}

	r1, r2 := []rune(text1), []rune(text2)

	commonPrefix := runesCommonPrefix(r1, r2)
	prefix := string(r1[:commonPrefix])
	r1, r2 = r1[commonPrefix:], r2[commonPrefix:]

	commonSuffix := runesCommonSuffix(r1, r2)
	suffix := string(r1[len(r1)-commonSuffix:])
	r1 = r1[:len(r1)-commonSuffix]
	r2 = r2[:len(r2)-commonSuffix]

	diffs := e.diffCompute(r1, r2, checklines, deadline)

	if prefix != "" {
		diffs = append(Diffs{{Op: DiffEqual, Text: prefix}}, diffs...)
	}
	if suffix != "" {
		diffs = append(diffs, Diff{Op: DiffEqual, Text: suffix})
	}

	diffs = diffCleanupMerge(diffs)
	diffs = e.DiffCleanupSemantic(diffs)
	diffs = e.DiffCleanupSemanticLossless(diffs)
	return diffs
}

func (e *Engine) diffCompute(r1, r2 []rune, checklines bool, deadline time.Time) Diffs {
	if len(r1) == 0 {
		if len(r2) == 0 {
			return Diffs{}
		}
		return Diffs{{Op: DiffInsert, Text: string(r2)}}
	}
	if len(r2) == 0 {
		return Diffs{{Op: DiffDelete, Text: string(r1)}}
	}

	longtext, shorttext := r1, r2
	longIsR1 := true
	if len(shorttext) > len(longtext) {
		longtext, shorttext = shorttext, longtext
		longIsR1 = false
	}
	if i := runesIndex(longtext, shorttext); i != -1 {
		op := DiffInsert
		if longIsR1 {
			op = DiffDelete
		}
		return Diffs{
			{Op: op, Text: string(longtext[:i])},
			{Op: DiffEqual, Text: string(shorttext)},
			{Op: op, Text: string(longtext[i+len(shorttext):])},
		}
	}

	if len(shorttext) == 1 {
		return Diffs{
			{Op: DiffDelete, Text: string(r1)},
			{Op: DiffInsert, Text: string(r2)},
		}
	}

	if hm := e.diffHalfMatch(r1, r2); hm != nil {
		prefixDiffs := e.diffMain(string(hm.text1Prefix), string(hm.text2Prefix), checklines)
		suffixDiffs := e.diffMain(string(hm.text1Suffix), string(hm.text2Suffix), checklines)
		result := append(Diffs{}, prefixDiffs...)
		result = append(result, Diff{Op: DiffEqual, Text: string(hm.common)})
		result = append(result, suffixDiffs...)
		return result
	}

	// Large inputs: line-level diff first, then re-diff residual runs of
	// consecutive insert/delete character-level (spec §4.1).
	if checklines && len(r1) > 100 && len(r2) > 100 {
		return e.diffLineMode(r1, r2, deadline)
	}

	return e.diffBisect(r1, r2, deadline)
}

// diffLineMode hashes each line to a rune, diffs the rune streams, expands
// the result back to lines, then re-diffs any adjacent delete+insert pair
// character-level so word-level edits inside a changed line stay precise.
func (e *Engine) diffLineMode(r1, r2 []rune, deadline time.Time) Diffs {
	chars1, chars2, lines := diffLinesToChars(string(r1), string(r2))
	diffs := e.diffBisect([]rune(chars1), []rune(chars2), deadline)
	diffs = diffCharsToLines(diffs, lines)
	diffs = diffCleanupMerge(diffs)

	// Re-diff character-level between adjacent delete/insert pairs.
	diffs = append(diffs, Diff{Op: DiffEqual, Text: ""})
	result := make(Diffs, 0, len(diffs))
	var countDelete, countInsert int
	var textDelete, textInsert strings.Builder
	for _, d := range diffs {
		switch d.Op {
		case DiffInsert:
			countInsert++
			textInsert.WriteString(d.Text)
		case DiffDelete:
			countDelete++
			textDelete.WriteString(d.Text)
		default:
			if countDelete >= 1 && countInsert >= 1 {
				sub := e.diffMain(textDelete.String(), textInsert.String(), false)
				result = append(result, sub...)
			} else if countInsert > 0 {
				result = append(result, Diff{Op: DiffInsert, Text: textInsert.String()})
			} else if countDelete > 0 {
				result = append(result, Diff{Op: DiffDelete, Text: textDelete.String()})
			}
			countDelete, countInsert = 0, 0
			textDelete.Reset()
			textInsert.Reset()
			if d.Text != "" {
				result = append(result, d)
			}
		}
	}
	// Drop the trailing sentinel equal diff added above, if it produced nothing.
	return result
}

func diffLinesToChars(text1, text2 string) (chars1, chars2 string, lines []string) {
	lines = []string{""} // index 0 unused so zero-value rune never aliases a real line
	lineHash := map[string]int{}

	munge := func(text string) string {
		var sb strings.Builder
		lineStart := 0
		for lineStart < len(text) {
			lineEnd := strings.IndexByte(text[lineStart:], '\n')
			var line string
			if lineEnd == -1 {
				line = text[lineStart:]
				lineStart = len(text)
			} else {
				line = text[lineStart : lineStart+lineEnd+1]
				lineStart += lineEnd + 1
			}
			idx, ok := lineHash[line]
			if !ok {
				lines = append(lines, line)
				idx = len(lines) - 1
				lineHash[line] = idx
			}
			sb.WriteRune(rune(idx))
		}
		return sb.String()
	}

	chars1 = munge(text1)
	chars2 = munge(text2)
	return chars1, chars2, lines
}

func diffCharsToLines(diffs Diffs, lines []string) Diffs {
	result := make(Diffs, len(diffs))
	for i, d := range diffs {
		var sb strings.Builder
		for _, r := range d.Text {
			if int(r) < len(lines) {
				sb.WriteString(lines[r])
			}
		}
		result[i] = Diff{Op: d.Op, Text: sb.String()}
	}
	return result
}

type halfMatch struct {
	text1Prefix, text1Suffix []rune
	text2Prefix, text2Suffix []rune
	common                   []rune
}

// diffHalfMatch looks for a substring at least half the length of the
// longer text that occurs in both texts, per spec §4.1's half-match
// speedup.
func (e *Engine) diffHalfMatch(r1, r2 []rune) *halfMatch {
	longtext, shorttext := r1, r2
	swapped := false
	if len(r1) < len(r2) {
		longtext, shorttext = r2, r1
		swapped = true
	}
	if len(longtext) < 4 || len(shorttext)*2 < len(longtext) {
		return nil
	}

	hm1 := diffHalfMatchI(longtext, shorttext, (len(longtext)+3)/4)
	hm2 := diffHalfMatchI(longtext, shorttext, (len(longtext)+1)/2)

	var hm []([]rune)
	switch {
	case hm1 == nil && hm2 == nil:
		return nil
	case hm2 == nil:
		hm = hm1
	case hm1 == nil:
		hm = hm2
	default:
		if len(hm1[4]) > len(hm2[4]) {
			hm = hm1
		} else {
			hm = hm2
		}
	}

	longPrefix, longSuffix, shortPrefix, shortSuffix, common := hm[0], hm[1], hm[2], hm[3], hm[4]
	if swapped {
		return &halfMatch{
			text1Prefix: shortPrefix, text1Suffix: shortSuffix,
			text2Prefix: longPrefix, text2Suffix: longSuffix,
			common: common,
		}
	}
	return &halfMatch{
		text1Prefix: longPrefix, text1Suffix: longSuffix,
		text2Prefix: shortPrefix, text2Suffix: shortSuffix,
		common: common,
	}
}

// diffHalfMatchI tries a half-match seeded at longtext[i:i+len/4].
func diffHalfMatchI(longtext, shorttext []rune, i int) []([]rune) {
	seed := longtext[i : i+len(longtext)/4]
	best := -1
	var bestCommon, bestLongtextA, bestLongtextB, bestShorttextA, bestShorttextB []rune

	for j := runesIndex(shorttext, seed); j != -1; j = runesIndexFrom(shorttext, seed, j+1) {
		prefixLen := runesCommonSuffix(longtext[:i], shorttext[:j])
		suffixLen := runesCommonPrefix(longtext[i+len(seed):], shorttext[j+len(seed):])
		if len(bestCommon) < prefixLen+suffixLen {
			bestCommon = append(append([]rune{}, shorttext[j-prefixLen:j]...), shorttext[j:j+len(seed)+suffixLen]...)
			bestLongtextA = longtext[:i-prefixLen]
			bestLongtextB = longtext[i+len(seed)+suffixLen:]
			bestShorttextA = shorttext[:j-prefixLen]
			bestShorttextB = shorttext[j+len(seed)+suffixLen:]
			best = j
		}
	}
	if best == -1 || len(bestCommon)*2 < len(longtext) {
		return nil
	}
	return []([]rune){bestLongtextA, bestLongtextB, bestShorttextA, bestShorttextB, bestCommon}
}

func runesIndexFrom(haystack, needle []rune, from int) int {
	if from >= len(haystack) {
		return -1
	}
	idx := runesIndex(haystack[from:], needle)
	if idx == -1 {
		return -1
	}
	return idx + from
}

func runesIndex(haystack, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}
	if len(needle) > len(haystack) {
		return -1
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if runesEqualAt(haystack, i, needle) {
			return i
		}
	}
	return -1
}

func runesEqualAt(haystack []rune, at int, needle []rune) bool {
	for i, r := range needle {
		if haystack[at+i] != r {
			return false
		}
	}
	return true
}

func runesCommonPrefix(r1, r2 []rune) int {
	n := minInt(len(r1), len(r2))
	for i := 0; i < n; i++ {
		if r1[i] != r2[i] {
			return i
		}
	}
	return n
}

func runesCommonSuffix(r1, r2 []rune) int {
	n := minInt(len(r1), len(r2))
	for i := 0; i < n; i++ {
		if r1[len(r1)-1-i] != r2[len(r2)-1-i] {
			return i
		}
	}
	return n
}

// diffCommonOverlap returns the length of the overlap between the end of
// text1 and the start of text2 (used by cleanup_semantic to trim
// inter-hunk overlaps).
func diffCommonOverlap(text1, text2 string) int {
	text1Length, text2Length := len(text1), len(text2)
	if text1Length == 0 || text2Length == 0 {
		return 0
	}
	if text1Length > text2Length {
		text1 = text1[text1Length-text2Length:]
	} else if text1Length < text2Length {
		text2 = text2[:text1Length]
	}
	textLength := minInt(text1Length, text2Length)
	if text1 == text2 {
		return textLength
	}

	best, length := 0, 1
	for {
		pattern := text1[textLength-length:]
		found := strings.Index(text2, pattern)
		if found == -1 {
			return best
		}
		length += found
		if found == 0 || text1[textLength-length:] == text2[:length] {
			best = length
			length++
		}
	}
}

// DiffCleanupSemantic removes trivial equalities and tries to trim
// overlapping edits so the result reads as semantically clean hunks.
func (e *Engine) DiffCleanupSemantic(diffs Diffs) Diffs {
	changes := false
	var equalities []int
	var lastEquality string
	pointer := 0
	var lengthInsertions1, lengthDeletions1 int
	var lengthInsertions2, lengthDeletions2 int

	for pointer < len(diffs) {
		if diffs[pointer].Op == DiffEqual {
			equalities = append(equalities, pointer)
			lengthInsertions1, lengthInsertions2 = lengthInsertions2, 0
			lengthDeletions1, lengthDeletions2 = lengthDeletions2, 0
			lastEquality = diffs[pointer].Text
		} else {
			if diffs[pointer].Op == DiffInsert {
				lengthInsertions2 += utf8.RuneCountInString(diffs[pointer].Text)
			} else {
				lengthDeletions2 += utf8.RuneCountInString(diffs[pointer].Text)
			}
			if lastEquality != "" && len(lastEquality) <= maxInt(lengthInsertions1, lengthDeletions1) &&
				len(lastEquality) <= maxInt(lengthInsertions2, lengthDeletions2) {
				idx := equalities[len(equalities)-1]
				diffs = splice(diffs, idx, 1, Diff{Op: DiffDelete, Text: lastEquality}, Diff{Op: DiffInsert, Text: lastEquality})
				equalities = equalities[:len(equalities)-1]
				if len(equalities) > 0 {
					equalities = equalities[:len(equalities)-1]
				}
				pointer = -1
				if len(equalities) > 0 {
					pointer = equalities[len(equalities)-1]
				}
				lengthInsertions1, lengthDeletions1 = 0, 0
				lengthInsertions2, lengthDeletions2 = 0, 0
				lastEquality = ""
				changes = true
			}
		}
		pointer++
	}

	if changes {
		diffs = diffCleanupMerge(diffs)
	}
	diffs = diffCleanupSemanticOverlap(diffs)
	return diffs
}

// diffCleanupSemanticOverlap trims runs of Delete immediately followed by
// Insert where one end overlaps the other, converting the overlap into a
// shared Equal diff.
func diffCleanupSemanticOverlap(diffs Diffs) Diffs {
	pointer := 1
	for pointer < len(diffs) {
		if diffs[pointer-1].Op == DiffDelete && diffs[pointer].Op == DiffInsert {
			deletion := diffs[pointer-1].Text
			insertion := diffs[pointer].Text
			overlapLength1 := diffCommonOverlap(deletion, insertion)
			overlapLength2 := diffCommonOverlap(insertion, deletion)
			if overlapLength1 >= overlapLength2 {
				if float64(overlapLength1) >= float64(len(deletion))/2 || float64(overlapLength1) >= float64(len(insertion))/2 {
					newOps := Diffs{
						{Op: DiffDelete, Text: deletion[:len(deletion)-overlapLength1]},
						{Op: DiffEqual, Text: insertion[:overlapLength1]},
						{Op: DiffInsert, Text: insertion[overlapLength1:]},
					}
					diffs = spliceDiffs(diffs, pointer-1, 2, newOps)
					pointer++
				}
			} else {
				if float64(overlapLength2) >= float64(len(deletion))/2 || float64(overlapLength2) >= float64(len(insertion))/2 {
					newOps := Diffs{
						{Op: DiffInsert, Text: insertion[:len(insertion)-overlapLength2]},
						{Op: DiffEqual, Text: deletion[:overlapLength2]},
						{Op: DiffDelete, Text: deletion[overlapLength2:]},
					}
					diffs = spliceDiffs(diffs, pointer-1, 2, newOps)
					pointer++
				}
			}
			pointer++
		}
		pointer++
	}
	return diffs
}

// DiffCleanupSemanticLossless shifts edit boundaries toward semantic
// boundaries (blank line > line break > sentence > whitespace >
// non-alphanumeric > none), so a diff that could equivalently start one
// character earlier or later picks the more readable split.
func (e *Engine) DiffCleanupSemanticLossless(diffs Diffs) Diffs {
	pointer := 1
	for pointer < len(diffs)-1 {
		if diffs[pointer-1].Op == DiffEqual && diffs[pointer+1].Op == DiffEqual {
			equality1 := diffs[pointer-1].Text
			edit := diffs[pointer].Text
			equality2 := diffs[pointer+1].Text

			commonOffset := diffCommonSuffixStr(equality1, edit)
			if commonOffset > 0 {
				commonString := edit[len(edit)-commonOffset:]
				equality1 = equality1[:len(equality1)-commonOffset]
				edit = commonString + edit[:len(edit)-commonOffset]
				equality2 = commonString + equality2
			}

			bestEquality1, bestEdit, bestEquality2 := equality1, edit, equality2
			bestScore := diffCleanupSemanticScore(equality1, edit) + diffCleanupSemanticScore(edit, equality2)
			for len(edit) != 0 && len(equality2) != 0 && edit[0] == equality2[0] {
				equality1 += string(edit[0])
				edit = edit[1:] + string(equality2[0])
				equality2 = equality2[1:]
				score := diffCleanupSemanticScore(equality1, edit) + diffCleanupSemanticScore(edit, equality2)
				if score >= bestScore {
					bestScore = score
					bestEquality1, bestEdit, bestEquality2 = equality1, edit, equality2
				}
			}

			if diffs[pointer-1].Text != bestEquality1 {
				if bestEquality1 != "" {
					diffs[pointer-1].Text = bestEquality1
				} else {
					diffs = spliceDiffs(diffs, pointer-1, 1, nil)
					pointer--
				}
				diffs[pointer].Text = bestEdit
				if bestEquality2 != "" {
					diffs[pointer+1].Text = bestEquality2
				} else {
					diffs = spliceDiffs(diffs, pointer+1, 1, nil)
					pointer--
				}
			}
		}
		pointer++
	}
	return diffs
}

func diffCommonSuffixStr(a, b string) int {
	return runesCommonSuffix([]rune(a), []rune(b))
}

var (
	reNonAlphaNumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)
	reWhitespace      = regexp.MustCompile(`\s`)
	reLinebreak       = regexp.MustCompile(`[\r\n]`)
	reBlanklineEnd    = regexp.MustCompile(`\n\r?\n\z`)
	reBlanklineStart  = regexp.MustCompile(`\A\r?\n\r?\n`)
)

// diffCleanupSemanticScore scores the boundary between one and two: higher
// is a more natural place to split an edit.
func diffCleanupSemanticScore(one, two string) int {
	if one == "" || two == "" {
		return 6
	}
	lastOne := []rune(one)[len([]rune(one))-1]
	firstTwo := []rune(two)[0]
	nonAlphaNumeric1 := reNonAlphaNumeric.MatchString(string(lastOne))
	nonAlphaNumeric2 := reNonAlphaNumeric.MatchString(string(firstTwo))
	whitespace1 := nonAlphaNumeric1 && reWhitespace.MatchString(string(lastOne))
	whitespace2 := nonAlphaNumeric2 && reWhitespace.MatchString(string(firstTwo))
	lineBreak1 := whitespace1 && reLinebreak.MatchString(string(lastOne))
	lineBreak2 := whitespace2 && reLinebreak.MatchString(string(firstTwo))
	blankLine1 := lineBreak1 && reBlanklineEnd.MatchString(one)
	blankLine2 := lineBreak2 && reBlanklineStart.MatchString(two)

	switch {
	case blankLine1 || blankLine2:
		return 5
	case lineBreak1 || lineBreak2:
		return 4
	case nonAlphaNumeric1 && !whitespace1 && whitespace2:
		return 3
	case whitespace1 || whitespace2:
		return 2
	case nonAlphaNumeric1 || nonAlphaNumeric2:
		return 1
	default:
		return 0
	}
}

// DiffCleanupEfficiency reduces the number of edits by eliminating
// operations that cost more to encode than they save, controlled by
// DiffEditCost.
func (e *Engine) DiffCleanupEfficiency(diffs Diffs) Diffs {
	changes := false
	var equalities []int
	var lastEquality string
	pointer := 0
	preIns, preDel, postIns, postDel := false, false, false, false

	for pointer < len(diffs) {
		if diffs[pointer].Op == DiffEqual {
			if len(diffs[pointer].Text) < e.DiffEditCost && (postIns || postDel) {
				equalities = append(equalities, pointer)
				preIns, preDel = postIns, postDel
				lastEquality = diffs[pointer].Text
			} else {
				equalities = nil
				lastEquality = ""
			}
			postIns, postDel = false, false
		} else {
			if diffs[pointer].Op == DiffDelete {
				postDel = true
			} else {
				postIns = true
			}
			sumPre := 0
			if preIns {
				sumPre++
			}
			if preDel {
				sumPre++
			}
			sumPost := 0
			if postIns {
				sumPost++
			}
			if postDel {
				sumPost++
			}
			if lastEquality != "" && ((preIns && preDel && postIns && postDel) ||
				((len(lastEquality) < e.DiffEditCost/2) && sumPre+sumPost == 3)) {
				idx := equalities[len(equalities)-1]
				diffs = splice(diffs, idx, 1, Diff{Op: DiffDelete, Text: lastEquality}, Diff{Op: DiffInsert, Text: lastEquality})
				equalities = equalities[:len(equalities)-1]
				lastEquality = ""
				if preIns && preDel {
					postIns, postDel = true, true
					equalities = nil
				} else {
					if len(equalities) > 0 {
						equalities = equalities[:len(equalities)-1]
					}
					pointer = -1
					if len(equalities) > 0 {
						pointer = equalities[len(equalities)-1]
					}
					postIns, postDel = false, false
				}
				changes = true
			}
		}
		pointer++
	}
	if changes {
		diffs = diffCleanupMerge(diffs)
	}
	return diffs
}

// diffCleanupMerge reorders and merges adjacent diffs of the same type and
// moves any edit split by equalities so Delete always precedes Insert.
func diffCleanupMerge(diffs Diffs) Diffs {
	return diffCleanupMergeSimple(diffs)
}

// diffCleanupMergeSimple is a clear, rune-safe reimplementation of
// cleanup_merge: coalesce runs of Delete/Insert, factor out any common
// prefix/suffix between them into neighboring Equal diffs, then merge
// adjacent Equal runs.
func diffCleanupMergeSimple(diffs Diffs) Diffs {
	result := make(Diffs, 0, len(diffs))
	i := 0
	for i < len(diffs) {
		if diffs[i].Op == DiffEqual {
			text := diffs[i].Text
			i++
			for i < len(diffs) && diffs[i].Op == DiffEqual {
				text += diffs[i].Text
				i++
			}
			if text != "" {
				if len(result) > 0 && result[len(result)-1].Op == DiffEqual {
					result[len(result)-1].Text += text
				} else {
					result = append(result, Diff{Op: DiffEqual, Text: text})
				}
			}
			continue
		}

		var del, ins strings.Builder
		for i < len(diffs) && diffs[i].Op != DiffEqual {
			if diffs[i].Op == DiffDelete {
				del.WriteString(diffs[i].Text)
			} else {
				ins.WriteString(diffs[i].Text)
			}
			i++
		}
		d, n := []rune(del.String()), []rune(ins.String())

		commonPrefix := runesCommonPrefix(d, n)
		var prefix string
		if commonPrefix > 0 {
			prefix = string(d[:commonPrefix])
			d = d[commonPrefix:]
			n = n[commonPrefix:]
		}
		commonSuffix := runesCommonSuffix(d, n)
		var suffix string
		if commonSuffix > 0 {
			suffix = string(d[len(d)-commonSuffix:])
			d = d[:len(d)-commonSuffix]
			n = n[:len(n)-commonSuffix]
		}

		if prefix != "" {
			if len(result) > 0 && result[len(result)-1].Op == DiffEqual {
				result[len(result)-1].Text += prefix
			} else {
				result = append(result, Diff{Op: DiffEqual, Text: prefix})
			}
		}
		if len(d) > 0 {
			result = append(result, Diff{Op: DiffDelete, Text: string(d)})
		}
		if len(n) > 0 {
			result = append(result, Diff{Op: DiffInsert, Text: string(n)})
		}
		if suffix != "" {
			result = append(result, Diff{Op: DiffEqual, Text: suffix})
		}
	}

	// Second pass: merge any Equal runs created by the suffix handling above.
	merged := make(Diffs, 0, len(result))
	for _, d := range result {
		if d.Text == "" {
			continue
		}
		if d.Op == DiffEqual && len(merged) > 0 && merged[len(merged)-1].Op == DiffEqual {
			merged[len(merged)-1].Text += d.Text
			continue
		}
		merged = append(merged, d)
	}
	return merged
}

func splice(diffs Diffs, index, amount int, elements ...Diff) Diffs {
	return spliceDiffs(diffs, index, amount, elements)
}

func spliceDiffs(diffs Diffs, index, amount int, elements Diffs) Diffs {
	result := make(Diffs, 0, len(diffs)-amount+len(elements))
	result = append(result, diffs[:index]...)
	result = append(result, elements...)
	result = append(result, diffs[index+amount:]...)
	return result
}

// DiffLevenshtein computes the Levenshtein distance implied by an edit
// script: each run of edits between two equalities counts as the larger
// of its inserted and deleted character counts.
func DiffLevenshtein(diffs Diffs) int {
	levenshtein := 0
	insertions, deletions := 0, 0
	for _, d := range diffs {
		switch d.Op {
		case DiffInsert:
			insertions += utf8.RuneCountInString(d.Text)
		case DiffDelete:
			deletions += utf8.RuneCountInString(d.Text)
		case DiffEqual:
			levenshtein += maxInt(insertions, deletions)
			insertions, deletions = 0, 0
		}
	}
	levenshtein += maxInt(insertions, deletions)
	return levenshtein
}

// DiffPrettyText renders diffs as inline plain-text markup, wrapping
// inserts in "{+...+}" and deletes in "[-...-]" and leaving equalities
// as they are, for the advisory failure report (spec §4.5.2, §9 supplement).
func DiffPrettyText(diffs Diffs) string {
	var sb strings.Builder
	for _, d := range diffs {
		switch d.Op {
		case DiffInsert:
			sb.WriteString("{+")
			sb.WriteString(d.Text)
			sb.WriteString("+}")
		case DiffDelete:
			sb.WriteString("[-")
			sb.WriteString(d.Text)
			sb.WriteString("-]")
		default:
			sb.WriteString(d.Text)
		}
	}
	return sb.String()
}

// DiffPrettyHTML renders diffs as an HTML fragment with <ins>/<del> spans,
// used by the default failure-report renderer.
func DiffPrettyHTML(diffs Diffs) string {
	var sb strings.Builder
	for _, d := range diffs {
		text := htmlEscape(d.Text)
		text = strings.ReplaceAll(text, "\n", "&para;<br>")
		switch d.Op {
		case DiffInsert:
			sb.WriteString(`<ins style="background:#e6ffe6;">`)
			sb.WriteString(text)
			sb.WriteString(`</ins>`)
		case DiffDelete:
			sb.WriteString(`<del style="background:#ffe6e6;">`)
			sb.WriteString(text)
			sb.WriteString(`</del>`)
		default:
			sb.WriteString(`<span>`)
			sb.WriteString(text)
			sb.WriteString(`</span>`)
		}
	}
	return sb.String()
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
