package dmp

import "math"

// MatchMain locates the best fuzzy match of pattern in text near loc. An
// exact hit wins immediately; otherwise a bitap search is used. Returns -1
// if nothing scores within MatchThreshold.
func (e *Engine) MatchMain(text, pattern string, loc int) int {
	r := []rune(text)
	loc = maxInt(0, minInt(loc, len(r)))

	if text == pattern {
		return 0
	}
	if len(r) == 0 {
		return -1
	}
	pr := []rune(pattern)
	if loc+len(pr) <= len(r) && string(r[loc:loc+len(pr)]) == pattern {
		return loc
	}
	return e.matchBitap(r, pr, loc)
}

// matchBitap implements the bitap fuzzy-search algorithm: a 64-bit
// alphabet bitmask tracks, for each allowed error count, which positions
// are still a possible partial match.
func (e *Engine) matchBitap(text, pattern []rune, loc int) int {
	if len(pattern) > e.MatchMaxBits {
		panic("dmp: pattern too long for MatchMain")
	}

	alphabet := e.matchAlphabet(pattern)

	scoreThreshold := e.MatchThreshold
	bestLoc := runesIndexFrom(text, pattern, loc)
	if bestLoc != -1 {
		scoreThreshold = minFloat(e.matchBitapScore(0, bestLoc, loc, pattern), scoreThreshold)
		if bestLoc2 := runesLastIndexBefore(text, pattern, loc+len(pattern)); bestLoc2 != -1 {
			scoreThreshold = minFloat(scoreThreshold, e.matchBitapScore(0, bestLoc2, loc, pattern))
		}
	}

	var matchmask uint64 = 1 << uint(len(pattern)-1)
	bestLoc = -1

	binMax := len(pattern) + len(text)
	var lastRd []uint64
	for d := 0; d < len(pattern); d++ {
		binMin := 0
		binMid := binMax
		for binMin < binMid {
			if e.matchBitapScore(d, loc+binMid, loc, pattern) <= scoreThreshold {
				binMin = binMid
			} else {
				binMax = binMid
			}
			binMid = (binMax-binMin)/2 + binMin
		}
		binMax = binMid

		start := maxInt(1, loc-binMid+1)
		finish := minInt(loc+binMid, len(text)) + len(pattern)

		rd := make([]uint64, finish+2)
		rd[finish+1] = (1 << uint(d)) - 1
		for j := finish; j >= start; j-- {
			var charMatch uint64
			if j-1 < len(text) {
				charMatch = alphabet[text[j-1]]
			}
			if d == 0 {
				rd[j] = ((rd[j+1] << 1) | 1) & charMatch
			} else {
				rd[j] = (((rd[j+1]<<1)|1)&charMatch | (((lastRd[j+1] | lastRd[j]) << 1) | 1) | lastRd[j+1])
			}
			if rd[j]&matchmask != 0 {
				score := e.matchBitapScore(d, j-1, loc, pattern)
				if score <= scoreThreshold {
					scoreThreshold = score
					bestLoc = j - 1
					if bestLoc > loc {
						start = maxInt(1, 2*loc-bestLoc)
					} else {
						break
					}
				}
			}
		}
		if e.matchBitapScore(d+1, loc, loc, pattern) > scoreThreshold {
			break
		}
		lastRd = rd
	}
	return bestLoc
}

func (e *Engine) matchBitapScore(errs, loc, matchLoc int, pattern []rune) float64 {
	accuracy := float64(errs) / float64(len(pattern))
	proximity := math.Abs(float64(loc - matchLoc))
	if e.MatchDistance == 0 {
		if proximity == 0 {
			return accuracy
		}
		return 1.0
	}
	return accuracy + proximity/float64(e.MatchDistance)
}

func (e *Engine) matchAlphabet(pattern []rune) map[rune]uint64 {
	m := map[rune]uint64{}
	for i, r := range pattern {
		bit := m[r]
		bit |= 1 << uint(len(pattern)-i-1)
		m[r] = bit
	}
	return m
}

// runesLastIndexBefore returns the last index at or before `before` where
// needle occurs in haystack.
func runesLastIndexBefore(haystack, needle []rune, before int) int {
	if len(needle) == 0 {
		return minInt(before, len(haystack))
	}
	start := minInt(before, len(haystack)-len(needle))
	for i := start; i >= 0; i-- {
		if runesEqualAt(haystack, i, needle) {
			return i
		}
	}
	return -1
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
