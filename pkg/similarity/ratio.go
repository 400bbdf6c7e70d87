package similarity

// ratio computes the classic sequence-matcher similarity between two rune
// sequences: 2*M/T where M is the total size of matched blocks and T the
// combined length. Matched blocks are found by recursively locating the
// longest common substring and matching to either side of it, which keeps
// the measure stable under small edits like trailing punctuation.
// The greedy block matching depends on argument order, so the arguments
// are put in canonical order first; ratio(a, b) == ratio(b, a).
func ratio(a, b string) float64 {
	if b < a {
		a, b = b, a
	}
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	matched := matchingBlocks(ra, rb, 0, len(ra), 0, len(rb))
	return 2.0 * float64(matched) / float64(total)
}

// matchingBlocks returns the total length of matched runes between
// a[alo:ahi] and b[blo:bhi].
func matchingBlocks(a, b []rune, alo, ahi, blo, bhi int) int {
	i, j, k := longestMatch(a, b, alo, ahi, blo, bhi)
	if k == 0 {
		return 0
	}
	total := k
	total += matchingBlocks(a, b, alo, i, blo, j)
	total += matchingBlocks(a, b, i+k, ahi, j+k, bhi)
	return total
}

// longestMatch finds the longest matching block in a[alo:ahi] and
// b[blo:bhi], returning its start in a, start in b, and length. Ties prefer
// the earliest block in a, then in b, matching the conventional behavior.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestk int) {
	// j2len[j] holds the length of the match ending at a[i-1], b[j-1].
	j2len := make(map[int]int)
	besti, bestj, bestk = alo, blo, 0

	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int, len(j2len))
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] {
				continue
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, bestk
}
