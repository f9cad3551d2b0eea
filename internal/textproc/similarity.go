package textproc

// SequenceRatio scores two strings by the Ratcliff/Obershelp measure:
// twice the number of runes in matching blocks divided by the total length.
// The score is symmetric, 1.0 for identical input and 0.0 when no rune is
// shared. Comparison is order-sensitive and judges surface form only.
func SequenceRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}

	// Matching blocks depend on which side is scanned first when several
	// longest matches tie, so take the better of both orders.
	m := matchingRunes(ra, rb)
	if rev := matchingRunes(rb, ra); rev > m {
		m = rev
	}
	return 2.0 * float64(m) / float64(total)
}

// matchingRunes sums the sizes of the matching blocks found by recursively
// taking the longest common substring and recursing on both sides of it.
func matchingRunes(a, b []rune) int {
	type span struct{ alo, ahi, blo, bhi int }

	matched := 0
	queue := []span{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(a, b, s.alo, s.ahi, s.blo, s.bhi)
		if k == 0 {
			continue
		}
		matched += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return matched
}

// longestMatch finds the longest common run of a[alo:ahi] and b[blo:bhi].
// Among equally long runs the one starting earliest in a wins, then earliest in b.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestk int) {
	besti, bestj = alo, blo
	prev := make([]int, bhi-blo+1)
	cur := make([]int, bhi-blo+1)
	for i := alo; i < ahi; i++ {
		for j := blo; j < bhi; j++ {
			idx := j - blo + 1
			if a[i] != b[j] {
				cur[idx] = 0
				continue
			}
			k := prev[idx-1] + 1
			cur[idx] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		prev, cur = cur, prev
	}
	return besti, bestj, bestk
}
