// Package similarity scores how much of two strings' content is
// mutually, order-preservingly matchable. The score is the classic
// longest-matching-blocks ratio: 2*M/T, where M is the total length of
// the matched blocks across the best alignment and T is the combined
// length of both strings.
//
// Callers are expected to normalize their inputs first; no case folding
// or cleanup happens here.
package similarity

// Ratio returns a symmetric similarity score in [0, 1] between a and b,
// measured over runes.
//
// Contracts: Ratio(a, a) == 1 for any a (including empty), Ratio(a, b) ==
// Ratio(b, a), and Ratio("", x) == 0 for non-empty x.
func Ratio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)

	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}

	m := newMatcher(ra, rb)
	matched := 0
	for _, blk := range m.matchingBlocks() {
		matched += blk.size
	}
	return 2.0 * float64(matched) / float64(total)
}

type block struct {
	a, b, size int
}

type matcher struct {
	a, b []rune
	// b2j maps each rune of b to its positions, ascending.
	b2j map[rune][]int
}

func newMatcher(a, b []rune) *matcher {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}
	return &matcher{a: a, b: b, b2j: b2j}
}

// longestMatch finds the longest block of equal runes with
// a[besti:besti+size] == b[bestj:bestj+size], besti in [alo, ahi) and
// bestj in [blo, bhi). Ties go to the block starting earliest in a,
// then earliest in b, which keeps the alignment deterministic.
func (m *matcher) longestMatch(alo, ahi, blo, bhi int) block {
	best := block{a: alo, b: blo, size: 0}

	// j2len[j] is the length of the longest match ending at a[i-1], b[j].
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > best.size {
				best = block{a: i - k + 1, b: j - k + 1, size: k}
			}
		}
		j2len = newj2len
	}
	return best
}

// matchingBlocks returns the non-overlapping matching blocks of the best
// alignment, found by recursively splitting around the longest match.
func (m *matcher) matchingBlocks() []block {
	type span struct {
		alo, ahi, blo, bhi int
	}

	queue := []span{{0, len(m.a), 0, len(m.b)}}
	var blocks []block

	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		blk := m.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if blk.size == 0 {
			continue
		}
		blocks = append(blocks, blk)
		if s.alo < blk.a && s.blo < blk.b {
			queue = append(queue, span{s.alo, blk.a, s.blo, blk.b})
		}
		if blk.a+blk.size < s.ahi && blk.b+blk.size < s.bhi {
			queue = append(queue, span{blk.a + blk.size, s.ahi, blk.b + blk.size, s.bhi})
		}
	}
	return blocks
}
