package metricscalculator

import "sort"

// OpTag identifies one kind of alignment operation between two rune sequences.
type OpTag string

const (
	OpEqual   OpTag = "equal"
	OpReplace OpTag = "replace"
	OpDelete  OpTag = "delete"
	OpInsert  OpTag = "insert"
)

// OpCode describes a single alignment operation over half-open index ranges:
// a[I1:I2] relates to b[J1:J2] according to Tag. The opcode sequence returned
// by Opcodes covers both sequences completely and in order.
type OpCode struct {
	Tag            OpTag
	I1, I2, J1, J2 int
}

// matchBlock is a run of identical runes: a[A:A+Size] == b[B:B+Size].
type matchBlock struct {
	A, B, Size int
}

// Opcodes computes the greedy longest-matching-blocks alignment between a and b
// and decomposes it into edit operations. The aligner repeatedly takes the
// longest run of identical runes (earliest in a, then earliest in b, on ties)
// and recurses on the pieces to its left and right. This is deliberately NOT a
// minimum-edit-distance alignment: the operation counts it produces are the
// compatibility contract for all historical CER numbers and must not be
// replaced by a true Levenshtein decomposition.
func Opcodes(a, b string) []OpCode {
	ra := []rune(a)
	rb := []rune(b)
	blocks := matchingBlocks(ra, rb)

	opcodes := make([]OpCode, 0, len(blocks)*2)
	i, j := 0, 0
	for _, blk := range blocks {
		var tag OpTag
		switch {
		case i < blk.A && j < blk.B:
			tag = OpReplace
		case i < blk.A:
			tag = OpDelete
		case j < blk.B:
			tag = OpInsert
		}
		if tag != "" {
			opcodes = append(opcodes, OpCode{Tag: tag, I1: i, I2: blk.A, J1: j, J2: blk.B})
		}
		i, j = blk.A+blk.Size, blk.B+blk.Size
		if blk.Size > 0 {
			opcodes = append(opcodes, OpCode{Tag: OpEqual, I1: blk.A, I2: i, J1: blk.B, J2: j})
		}
	}
	return opcodes
}

// matchingBlocks finds all maximal matching runs via divide and conquer around
// the longest match of each region, then merges adjacent runs. The final
// sentinel block (len(a), len(b), 0) lets opcode construction flush trailing
// delete/insert/replace ranges.
func matchingBlocks(a, b []rune) []matchBlock {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	type region struct{ alo, ahi, blo, bhi int }
	queue := []region{{0, len(a), 0, len(b)}}
	var matched []matchBlock
	for len(queue) > 0 {
		reg := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		m := longestMatch(a, b2j, reg.alo, reg.ahi, reg.blo, reg.bhi)
		if m.Size == 0 {
			continue
		}
		matched = append(matched, m)
		if reg.alo < m.A && reg.blo < m.B {
			queue = append(queue, region{reg.alo, m.A, reg.blo, m.B})
		}
		if m.A+m.Size < reg.ahi && m.B+m.Size < reg.bhi {
			queue = append(queue, region{m.A + m.Size, reg.ahi, m.B + m.Size, reg.bhi})
		}
	}
	sort.Slice(matched, func(x, y int) bool {
		if matched[x].A != matched[y].A {
			return matched[x].A < matched[y].A
		}
		return matched[x].B < matched[y].B
	})

	// Collapse runs that happen to be adjacent in both sequences.
	blocks := make([]matchBlock, 0, len(matched)+1)
	for _, m := range matched {
		if n := len(blocks); n > 0 && blocks[n-1].A+blocks[n-1].Size == m.A && blocks[n-1].B+blocks[n-1].Size == m.B {
			blocks[n-1].Size += m.Size
			continue
		}
		blocks = append(blocks, m)
	}
	return append(blocks, matchBlock{A: len(a), B: len(b), Size: 0})
}

// longestMatch finds the longest run of identical runes within
// a[alo:ahi] and b[blo:bhi]. Ties resolve to the run starting earliest in a,
// and among those, earliest in b.
func longestMatch(a []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) matchBlock {
	besti, bestj, bestsize := alo, blo, 0
	// runLens[j] is the length of the matching run ending at a[i-1], b[j].
	runLens := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newRunLens := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := runLens[j-1] + 1
			newRunLens[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		runLens = newRunLens
	}
	return matchBlock{A: besti, B: bestj, Size: bestsize}
}
