package align

// neighbors holds the eight adjacent and diagonal position offsets.
var neighbors = [8][2]int{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {-1, 1}, {1, -1}, {1, 1},
}

// Grow merges the two directional alignments of one sentence pair. The
// result starts as their intersection and grows by one sweep over the
// remaining union points in sorted (foreign, english) order: a point joins
// when one of its eight neighbors is already in the result and its foreign
// or english position is still uncovered. The sweep visits every point
// exactly once, so additions only influence points sorting after them.
func Grow(ae, af Set) Set {
	result := make(Set)
	coveredF := make(map[int]bool)
	coveredE := make(map[int]bool)
	for p := range ae {
		if af[p] {
			result.Add(p)
			coveredF[p.F] = true
			coveredE[p.E] = true
		}
	}

	union := make(Set, len(ae)+len(af))
	for p := range ae {
		union.Add(p)
	}
	for p := range af {
		union.Add(p)
	}

	for _, p := range union.Sorted() {
		if result[p] || !hasNeighbor(result, p) {
			continue
		}
		if coveredF[p.F] && coveredE[p.E] {
			continue
		}
		result.Add(p)
		coveredF[p.F] = true
		coveredE[p.E] = true
	}
	return result
}

func hasNeighbor(s Set, p Point) bool {
	for _, d := range neighbors {
		if s[Point{F: p.F + d[0], E: p.E + d[1]}] {
			return true
		}
	}
	return false
}
