package ibm

// Align returns the most likely english position for each foreign position
// of one sentence pair. Entry i-1 holds the alignment of foreign position i;
// 0 marks alignment to NULL, which callers usually suppress in output. On
// ties the lowest english position wins: only a strictly greater score
// replaces the running best while scanning positions upward.
func (m *Model) Align(e, f []string) ([]int, error) {
	l := len(e)
	a := make([]int, len(f))

	for i := 1; i <= len(f); i++ {
		key := PosKey{I: i, L: l, M: len(f)}
		best := 0.0

		for j := 0; j <= l; j++ {
			tp, err := m.tProb(englishWord(e, j), f[i-1])
			if err != nil {
				return nil, err
			}
			score := tp
			if m.Order == Model2 {
				qp, err := m.qProb(key, j)
				if err != nil {
					return nil, err
				}
				score = qp * tp
			}
			if j == 0 || score > best {
				best = score
				a[i-1] = j
			}
		}
	}
	return a, nil
}
