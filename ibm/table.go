package ibm

import "fmt"

// Table is a sparse conditional probability table. Rows exist only for
// conditions inserted into the support; initialization and updates never
// introduce new entries.
type Table[C, O comparable] struct {
	rows map[C]map[O]float64
}

// NewTable creates an empty table.
func NewTable[C, O comparable]() *Table[C, O] {
	return &Table[C, O]{rows: make(map[C]map[O]float64)}
}

// Insert adds an outcome to a condition's support. Inserting an existing
// pair is a no-op.
func (t *Table[C, O]) Insert(cond C, outcome O) {
	row, ok := t.rows[cond]
	if !ok {
		row = make(map[O]float64)
		t.rows[cond] = row
	}
	if _, ok := row[outcome]; !ok {
		row[outcome] = 0
	}
}

// Init sets every entry of each row to 1/(row size), establishing the
// sum-to-1 invariant per condition.
func (t *Table[C, O]) Init() {
	for _, row := range t.rows {
		p := 1 / float64(len(row))
		for outcome := range row {
			row[outcome] = p
		}
	}
}

// Prob returns the probability for a (condition, outcome) pair. The second
// return value is false when the pair is outside the support.
func (t *Table[C, O]) Prob(cond C, outcome O) (float64, bool) {
	p, ok := t.rows[cond][outcome]
	return p, ok
}

// Set assigns a probability directly, creating the entry if needed. Table
// loading uses this; the training flow never does.
func (t *Table[C, O]) Set(cond C, outcome O, p float64) {
	row, ok := t.rows[cond]
	if !ok {
		row = make(map[O]float64)
		t.rows[cond] = row
	}
	row[outcome] = p
}

// Len returns the number of conditions in the support.
func (t *Table[C, O]) Len() int {
	return len(t.rows)
}

// Conds returns every condition in the support, in no particular order.
func (t *Table[C, O]) Conds() []C {
	conds := make([]C, 0, len(t.rows))
	for cond := range t.rows {
		conds = append(conds, cond)
	}
	return conds
}

// Outcomes returns the support row for a condition, in no particular order.
func (t *Table[C, O]) Outcomes(cond C) []O {
	row := t.rows[cond]
	outcomes := make([]O, 0, len(row))
	for outcome := range row {
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// Update replaces every entry with the ratio of its expected pair count to
// its conditional total. A support entry the counts never observed is a
// precondition violation: the expected counts must come from an E-step over
// the same corpus that built the support.
func (t *Table[C, O]) Update(counts *Counts[C, O]) error {
	for cond, row := range t.rows {
		total, ok := counts.total[cond]
		if !ok {
			return fmt.Errorf("no expected counts for condition %v", cond)
		}
		for outcome := range row {
			pair, ok := counts.pair[cond][outcome]
			if !ok {
				return fmt.Errorf("no expected count for (%v, %v)", cond, outcome)
			}
			row[outcome] = pair / total
		}
	}
	return nil
}

// Counts accumulates expected counts during one E-step: a joint count per
// (condition, outcome) pair and a marginal total per condition.
type Counts[C, O comparable] struct {
	pair  map[C]map[O]float64
	total map[C]float64
}

// NewCounts creates an empty accumulator.
func NewCounts[C, O comparable]() *Counts[C, O] {
	return &Counts[C, O]{
		pair:  make(map[C]map[O]float64),
		total: make(map[C]float64),
	}
}

// Add accumulates a responsibility, bumping both the joint count and the
// conditional total by the same amount.
func (c *Counts[C, O]) Add(cond C, outcome O, delta float64) {
	row, ok := c.pair[cond]
	if !ok {
		row = make(map[O]float64)
		c.pair[cond] = row
	}
	row[outcome] += delta
	c.total[cond] += delta
}
