// Package ibm implements IBM translation models 1 and 2 for unsupervised
// word alignment.
//
// A model holds two sparse probability tables estimated from a parallel
// corpus by expectation-maximization: the translation table t(f|e) over
// english/foreign word pairs and, for model 2, the distortion table
// q(j|i,l,m) over sentence positions. Position j = 0 is the reserved NULL
// word; positions are otherwise 1-based.
package ibm

import (
	"fmt"

	"github.com/happyhackingspace/walign/corpus"
)

// NULL is the reserved english word that absorbs foreign words with no
// source-language counterpart. It occupies english position 0.
const NULL = "NULL"

// Model orders.
const (
	Model1 = 1
	Model2 = 2
)

// PosKey identifies a distortion table row: foreign position I within a
// sentence pair of english length L and foreign length M.
type PosKey struct {
	I, L, M int
}

// Model holds the translation parameters. T maps english words to foreign
// word probabilities, t(f|e). Q maps position keys to english position
// probabilities, q(j|i,l,m); it stays empty for model 1.
type Model struct {
	Order int
	T     *Table[string, string]
	Q     *Table[PosKey, int]
}

// NewModel creates an empty model of the given order.
func NewModel(order int) *Model {
	return &Model{
		Order: order,
		T:     NewTable[string, string](),
		Q:     NewTable[PosKey, int](),
	}
}

// BuildSupport creates the sparse parameter entries the corpus can exercise.
// Every english word gains the foreign words it co-occurs with, NULL gains
// every foreign word in the corpus, and for model 2 every foreign position
// gains the english positions 0..l of its sentence pair.
func (m *Model) BuildSupport(c *corpus.Corpus) {
	for k := range c.Len() {
		esent, fsent := c.English[k], c.Foreign[k]
		for _, f := range fsent {
			m.T.Insert(NULL, f)
			for _, e := range esent {
				m.T.Insert(e, f)
			}
		}
		if m.Order == Model2 {
			key := PosKey{L: len(esent), M: len(fsent)}
			for i := range fsent {
				key.I = i + 1
				for j := 0; j <= len(esent); j++ {
					m.Q.Insert(key, j)
				}
			}
		}
	}
}

// Init sets uniform initial guesses for every supported entry.
func (m *Model) Init() {
	m.T.Init()
	m.Q.Init()
}

// englishWord returns the candidate word at english position j, with
// position 0 reserved for NULL.
func englishWord(e []string, j int) string {
	if j == 0 {
		return NULL
	}
	return e[j-1]
}

func (m *Model) tProb(e, f string) (float64, error) {
	p, ok := m.T.Prob(e, f)
	if !ok {
		return 0, fmt.Errorf("t(%q|%q) not in support", f, e)
	}
	return p, nil
}

func (m *Model) qProb(key PosKey, j int) (float64, error) {
	p, ok := m.Q.Prob(key, j)
	if !ok {
		return 0, fmt.Errorf("q(%d|%d,%d,%d) not in support", j, key.I, key.L, key.M)
	}
	return p, nil
}
