// Package walign aligns words between sentences in two languages.
//
// A model is trained without supervision on a parallel corpus (IBM
// translation models 1 and 2, estimated by EM), then used to find the most
// likely english word for each foreign word of new sentence pairs.
// Alignments decoded in both translation directions can be merged into a
// single denser alignment with Improve.
//
//	m, _ := walign.Train("corpus.en", "corpus.fr", walign.DefaultTrainConfig())
//	_ = m.Save("corpus.en")
//	_ = m.Align("test.en", "test.fr", os.Stdout)
package walign

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/happyhackingspace/walign/align"
	"github.com/happyhackingspace/walign/corpus"
	"github.com/happyhackingspace/walign/ibm"
)

// Model wraps trained translation model parameters.
type Model struct {
	params *ibm.Model
}

// Load reads a model previously written by Save. The model order is
// detected from the files present: a distortion table next to the
// translation table means model 2.
func Load(base string) (*Model, error) {
	order := ibm.Model1
	if _, err := os.Stat(base + ibm.DistortionExt); err == nil {
		order = ibm.Model2
	}
	params, err := ibm.LoadModel(base, order)
	if err != nil {
		return nil, fmt.Errorf("walign: %w", err)
	}
	return &Model{params: params}, nil
}

// Save writes the model tables next to the given base path: the
// translation table to base+".tfe" and, for model 2, the distortion table
// to base+".qji".
func (m *Model) Save(base string) error {
	if m.params == nil {
		return fmt.Errorf("walign: model not initialized")
	}
	if err := ibm.SaveModel(m.params, base); err != nil {
		return fmt.Errorf("walign: %w", err)
	}
	return nil
}

// Align decodes the most likely alignment for every sentence pair of a
// parallel corpus and writes one "<k> <english-position> <foreign-position>"
// line per non-NULL link to w, with k the 1-based pair index.
func (m *Model) Align(englishPath, foreignPath string, w io.Writer) error {
	if m.params == nil {
		return fmt.Errorf("walign: model not initialized")
	}
	c, err := corpus.Load(englishPath, foreignPath)
	if err != nil {
		return fmt.Errorf("walign: %w", err)
	}

	bw := bufio.NewWriter(w)
	for k := range c.Len() {
		a, err := m.params.Align(c.English[k], c.Foreign[k])
		if err != nil {
			return fmt.Errorf("walign: align pair %d: %w", k+1, err)
		}
		for i, j := range a {
			if j == 0 {
				continue
			}
			if _, err := fmt.Fprintf(bw, "%d %d %d\n", k+1, j, i+1); err != nil {
				return fmt.Errorf("walign: %w", err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("walign: %w", err)
	}
	return nil
}

// Improve merges two directional alignment files, growing each sentence
// pair's alignment from the intersection of the two decodes, and writes one
// "<k> <foreign-position> <english-position>" line per non-NULL link to w,
// sorted by position. The english file carries the decoder's
// "<k> <english> <foreign>" lines; the foreign file carries
// "<k> <foreign> <english>" lines from decoding the swapped corpus.
func Improve(englishAlignments, foreignAlignments string, w io.Writer) error {
	ae, err := readAlignmentFile(englishAlignments, align.EnglishSource)
	if err != nil {
		return fmt.Errorf("walign: read english alignments: %w", err)
	}
	af, err := readAlignmentFile(foreignAlignments, align.ForeignSource)
	if err != nil {
		return fmt.Errorf("walign: read foreign alignments: %w", err)
	}
	if len(ae) != len(af) {
		return fmt.Errorf("walign: alignment files disagree: %d english sentences, %d foreign sentences",
			len(ae), len(af))
	}

	bw := bufio.NewWriter(w)
	for k := 1; k <= len(ae); k++ {
		aeSet, ok := ae[k]
		if !ok {
			return fmt.Errorf("walign: sentence %d missing from english alignments", k)
		}
		afSet, ok := af[k]
		if !ok {
			return fmt.Errorf("walign: sentence %d missing from foreign alignments", k)
		}
		for _, p := range align.Grow(aeSet, afSet).Sorted() {
			if p.E == 0 {
				continue
			}
			if _, err := fmt.Fprintf(bw, "%d %d %d\n", k, p.F, p.E); err != nil {
				return fmt.Errorf("walign: %w", err)
			}
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("walign: %w", err)
	}
	return nil
}

func readAlignmentFile(path string, dir align.Direction) (align.Sets, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return align.ReadSets(file, dir)
}
