package ibm

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/cheggaaa/pb/v3"
	"gonum.org/v1/gonum/floats"

	"github.com/happyhackingspace/walign/corpus"
)

// TrainConfig holds the EM training schedule.
type TrainConfig struct {
	Order            int // 1 or 2
	Model1Iterations int
	Model2Iterations int  // unused for model 1
	Progress         bool // render a progress bar per iteration
}

// DefaultTrainConfig returns the canonical schedule: model 2 warm-started
// with 5 model-1 iterations followed by 5 model-2 iterations.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Order:            Model2,
		Model1Iterations: 5,
		Model2Iterations: 5,
	}
}

// Train estimates model parameters on a parallel corpus. Model 2 is
// warm-started: the translation table is refined alone by model-1
// iterations before the distortion table joins in.
func Train(c *corpus.Corpus, config TrainConfig) (*Model, error) {
	if config.Order != Model1 && config.Order != Model2 {
		return nil, fmt.Errorf("unknown model order %d", config.Order)
	}
	if config.Model1Iterations < 0 || config.Model2Iterations < 0 {
		return nil, fmt.Errorf("negative iteration count")
	}
	if len(c.English) != len(c.Foreign) {
		return nil, fmt.Errorf("corpus is not aligned: %d english sentences, %d foreign sentences",
			len(c.English), len(c.Foreign))
	}

	model := NewModel(config.Order)

	slog.Debug("Building sparse parameter support", "pairs", c.Len())
	model.BuildSupport(c)
	model.Init()

	if err := model.runIterations(c, Model1, config.Model1Iterations, config.Progress); err != nil {
		return nil, err
	}
	if config.Order == Model2 {
		if err := model.runIterations(c, Model2, config.Model2Iterations, config.Progress); err != nil {
			return nil, err
		}
	}
	return model, nil
}

func (m *Model) runIterations(c *corpus.Corpus, order, iterations int, progress bool) error {
	for n := range iterations {
		var bar *pb.ProgressBar
		if progress {
			bar = pb.New(c.Len())
			bar.SetWriter(os.Stderr)
			bar.Start()
		}
		ll, err := m.emStep(c, order, bar)
		if bar != nil {
			bar.Finish()
		}
		if err != nil {
			return err
		}
		slog.Debug("EM iteration complete",
			"model", order, "iteration", n+1, "log_likelihood", ll)
	}
	return nil
}

// EMStep runs one expectation-maximization pass over the whole corpus under
// the given model order and returns the corpus log-likelihood under the
// parameters in effect during the pass. Within one order, the returned
// value never decreases across successive calls.
func (m *Model) EMStep(c *corpus.Corpus, order int) (float64, error) {
	return m.emStep(c, order, nil)
}

func (m *Model) emStep(c *corpus.Corpus, order int, bar *pb.ProgressBar) (float64, error) {
	if order != Model1 && order != Model2 {
		return 0, fmt.Errorf("unknown model order %d", order)
	}
	if order == Model2 && m.Order != Model2 {
		return 0, fmt.Errorf("model of order %d cannot run model-2 iterations", m.Order)
	}

	tCounts := NewCounts[string, string]()
	qCounts := NewCounts[PosKey, int]()
	ll := 0.0

	for k := range c.Len() {
		esent, fsent := c.English[k], c.Foreign[k]
		l := len(esent)
		scores := make([]float64, l+1)

		for i := 1; i <= len(fsent); i++ {
			f := fsent[i-1]
			key := PosKey{I: i, L: l, M: len(fsent)}

			// E-step: score every english position for this foreign
			// token. Each position is its own hidden variable, so a
			// word type repeated at two positions contributes twice.
			for j := 0; j <= l; j++ {
				tp, err := m.tProb(englishWord(esent, j), f)
				if err != nil {
					return 0, err
				}
				scores[j] = tp
				if order == Model2 {
					qp, err := m.qProb(key, j)
					if err != nil {
						return 0, err
					}
					scores[j] = qp * tp
				}
			}

			z := floats.Sum(scores)
			floats.Scale(1/z, scores)
			ll += math.Log(z)

			for j := 0; j <= l; j++ {
				tCounts.Add(englishWord(esent, j), f, scores[j])
				if order == Model2 {
					qCounts.Add(key, j, scores[j])
				}
			}
		}

		if bar != nil {
			bar.Increment()
		}
	}

	// M-step: every probability becomes the ratio of its expected counts.
	if err := m.T.Update(tCounts); err != nil {
		return 0, fmt.Errorf("update translation table: %w", err)
	}
	if order == Model2 {
		if err := m.Q.Update(qCounts); err != nil {
			return 0, fmt.Errorf("update distortion table: %w", err)
		}
	}
	return ll, nil
}
