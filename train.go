package walign

import (
	"fmt"

	"github.com/happyhackingspace/walign/corpus"
	"github.com/happyhackingspace/walign/ibm"
)

// TrainConfig holds configuration for training.
type TrainConfig struct {
	Order            int // model order, 1 or 2
	Model1Iterations int
	Model2Iterations int  // unused for model 1
	Progress         bool // render a progress bar per iteration
}

// DefaultTrainConfig returns the canonical schedule: model 2 warm-started
// with 5 model-1 iterations followed by 5 model-2 iterations.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Order:            ibm.Model2,
		Model1Iterations: 5,
		Model2Iterations: 5,
	}
}

// Train estimates alignment model parameters from a parallel corpus of one
// sentence per line, whitespace-tokenized, with line k of the english file
// translating line k of the foreign file.
func Train(englishPath, foreignPath string, config TrainConfig) (*Model, error) {
	c, err := corpus.Load(englishPath, foreignPath)
	if err != nil {
		return nil, fmt.Errorf("walign: %w", err)
	}
	params, err := ibm.Train(c, ibm.TrainConfig{
		Order:            config.Order,
		Model1Iterations: config.Model1Iterations,
		Model2Iterations: config.Model2Iterations,
		Progress:         config.Progress,
	})
	if err != nil {
		return nil, fmt.Errorf("walign: %w", err)
	}
	return &Model{params: params}, nil
}
