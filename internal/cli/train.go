package cli

import (
	"log/slog"
	"time"

	"github.com/happyhackingspace/walign"
	"github.com/spf13/cobra"
)

func (c *CLI) newTrainCommand() *cobra.Command {
	config := walign.DefaultTrainConfig()
	var output string

	cmd := &cobra.Command{
		Use:   "train <english-corpus> <foreign-corpus>",
		Short: "Estimate alignment parameters from a parallel corpus",
		Args:  cobra.ExactArgs(2),
		Example: `  walign train corpus.en corpus.de
  walign train corpus.en corpus.de --model 1 --output params
  walign train corpus.en corpus.de --progress -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			englishPath, foreignPath := args[0], args[1]
			base := output
			if base == "" {
				base = englishPath
			}
			slog.Info("Training alignment model", "english", englishPath, "foreign", foreignPath, "model", config.Order)
			start := time.Now()
			m, err := walign.Train(englishPath, foreignPath, config)
			if err != nil {
				return err
			}
			slog.Debug("Training completed", "duration", time.Since(start))
			if err := m.Save(base); err != nil {
				return err
			}
			slog.Info("Parameters saved", "base", base)
			return nil
		},
	}

	cmd.Flags().IntVar(&config.Order, "model", config.Order, "IBM model to train (1 or 2)")
	cmd.Flags().IntVar(&config.Model1Iterations, "model1-iterations", config.Model1Iterations, "EM iterations under model 1")
	cmd.Flags().IntVar(&config.Model2Iterations, "model2-iterations", config.Model2Iterations, "EM iterations under model 2 (ignored for --model 1)")
	cmd.Flags().StringVar(&output, "output", "", "Base path for parameter files (default: the english corpus path)")
	cmd.Flags().BoolVar(&config.Progress, "progress", false, "Show a progress bar per EM iteration")
	return cmd
}
