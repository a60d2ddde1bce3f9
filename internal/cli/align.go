package cli

import (
	"log/slog"
	"os"
	"time"

	"github.com/happyhackingspace/walign"
	"github.com/spf13/cobra"
)

func (c *CLI) newAlignCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "align <parameter-base> <english-corpus> <foreign-corpus>",
		Short: "Decode the best alignment for each sentence pair",
		Long: `Align loads trained parameters and writes one line per aligned word
to stdout, in the form "<pair> <english-position> <foreign-position>"
with 1-based positions. Words aligned to NULL are omitted.`,
		Args: cobra.ExactArgs(3),
		Example: `  walign align corpus.en corpus.en corpus.de > alignments.txt
  walign align params dev.en dev.de`,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, englishPath, foreignPath := args[0], args[1], args[2]
			m, err := walign.Load(base)
			if err != nil {
				return err
			}
			slog.Info("Aligning corpus", "base", base, "english", englishPath, "foreign", foreignPath)
			start := time.Now()
			if err := m.Align(englishPath, foreignPath, os.Stdout); err != nil {
				return err
			}
			slog.Debug("Alignment completed", "duration", time.Since(start))
			return nil
		},
	}
	return cmd
}
