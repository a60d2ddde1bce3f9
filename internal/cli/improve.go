package cli

import (
	"log/slog"
	"os"

	"github.com/happyhackingspace/walign"
	"github.com/spf13/cobra"
)

func (c *CLI) newImproveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "improve <english-alignments> <foreign-alignments>",
		Short: "Symmetrize alignments from both translation directions",
		Long: `Improve combines alignments decoded in the english-to-foreign and
foreign-to-english directions. It keeps the points both directions agree
on and grows that set with neighboring points proposed by either
direction. The result is written to stdout, one line per aligned word in
the form "<pair> <foreign-position> <english-position>".`,
		Args: cobra.ExactArgs(2),
		Example: `  walign improve alignments.ef alignments.fe > combined.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.Info("Symmetrizing alignments", "english", args[0], "foreign", args[1])
			return walign.Improve(args[0], args[1], os.Stdout)
		},
	}
	return cmd
}
