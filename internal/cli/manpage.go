package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newManpageCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "manpage <dir>",
		Short:  "Generate man pages",
		Args:   cobra.ExactArgs(1),
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return errors.Wrapf(err, "create %s", dir)
			}
			header := &doc.GenManHeader{Title: "MAILSWEEP", Section: "1", Source: "mailsweep " + Version}
			if err := doc.GenManTree(cmd.Root(), header, dir); err != nil {
				return errors.Wrap(err, "generate man pages")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote man pages to %s\n", dir)
			return nil
		},
	}
}
