package cli

import (
	"fmt"

	"github.com/aaronromeo/mailsweep/internal/display"
	"github.com/aaronromeo/mailsweep/internal/exporter"
	"github.com/aaronromeo/mailsweep/internal/imap/actions"
	"github.com/aaronromeo/mailsweep/pkg/utils"
	"github.com/spf13/cobra"
)

// exportFiles is where export writes. Tests swap in an in-memory manager.
var exportFiles utils.FileManager = utils.OSFileManager{}

func newExportCmd(opts *rootOptions) *cobra.Command {
	filters := &filterFlags{}
	var force, yes bool
	cmd := &cobra.Command{
		Use:   "export [dir]",
		Short: "Save matching messages as .eml files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 && args[0] != "" {
				dir = args[0]
			}
			s, err := opts.settings(cmd)
			if err != nil {
				return err
			}
			crit, err := filters.criteria(s.DefaultFolder)
			if err != nil {
				return err
			}

			r, err := opts.open(cmd, s)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			defer r.close(ctx)
			out := cmd.OutOrStdout()

			res, err := r.client.Search(ctx, crit)
			if err != nil {
				return err
			}
			if err := display.Messages(out, res.Rows); err != nil {
				return err
			}
			if len(res.Rows) == 0 {
				return nil
			}

			if !yes {
				ok, err := confirm(cmd, fmt.Sprintf("Export %d message(s) to %s?", len(res.Rows), dir))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}

			groups := actions.GroupByMailbox(res.Rows, crit.Mailbox)
			sum, err := exporter.New(exportFiles, r.logger).Export(ctx, r.client, dir, groups, crit.AllMailboxes, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Exported %d message(s) to %s", sum.Exported, dir)
			if sum.Skipped > 0 {
				fmt.Fprintf(out, " (%d skipped, already exist)", sum.Skipped)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	filters.register(cmd, true)
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite files that already exist")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
