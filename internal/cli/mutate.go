package cli

import (
	"fmt"
	"strings"

	"github.com/aaronromeo/mailsweep/internal/config"
	"github.com/aaronromeo/mailsweep/internal/display"
	"github.com/aaronromeo/mailsweep/internal/imap/actions"
	"github.com/spf13/cobra"
)

type mutateFlags struct {
	dryRun bool
	yes    bool
}

func (m *mutateFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&m.dryRun, "dry-run", false, "Show what would change without changing anything")
	cmd.Flags().BoolVarP(&m.yes, "yes", "y", false, "Skip the confirmation prompt")
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	filters := &filterFlags{}
	mutate := &mutateFlags{}
	var trash string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Move matching messages to the trash mailbox",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.settings(cmd)
			if err != nil {
				return err
			}
			dest := strings.TrimSpace(trash)
			if dest == "" {
				dest = s.TrashFolder
			}
			return searchAndMove(cmd, opts, s, filters, mutate, dest, "delete")
		},
	}
	filters.register(cmd, true)
	mutate.register(cmd)
	cmd.Flags().StringVar(&trash, "trash-folder", "", "Trash mailbox (default from config, Trash)")
	return cmd
}

func newMoveCmd(opts *rootOptions) *cobra.Command {
	filters := &filterFlags{}
	mutate := &mutateFlags{}
	cmd := &cobra.Command{
		Use:   "move <destination>",
		Short: "Move matching messages to another mailbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.settings(cmd)
			if err != nil {
				return err
			}
			dest := strings.TrimSpace(args[0])
			if dest == "" {
				return fmt.Errorf("destination mailbox is required")
			}
			return searchAndMove(cmd, opts, s, filters, mutate, dest, "move")
		},
	}
	filters.register(cmd, true)
	mutate.register(cmd)
	return cmd
}

func searchAndMove(cmd *cobra.Command, opts *rootOptions, s config.Settings, filters *filterFlags, mutate *mutateFlags, dest, action string) error {
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
	if len(res.Rows) == 0 {
		fmt.Fprintln(out, "No messages match the criteria.")
		return nil
	}
	if err := display.Messages(out, res.Rows); err != nil {
		return err
	}

	if mutate.dryRun {
		fmt.Fprintf(out, "Dry run: %d message(s) would be moved to %s.\n", len(res.Rows), dest)
		return nil
	}

	if err := r.client.EnsureMailbox(ctx, dest); err != nil {
		return fmt.Errorf("%w. Use `mailsweep status` to list available mailboxes", err)
	}

	if !mutate.yes {
		ok, err := confirm(cmd, fmt.Sprintf("Move %d message(s) to %s?", len(res.Rows), dest))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	groups := actions.GroupByMailbox(res.Rows, crit.Mailbox)
	n, err := r.client.MoveByMailbox(ctx, groups, dest)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Moved %d message(s) to %s.\n", n, dest)
	delete(groups, dest)
	r.announceAll(ctx, action, groups)
	return nil
}

func newMarkCmd(opts *rootOptions) *cobra.Command {
	filters := &filterFlags{}
	mutate := &mutateFlags{}
	var read, unread, flagged, unflagged bool
	cmd := &cobra.Command{
		Use:   "mark",
		Short: "Set or clear the seen and flagged flags on matching messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ops, err := actions.FlagOps(read, unread, flagged, unflagged)
			if err != nil {
				return err
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
			if len(res.Rows) == 0 {
				fmt.Fprintln(out, "No messages match the criteria.")
				return nil
			}
			if err := display.Messages(out, res.Rows); err != nil {
				return err
			}

			desc := actions.DescribeFlagOps(ops)
			if mutate.dryRun {
				fmt.Fprintf(out, "Dry run: would %s %d message(s).\n", desc, len(res.Rows))
				return nil
			}
			if !mutate.yes {
				ok, err := confirm(cmd, fmt.Sprintf("%s %d message(s)?", desc, len(res.Rows)))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}

			groups := actions.GroupByMailbox(res.Rows, crit.Mailbox)
			n, err := r.client.StoreFlagsByMailbox(ctx, groups, ops)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Updated %d message(s).\n", n)
			r.announceAll(ctx, "mark", groups)
			return nil
		},
	}
	filters.register(cmd, true)
	mutate.register(cmd)
	cmd.Flags().BoolVar(&read, "read", false, "Mark as read")
	cmd.Flags().BoolVar(&unread, "unread", false, "Mark as unread")
	cmd.Flags().BoolVar(&flagged, "flagged", false, "Flag")
	cmd.Flags().BoolVar(&unflagged, "unflagged", false, "Remove the flag")
	return cmd
}
