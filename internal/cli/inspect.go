package cli

import (
	"errors"
	"fmt"

	"github.com/aaronromeo/mailsweep/internal/display"
	"github.com/aaronromeo/mailsweep/internal/imap/base"
	"github.com/spf13/cobra"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show message, unseen and recent counts for every mailbox",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.settings(cmd)
			if err != nil {
				return err
			}
			r, err := opts.open(cmd, s)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			defer r.close(ctx)

			names, err := r.client.ListMailboxes(ctx)
			if err != nil {
				return err
			}
			rows, err := r.client.MailboxStatus(ctx, names)
			if err != nil {
				return err
			}
			return display.Status(cmd.OutOrStdout(), rows)
		},
	}
}

func newQuotaCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show storage quota usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.settings(cmd)
			if err != nil {
				return err
			}
			r, err := opts.open(cmd, s)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			defer r.close(ctx)

			resources, err := r.client.Quota(ctx)
			if errors.Is(err, base.ErrUnsupported) {
				return fmt.Errorf("server does not support the QUOTA extension (RFC 2087)")
			}
			if err != nil {
				return err
			}
			return display.Quota(cmd.OutOrStdout(), resources)
		},
	}
}
