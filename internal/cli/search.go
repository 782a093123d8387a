package cli

import (
	"github.com/aaronromeo/mailsweep/internal/display"
	"github.com/spf13/cobra"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	filters := &filterFlags{}
	cmd := &cobra.Command{
		Use:   "search",
		Short: "List messages matching the filters, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			res, err := r.client.Search(ctx, crit)
			if err != nil {
				return err
			}
			return display.Messages(cmd.OutOrStdout(), res.Rows)
		},
	}
	filters.register(cmd, true)
	return cmd
}

func newCountCmd(opts *rootOptions) *cobra.Command {
	filters := &filterFlags{}
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count messages matching the filters without fetching them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			res, err := r.client.Count(ctx, crit)
			if err != nil {
				return err
			}
			return display.Counts(cmd.OutOrStdout(), res)
		},
	}
	filters.register(cmd, false)
	return cmd
}
