package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

type rootOptions struct {
	configPath string
	host       string
	port       int
	tls        bool
	user       string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "mailsweep",
		Short:         "mailsweep searches IMAP mailboxes and applies batch actions to the hits",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Path to YAML config file (or set MAILSWEEP_CONFIG)")
	pf.StringVar(&opts.host, "host", "", "IMAP server host")
	pf.IntVar(&opts.port, "port", 0, "IMAP server port (default 993 with --tls, 1143 without)")
	pf.BoolVar(&opts.tls, "tls", false, "Use implicit TLS")
	pf.StringVarP(&opts.user, "user", "u", "", "IMAP username")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		newSearchCmd(opts),
		newCountCmd(opts),
		newDeleteCmd(opts),
		newMoveCmd(opts),
		newMarkCmd(opts),
		newExportCmd(opts),
		newStatusCmd(opts),
		newQuotaCmd(opts),
		newManpageCmd(),
	)
	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
