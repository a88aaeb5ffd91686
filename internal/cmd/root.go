package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/vmarkdev/vmark/internal/version"
)

var fChdir string

// Root builds the command tree for the maintenance CLI that ships
// alongside the editor.
func Root() *cobra.Command {
	cmd := cobra.Command{
		Use:           "vmark",
		Short:         "Markdown editor maintenance commands",
		Version:       version.Full(),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if fChdir == "" || fChdir == "." {
				return nil
			}
			return errors.Wrapf(os.Chdir(fChdir), "chdir to %q", fChdir)
		},
	}

	pflags := cmd.PersistentFlags()
	pflags.StringVar(&fChdir, "chdir", ".", "Switch to a different working directory first.")

	cmd.AddCommand(fmtCmd())
	cmd.AddCommand(lsCmd())
	cmd.AddCommand(historyCmd())

	return &cmd
}
