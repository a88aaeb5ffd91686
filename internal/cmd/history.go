package cmd

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/vmarkdev/vmark/internal/history"
)

func historyCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "history",
		Short: "Inspect and prune the snapshot store.",
	}

	cmd.AddCommand(historyListCmd())
	cmd.AddCommand(historyClearCmd())

	return &cmd
}

func historyListCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "list <file>",
		Short: "List the snapshots recorded for a document.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return errors.WithStack(err)
			}

			return invoke(func(hist *history.Store) error {
				snaps, err := hist.List(path)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTRIGGER\tTAKEN AT")
				for _, snap := range snaps {
					fmt.Fprintf(w, "%s\t%s\t%s\n",
						snap.ID, snap.Trigger, snap.TakenAt.Format(time.RFC3339))
				}
				return errors.Wrap(w.Flush(), "render table")
			})
		},
	}
	return &cmd
}

func historyClearCmd() *cobra.Command {
	var all bool

	cmd := cobra.Command{
		Use:   "clear [file]",
		Short: "Remove the snapshots for one document, or all of them.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return invoke(func(hist *history.Store) error {
				if all {
					return hist.ClearAll()
				}
				if len(args) == 0 {
					return errors.New("pass a file or --all")
				}
				path, err := filepath.Abs(args[0])
				if err != nil {
					return errors.WithStack(err)
				}
				return hist.Clear(path)
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Remove every snapshot.")

	return &cmd
}
