package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmarkdev/vmark/internal/workspace"
)

func lsCmd() *cobra.Command {
	var showHidden bool

	cmd := cobra.Command{
		Use:     "ls [root]",
		Aliases: []string{"list"},
		Short:   "List a workspace's Markdown files, honoring its exclude patterns.",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			return invoke(func(ws *workspace.Store) error {
				cfg, ok, err := ws.Read(root)
				if err != nil {
					return err
				}
				if !ok {
					cfg = workspace.DefaultConfig()
				}
				if showHidden {
					cfg.ShowHiddenFiles = true
				}

				files, err := ws.Walk(root, cfg)
				if err != nil {
					return err
				}
				for _, file := range files {
					fmt.Fprintln(cmd.OutOrStdout(), file)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&showHidden, "hidden", false, "Include hidden files.")

	return &cmd
}
