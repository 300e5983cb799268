package main

import (
	"io"
	"strings"

	"github.com/Sternrassler/category-pager/internal/tui"
	"github.com/Sternrassler/category-pager/pkg/logging"
	"github.com/spf13/cobra"
)

func newBrowseCommand(opts *options) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "browse",
		Args:  cobra.NoArgs,
		Short: "Browse the categories interactively",
		Long: `Browse the categories page by page in the terminal.

Use the arrow keys (or h/l) to move between pages, r to reload and q to quit.
Logs are discarded while browsing unless --log-file is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts.cfg, io.Discard)
			if err != nil {
				return err
			}
			defer a.Close()

			view, _, err := a.newView(false, 0)
			if err != nil {
				return err
			}
			defer view.Close()

			if title == "" {
				title = strings.ToUpper(opts.cfg.Paging.Resource[:1]) + opts.cfg.Paging.Resource[1:]
			}
			return tui.Run(view, title, logging.NewLogger("tui"))
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "heading shown above the table")

	return cmd
}
