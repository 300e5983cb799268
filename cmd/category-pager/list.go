package main

import (
	"fmt"
	"os"

	"github.com/Sternrassler/category-pager/internal/tui"
	"github.com/Sternrassler/category-pager/pkg/pagination"
	"github.com/spf13/cobra"
)

func newListCommand(opts *options) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Args:  cobra.NoArgs,
		Short: "Print one page of categories",
		Long: `Print one page of categories and its shareable location.

When the page is full the next page is warmed into the cache before exiting,
so a shared Redis cache serves it to the next invocation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, opts.cfg, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			view, loc, err := a.newView(cmd.Flags().Changed("page"), page)
			if err != nil {
				return err
			}
			defer view.Close()

			snap, err := view.Wait(ctx)
			if err != nil {
				return err
			}
			view.WaitPrefetch()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, tui.RenderPage(opts.cfg.Paging.Resource, snap))
			fmt.Fprintln(out, "Location:", loc.String())

			if snap.Phase == pagination.PhaseError {
				return snap.Err
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", pagination.DefaultPage, "page to print (overrides the configured location)")

	return cmd
}
