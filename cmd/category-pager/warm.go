package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/Sternrassler/category-pager/pkg/logging"
	"github.com/Sternrassler/category-pager/pkg/pagination"
	"github.com/spf13/cobra"
)

// maxWarmPages bounds a single warm run.
const maxWarmPages = 10000

func newWarmCommand(opts *options) *cobra.Command {
	var (
		from    int
		pages   int
		workers int
	)

	cmd := &cobra.Command{
		Use:   "warm",
		Args:  cobra.NoArgs,
		Short: "Fill the page cache for a range of pages",
		Long: `Fetch a range of pages into the cache ahead of any viewer.

Pages after the first short page are skipped. Most useful with --redis-addr,
where the warmed pages are shared with every other pager.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pages < 1 || pages > maxWarmPages {
				return fmt.Errorf("--pages must be between 1 and %d (got %d)", maxWarmPages, pages)
			}
			if from < 1 || from > pagination.MaxPage-pages+1 {
				return fmt.Errorf("--from must be between 1 and %d (got %d)", pagination.MaxPage-pages+1, from)
			}

			a, err := newApp(cmd.Context(), opts.cfg, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			warmCfg := pagination.DefaultWarmConfig()
			if workers > 0 {
				warmCfg.MaxConcurrency = workers
			}
			warmer := pagination.NewWarmer(a.coord, warmCfg, logging.NewLogger("warmer"))

			counts, warmErr := warmer.WarmRange(cmd.Context(), from, from+pages-1)

			warmed := make([]int, 0, len(counts))
			for page := range counts {
				warmed = append(warmed, page)
			}
			sort.Ints(warmed)

			out := cmd.OutOrStdout()
			for _, page := range warmed {
				fmt.Fprintf(out, "page %d: %d %s\n", page, counts[page], opts.cfg.Paging.Resource)
			}
			fmt.Fprintf(out, "warmed %d pages\n", len(warmed))

			return warmErr
		},
	}

	cmd.Flags().IntVar(&from, "from", pagination.DefaultPage, "first page to warm")
	cmd.Flags().IntVar(&pages, "pages", 10, "number of pages to warm")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel page fetches (default 4)")

	return cmd
}
