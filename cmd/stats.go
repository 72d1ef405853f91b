package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/UnknownOlympus/hestia/internal/directory"
	"github.com/UnknownOlympus/hestia/internal/stats"
	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	opts := listOptions{page: 1, department: directory.FilterAll, status: directory.FilterAll}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print headcount by department and status for one page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.loadList(cmd.Context(), cmd.ErrOrStderr(), opts)
			if err != nil {
				return err
			}
			return printStats(cmd.OutOrStdout(), stats.Compute(list.View()))
		},
	}

	cmd.Flags().IntVar(&opts.page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.size, "size", 100, "page size")
	cmd.Flags().StringVar(&opts.department, "dept", directory.FilterAll, "department code or all")
	return cmd
}

func printStats(w io.Writer, summary stats.Summary) error {
	fmt.Fprintf(w, "%d employees\n", summary.Total)
	if summary.Total == 0 {
		return nil
	}

	table := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	section := func(title string, buckets []stats.Bucket) {
		fmt.Fprintf(table, "\n%s\tCOUNT\tPERCENT\n", title)
		for _, bucket := range buckets {
			fmt.Fprintf(table, "%s\t%d\t%s%%\n",
				bucket.Label, bucket.Count, strconv.FormatFloat(bucket.Percent, 'f', -1, 64))
		}
	}
	section("DEPARTMENT", summary.Departments)
	section("STATUS", summary.Statuses)
	return table.Flush()
}
