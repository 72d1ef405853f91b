package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/UnknownOlympus/hestia/internal/directory"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/spf13/cobra"
)

type listOptions struct {
	page       int
	size       int
	department string
	status     string
	sort       string
	search     string
	find       string
}

func newListCmd(a *app) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of employees",
		Example: `  hestia list --page 2 --size 20
  hestia list --dept engineering --sort -hireDate
  hestia list --find "jon smth"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.loadList(cmd.Context(), cmd.ErrOrStderr(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.find != "" {
				printRanked(out, list.Search(opts.find))
				return nil
			}

			query := list.Query()
			fmt.Fprintf(out, "Page %d of %d, %d total\n\n", query.Page, list.TotalPages(), list.Total())
			return printEmployees(out, list.View())
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.page, "page", 1, "page number")
	flags.IntVar(&opts.size, "size", 0, "page size (default from configuration)")
	flags.StringVar(&opts.department, "dept", directory.FilterAll, "department code or all")
	flags.StringVar(&opts.status, "status", directory.FilterAll, "status code or all, applied to the fetched page")
	flags.StringVar(&opts.sort, "sort", "", "column to sort by, prefixed with - for descending")
	flags.StringVar(&opts.search, "search", "", "text filter applied to the fetched page")
	flags.StringVar(&opts.find, "find", "", "rank the fetched page by fuzzy relevance")
	return cmd
}

// loadList fetches the page described by opts. Page, size, department and
// sort go to the server, status and search narrow the result locally.
func (a *app) loadList(ctx context.Context, notices io.Writer, opts listOptions) (*directory.List, error) {
	size := opts.size
	if size == 0 {
		size = a.cfg.PageSize
	}
	if size < 0 {
		return nil, directory.ErrInvalidPageSize
	}

	list := directory.NewList(a.client, a.consoleNotifier(notices), a.log, size)

	if err := list.SetStatus(strings.ToLower(opts.status)); err != nil {
		return nil, err
	}
	list.SetSearch(opts.search)

	if err := list.Refresh(ctx); err != nil {
		return nil, err
	}
	if err := list.SetDepartment(ctx, strings.ToLower(opts.department)); err != nil {
		return nil, err
	}
	if opts.sort != "" {
		key, desc, err := parseSort(opts.sort)
		if err != nil {
			return nil, err
		}
		if err = list.ToggleSort(ctx, key); err != nil {
			return nil, err
		}
		if desc {
			if err = list.ToggleSort(ctx, key); err != nil {
				return nil, err
			}
		}
	}
	if err := list.SetPage(ctx, opts.page); err != nil {
		return nil, err
	}
	return list, nil
}

// parseSort reads "column" or "-column".
func parseSort(value string) (models.Field, bool, error) {
	desc := strings.HasPrefix(value, "-")
	field, err := models.ParseField(strings.TrimPrefix(value, "-"))
	if err != nil {
		return "", false, fmt.Errorf("invalid sort %q: %w", value, err)
	}
	return field, desc, nil
}

// printEmployees writes rows as an aligned table with display formatting.
func printEmployees(w io.Writer, rows []models.Employee) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No employees match.")
		return err
	}

	table := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(table, "ID\tNAME\tEMAIL\tPHONE\tDEPARTMENT\tPOSITION\tHIRED\tSALARY\tSTATUS")
	for _, e := range rows {
		fmt.Fprintf(table, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID,
			e.FullName(),
			e.Email,
			models.FormatPhone(e.Phone),
			e.Department.Label(),
			e.Position,
			models.FormatDate(e.HireDate),
			models.FormatCurrency(e.Salary),
			e.Status.Label(),
		)
	}
	return table.Flush()
}

func printRanked(w io.Writer, results []directory.Ranked) {
	if len(results) == 0 {
		fmt.Fprintln(w, "Nothing matches.")
		return
	}

	table := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(table, "SCORE\tID\tNAME\tDEPARTMENT\tPOSITION")
	for _, result := range results {
		e := result.Employee
		fmt.Fprintf(table, "%s\t%d\t%s\t%s\t%s\n",
			strconv.FormatFloat(result.Score, 'f', 2, 64), e.ID, e.FullName(), e.Department.Label(), e.Position)
	}
	_ = table.Flush()
}
