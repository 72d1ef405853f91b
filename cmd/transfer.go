package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/UnknownOlympus/hestia/internal/directory"
	"github.com/UnknownOlympus/hestia/internal/report"
	"github.com/spf13/cobra"
)

// maxPreviewProblems bounds the problems printed for a workbook.
const maxPreviewProblems = 20

func newImportCmd(a *app) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Upload an .xlsx workbook to the employee API",
		Long: `Upload an .xlsx workbook. The workbook is read locally first and its problems
are listed; with --check nothing is uploaded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read workbook: %w", err)
			}

			parsed, err := report.ReadWorkbook(bytes.NewReader(data))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printPreview(out, filepath.Base(path), parsed)
			if check {
				return nil
			}

			list := directory.NewList(a.client, a.consoleNotifier(out), a.log, a.cfg.PageSize)
			return list.Import(cmd.Context(), filepath.Base(path), bytes.NewReader(data))
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "only read the workbook, do not upload it")
	return cmd
}

func printPreview(w io.Writer, name string, parsed report.Parsed) {
	fmt.Fprintf(w, "%s: %d employees, %d problems\n", name, len(parsed.Employees), len(parsed.Problems))
	for i, problem := range parsed.Problems {
		if i == maxPreviewProblems {
			fmt.Fprintf(w, "  ...and %d more\n", len(parsed.Problems)-i)
			break
		}
		fmt.Fprintf(w, "  %s\n", problem)
	}
}

func newExportCmd(a *app) *cobra.Command {
	var (
		outPath string
		local   bool
		opts    = listOptions{page: 1, department: directory.FilterAll, status: directory.FilterAll}
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the employee workbook",
		Long: `Download the workbook generated by the employee API. With --local the workbook
is built here from one fetched page, one sheet per department.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				buf *bytes.Buffer
				err error
			)
			if local {
				buf, err = a.exportLocal(cmd, opts)
			} else {
				buf, err = a.client.Export(cmd.Context())
			}
			if err != nil {
				return err
			}

			if err = os.WriteFile(outPath, buf.Bytes(), 0o600); err != nil {
				return fmt.Errorf("failed to write workbook: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Workbook written to %s\n", outPath)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&outPath, "out", "o", "employees.xlsx", "output file")
	flags.BoolVar(&local, "local", false, "build the workbook from a fetched page")
	flags.IntVar(&opts.page, "page", 1, "page number for --local")
	flags.IntVar(&opts.size, "size", 100, "page size for --local")
	flags.StringVar(&opts.department, "dept", directory.FilterAll, "department code or all for --local")
	flags.StringVar(&opts.status, "status", directory.FilterAll, "status code or all for --local")
	return cmd
}

func (a *app) exportLocal(cmd *cobra.Command, opts listOptions) (*bytes.Buffer, error) {
	list, err := a.loadList(cmd.Context(), cmd.ErrOrStderr(), opts)
	if err != nil {
		return nil, err
	}

	buf, err := report.GenerateWorkbook(list.View())
	if err != nil {
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}
	return buf, nil
}
