// Command keste converts between xlsx workbooks and .kst SQLite
// documents, dumps workbooks as SQL, and runs quick queries against a
// sheet from the command line.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stukenov/keste"
	"github.com/stukenov/keste/datagrid"
	"github.com/stukenov/keste/model"
	"github.com/stukenov/keste/xlsx"
)

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "keste",
		Short: "Spreadsheet converter and query tool",
		Long: `keste imports xlsx workbooks into a relational document model,
stores them as SQLite-backed .kst files, and exports them back to xlsx.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(convertCmd(), exportCmd(), dumpCmd(), queryCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <input.xlsx> <output.kst>",
		Short: "Convert an xlsx workbook to a .kst document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, issues, err := keste.ImportXlsxFile(args[0])
			if err != nil {
				return err
			}
			for _, issue := range issues {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", issue)
			}
			n, err := keste.SaveKst(wb, args[1])
			if err != nil {
				return err
			}
			slog.Debug("saved", "path", args[1], "statements", n)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d sheets)\n", args[1], len(wb.Sheets))
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <input.kst> <output.xlsx>",
		Short: "Export a .kst document back to xlsx",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := keste.OpenKst(args[0])
			if err != nil {
				return err
			}
			if err := keste.ExportXlsxFile(wb, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d sheets)\n", args[1], len(wb.Sheets))
			return nil
		},
	}
}

func dumpCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "dump <input.xlsx|input.kst>",
		Short: "Dump a workbook as SQL statements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := openWorkbook(cmd, args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			for stmt := range keste.DumpSQL(wb) {
				if _, err := fmt.Fprint(w, stmt); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file path (default: stdout)")
	return cmd
}

func queryCmd() *cobra.Command {
	var sheetName, filter string
	var col int
	cmd := &cobra.Command{
		Use:   "query <input.xlsx|input.kst>",
		Short: "Print sheet rows matching a filter expression",
		Long: `query prints the occupied rows of a sheet, optionally keeping only
rows where the filter expression holds for the given column. The
expression sees "value", "text", and "number", e.g. --filter 'number > 100'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := openWorkbook(cmd, args[0])
			if err != nil {
				return err
			}

			sheet := wb.Sheets[0]
			if sheetName != "" {
				if sheet = wb.SheetByName(sheetName); sheet == nil {
					return fmt.Errorf("no sheet named %q", sheetName)
				}
			}

			var filters []datagrid.ColumnFilter
			if filter != "" {
				filters = append(filters, datagrid.ColumnFilter{
					Col:       col,
					Condition: datagrid.FilterCondition{Expr: filter},
				})
			}
			rows, err := datagrid.VisibleRows(sheet, filters)
			if err != nil {
				return err
			}

			for _, row := range rows {
				fmt.Fprintln(cmd.OutOrStdout(), formatRow(wb, sheet, row))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&sheetName, "sheet", "s", "", "Sheet name (default: first sheet)")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Filter expression over --col")
	cmd.Flags().IntVarP(&col, "col", "c", 1, "Column the filter applies to (1-based)")
	return cmd
}

// openWorkbook loads either format, picking the reader by extension.
func openWorkbook(cmd *cobra.Command, path string) (*model.Workbook, error) {
	if strings.HasSuffix(strings.ToLower(path), ".kst") {
		return keste.OpenKst(path)
	}
	wb, issues, err := keste.ImportXlsxFile(path, xlsx.WithLogger(slog.Default()))
	if err != nil {
		return nil, err
	}
	for _, issue := range issues {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", issue)
	}
	return wb, nil
}

func formatRow(wb *model.Workbook, sheet *model.Sheet, row int) string {
	maxCol := 0
	for _, key := range sheet.Keys() {
		if key.Row() == row && key.Col() > maxCol {
			maxCol = key.Col()
		}
	}
	fields := make([]string, 0, maxCol)
	for col := 1; col <= maxCol; col++ {
		fields = append(fields, keste.DisplayValue(wb, sheet, row, col))
	}
	return strings.Join(fields, "\t")
}
