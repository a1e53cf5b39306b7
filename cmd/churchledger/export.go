package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"churchledger/internal/cli"
	"churchledger/internal/core"
	"churchledger/internal/log"
	"churchledger/internal/services"
	"churchledger/internal/sheets"
	"churchledger/internal/sheets/google"
	"churchledger/internal/sheets/memory"
)

func exportSheetsCommand() *cobra.Command {
	var (
		month  string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "export-sheets",
		Short: "Write a monthly balance report to Google Sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, cfg, err := bootstrap()
			if err != nil {
				return err
			}
			if month == "" {
				month = core.CurrentMonth(time.Now())
			}

			var writer sheets.ReportWriter
			mem := memory.NewWriter()
			if dryRun {
				writer = mem
			} else {
				if !cfg.SheetsConfigured() {
					return errors.New("export-sheets needs GOOGLE_SPREADSHEET_ID and service account credentials (or --dry-run)")
				}
				client, err := google.New(cmd.Context(), cfg.GoogleSpreadsheetID, google.Credentials{
					JSON: cfg.GoogleServiceAccountJSON,
					File: cfg.GoogleServiceAccountFile,
				}, logger)
				if err != nil {
					return err
				}
				writer = client
			}

			store, err := cli.OpenStore(cmd.Context(), logger, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			res, err := sheets.NewExporter(services.NewBalanceService(store), writer).Export(cmd.Context(), month)
			if err != nil {
				return err
			}
			logger.WithComponent(log.ComponentReports).Info("Report exported",
				log.FieldOperation, log.OpExport,
				log.FieldMonth, res.Month,
				"services", res.Services,
				"ref", res.Ref)

			if dryRun {
				return printReport(cmd.OutOrStdout(), mem.Report(res.Month))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d service(s) to %s\n", res.Services, res.Ref)
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month to export as YYYY-MM (default current month)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the report instead of writing it")
	return cmd
}

func printReport(out io.Writer, rows [][]any) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, row := range rows {
		for j, cell := range row {
			if j > 0 {
				fmt.Fprint(tw, "\t")
			}
			if v, ok := cell.(float64); ok && i > 0 {
				fmt.Fprint(tw, core.FormatMoney(v))
			} else {
				fmt.Fprint(tw, cell)
			}
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
