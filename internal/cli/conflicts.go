package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/dto"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/models"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/service"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/export"
)

// ErrCriticalFindings is returned by --fail-on-critical when the report has critical findings.
var ErrCriticalFindings = errors.New("schedule has critical conflicts")

func newConflictsCmd(a *app) *cobra.Command {
	var (
		from           string
		to             string
		severity       string
		format         string
		failOnCritical bool
	)

	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Print the conflict report for a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "csv" {
				return fmt.Errorf("unsupported format %q (use json or csv)", format)
			}

			reporter, cleanup, err := a.factory(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := reporter.GetScheduleConflicts(cmd.Context(), dto.ScheduleConflictsQuery{
				ScheduleWindowQuery: dto.ScheduleWindowQuery{DateFrom: from, DateTo: to},
				Severity:            severity,
			})
			if err != nil {
				return err
			}

			if err := writeReport(cmd.OutOrStdout(), report, format); err != nil {
				return err
			}
			if failOnCritical && report.Summary.Critical > 0 {
				return ErrCriticalFindings
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&to, "to", "", "Last date, YYYY-MM-DD")
	cmd.Flags().StringVar(&severity, "severity", "all", "critical, warning, info or all")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json, csv)")
	cmd.Flags().BoolVar(&failOnCritical, "fail-on-critical", false, "Exit non-zero when critical conflicts exist")

	return cmd
}

func writeReport(w io.Writer, report *models.ConflictReport, format string) error {
	if format == "csv" {
		payload, err := export.NewCSVExporter().Render(service.ReportDataset(*report))
		if err != nil {
			return err
		}
		_, err = w.Write(payload)
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
