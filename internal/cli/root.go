package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/dto"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/models"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/config"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/logger"
)

// ConflictReporter produces conflict reports; the exam schedule service satisfies it.
type ConflictReporter interface {
	GetScheduleConflicts(ctx context.Context, query dto.ScheduleConflictsQuery) (*models.ConflictReport, error)
}

// ReporterFactory opens whatever the reporter needs. The returned cleanup is always non-nil on success.
type ReporterFactory func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ConflictReporter, func(), error)

type app struct {
	factory  ReporterFactory
	logLevel string
	cfg      *config.Config
	logger   *zap.Logger
}

// NewRootCmd creates the root cobra command for the schedule-audit CLI.
func NewRootCmd(factory ReporterFactory) *cobra.Command {
	a := &app{factory: factory}

	root := &cobra.Command{
		Use:   "schedule-audit",
		Short: "Audit the exam schedule for conflicts",
		Long:  "schedule-audit runs the exam conflict report against the configured database and prints it.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if a.logLevel != "" {
				cfg.Log.Level = a.logLevel
			}
			cfg.Log.Format = "console"
			l, err := logger.New(cfg)
			if err != nil {
				return err
			}
			a.cfg, a.logger = cfg, l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(newConflictsCmd(a))

	return root
}
