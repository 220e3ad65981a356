package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/cli"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/repository"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/scheduling"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/service"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/config"
	"github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/database"
)

func main() {
	if err := cli.NewRootCmd(openReporter).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openReporter(ctx context.Context, cfg *config.Config, logger *zap.Logger) (cli.ConflictReporter, func(), error) {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	svc := service.NewExamScheduleService(
		repository.NewExamRepository(db),
		repository.NewProctorAssignmentRepository(db),
		db,
		scheduling.PolicyFromConfig(cfg.Scheduling),
		service.ScheduleWindowConfig{DefaultRangeDays: cfg.Scheduling.DefaultRangeDays, MaxRangeDays: cfg.Scheduling.MaxRangeDays},
		nil,
		nil,
		logger,
	)
	return svc, func() { _ = db.Close() }, nil
}
