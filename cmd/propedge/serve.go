package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/prop-edge/internal/scheduler"
	"github.com/yourusername/prop-edge/internal/server"
	"github.com/yourusername/prop-edge/internal/service"
)

var serveNoIngest bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled board and grading jobs behind the status server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		db, repos, err := openRepositories(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		snapshots := service.NewSnapshotStore(snapshotTTL())

		boardSvc, closePub, err := newBoardService(ctx, repos, snapshots)
		if err != nil {
			return err
		}
		defer closePub()

		gradingSvc, err := newGradingService(ctx, repos, snapshots)
		if err != nil {
			return err
		}

		var ingester scheduler.Ingester
		if !serveNoIngest {
			source, err := newOddsSource()
			if err != nil {
				return err
			}
			ingester = service.NewIngestionService(source, repos.Quote, logger)
		}

		sched := scheduler.NewScheduler(logger, 30*time.Minute)
		if err := sched.ScheduleBoard(cfg.Schedule.BoardCron, ingester, boardSvc); err != nil {
			return err
		}
		if err := sched.ScheduleGrading(cfg.Schedule.GradeCron, gradingSvc); err != nil {
			return err
		}

		srv := server.NewServer(server.Config{
			ServiceName:    cfg.App.Name,
			Version:        Version,
			Addr:           cfg.ServerAddr(),
			MetricsPath:    cfg.Metrics.Path,
			DisableMetrics: !cfg.Metrics.Enabled,
			CORSOrigins:    cfg.Server.CORSOrigins,
			Logger:         logger,
			DB:             db,
			Snapshots:      snapshots,
		})
		if err := srv.Start(ctx); err != nil {
			return err
		}

		if err := sched.Start(); err != nil {
			return err
		}
		srv.SetReady(true)
		logger.WithFields(logrus.Fields{
			"board_cron": cfg.Schedule.BoardCron,
			"grade_cron": cfg.Schedule.GradeCron,
			"next_run":   sched.NextRun(),
		}).Info("prop-edge service started")

		<-ctx.Done()
		srv.SetReady(false)
		sched.Stop()
		return srv.Shutdown()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoIngest, "no-ingest", false, "Build boards from stored quotes only")
}
