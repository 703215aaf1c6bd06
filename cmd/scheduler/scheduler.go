// Package scheduler implements the long-running scheduled scan command.
package scheduler

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/tenderscan/cmd/common"
	"github.com/jonesrussell/tenderscan/internal/job"
	"github.com/jonesrussell/tenderscan/internal/report"
)

// digestSchedule fires the daily report each morning at 08:00.
const digestSchedule = "0 8 * * *"

// Command returns the scheduler command, which runs scan cycles on the
// configured cron schedule until interrupted.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "scheduler",
		Short: "Run scan cycles on the configured schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			deps, err := common.New(ctx, common.Options{NeedScanner: true})
			if err != nil {
				return err
			}
			defer deps.Close()

			sched, err := job.New(deps.Config.Scan.Schedule, deps.Scanner, deps.Logger)
			if err != nil {
				return err
			}

			if deps.Config.Report.Enabled {
				reporter := report.New(deps.Config.GetReportConfig(), deps.Store, deps.Logger)
				if err = sched.ScheduleDigest(digestSchedule, reporter); err != nil {
					return err
				}
			}

			sched.Start()
			defer sched.Stop()

			deps.Logger.Info("scheduler running", "schedule", deps.Config.Scan.Schedule)

			<-ctx.Done()

			return nil
		},
	}
}
