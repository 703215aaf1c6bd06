// Package scan implements the one-off scan command.
package scan

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/tenderscan/cmd/common"
)

// Command returns the scan command, which runs one full cycle and exits.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run one scan cycle over all enabled sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			deps, err := common.New(ctx, common.Options{NeedScanner: true})
			if err != nil {
				return err
			}
			defer deps.Close()

			report, err := deps.Scanner.Scan(ctx)
			if err != nil {
				return fmt.Errorf("scan cycle: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"cycle %s: %d sources scanned (%d ok, %d failed, %d timed out), "+
					"%d new, %d updated, %d unchanged, %d expired in %s\n",
				report.CycleID,
				report.Scanned(), report.Succeeded(), report.Failed(), report.TimedOut(),
				report.TotalNew(), report.TotalUpdated(), report.TotalUnchanged(),
				report.Expired, report.Duration().Round(time.Millisecond))

			return nil
		},
	}
}
