package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/frahmantamala/guard-deployment/internal/core/common/dateutil"
	"github.com/spf13/cobra"
)

var maintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Run the rotation maintenance pass",
	Long:  `Complete expired rotation assignments and start the ones whose range has begun. Meant for a daily cron or the server's recurrence.`,
	Run: func(cmd *cobra.Command, args []string) {
		runMaintenanceCommand()
	},
}

var maintenanceToday string

type maintenanceResult struct {
	Completed int
	Activated int
}

func runMaintenanceCommand() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	today := dateutil.Normalize(deps.Clock()())
	if maintenanceToday != "" {
		today, err = dateutil.Parse(maintenanceToday)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	result, err := runMaintenance(context.Background(), deps, today)
	if err != nil {
		fmt.Fprintf(os.Stderr, "maintenance failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s: %d completed, %d started\n", dateutil.Format(today), result.Completed, result.Activated)
}

func runMaintenance(ctx context.Context, deps *Dependencies, now time.Time) (maintenanceResult, error) {
	today := dateutil.Normalize(now)

	completed, err := deps.Rotations.CompleteExpired(ctx, today)
	if err != nil {
		return maintenanceResult{}, err
	}
	activated, err := deps.Rotations.ActivateStarted(ctx, today)
	if err != nil {
		return maintenanceResult{Completed: completed}, err
	}
	return maintenanceResult{Completed: completed, Activated: activated}, nil
}

// scheduleMaintenance repeats the pass on the configured recurrence until ctx
// ends. Without a recurrence it returns at once.
func scheduleMaintenance(ctx context.Context, deps *Dependencies) {
	clock := deps.Clock()
	rule, err := deps.Config.Scheduling.MaintenanceSchedule(clock())
	if err != nil {
		deps.Logger.Error("maintenance schedule disabled", "error", err)
		return
	}
	if rule == nil {
		return
	}

	for {
		next := rule.After(clock(), false)
		if next.IsZero() {
			deps.Logger.Info("maintenance recurrence exhausted")
			return
		}
		deps.Logger.Info("next maintenance pass scheduled", "at", next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		result, err := runMaintenance(ctx, deps, clock())
		if err != nil {
			deps.Logger.Error("scheduled maintenance failed", "error", err)
			continue
		}
		deps.Logger.Info("scheduled maintenance done", "completed", result.Completed, "activated", result.Activated)
	}
}

func init() {
	maintenanceCmd.Flags().StringVar(&maintenanceToday, "today", "", "date to run the pass for (YYYY-MM-DD, defaults to the current date)")
}
