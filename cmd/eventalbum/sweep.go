package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	var eventID string
	cmd := &cobra.Command{
		Use:   "sweep-orphans",
		Short: "Delete stored files that no media item references",
		Long: `Lists the stored files of every event (or of one event with --event) and deletes
those no media item points at. Files younger than ORPHAN_GRACE_PERIOD are kept.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if eventID != "" {
				removed, err := a.sweeper.SweepEvent(ctx, eventID)
				if err != nil {
					return err
				}
				for _, key := range removed {
					fmt.Fprintln(cmd.OutOrStdout(), key)
				}
				a.logger.Info("orphan sweep finished", "event_id", eventID, "removed", len(removed))
				return nil
			}
			removed, err := a.sweeper.SweepAll(ctx)
			a.logger.Info("orphan sweep finished", "removed", removed)
			return err
		},
	}
	cmd.Flags().StringVar(&eventID, "event", "", "sweep a single event")
	return cmd
}
