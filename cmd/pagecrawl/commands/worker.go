package commands

import (
	"time"

	"github.com/bradykim7/pagecrawl/internal/jobs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var workerInterval *time.Duration

func init() {
	workerInterval = workerCmd.Flags().Duration("interval", 0, "How often to poll for pending jobs. Defaults to POLL_INTERVAL_SECONDS.")
	rootCmd.AddCommand(workerCmd)
}

var workerCmd = &cobra.Command{
	Use:   "worker [--interval 1m]",
	Short: "Runs pending jobs one at a time until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		interval := a.cfg.PollInterval
		if *workerInterval > 0 {
			interval = *workerInterval
		}

		log := a.log.Named("worker")
		log.Info("Starting worker", zap.String("storage", a.cfg.StorageDriver), zap.Duration("interval", interval))

		// Blocks until the context is canceled
		jobs.NewScheduler(a.store, a.orchestrator(), a.log).Start(cmd.Context(), interval)

		log.Info("Worker shut down successfully")
		return nil
	},
}
