// Package cli implements the lectio command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coreybb/lectio/config"
)

// rootOptions carries flags shared by every subcommand.
type rootOptions struct {
	planFile string
	cfg      config.Config
}

// NewRootCmd builds the lectio command tree. Running it without a
// subcommand performs a one-shot delivery, like "lectio run".
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	run := &runOptions{root: opts}

	rootCmd := &cobra.Command{
		Use:   "lectio",
		Short: "Deliver a daily Bible reading to Telegram",
		Long: `lectio works through a reading plan one chapter per day. Each run
fetches today's chapter (ESV when ESV_API_KEY is set, KJV otherwise)
and posts it to the configured Telegram chat.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.cfg = config.Load()
			if opts.planFile == "" {
				opts.planFile = opts.cfg.PlanFile
			}
		},
		RunE:          run.execute,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.planFile, "plan", "", "reading plan file (default $PLAN_FILE or reading_plan.json)")
	run.bindFlags(rootCmd)

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newPlanCmd(opts))
	rootCmd.AddCommand(newInitCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))

	return rootCmd
}

// Execute runs the root command against os.Args.
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
