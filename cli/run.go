package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coreybb/lectio/scheduler"
)

type runOptions struct {
	root          *rootOptions
	respectWindow bool
	force         bool
	dryRun        bool
}

func (o *runOptions) bindFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.respectWindow, "respect-window", false, "only send within an hour of the plan's daily_time")
	cmd.Flags().BoolVar(&o.force, "force", false, "send even if today's chapter was already delivered")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "print today's message instead of sending it")
}

func newRunCmd(root *rootOptions) *cobra.Command {
	o := &runOptions{root: root}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Send today's chapter once and exit",
		Long: `Send today's chapter once and exit.

Finishing the plan, an already delivered day and a run outside the send
window all exit successfully. Configuration, parse, fetch and delivery
errors exit with status 1 and nothing is sent.`,
		Args: cobra.NoArgs,
		RunE: o.execute,
	}
	o.bindFlags(cmd)
	return cmd
}

func (o *runOptions) execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, o.root.cfg, scheduler.Options{
		PlanFile:      o.root.planFile,
		RespectWindow: o.respectWindow,
		Force:         o.force,
		DryRun:        o.dryRun,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.scheduler.Tick(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch result.Status {
	case scheduler.StatusDryRun:
		fmt.Fprintln(out, result.Message)
	case scheduler.StatusComplete:
		fmt.Fprintf(out, "Reading plan complete (%d chapters)\n", result.Progress.Total)
	default:
		fmt.Fprintf(out, "%s: Day %d/%d %s\n", result.Status, result.Progress.Day, result.Progress.Total, result.Chapter)
	}
	return nil
}
