package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/coreybb/lectio/scheduler"
)

func newPlanCmd(root *rootOptions) *cobra.Command {
	var (
		upcoming int
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show reading plan progress and upcoming chapters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := scheduler.New(scheduler.Options{PlanFile: root.planFile}, nil, nil, nil, nil)
			ov, err := s.Overview(upcoming)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(ov)
			}

			fmt.Fprintf(out, "Plan:     %s\n", ov.References)
			fmt.Fprintf(out, "Started:  %s, daily at %s %s\n", ov.StartDate, ov.DailyTime, ov.Timezone)
			switch {
			case ov.Progress.Complete:
				fmt.Fprintf(out, "Progress: complete (%d chapters)\n", ov.Progress.Total)
			case ov.Progress.Day < 1:
				fmt.Fprintf(out, "Progress: not started (%d chapters)\n", ov.Progress.Total)
			default:
				fmt.Fprintf(out, "Progress: Day %d/%d (%.1f%%)\n", ov.Progress.Day, ov.Progress.Total, ov.Progress.Percent)
			}

			if len(ov.Upcoming) == 0 {
				return nil
			}
			fmt.Fprintln(out)
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "DAY\tDATE\tCHAPTER")
			for _, e := range ov.Upcoming {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", e.Day, e.Date, e.Chapter)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&upcoming, "upcoming", "n", 7, "number of upcoming chapters to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the overview as JSON")
	return cmd
}
