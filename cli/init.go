package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/coreybb/lectio/plan"
)

func newInitCmd(root *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter reading plan",
		Long: `Write a starter reading plan (Psalms 1-15 and 120-134, starting today,
08:00 SGT) to the plan file. An existing file is left alone unless
--force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := root.planFile
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to check %s: %w", path, err)
			}

			p := plan.Default(time.Now())
			if err := plan.Save(path, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s: %s starting %s\n", path, p.References, p.StartDateString())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing plan file")
	return cmd
}
