package cmd

import (
	"github.com/spf13/cobra"
)

var autotagCmd = &cobra.Command{
	Use:   "autotag",
	Short: "Suggest and apply tags from keyword matches",
	Long: `Autotag scans each record's title and abstract for configured
keywords and adds the matching tags. Tags a record already carries are
never duplicated.`,
	RunE: runAutotag,
}

func init() {
	rootCmd.AddCommand(autotagCmd)
	addFilterFlags(autotagCmd)
}

func runAutotag(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := newSession()
	if err != nil {
		return err
	}

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	stats, err := s.engine.AutoTag(ctx, filter)
	if err != nil {
		return err
	}

	if err := renderYAML(stats); err != nil {
		return err
	}
	return s.finish(ctx)
}
