package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bibtidy/bibtidy/pkg/dedupe"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Find and merge duplicate records",
	Long: `Dedupe scores every pair of records in the library and reports
transitive groups of likely duplicates. With --merge, each group is
collapsed into its best record: the survivor keeps its own values, picks
up field values it was missing from the donors, and inherits the union
of tags; donors are deleted unless --keep-donors is given.`,
	RunE: runDedupe,
}

func init() {
	rootCmd.AddCommand(dedupeCmd)
	addFilterFlags(dedupeCmd)
	dedupeCmd.Flags().Bool("merge", false, "merge each duplicate group instead of only reporting")
	dedupeCmd.Flags().Bool("keep-donors", false, "when merging, leave donor records in place")
}

// dedupeReport is the YAML shape of a dedupe run.
type dedupeReport struct {
	Groups []dedupe.Group          `yaml:"groups"`
	Merges []*dedupe.MergeStrategy `yaml:"merges,omitempty"`
}

func runDedupe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := newSession()
	if err != nil {
		return err
	}

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	groups, err := s.engine.FindDuplicates(ctx, filter)
	if err != nil {
		return err
	}

	report := dedupeReport{Groups: groups}

	merge, _ := cmd.Flags().GetBool("merge")
	keepDonors, _ := cmd.Flags().GetBool("keep-donors")
	if merge {
		for _, group := range groups {
			strategy, err := s.engine.PlanMerge(ctx, group.Keys)
			if err != nil {
				return err
			}
			if _, err := s.engine.ExecuteMerge(ctx, strategy, !keepDonors); err != nil {
				return fmt.Errorf("merging group %v: %w", group.Keys, err)
			}
			report.Merges = append(report.Merges, strategy)
		}
	}

	if err := renderYAML(report); err != nil {
		return err
	}
	return s.finish(ctx)
}
