package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bibtidy/bibtidy/pkg/enrich"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fill missing metadata from CrossRef, OpenAlex, and Semantic Scholar",
	Long: `Enrich looks up each record's DOI against the metadata sources and
fills fields the record is missing, never overwriting existing values.
Sources are consulted in priority order: CrossRef, then OpenAlex, then
Semantic Scholar. Records without a DOI are skipped.

With --citations, only the "Citation Count" line in each record's extra
field is refreshed, preferring OpenAlex counts over Semantic Scholar.`,
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)
	addFilterFlags(enrichCmd)
	enrichCmd.Flags().Bool("citations", false, "only refresh citation counts")
}

func runEnrich(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	s, err := newSession()
	if err != nil {
		return err
	}

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	var stats *enrich.Stats
	if citations, _ := cmd.Flags().GetBool("citations"); citations {
		stats, err = s.engine.EnrichCitationCounts(ctx, filter)
	} else {
		stats, err = s.engine.Enrich(ctx, filter)
	}
	if err != nil {
		return err
	}

	if err := renderYAML(stats); err != nil {
		return err
	}
	return s.finish(ctx)
}
