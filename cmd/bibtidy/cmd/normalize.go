package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bibtidy/bibtidy"
	"github.com/bibtidy/bibtidy/pkg/gateway"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalize author names or dates",
}

var normalizeAuthorsCmd = &cobra.Command{
	Use:   "authors",
	Short: "Title-case creator names",
	Long: `Authors rewrites creator names into title case, keeping name
particles like "van", "de", and "der" lowercase unless they lead the
name. Names already in canonical form are left untouched.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runNormalize(cmd, func(ctx context.Context, e bibtidy.Engine, f gateway.Filter) (*bibtidy.NormalizeStats, error) {
			return e.NormalizeAuthors(ctx, f)
		})
	},
}

var normalizeDatesCmd = &cobra.Command{
	Use:   "dates",
	Short: "Rewrite dates into the target format",
	Long: `Dates parses each record's date and rewrites it into the configured
target format (YYYY, YYYY-MM, or YYYY-MM-DD). Dates that cannot be
parsed are left unchanged and counted as errors.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runNormalize(cmd, func(ctx context.Context, e bibtidy.Engine, f gateway.Filter) (*bibtidy.NormalizeStats, error) {
			return e.NormalizeDates(ctx, f)
		})
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	normalizeCmd.AddCommand(normalizeAuthorsCmd)
	normalizeCmd.AddCommand(normalizeDatesCmd)
	addFilterFlags(normalizeAuthorsCmd)
	addFilterFlags(normalizeDatesCmd)
}

func runNormalize(cmd *cobra.Command, op func(context.Context, bibtidy.Engine, gateway.Filter) (*bibtidy.NormalizeStats, error)) error {
	ctx := cmd.Context()

	s, err := newSession()
	if err != nil {
		return err
	}

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	stats, err := op(ctx, s.engine, filter)
	if err != nil {
		return err
	}

	if err := renderYAML(stats); err != nil {
		return err
	}
	return s.finish(ctx)
}
