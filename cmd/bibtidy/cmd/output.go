package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/bibtidy/bibtidy/pkg/gateway"
)

// renderYAML prints a report structure to stdout.
func renderYAML(v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

// addFilterFlags registers the record selection flags shared by
// commands that operate on a subset of the library.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("type", nil, "restrict to item types (e.g. journalArticle)")
	cmd.Flags().String("tag", "", "restrict to records carrying a tag")
	cmd.Flags().String("collection", "", "restrict to records in a collection")
}

// filterFromFlags builds a gateway filter from the selection flags.
func filterFromFlags(cmd *cobra.Command) (gateway.Filter, error) {
	var f gateway.Filter
	var err error
	if f.ItemTypes, err = cmd.Flags().GetStringSlice("type"); err != nil {
		return f, fmt.Errorf("type flag: %w", err)
	}
	if f.Tag, err = cmd.Flags().GetString("tag"); err != nil {
		return f, fmt.Errorf("tag flag: %w", err)
	}
	if f.Collection, err = cmd.Flags().GetString("collection"); err != nil {
		return f, fmt.Errorf("collection flag: %w", err)
	}
	return f, nil
}
