package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Report metadata quality problems",
	Long: `Audit inspects every record and reports missing required fields,
invalid DOIs, malformed dates, empty titles, and records without
authors. With --check-urls, each record's URL is probed with a HEAD
request and dead links are reported; with --check-dois, well-formed DOIs
are probed against doi.org and unresolved ones are reported.

Audit never modifies the library. The exit code is 1 when any issue is
found, so it can gate automation.`,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	addFilterFlags(auditCmd)
	auditCmd.Flags().Bool("check-urls", false, "probe record URLs with HEAD requests")
	auditCmd.Flags().Bool("check-dois", false, "probe doi.org to flag DOIs that do not resolve")
}

func runAudit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if checkURLs, _ := cmd.Flags().GetBool("check-urls"); checkURLs {
		viper.Set("check_urls", true)
	}
	if checkDOIs, _ := cmd.Flags().GetBool("check-dois"); checkDOIs {
		viper.Set("check_dois", true)
	}

	s, err := newSession()
	if err != nil {
		return err
	}

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}

	report, err := s.engine.Audit(ctx, filter)
	if err != nil {
		return err
	}

	if err := renderYAML(report); err != nil {
		return err
	}

	if report.TotalIssues() > 0 {
		return fmt.Errorf("%d issues found", report.TotalIssues())
	}
	return nil
}
