package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anstrom/nmapconv/internal/summary"
)

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "summary XML_FILE",
		Short: "Print an overview of an nmap XML report",
		Long: `Print the run statistics and the ports of every host in an nmap XML
report, either as plain-text tables or as a Markdown document.`,
		Example: `  nmapconv summary scan.xml
  nmapconv summary scan.xml --format markdown > scan.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, opts, args[0], summary.Format(format))
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(summary.FormatTable),
		fmt.Sprintf("output format (%s, %s)", summary.FormatTable, summary.FormatMarkdown))

	return cmd
}

func runSummary(cmd *cobra.Command, opts *rootOptions, xmlPath string, format summary.Format) error {
	if !validFormat(format) {
		return fmt.Errorf("unsupported summary format %q (supported: %s, %s)",
			format, summary.FormatTable, summary.FormatMarkdown)
	}

	logger := opts.logger.WithComponent("summary")
	logger.Debug("Summarising report", "source", xmlPath, "format", format)

	s, err := summary.Load(xmlPath)
	if err != nil {
		logger.FailedConvert("Failed to summarise report", xmlPath, err)
		return err
	}

	return summary.Write(cmd.OutOrStdout(), s, format)
}

func validFormat(format summary.Format) bool {
	for _, f := range summary.Formats {
		if f == format {
			return true
		}
	}
	return false
}
