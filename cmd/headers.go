package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/lead-ingest/internal/ingest"
)

var headersCmd = &cobra.Command{
	Use:   "headers",
	Short: "List the column headers recognized for each lead field",
	RunE: func(_ *cobra.Command, _ []string) error {
		formatHeaders(os.Stdout)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(headersCmd)
}

func formatHeaders(out io.Writer) {
	synonyms := ingest.Synonyms()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FIELD\tHEADERS")
	_, _ = fmt.Fprintln(w, "-----\t-------")
	for _, field := range ingest.Fields() {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", field, strings.Join(synonyms[field], ", "))
	}
	_ = w.Flush()
}
