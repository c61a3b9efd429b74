package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/lead-ingest/internal/reconcile"
)

// writeSummary encodes sum as indented JSON or YAML.
func writeSummary(w io.Writer, sum *reconcile.Summary, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(sum); err != nil {
			return eris.Wrap(err, "report: encode yaml")
		}
		return eris.Wrap(enc.Close(), "report: flush yaml")
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(sum), "report: encode json")
	default:
		return eris.Errorf("report: unknown format %q", format)
	}
}

var rejectsHeader = []string{
	"line", "name", "email", "phone", "country", "status", "campaign_name", "errors", "warnings",
}

// writeRejects writes rejected rows as CSV so they can be fixed and
// re-imported. The errors column joins messages with "; ".
func writeRejects(w io.Writer, issues []reconcile.RowIssue) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rejectsHeader); err != nil {
		return eris.Wrap(err, "report: write rejects header")
	}
	for _, issue := range issues {
		r := issue.Row
		rec := []string{
			strconv.Itoa(issue.Line),
			r.Name,
			r.Email,
			r.Phone,
			r.Country,
			string(r.Status),
			r.CampaignName,
			strings.Join(issue.Errors, "; "),
			strings.Join(issue.Warnings, "; "),
		}
		if err := cw.Write(rec); err != nil {
			return eris.Wrapf(err, "report: write reject line %d", issue.Line)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush rejects")
}

func writeRejectsFile(path string, issues []reconcile.RowIssue) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "report: create rejects file")
	}
	if err := writeRejects(f, issues); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return eris.Wrap(f.Close(), "report: close rejects file")
}
