// Package report renders and exports scan reports.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/reconprobe/reconprobe/pkg/models"
	"github.com/reconprobe/reconprobe/pkg/tcpscan"
)

// PrintHosts writes a host summary table to w.
func PrintHosts(w io.Writer, summaries []models.HostSummary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No live hosts found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "HOST\tPORT\tSERVICE")
	for _, h := range summaries {
		for _, p := range h.OpenPorts {
			service := tcpscan.ServiceName(p)
			if service == "" {
				service = "-"
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\n", h.Host, p, service)
		}
	}
	tw.Flush()

	fmt.Fprintf(w, "\nLive hosts: %d\n", len(summaries))
}

// PrintWeb writes an injection scan summary to w.
func PrintWeb(w io.Writer, summary *models.WebScanSummary) {
	fmt.Fprintf(w, "Target: %s\n", summary.TargetURL)
	fmt.Fprintf(w, "Combinations tested: %d\n", summary.Tested)

	if len(summary.Vulnerabilities) == 0 {
		fmt.Fprintln(w, "No vulnerabilities detected")
		return
	}

	fmt.Fprintf(w, "Potential vulnerabilities: %d\n\n", len(summary.Vulnerabilities))

	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "PARAMETER\tPAYLOAD\tCATEGORY\tELAPSED")
	for _, v := range summary.Vulnerabilities {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			v.Parameter, v.Payload, v.Category, v.Elapsed.Round(time.Millisecond))
	}
	tw.Flush()
}
