package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/reconprobe/reconprobe/pkg/models"
	"github.com/reconprobe/reconprobe/pkg/tcpscan"
)

// ExportJSON writes the report as indented JSON.
func ExportJSON(filename string, r *models.Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

// ExportCSV writes the report as CSV: one row per open port for TCP scans,
// one row per finding for web scans.
func ExportCSV(filename string, r *models.Report) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if r.Web != nil {
		if err := writer.Write([]string{"Parameter", "Payload", "Category", "ElapsedMs"}); err != nil {
			return err
		}
		for _, v := range r.Web.Vulnerabilities {
			row := []string{
				v.Parameter,
				v.Payload,
				v.Category,
				strconv.FormatInt(v.Elapsed.Milliseconds(), 10),
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writer.Write([]string{"Host", "Port", "Service"}); err != nil {
		return err
	}
	for _, h := range r.Hosts {
		for _, p := range h.OpenPorts {
			row := []string{h.Host, strconv.Itoa(p), tcpscan.ServiceName(p)}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExportPDF writes the report as a PDF document.
func ExportPDF(filename string, r *models.Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, "reconprobe scan report")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Scan ID: %s", r.ScanID))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Target: %s", r.Target))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Started: %s", r.StartedAt.Format(time.RFC3339)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Duration: %d ms", r.DurationMs))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Probes: %d", r.Stats.TotalProbes))
	pdf.Ln(10)

	switch {
	case r.Web != nil:
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 7, fmt.Sprintf("Findings (%d)", len(r.Web.Vulnerabilities)))
		pdf.Ln(8)

		pdf.SetFont("Arial", "", 9)
		if len(r.Web.Vulnerabilities) == 0 {
			pdf.Cell(0, 6, "No vulnerabilities detected")
			pdf.Ln(6)
		}
		for _, v := range r.Web.Vulnerabilities {
			pdf.Cell(0, 5, fmt.Sprintf("parameter=%s payload=%s category=%s", v.Parameter, v.Payload, v.Category))
			pdf.Ln(5)
		}

	default:
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 7, fmt.Sprintf("Live hosts (%d)", len(r.Hosts)))
		pdf.Ln(8)

		pdf.SetFont("Arial", "", 9)
		if len(r.Hosts) == 0 {
			pdf.Cell(0, 6, "No live hosts found")
			pdf.Ln(6)
		}
		for _, h := range r.Hosts {
			pdf.SetFont("Arial", "B", 10)
			pdf.Cell(0, 6, h.Host)
			pdf.Ln(6)
			pdf.SetFont("Arial", "", 9)
			for _, p := range h.OpenPorts {
				line := fmt.Sprintf("  %d/tcp open", p)
				if service := tcpscan.ServiceName(p); service != "" {
					line += " " + service
				}
				pdf.Cell(0, 5, line)
				pdf.Ln(5)
			}
			pdf.Ln(2)
		}
	}

	return pdf.OutputFileAndClose(filename)
}
