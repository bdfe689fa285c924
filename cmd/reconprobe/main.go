// Command reconprobe scans hosts for open TCP ports and probes URL
// parameters for SQL injection signatures.
//
// Usage:
//
//	reconprobe tcp [flags] TARGET     TARGET is an IPv4 address or CIDR
//	reconprobe web [flags] URL        URL must carry query parameters
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/reconprobe/reconprobe/pkg/config"
	"github.com/reconprobe/reconprobe/pkg/hosts"
	"github.com/reconprobe/reconprobe/pkg/models"
	"github.com/reconprobe/reconprobe/pkg/ports"
	"github.com/reconprobe/reconprobe/pkg/report"
	"github.com/reconprobe/reconprobe/pkg/tcpscan"
	"github.com/reconprobe/reconprobe/pkg/webscan"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "tcp":
		runTCP(os.Args[2:])
	case "web":
		runWeb(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `reconprobe - network reachability and SQL injection probing

Usage:
  reconprobe tcp [flags] TARGET    scan an IPv4 address or CIDR for open ports
  reconprobe web [flags] URL       probe URL query parameters for SQLi signatures

Run "reconprobe tcp -h" or "reconprobe web -h" for flags.
`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func loadConfig(path string) *config.Config {
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fatal("%v", err)
	}
	return cfg
}

// scanContext cancels on SIGINT/SIGTERM and applies the optional whole-batch
// deadline.
func scanContext(deadline time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	if deadline <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	return ctx, func() {
		cancel()
		stop()
	}
}

func runTCP(args []string) {
	fs := flag.NewFlagSet("tcp", flag.ExitOnError)
	portSpec := fs.String("ports", "", "comma-separated ports/ranges (default: common ports)")
	timeout := fs.Float64("timeout", 1.0, "per-connection timeout in seconds")
	workers := fs.Int("workers", 50, "maximum concurrent probes")
	banner := fs.Bool("banner", false, "grab a banner from open ports")
	deadline := fs.Duration("deadline", 0, "optional deadline for the whole scan (e.g. 2m)")
	configPath := fs.String("config", "", "YAML config file")
	jsonOut := fs.String("json", "", "write JSON report to file")
	csvOut := fs.String("csv", "", "write CSV report to file")
	pdfOut := fs.String("pdf", "", "write PDF report to file")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fatal("expected exactly one TARGET argument")
	}
	target := fs.Arg(0)

	cfg := loadConfig(*configPath)
	applyTCPFlags(fs, cfg, *timeout, *workers, *banner)
	logger := cfg.NewLogger()

	portList := models.DefaultPorts
	if *portSpec != "" {
		var err error
		if portList, err = ports.Parse(*portSpec); err != nil {
			fatal("invalid port list: %v", err)
		}
	}

	hostList, err := hosts.Expand(target)
	if err != nil {
		// Hostnames are accepted as a single-host target.
		ip, rerr := hosts.ResolveIPv4(target)
		if rerr != nil {
			fatal("invalid target %q: %v", target, err)
		}
		hostList = []string{ip}
	}
	if len(hostList) == 0 {
		fatal("target %q contains no usable hosts", target)
	}

	scanID := uuid.New().String()
	logger.WithFields(logrus.Fields{
		"scan_id": scanID,
		"target":  target,
		"hosts":   len(hostList),
		"ports":   len(portList),
		"workers": cfg.TCP.Workers,
	}).Info("Starting TCP scan")

	scanner := tcpscan.New(tcpscan.Config{
		Timeout:    cfg.TCPTimeout(),
		Workers:    cfg.TCP.Workers,
		GrabBanner: cfg.TCP.GrabBanner,
		Logger:     logger,
	})

	ctx, cancel := scanContext(*deadline)
	defer cancel()

	start := time.Now()
	summaries, err := scanner.ScanHosts(ctx, hostList, portList)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("Scan interrupted before completion")
		} else {
			fatal("scan failed: %v", err)
		}
	}

	r := &models.Report{
		ScanID:     scanID,
		Kind:       "tcp",
		Target:     target,
		StartedAt:  start,
		DurationMs: time.Since(start).Milliseconds(),
		Hosts:      summaries,
		Stats: models.ScanStatistics{
			TotalProbes: len(hostList) * len(portList),
			AliveHosts:  len(summaries),
			OpenPorts:   countOpenPorts(summaries),
		},
	}

	fmt.Println()
	report.PrintHosts(os.Stdout, summaries)
	exportReport(logger, r, *jsonOut, *csvOut, *pdfOut)
}

func runWeb(args []string) {
	fs := flag.NewFlagSet("web", flag.ExitOnError)
	timeout := fs.Int("timeout", 10, "per-request timeout in seconds")
	workers := fs.Int("workers", 5, "maximum concurrent requests")
	deadline := fs.Duration("deadline", 0, "optional deadline for the whole scan (e.g. 2m)")
	configPath := fs.String("config", "", "YAML config file")
	jsonOut := fs.String("json", "", "write JSON report to file")
	csvOut := fs.String("csv", "", "write CSV report to file")
	pdfOut := fs.String("pdf", "", "write PDF report to file")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fatal("expected exactly one URL argument")
	}
	target := fs.Arg(0)
	if !strings.Contains(target, "://") {
		fatal("invalid URL %q: missing scheme", target)
	}

	cfg := loadConfig(*configPath)
	applyWebFlags(fs, cfg, *timeout, *workers)
	logger := cfg.NewLogger()

	scanID := uuid.New().String()
	logger.WithFields(logrus.Fields{
		"scan_id": scanID,
		"url":     target,
		"workers": cfg.Web.Workers,
	}).Info("Starting injection scan")

	scanner := webscan.New(webscan.Config{
		Timeout:    cfg.WebTimeout(),
		Workers:    cfg.Web.Workers,
		Payloads:   cfg.Web.Payloads,
		Signatures: cfg.WebSignatures(),
		UserAgent:  cfg.Web.UserAgent,
		Logger:     logger,
	})
	defer scanner.Close()

	ctx, cancel := scanContext(*deadline)
	defer cancel()

	start := time.Now()
	summary, err := scanner.ScanURL(ctx, target)
	if err != nil && summary == nil {
		fatal("scan failed: %v", err)
	}
	if err != nil {
		logger.Warn("Scan interrupted before completion")
	}

	r := &models.Report{
		ScanID:     scanID,
		Kind:       "web",
		Target:     target,
		StartedAt:  start,
		DurationMs: time.Since(start).Milliseconds(),
		Web:        summary,
		Stats: models.ScanStatistics{
			TotalProbes: summary.Tested,
			Findings:    len(summary.Vulnerabilities),
		},
	}

	fmt.Println()
	report.PrintWeb(os.Stdout, summary)
	exportReport(logger, r, *jsonOut, *csvOut, *pdfOut)
}

// applyTCPFlags copies explicitly-set flags over the file configuration.
func applyTCPFlags(fs *flag.FlagSet, cfg *config.Config, timeout float64, workers int, banner bool) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "timeout":
			cfg.TCP.TimeoutSeconds = timeout
		case "workers":
			cfg.TCP.Workers = workers
		case "banner":
			cfg.TCP.GrabBanner = banner
		}
	})
	if cfg.TCP.TimeoutSeconds <= 0 {
		fatal("timeout must be positive")
	}
	if cfg.TCP.Workers < 1 {
		fatal("workers must be positive")
	}
}

func applyWebFlags(fs *flag.FlagSet, cfg *config.Config, timeout, workers int) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "timeout":
			cfg.Web.TimeoutSeconds = timeout
		case "workers":
			cfg.Web.Workers = workers
		}
	})
	if cfg.Web.TimeoutSeconds <= 0 {
		fatal("timeout must be positive")
	}
	if cfg.Web.Workers < 1 {
		fatal("workers must be positive")
	}
}

func exportReport(logger *logrus.Logger, r *models.Report, jsonOut, csvOut, pdfOut string) {
	if jsonOut != "" {
		if err := report.ExportJSON(jsonOut, r); err != nil {
			logger.WithError(err).Error("Failed to write JSON report")
		} else {
			logger.WithField("file", jsonOut).Info("Wrote JSON report")
		}
	}
	if csvOut != "" {
		if err := report.ExportCSV(csvOut, r); err != nil {
			logger.WithError(err).Error("Failed to write CSV report")
		} else {
			logger.WithField("file", csvOut).Info("Wrote CSV report")
		}
	}
	if pdfOut != "" {
		if err := report.ExportPDF(pdfOut, r); err != nil {
			logger.WithError(err).Error("Failed to write PDF report")
		} else {
			logger.WithField("file", pdfOut).Info("Wrote PDF report")
		}
	}
}

func countOpenPorts(summaries []models.HostSummary) int {
	n := 0
	for _, h := range summaries {
		n += len(h.OpenPorts)
	}
	return n
}
