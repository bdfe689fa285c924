// Package tcpscan probes TCP reachability of hosts across a port list.
package tcpscan

import (
	"context"
	"fmt"
	"io"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/reconprobe/reconprobe/pkg/models"
	"github.com/reconprobe/reconprobe/pkg/probe"
)

const bannerReadTimeout = 500 * time.Millisecond

// Dialer is the connect primitive used for probing. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Config controls a Scanner.
type Config struct {
	// Timeout bounds each individual connection attempt.
	Timeout time.Duration
	// Workers caps the number of probes in flight.
	Workers int
	// GrabBanner enables one short read on each open connection before close.
	GrabBanner bool
	Dialer     Dialer
	Logger     *logrus.Logger
}

// Scanner probes hosts for open TCP ports using a bounded worker pool.
type Scanner struct {
	dialer     Dialer
	timeout    time.Duration
	workers    int
	grabBanner bool
	log        *logrus.Logger
}

// New returns a Scanner, filling unset config fields with defaults
// (1s timeout, 50 workers, net.Dialer, discarded logging).
func New(cfg Config) *Scanner {
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Second
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 50
	}
	if cfg.Dialer == nil {
		cfg.Dialer = &net.Dialer{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
		cfg.Logger.SetOutput(io.Discard)
	}
	return &Scanner{
		dialer:     cfg.Dialer,
		timeout:    cfg.Timeout,
		workers:    cfg.Workers,
		grabBanner: cfg.GrabBanner,
		log:        cfg.Logger,
	}
}

// ProbePort attempts a TCP connection to (host, port) within the scanner
// timeout. Timeouts, refusals and resets all collapse to IsOpen=false; the
// connection, when established, is closed before returning.
func (s *Scanner) ProbePort(ctx context.Context, d models.PortProbe) models.PortResult {
	result := models.PortResult{Host: d.Host, Port: d.Port}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = s.timeout
	}
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	address := net.JoinHostPort(d.Host, fmt.Sprintf("%d", d.Port))
	conn, err := s.dialer.DialContext(dctx, "tcp", address)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"host":  d.Host,
			"port":  d.Port,
			"error": err.Error(),
		}).Debug("Port probe failed")
		return result
	}

	result.IsOpen = true
	if s.grabBanner {
		result.Banner = readBanner(conn)
	}
	conn.Close()

	s.log.WithFields(logrus.Fields{
		"host": d.Host,
		"port": d.Port,
	}).Info("Found open port")

	return result
}

func readBanner(conn net.Conn) string {
	conn.SetReadDeadline(time.Now().Add(bannerReadTimeout))

	buf := make([]byte, 1024)
	n, _ := conn.Read(buf)
	if n == 0 {
		return ""
	}

	banner := strings.TrimSpace(string(buf[:n]))
	banner = strings.ReplaceAll(banner, "\r", "")
	banner = strings.ReplaceAll(banner, "\n", " ")
	if len(banner) > 200 {
		banner = banner[:200] + "..."
	}
	return banner
}

// Scan probes every (host, port) combination and returns the full evaluated
// result set, one entry per combination, in completion order.
func (s *Scanner) Scan(ctx context.Context, hosts []string, ports []int) ([]models.PortResult, error) {
	descriptors := make([]models.PortProbe, 0, len(hosts)*len(ports))
	for _, host := range hosts {
		for _, port := range ports {
			descriptors = append(descriptors, models.PortProbe{
				Host:    host,
				Port:    port,
				Timeout: s.timeout,
			})
		}
	}

	return probe.Collect(ctx, descriptors, s.workers, s.ProbePort)
}

// ScanHosts probes every combination and returns one HostSummary per live
// host, sorted by host address. Hosts with no open ports are omitted. When
// the batch deadline fires, summaries of the results completed so far are
// returned together with the context error.
func (s *Scanner) ScanHosts(ctx context.Context, hosts []string, ports []int) ([]models.HostSummary, error) {
	results, err := s.Scan(ctx, hosts, ports)
	return Summarize(results), err
}

// Summarize folds per-port results into per-host summaries. Only hosts with
// at least one open port are emitted; open ports are sorted ascending and
// hosts sorted by address for stable output.
func Summarize(results []models.PortResult) []models.HostSummary {
	open := make(map[string]map[int]struct{})
	for _, r := range results {
		if !r.IsOpen {
			continue
		}
		if open[r.Host] == nil {
			open[r.Host] = make(map[int]struct{})
		}
		open[r.Host][r.Port] = struct{}{}
	}

	summaries := make([]models.HostSummary, 0, len(open))
	for host, set := range open {
		ports := make([]int, 0, len(set))
		for p := range set {
			ports = append(ports, p)
		}
		sort.Ints(ports)
		summaries = append(summaries, models.HostSummary{
			Host:      host,
			OpenPorts: ports,
			IsAlive:   true,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Host < summaries[j].Host
	})
	return summaries
}
