package models

import (
	"time"
)

// PortProbe describes a single TCP reachability check.
type PortProbe struct {
	Host    string        `json:"host"`
	Port    int           `json:"port"`
	Timeout time.Duration `json:"timeout"`
}

// PortResult represents the outcome of probing a single (host, port) pair.
// Every failure mode (timeout, refusal, reset) collapses to IsOpen=false.
type PortResult struct {
	Host   string `json:"host"`
	Port   int    `json:"port"`
	IsOpen bool   `json:"is_open"`
	Banner string `json:"banner,omitempty"`
}

// HostSummary aggregates all port results for one host. A host is alive
// when at least one probed port accepted a connection.
type HostSummary struct {
	Host      string `json:"host"`
	OpenPorts []int  `json:"open_ports"`
	IsAlive   bool   `json:"is_alive"`
}

// InjectionProbe describes a single payload test against one query parameter.
type InjectionProbe struct {
	BaseURL   string              `json:"base_url"`
	Params    map[string][]string `json:"params"`
	Parameter string              `json:"parameter"`
	Payload   string              `json:"payload"`
	Timeout   time.Duration       `json:"timeout"`
}

// InjectionResult represents the outcome of testing one payload against
// one parameter. Category names the database engine whose error signature
// matched, empty when not vulnerable.
type InjectionResult struct {
	Parameter  string        `json:"parameter"`
	Payload    string        `json:"payload"`
	Vulnerable bool          `json:"vulnerable"`
	Category   string        `json:"category,omitempty"`
	Elapsed    time.Duration `json:"elapsed_ns,omitempty"`
}

// WebScanSummary accumulates every injection result for one scanned URL.
// Vulnerabilities holds the vulnerable subset and is the actionable output.
type WebScanSummary struct {
	TargetURL       string            `json:"target_url"`
	Tested          int               `json:"tested"`
	Results         []InjectionResult `json:"results"`
	Vulnerabilities []InjectionResult `json:"vulnerabilities"`
}

// Report is the persisted/exported record of one completed scan.
type Report struct {
	ScanID     string          `json:"scan_id"`
	Kind       string          `json:"kind"` // tcp, web
	Target     string          `json:"target"`
	StartedAt  time.Time       `json:"started_at"`
	DurationMs int64           `json:"duration_ms"`
	Hosts      []HostSummary   `json:"hosts,omitempty"`
	Web        *WebScanSummary `json:"web,omitempty"`
	Stats      ScanStatistics  `json:"statistics"`
}

// ScanStatistics represents scan statistics.
type ScanStatistics struct {
	TotalProbes int `json:"total_probes"`
	OpenPorts   int `json:"open_ports,omitempty"`
	AliveHosts  int `json:"alive_hosts,omitempty"`
	Findings    int `json:"findings,omitempty"`
}

// ScanRequest is the wire format for scan tasks handed to the agent.
type ScanRequest struct {
	ID        string `json:"id"`
	Target    string `json:"target"`
	Ports     []int  `json:"ports"`
	TimeoutMs int    `json:"timeout_ms,omitempty"`
}

// AgentResult is the wire format for per-port results published by the agent.
type AgentResult struct {
	ScanID string `json:"scan_id"`
	Host   string `json:"host"`
	Port   int    `json:"port"`
	IsOpen bool   `json:"is_open"`
}

// DefaultPorts is probed when a request carries no explicit port list.
var DefaultPorts = []int{
	21, 22, 23, 25, 80, 443, 445, 3306, 3389, 8080, 8443,
}
