package tcpscan

// serviceRegistry maps well-known ports to service names for report output.
var serviceRegistry = map[int]string{
	21:    "FTP",
	22:    "SSH",
	23:    "Telnet",
	25:    "SMTP",
	53:    "DNS",
	80:    "HTTP",
	110:   "POP3",
	143:   "IMAP",
	443:   "HTTPS",
	445:   "SMB",
	1433:  "MSSQL",
	3306:  "MySQL",
	3389:  "RDP",
	5432:  "PostgreSQL",
	5900:  "VNC",
	6379:  "Redis",
	8080:  "HTTP-Proxy",
	8443:  "HTTPS-Alt",
	27017: "MongoDB",
}

// ServiceName returns the conventional service name for a well-known port,
// or the empty string when the port is not in the registry.
func ServiceName(port int) string {
	return serviceRegistry[port]
}
