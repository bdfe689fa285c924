package webscan

// Signature maps a database engine to literal substrings that appear in its
// error output. Matching is case-insensitive and first-match-wins in table
// order, so more specific engines come before the generic bucket.
type Signature struct {
	Category string
	Patterns []string
}

// DefaultSignatures is the built-in error signature table. Callers may
// supply their own table to the scanner, e.g. synthetic signatures in tests.
var DefaultSignatures = []Signature{
	{Category: "mysql", Patterns: []string{"mysql", "sql syntax", "mysql_fetch"}},
	{Category: "postgresql", Patterns: []string{"postgresql", "pg_query", "pg_exec"}},
	{Category: "sqlite", Patterns: []string{"sqlite", "sqlite3"}},
	{Category: "mssql", Patterns: []string{"sql server", "microsoft ole db", "odbc"}},
	{Category: "oracle", Patterns: []string{"oracle", "ora-", "oci_"}},
	{Category: "generic", Patterns: []string{"unclosed quotation", "quoted string not properly terminated", "syntax error"}},
}

// DefaultPayloads is the built-in probe payload set.
//
// The DROP TABLE entry is actively destructive against a vulnerable target.
// It is kept for parity with common tooling but is plain configuration:
// callers who do not want it supply their own payload list.
var DefaultPayloads = []string{
	"'",
	"' OR 1=1--",
	"' UNION SELECT 1--",
	"'; DROP TABLE users--",
}
