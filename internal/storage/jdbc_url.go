// Package storage implements Spider's storage-facing job submission:
// translating an in-memory task graph into the relational schema
// described in spec.md §6, and reading job status/results back.
package storage

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/chalkan3-sloth/spider-go/internal/core"
)

const jdbcPrefix = "jdbc:"

// JdbcParameters holds a parsed storage URL (spec.md §6 "Storage
// URL", grounded on storage/jdbc_url.py's JdbcParameters).
type JdbcParameters struct {
	Protocol string
	Host     string
	Database string
	Port     int // 0 means unset
	User     string
	Password string
}

// ParseJdbcURL parses a JDBC-like storage URL of the form
// "[jdbc:]<scheme>://<host>[:<port>]/<database>[?user=<u>&password=<p>]".
// The "jdbc:" prefix, if present, is preserved in the returned
// Protocol field so it round-trips back out (spec.md §6, SUPPLEMENTED
// FEATURES). It returns a value_error on a missing scheme, host, or
// database.
func ParseJdbcURL(raw string) (*JdbcParameters, error) {
	prefix := ""
	rest := raw
	if strings.HasPrefix(raw, jdbcPrefix) {
		prefix = jdbcPrefix
		rest = strings.TrimPrefix(raw, jdbcPrefix)
	}

	parsed, err := url.Parse(rest)
	if err != nil {
		return nil, core.NewValueError("invalid JDBC URL: %s: %v", raw, err)
	}

	if parsed.Scheme == "" {
		return nil, core.NewValueError("invalid JDBC URL: %s. Missing protocol.", raw)
	}
	if parsed.Hostname() == "" {
		return nil, core.NewValueError("invalid JDBC URL: %s. Missing host.", raw)
	}
	database := strings.TrimPrefix(parsed.Path, "/")
	if database == "" {
		return nil, core.NewValueError("invalid JDBC URL: %s. Missing database.", raw)
	}

	var port int
	if p := parsed.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, core.NewValueError("invalid JDBC URL: %s. Bad port %q.", raw, p)
		}
	}

	query := parsed.Query()
	return &JdbcParameters{
		Protocol: prefix + parsed.Scheme,
		Host:     parsed.Hostname(),
		Port:     port,
		Database: database,
		User:     query.Get("user"),
		Password: query.Get("password"),
	}, nil
}

// DSN renders params as a go-sql-driver/mysql data source name.
func (p *JdbcParameters) DSN() string {
	var b strings.Builder
	if p.User != "" {
		b.WriteString(p.User)
		if p.Password != "" {
			b.WriteString(":")
			b.WriteString(p.Password)
		}
		b.WriteString("@")
	}
	host := p.Host
	if p.Port != 0 {
		host = host + ":" + strconv.Itoa(p.Port)
	}
	b.WriteString("tcp(")
	b.WriteString(host)
	b.WriteString(")/")
	b.WriteString(p.Database)
	return b.String()
}
