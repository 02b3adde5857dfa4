// Package redact strips credentials, connection strings, SQL and other
// infrastructure details from text before it reaches logs or clients.
package redact

import (
	"net/url"
	"regexp"
)

// Placeholders substituted for redacted fragments.
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	SQLPlaceholder        = "[REDACTED_SQL]"
	HostPlaceholder       = "[REDACTED_HOST]"
	PathPlaceholder       = "[REDACTED_PATH]"
	StackPlaceholder      = "[STACK_TRACE_REDACTED]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// rules run in order; connection strings go first so their hosts are not
// half-redacted by the host rule.
var rules = []rule{
	{regexp.MustCompile(`(?i)\b(postgres|postgresql|pgx)://[^\s]+`), CredentialPlaceholder},
	{regexp.MustCompile(`(?i)\b(password|passwd|pwd)\s*[=:]\s*['"]?[^'"&\s]+`), CredentialPlaceholder},
	{regexp.MustCompile(`(?is)\b(SELECT|INSERT|UPDATE|DELETE)\b.+?\b(FROM|INTO|SET)\b[^;]*`), SQLPlaceholder},
	{regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`), StackPlaceholder},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), EmailPlaceholder},
	{regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}(?::\d{1,5})?\b`), HostPlaceholder},
	{regexp.MustCompile(`\b(?:[a-zA-Z0-9-]+\.)+(?:com|net|org|io|internal|local|cloud)(?::\d{1,5})?\b`), HostPlaceholder},
	{regexp.MustCompile(`(/[\w.-]+){2,}`), PathPlaceholder},
}

// String redacts sensitive fragments from s.
func String(s string) string {
	if s == "" {
		return s
	}
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.placeholder)
	}
	return s
}

// Error redacts sensitive fragments from err's message.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// URL masks the password of a connection URL and keeps the rest readable,
// e.g. for logging which database the process connects to. Unparsable input
// is fully redacted.
func URL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return CredentialPlaceholder
	}
	return u.Redacted()
}
