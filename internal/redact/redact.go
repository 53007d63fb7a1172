// Package redact masks contact details and card numbers in text that is about
// to be logged. Persisted transcripts are never redacted.
package redact

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ent0n29/voiceeval/internal/logger"
)

const (
	emailMarker = "[REDACTED_EMAIL]"
	cardMarker  = "[REDACTED_CARD]"
	phoneMarker = "[REDACTED_PHONE]"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	cardPattern  = regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`)
	phonePattern = regexp.MustCompile(`\+?[0-9][0-9\-() ]{7,}[0-9]`)
)

// ordered: card numbers would otherwise match the phone pattern.
var rules = []struct {
	pattern *regexp.Regexp
	marker  string
}{
	{emailPattern, emailMarker},
	{cardPattern, cardMarker},
	{phonePattern, phoneMarker},
}

// PII masks emails, card numbers and phone numbers in s.
func PII(s string) (string, bool) {
	out := s
	changed := false
	for _, r := range rules {
		next := r.pattern.ReplaceAllString(out, r.marker)
		if next != out {
			changed = true
			out = next
		}
	}
	return out, changed
}

// Excerpt redacts s and shortens it to limit runes for a log field.
func Excerpt(s string, limit int) string {
	out, _ := PII(s)
	return logger.TruncateForLog(out, limit)
}

// Email keeps the first character of the local part and the domain, so log
// lines about one account stay correlatable: ada@example.com -> a***@example.com.
func Email(addr string) string {
	addr = strings.TrimSpace(addr)
	at := strings.LastIndex(addr, "@")
	if at <= 0 {
		if addr == "" {
			return ""
		}
		return emailMarker
	}
	_, size := utf8.DecodeRuneInString(addr)
	return addr[:size] + "***" + addr[at:]
}
