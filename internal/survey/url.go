package survey

import (
	"strings"
)

// querySafe lists reserved characters intentionally left unescaped in query
// strings, so timestamps and identifiers stay readable on a printed receipt.
const querySafe = "-_.:"

// BuildURL composes https://{domain}/r/{surveyCode} with the encoded query
// string appended when the parameter set is non-empty. Leading/trailing
// whitespace and trailing slashes on the domain are tolerated and stripped,
// as is whitespace around the survey code.
func BuildURL(domain, surveyCode string, p *Params) string {
	base := "https://" + normalizeDomain(domain) + "/r/" + strings.TrimSpace(surveyCode)
	if qs := EncodeQuery(p); qs != "" {
		return base + "?" + qs
	}
	return base
}

func normalizeDomain(domain string) string {
	return strings.TrimRight(strings.TrimSpace(domain), "/")
}

// EncodeQuery renders the parameter set as a percent-encoded query string in
// insertion order. Unreserved characters plus querySafe pass through, space
// becomes +, everything else is %XX with uppercase hex.
func EncodeQuery(p *Params) string {
	if p.Len() == 0 {
		return ""
	}

	var b strings.Builder
	for i, pair := range p.Pairs() {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(queryEscape(pair.Key))
		b.WriteByte('=')
		b.WriteString(queryEscape(pair.Value.Text()))
	}
	return b.String()
}

const upperhex = "0123456789ABCDEF"

func queryEscape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		// Tilde is unreserved (RFC 3986) and never escaped.
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9', c == '~':
			b.WriteByte(c)
		case strings.IndexByte(querySafe, c) >= 0:
			b.WriteByte(c)
		case c == ' ':
			b.WriteByte('+')
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0xf])
		}
	}
	return b.String()
}
