package survey

import (
	"sort"
	"strings"
)

// Canonical serializes a parameter set into the signing string: entries
// sorted ascending by key (byte order), rendered as key=value and joined
// with &. The result is a signing artifact, never a transmitted string, so
// no URL encoding is applied. An empty set yields an empty string.
//
// Values are not escaped either, so a value containing = or & can make two
// distinct sets canonicalize identically. Callers own their parameter
// vocabulary (store ids, order ids, timestamps), none of which carry those
// characters.
func Canonical(p *Params) string {
	if p.Len() == 0 {
		return ""
	}

	pairs := p.Pairs()
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })

	parts := make([]string, len(pairs))
	for i, pair := range pairs {
		parts[i] = pair.Key + "=" + pair.Value.Text()
	}
	return strings.Join(parts, "&")
}
