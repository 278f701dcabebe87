package survey

import (
	"strings"
	"time"
)

// Request captures everything one render cycle needs. It is built fresh per
// request and passed by value, so concurrent renders never share state.
type Request struct {
	Domain     string
	SurveyCode string
	Params     *Params

	// Timestamp appends a ts parameter (RFC 3339, UTC, second precision)
	// before signing.
	Timestamp bool

	// Sign appends a sig parameter computed over every parameter present at
	// signing time. Requires a non-empty Secret.
	Sign   bool
	Secret string

	// Now overrides the clock, for tests. Nil means time.Now.
	Now func() time.Time
}

// Link is the finished product of a render cycle.
type Link struct {
	URL       string
	Signature string
	Params    *Params
}

// Build validates the request, derives optional parameters and returns the
// final survey link. The request's own parameter set is never mutated.
func (r Request) Build() (Link, error) {
	if normalizeDomain(r.Domain) == "" {
		return Link{}, ErrMissingDomain
	}
	if strings.TrimSpace(r.SurveyCode) == "" {
		return Link{}, ErrMissingSurveyCode
	}

	params := r.Params.Clone()

	if r.Timestamp {
		now := time.Now
		if r.Now != nil {
			now = r.Now
		}
		params.Set("ts", String(now().UTC().Truncate(time.Second).Format(time.RFC3339)))
	}

	link := Link{Params: params}

	if r.Sign {
		if r.Secret == "" {
			return Link{}, ErrMissingSecret
		}
		link.Signature = Sign(r.Secret, params)
		params.Set("sig", String(link.Signature))
	}

	link.URL = BuildURL(r.Domain, r.SurveyCode, params)
	return link, nil
}
