package survey

import "errors"

var (
	// ErrMissingDomain and ErrMissingSurveyCode mark configuration gaps:
	// without both identifying fields no well-formed link can be emitted.
	ErrMissingDomain     = errors.New("survey: domain is required")
	ErrMissingSurveyCode = errors.New("survey: survey code is required")

	// ErrMissingSecret marks a signing precondition failure: a sig computed
	// from an empty key must never be emitted.
	ErrMissingSecret = errors.New("survey: signing requested without a secret")
)
