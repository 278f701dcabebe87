package keyring

import (
	"context"
	"errors"

	"github.com/orafadelg/surveyqr/internal/survey"
)

var (
	ErrStoreNotFound = errors.New("keyring: no signing key for store")
	ErrStoreDisabled = errors.New("keyring: signing key for store is disabled")
)

// Keyring resolves the HMAC secret used to sign links for a store.
type Keyring interface {
	Secret(ctx context.Context, storeID string) (string, error)
}

// Static serves one shared secret for every store, typically sourced from
// the environment in single-tenant deployments.
type Static struct {
	secret string
}

func NewStatic(secret string) Static {
	return Static{secret: secret}
}

func (s Static) Secret(context.Context, string) (string, error) {
	if s.secret == "" {
		return "", survey.ErrMissingSecret
	}
	return s.secret, nil
}
