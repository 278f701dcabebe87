package keyring

import (
	"context"
	"errors"
	"testing"

	"github.com/orafadelg/surveyqr/internal/survey"
)

func TestStaticSecret(t *testing.T) {
	kr := NewStatic("super-secret-key")

	secret, err := kr.Secret(context.Background(), "045")
	if err != nil {
		t.Fatalf("Secret() error: %v", err)
	}
	if secret != "super-secret-key" {
		t.Errorf("Secret() = %q", secret)
	}
}

func TestStaticSecretEmpty(t *testing.T) {
	kr := NewStatic("")

	_, err := kr.Secret(context.Background(), "045")
	if !errors.Is(err, survey.ErrMissingSecret) {
		t.Errorf("Secret() error = %v, want %v", err, survey.ErrMissingSecret)
	}
}
