package analyzer

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by a provider that has no credentials.
var ErrNotConfigured = errors.New("provider not configured")

// Provider turns a prompt into narrative text.
type Provider interface {
	// Name is the display name recorded on the report.
	Name() string
	Configured() bool
	Generate(ctx context.Context, system, prompt string) (string, error)
}
