// Package textgen wraps the text generation service.
//
// Generator implementations may fail; TextClient never does. Stages depend on
// TextClient so that a degraded model still produces some text to attach.
package textgen

import "context"

// Generator produces a free-text completion for a prompt and an optional
// system instruction.
type Generator interface {
	Generate(ctx context.Context, prompt, system string) (string, error)
}

// TextClient is the fail-soft surface consumed by pipeline stages. On any
// backend failure the returned string is a diagnostic standing in for the
// completion; callers must not assume success implies meaningful content.
type TextClient interface {
	Generate(ctx context.Context, prompt, system string) string
}
