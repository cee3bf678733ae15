// Package llm abstracts the text-generation model behind a minimal
// interface so callers can be tested with mocks and the engine never depends
// on a live model.
package llm

import "context"

// TextGenerator generates text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
