package llm

import "context"

// CompletionService is the minimal text-completion contract the extraction
// pipeline depends on. Implementations send the prompt to a model and return
// the raw completion text.
type CompletionService interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
