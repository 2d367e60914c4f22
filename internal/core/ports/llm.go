package ports

import "context"

// CompletionRequest is a single prompt for the language model.
type CompletionRequest struct {
	Prompt string
	// Stop sequences end generation early; providers that ignore them are
	// tolerated since the agent parser truncates at the same markers.
	Stop []string
}

// LanguageModel is the text-completion capability. Output structure is not
// guaranteed.
type LanguageModel interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
