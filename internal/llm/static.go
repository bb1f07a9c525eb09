package llm

import (
	"context"
	"fmt"
)

// Static is a deterministic provider for tests and offline runs. The same
// prompt and request always produce the same response.
type Static struct {
	// Err, when set, is returned from every Generate call. Tests use it
	// to exercise failure paths.
	Err error
}

// NewStatic creates a static provider.
func NewStatic() *Static {
	return &Static{}
}

// Generate returns a canned response derived only from the inputs.
func (p *Static) Generate(ctx context.Context, prompt string, req Request) (*Response, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	language := req.Language
	if language == "" {
		language = "text"
	}

	return &Response{
		Content:    fmt.Sprintf("Generated %s content (%d prompt bytes)", language, len(prompt)),
		Provider:   "static",
		Model:      "static-v1",
		TokensUsed: int64(len(prompt) / 4),
	}, nil
}
