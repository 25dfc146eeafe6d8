package textgen

import (
	"context"
	"fmt"
)

// SoftClient adapts a Generator into the fail-soft TextClient contract:
// backend errors become a diagnostic string embedding the cause.
type SoftClient struct {
	next Generator
}

func NewSoftClient(next Generator) *SoftClient {
	return &SoftClient{next: next}
}

func (s *SoftClient) Generate(ctx context.Context, prompt, system string) string {
	text, err := s.next.Generate(ctx, prompt, system)
	if err != nil {
		return fmt.Sprintf("Text service unavailable: %v. Using fallback response.", err)
	}
	return text
}
