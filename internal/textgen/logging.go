package textgen

import (
	"context"
	"log"
)

// WithLogging logs request size and errors around a Generator. Provide a
// custom logger or nil to use log.Default().
func WithLogging(next Generator, logger *log.Logger) Generator {
	if logger == nil {
		logger = log.Default()
	}
	return &logging{next: next, log: logger}
}

type logging struct {
	next Generator
	log  *log.Logger
}

func (l *logging) Generate(ctx context.Context, prompt, system string) (string, error) {
	l.log.Printf("textgen request: %d bytes", len(prompt)+len(system))
	text, err := l.next.Generate(ctx, prompt, system)
	if err != nil {
		l.log.Printf("textgen error: %v", err)
	}
	return text, err
}
