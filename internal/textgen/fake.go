package textgen

import (
	"context"
	"sync/atomic"
)

// Fake returns a canned reply and counts calls, for offline use and tests.
type Fake struct {
	Reply string
	Fail  error

	calls int32
}

func (f *Fake) Generate(ctx context.Context, prompt, system string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.Fail != nil {
		return "", f.Fail
	}
	return f.Reply, nil
}

func (f *Fake) Calls() int { return int(atomic.LoadInt32(&f.calls)) }

// SoftFake is a Fake already wrapped in the fail-soft contract, usable
// directly where a TextClient is expected.
type SoftFake struct {
	Fake
}

func (f *SoftFake) Generate(ctx context.Context, prompt, system string) string {
	text, err := f.Fake.Generate(ctx, prompt, system)
	if err != nil {
		return "Text service unavailable: " + err.Error() + ". Using fallback response."
	}
	return text
}
