package recipe

import (
	"context"
	"time"

	"pantry-chef/internal/core/cache"
)

// fakeCompleter 測試用的 AI 替身
type fakeCompleter struct {
	available bool
	response  string
	err       error
	calls     int
	prompts   []string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeCompleter) Available() bool { return f.available }

func newTestCache() cache.Store {
	return cache.NewMemory(0)
}

const testTTL = time.Hour
