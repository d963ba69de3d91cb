package retrieval

import (
	"context"
	"time"
)

// Method tags identifying which strategy produced a Result.
const (
	MethodSemantic = "semantic"
	MethodMultiKey = "multikey"
)

// Result is the output of one Retrieve call.
type Result struct {
	// Context is the retrieved sentences joined with newlines, best first.
	Context string
	// Latency is the wall-clock duration of the retrieval.
	Latency time.Duration
	// Method identifies the producing strategy.
	Method string
	// Relevance is a confidence in [0,1] that the context matches the
	// query. Distance-derived for the semantic index, tiered heuristic
	// for the multi-key index.
	Relevance float64
}

// Manager is the capability both retrieval strategies implement. The
// pipeline is agnostic to which one is in use.
//
// AddContexts replaces any previously built index. Retrieve with an empty
// corpus returns a Result with empty text and relevance 0, not an error.
type Manager interface {
	AddContexts(ctx context.Context, items []Item) error
	Retrieve(ctx context.Context, query string, topK int) (Result, error)
}
