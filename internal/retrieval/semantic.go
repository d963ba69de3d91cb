package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Embedder produces fixed-dimension vectors for texts. Satisfied by
// llm.Embedder; tests substitute a deterministic fake.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// SemanticIndex retrieves context by vector similarity. Every item is
// rendered to a sentence, embedded, and stored in a flat index searched
// by Euclidean distance.
type SemanticIndex struct {
	embedder  Embedder
	sentences []string
	vectors   [][]float32
}

var _ Manager = (*SemanticIndex)(nil)

// NewSemanticIndex creates an empty semantic index using the given
// embedding backend.
func NewSemanticIndex(embedder Embedder) *SemanticIndex {
	return &SemanticIndex{embedder: embedder}
}

// AddContexts renders and embeds all items, replacing any prior index.
func (s *SemanticIndex) AddContexts(ctx context.Context, items []Item) error {
	sentences := make([]string, len(items))
	for i, it := range items {
		sentences[i] = it.Render()
	}

	if len(sentences) == 0 {
		s.sentences = nil
		s.vectors = nil
		return nil
	}

	vectors, err := s.embedder.EmbedBatch(ctx, sentences)
	if err != nil {
		return fmt.Errorf("embed contexts: %w", err)
	}
	if len(vectors) != len(sentences) {
		return fmt.Errorf("embedding count mismatch: got %d, want %d", len(vectors), len(sentences))
	}

	s.sentences = sentences
	s.vectors = vectors
	return nil
}

// Retrieve embeds the query and returns the k nearest sentences in
// ascending-distance order, where k = min(topK, corpus size).
func (s *SemanticIndex) Retrieve(ctx context.Context, query string, topK int) (Result, error) {
	start := time.Now()

	if len(s.vectors) == 0 {
		return Result{Method: MethodSemantic, Latency: time.Since(start)}, nil
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return Result{}, fmt.Errorf("embed query: %w", err)
	}

	type hit struct {
		index    int
		distance float64
	}
	hits := make([]hit, len(s.vectors))
	for i, vec := range s.vectors {
		hits[i] = hit{index: i, distance: euclidean(queryVec, vec)}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].distance < hits[b].distance })

	k := topK
	if k > len(hits) {
		k = len(hits)
	}

	sentences := make([]string, k)
	for i := 0; i < k; i++ {
		sentences[i] = s.sentences[hits[i].index]
	}

	return Result{
		Context:   strings.Join(sentences, "\n"),
		Latency:   time.Since(start),
		Method:    MethodSemantic,
		Relevance: 1.0 / (1.0 + hits[0].distance),
	}, nil
}

// euclidean returns the L2 distance between two vectors, comparing over
// the shorter length if the dimensions disagree.
func euclidean(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
