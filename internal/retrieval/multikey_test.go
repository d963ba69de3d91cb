package retrieval

import (
	"context"
	"strings"
	"testing"
)

func TestQueryHour(t *testing.T) {
	tests := []struct {
		query    string
		wantHour int
		wantOK   bool
	}{
		{"3pm meeting", 15, true},
		{"11am call", 11, true},
		{"12pm lunch", 12, true},
		{"12am", 0, true},
		{"1am wakeup", 1, true},
		{"meet at 09:30", 9, true},
		{"meet at 23:15", 23, true},
		{"no time here", 0, false},
		{"99:99 invalid", 0, false},
		{"13pm nonsense", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			hour, ok := queryHour(tt.query)
			if ok != tt.wantOK {
				t.Fatalf("queryHour(%q) ok = %v, want %v", tt.query, ok, tt.wantOK)
			}
			if ok && hour != tt.wantHour {
				t.Errorf("queryHour(%q) = %d, want %d", tt.query, hour, tt.wantHour)
			}
		})
	}
}

func testCorpus() []Item {
	return []Item{
		{ID: 0, Category: CategoryCalendar, Timestamp: "2024-03-14 15:00", Title: "Team sync", Description: "Weekly status"},
		{ID: 1, Category: CategoryEmail, Timestamp: "2024-03-14 10:00", Sender: "boss@example.com", Subject: "Urgent update", Body: "Feeling stressed about the deadline"},
		{ID: 2, Category: CategoryFitness, Timestamp: "2024-03-14 07:30", Activity: "workout", Steps: 4200, HeartRate: 130},
		{ID: 3, Category: CategoryMusic, Timestamp: "2024-03-14 20:00", Track: "Weightless", Artist: "Marconi Union", Genre: "ambient", Mood: "calm"},
	}
}

func newTestMultiKey(t *testing.T, items []Item) *MultiKeyIndex {
	t.Helper()
	idx := NewMultiKeyIndex()
	if err := idx.AddContexts(context.Background(), items); err != nil {
		t.Fatalf("AddContexts() error = %v", err)
	}
	return idx
}

func TestMultiKeyCategoryBeforeRecency(t *testing.T) {
	idx := newTestMultiKey(t, testCorpus())

	result, err := idx.Retrieve(context.Background(), "upcoming meeting", 1)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	// "meeting" selects the calendar bucket; the calendar item must win
	// over newer items from the recency fallback.
	if !strings.HasPrefix(result.Context, "Calendar:") {
		t.Errorf("Retrieve(meeting) context = %q, want calendar item first", result.Context)
	}
	if result.Method != MethodMultiKey {
		t.Errorf("method = %q, want %q", result.Method, MethodMultiKey)
	}
}

func TestMultiKeyHourBucket(t *testing.T) {
	idx := newTestMultiKey(t, testCorpus())

	// No category term; "3pm" maps to hour 15 which holds the calendar item.
	result, err := idx.Retrieve(context.Background(), "what is at 3pm", 1)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if !strings.Contains(result.Context, "Team sync") {
		t.Errorf("Retrieve(3pm) context = %q, want hour-15 item", result.Context)
	}
}

func TestMultiKeyKeywordBucket(t *testing.T) {
	idx := newTestMultiKey(t, testCorpus())

	result, err := idx.Retrieve(context.Background(), "user is stressed", 1)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if !strings.Contains(result.Context, "Urgent update") {
		t.Errorf("Retrieve(stressed) context = %q, want stressed email", result.Context)
	}
}

func TestMultiKeyRecencyFallback(t *testing.T) {
	idx := newTestMultiKey(t, testCorpus())

	// No category, hour or keyword terms: fall back to the most recently
	// added items, newest first.
	result, err := idx.Retrieve(context.Background(), "anything interesting", 2)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	lines := strings.Split(result.Context, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), result.Context)
	}
	if !strings.HasPrefix(lines[0], "Music:") {
		t.Errorf("first fallback line = %q, want newest item (music)", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Fitness:") {
		t.Errorf("second fallback line = %q, want second-newest item (fitness)", lines[1])
	}
}

func TestMultiKeyDeduplicatesAcrossSteps(t *testing.T) {
	idx := newTestMultiKey(t, testCorpus())

	// "workout" hits both the fitness category vocabulary and the keyword
	// vocabulary; the fitness item must appear once.
	result, err := idx.Retrieve(context.Background(), "workout", 4)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	count := strings.Count(result.Context, "Fitness: workout")
	if count != 1 {
		t.Errorf("fitness item appears %d times, want 1:\n%s", count, result.Context)
	}
}

func TestMultiKeyRelevanceTiers(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		query string
		topK  int
		want  float64
	}{
		{
			name:  "full quota",
			items: testCorpus(),
			query: "anything",
			topK:  3,
			want:  0.9,
		},
		{
			name:  "partial",
			items: testCorpus()[:2],
			query: "anything",
			topK:  3,
			want:  0.7,
		},
		{
			name:  "empty corpus",
			items: nil,
			query: "anything",
			topK:  3,
			want:  0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := newTestMultiKey(t, tt.items)
			result, err := idx.Retrieve(context.Background(), tt.query, tt.topK)
			if err != nil {
				t.Fatalf("Retrieve() error = %v", err)
			}
			if result.Relevance != tt.want {
				t.Errorf("relevance = %v, want %v", result.Relevance, tt.want)
			}
		})
	}
}

func TestMultiKeyEmptyCorpus(t *testing.T) {
	idx := newTestMultiKey(t, nil)

	result, err := idx.Retrieve(context.Background(), "meeting at 3pm", 3)
	if err != nil {
		t.Fatalf("Retrieve() on empty corpus error = %v", err)
	}
	if result.Context != "" {
		t.Errorf("context = %q, want empty", result.Context)
	}
	if result.Relevance != 0 {
		t.Errorf("relevance = %v, want 0", result.Relevance)
	}
}

func TestMultiKeyCombinedQueryScenario(t *testing.T) {
	// A query combining the latest email subject and fitness activity must
	// surface the email and fitness items without touching the recency
	// fallback.
	idx := newTestMultiKey(t, testCorpus())

	result, err := idx.Retrieve(context.Background(), "Recent email: Urgent update Current activity: workout", 2)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	if !strings.Contains(result.Context, "Urgent update") {
		t.Errorf("context missing the email item:\n%s", result.Context)
	}
	if !strings.Contains(result.Context, "Fitness: workout") {
		t.Errorf("context missing the fitness item:\n%s", result.Context)
	}
	if strings.Contains(result.Context, "Music:") {
		t.Errorf("recency fallback leaked into context:\n%s", result.Context)
	}
	if result.Relevance != 0.9 {
		t.Errorf("relevance = %v, want 0.9", result.Relevance)
	}
}

func TestMultiKeyAddContextsReplacesIndex(t *testing.T) {
	idx := newTestMultiKey(t, testCorpus())

	if err := idx.AddContexts(context.Background(), testCorpus()[:1]); err != nil {
		t.Fatalf("AddContexts() error = %v", err)
	}

	result, err := idx.Retrieve(context.Background(), "anything", 10)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if lines := strings.Split(result.Context, "\n"); len(lines) != 1 {
		t.Errorf("got %d items after reindex, want 1", len(lines))
	}
}
