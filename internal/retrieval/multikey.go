package retrieval

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// keywordVocabulary is the fixed set of mood/topic terms indexed by the
// multi-key strategy. Matched by substring against rendered item text and
// against queries.
var keywordVocabulary = []string{
	"urgent", "meeting", "workout", "stressed", "deadline", "happy", "tired",
}

// categoryVocabulary maps each category to the query terms that select it.
// Scan order follows the category declaration order.
var categoryVocabulary = []struct {
	category Category
	terms    []string
}{
	{CategoryCalendar, []string{"calendar", "meeting", "event", "appointment", "schedule"}},
	{CategoryEmail, []string{"email", "message", "mail"}},
	{CategoryFitness, []string{"fitness", "workout", "exercise", "steps", "heart", "activity"}},
	{CategoryMusic, []string{"music", "song", "track", "playlist"}},
}

// Time expressions recognized in queries, tried in this order.
var (
	pmPattern     = regexp.MustCompile(`\b(\d{1,2})pm\b`)
	amPattern     = regexp.MustCompile(`\b(\d{1,2})am\b`)
	clockPattern  = regexp.MustCompile(`\b(\d{2}):(\d{2})\b`)
	itemTimestamp = []string{"2006-01-02 15:04", "2006-01-02 15:04:05", time.RFC3339}
)

// MultiKeyIndex retrieves context through an ordered cascade of exact
// lookups: category buckets, hour-of-day buckets, keyword buckets, then a
// recency fallback. Cheap to build and query, no external services.
type MultiKeyIndex struct {
	items      []Item
	byCategory map[Category][]int
	byHour     map[int][]int
	byKeyword  map[string][]int
}

var _ Manager = (*MultiKeyIndex)(nil)

// NewMultiKeyIndex creates an empty multi-key index.
func NewMultiKeyIndex() *MultiKeyIndex {
	return &MultiKeyIndex{}
}

// AddContexts rebuilds all three lookup structures, replacing any prior
// index. Bucket entries are positions into the stored item slice.
func (m *MultiKeyIndex) AddContexts(_ context.Context, items []Item) error {
	m.items = items
	m.byCategory = make(map[Category][]int)
	m.byHour = make(map[int][]int)
	m.byKeyword = make(map[string][]int)

	for i, it := range items {
		m.byCategory[it.Category] = append(m.byCategory[it.Category], i)

		if hour, ok := timestampHour(it.Timestamp); ok {
			m.byHour[hour] = append(m.byHour[hour], i)
		}

		text := strings.ToLower(it.Render())
		for _, kw := range keywordVocabulary {
			if strings.Contains(text, kw) {
				m.byKeyword[kw] = append(m.byKeyword[kw], i)
			}
		}
	}
	return nil
}

// Retrieve runs the cascade: category match, hour match, keyword match,
// recency fallback. Each step is skipped once topK distinct items have
// been collected; items are deduplicated by ordinal ID across steps. The
// step order is canonical and determines which items win when several
// buckets are eligible.
func (m *MultiKeyIndex) Retrieve(_ context.Context, query string, topK int) (Result, error) {
	start := time.Now()

	queryLower := strings.ToLower(query)
	seen := make(map[int]bool)
	var collected []Item

	take := func(positions []int) {
		for _, pos := range positions {
			if len(collected) >= topK {
				return
			}
			it := m.items[pos]
			if seen[it.ID] {
				continue
			}
			seen[it.ID] = true
			collected = append(collected, it)
		}
	}

	// 1. Category match.
	for _, entry := range categoryVocabulary {
		if len(collected) >= topK {
			break
		}
		for _, term := range entry.terms {
			if strings.Contains(queryLower, term) {
				take(m.byCategory[entry.category])
				break
			}
		}
	}

	// 2. Hour match.
	if len(collected) < topK {
		if hour, ok := queryHour(queryLower); ok {
			take(m.byHour[hour])
		}
	}

	// 3. Keyword match.
	for _, kw := range keywordVocabulary {
		if len(collected) >= topK {
			break
		}
		if strings.Contains(queryLower, kw) {
			take(m.byKeyword[kw])
		}
	}

	// 4. Recency fallback, newest first.
	for i := len(m.items) - 1; i >= 0 && len(collected) < topK; i-- {
		it := m.items[i]
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		collected = append(collected, it)
	}

	sentences := make([]string, len(collected))
	for i, it := range collected {
		sentences[i] = it.Render()
	}

	relevance := 0.0
	switch {
	case len(collected) >= topK && topK > 0:
		relevance = 0.9
	case len(collected) > 0:
		relevance = 0.7
	}

	return Result{
		Context:   strings.Join(sentences, "\n"),
		Latency:   time.Since(start),
		Method:    MethodMultiKey,
		Relevance: relevance,
	}, nil
}

// queryHour extracts an hour of day from a lowercased query. Recognizes
// "3pm", "11am" and 24-hour "HH:MM" forms; 12pm maps to 12 and 12am to 0.
func queryHour(queryLower string) (int, bool) {
	if match := pmPattern.FindStringSubmatch(queryLower); match != nil {
		hour, err := strconv.Atoi(match[1])
		if err != nil || hour < 1 || hour > 12 {
			return 0, false
		}
		if hour != 12 {
			hour += 12
		}
		return hour, true
	}
	if match := amPattern.FindStringSubmatch(queryLower); match != nil {
		hour, err := strconv.Atoi(match[1])
		if err != nil || hour < 1 || hour > 12 {
			return 0, false
		}
		if hour == 12 {
			hour = 0
		}
		return hour, true
	}
	if match := clockPattern.FindStringSubmatch(queryLower); match != nil {
		hour, err := strconv.Atoi(match[1])
		if err != nil || hour > 23 {
			return 0, false
		}
		return hour, true
	}
	return 0, false
}

// timestampHour parses an item timestamp and returns its hour of day.
func timestampHour(ts string) (int, bool) {
	for _, layout := range itemTimestamp {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Hour(), true
		}
	}
	return 0, false
}
