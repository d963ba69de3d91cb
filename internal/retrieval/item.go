// Package retrieval implements in-memory context retrieval over personal
// data streams. Two interchangeable strategies are provided: a semantic
// vector index backed by an embedding service, and a multi-key index that
// cascades over category, time and keyword buckets.
package retrieval

import "fmt"

// Category tags a context item with the data stream it came from.
type Category string

const (
	CategoryCalendar Category = "calendar"
	CategoryEmail    Category = "email"
	CategoryFitness  Category = "fitness"
	CategoryMusic    Category = "music"
)

// Item is one atomic fact from a personal data stream. Items are immutable
// once indexed and are identified by the ordinal ID assigned at ingestion,
// never by memory identity.
type Item struct {
	ID        int
	Category  Category
	Timestamp string

	// Calendar
	Title       string
	Description string

	// Email
	Sender  string
	Subject string
	Body    string

	// Fitness
	Activity  string
	Steps     int
	HeartRate int

	// Music
	Track  string
	Artist string
	Genre  string
	Mood   string
}

// Render produces the single descriptive sentence used both for embedding
// and as the retrieved context text.
func (it Item) Render() string {
	switch it.Category {
	case CategoryCalendar:
		return fmt.Sprintf("Calendar: %s at %s. %s", it.Title, it.Timestamp, it.Description)
	case CategoryEmail:
		return fmt.Sprintf("Email from %s: %s. %s", it.Sender, it.Subject, it.Body)
	case CategoryFitness:
		return fmt.Sprintf("Fitness: %s at %s. Steps: %d, HR: %d", it.Activity, it.Timestamp, it.Steps, it.HeartRate)
	case CategoryMusic:
		return fmt.Sprintf("Music: %s by %s (%s, %s)", it.Track, it.Artist, it.Genre, it.Mood)
	default:
		return fmt.Sprintf("%+v", it)
	}
}
