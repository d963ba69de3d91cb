// Package userdata defines the user-data snapshot consumed by the
// pipeline and its flattening into retrievable context items.
package userdata

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nudged-ai/nudged/internal/retrieval"
)

// CalendarEvent is one calendar entry of the snapshot.
type CalendarEvent struct {
	Title       string `json:"title"`
	Time        string `json:"time"`
	Description string `json:"description"`
}

// Email is one received email of the snapshot.
type Email struct {
	Sender  string `json:"sender"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Time    string `json:"time"`
}

// FitnessReading is one fitness tracker sample of the snapshot.
type FitnessReading struct {
	ActivityType string `json:"activity_type"`
	Time         string `json:"time"`
	Steps        int    `json:"steps"`
	HeartRate    int    `json:"heart_rate"`
}

// MusicTrack is one listening-history entry of the snapshot.
type MusicTrack struct {
	TrackName string `json:"track_name"`
	Artist    string `json:"artist"`
	Genre     string `json:"genre"`
	Mood      string `json:"mood"`
	Time      string `json:"time"`
}

// UserData aggregates one day of personal data streams.
type UserData struct {
	Calendar []CalendarEvent  `json:"calendar"`
	Emails   []Email          `json:"emails"`
	Fitness  []FitnessReading `json:"fitness"`
	Music    []MusicTrack     `json:"music"`
}

// Load reads a UserData snapshot from a JSON file.
func Load(path string) (UserData, error) {
	var data UserData
	raw, err := os.ReadFile(path)
	if err != nil {
		return data, fmt.Errorf("read user data: %w", err)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("parse user data %s: %w", path, err)
	}
	return data, nil
}

// Flatten turns the four category lists into a single tagged item list.
// Ordinal IDs are assigned in flattening order and identify items across
// the retrieval cascade.
func (d UserData) Flatten() []retrieval.Item {
	items := make([]retrieval.Item, 0, len(d.Calendar)+len(d.Emails)+len(d.Fitness)+len(d.Music))

	for _, event := range d.Calendar {
		items = append(items, retrieval.Item{
			ID:          len(items),
			Category:    retrieval.CategoryCalendar,
			Timestamp:   event.Time,
			Title:       event.Title,
			Description: event.Description,
		})
	}
	for _, email := range d.Emails {
		items = append(items, retrieval.Item{
			ID:        len(items),
			Category:  retrieval.CategoryEmail,
			Timestamp: email.Time,
			Sender:    email.Sender,
			Subject:   email.Subject,
			Body:      email.Body,
		})
	}
	for _, reading := range d.Fitness {
		items = append(items, retrieval.Item{
			ID:        len(items),
			Category:  retrieval.CategoryFitness,
			Timestamp: reading.Time,
			Activity:  reading.ActivityType,
			Steps:     reading.Steps,
			HeartRate: reading.HeartRate,
		})
	}
	for _, track := range d.Music {
		items = append(items, retrieval.Item{
			ID:        len(items),
			Category:  retrieval.CategoryMusic,
			Timestamp: track.Time,
			Track:     track.TrackName,
			Artist:    track.Artist,
			Genre:     track.Genre,
			Mood:      track.Mood,
		})
	}

	return items
}
