package retrieval

import "testing"

func TestItemRender(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want string
	}{
		{
			name: "calendar",
			item: Item{
				Category:    CategoryCalendar,
				Timestamp:   "2024-03-14 15:00",
				Title:       "Team sync",
				Description: "Weekly status update",
			},
			want: "Calendar: Team sync at 2024-03-14 15:00. Weekly status update",
		},
		{
			name: "email",
			item: Item{
				Category: CategoryEmail,
				Sender:   "boss@example.com",
				Subject:  "Urgent update",
				Body:     "Deadline moved up",
			},
			want: "Email from boss@example.com: Urgent update. Deadline moved up",
		},
		{
			name: "fitness",
			item: Item{
				Category:  CategoryFitness,
				Timestamp: "2024-03-14 07:30",
				Activity:  "workout",
				Steps:     4200,
				HeartRate: 130,
			},
			want: "Fitness: workout at 2024-03-14 07:30. Steps: 4200, HR: 130",
		},
		{
			name: "music",
			item: Item{
				Category: CategoryMusic,
				Track:    "Weightless",
				Artist:   "Marconi Union",
				Genre:    "ambient",
				Mood:     "calm",
			},
			want: "Music: Weightless by Marconi Union (ambient, calm)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Render(); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}
