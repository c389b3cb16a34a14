package service

import (
	"testing"
	"time"

	"kiddierewards/internal/models"
)

func entryAt(id int64, reason string, points int, at time.Time) models.PointEntry {
	return models.PointEntry{
		ID:        id,
		Points:    points,
		Type:      models.EntryGoodPoint,
		Reason:    reason,
		IsActive:  true,
		CreatedAt: at,
	}
}

func TestAggregateSuggestions(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("groups case-insensitively and keeps latest casing", func(t *testing.T) {
		entries := []models.PointEntry{
			entryAt(1, "homework", 4, base),
			entryAt(2, "Homework", 6, base.Add(time.Hour)),
			entryAt(3, "HOMEWORK ", 5, base.Add(2*time.Hour)),
		}

		got := aggregateSuggestions(entries, 10)
		if len(got) != 1 {
			t.Fatalf("got %d suggestions, want 1", len(got))
		}
		if got[0].Reason != "HOMEWORK" {
			t.Errorf("reason = %q, want most recent casing HOMEWORK", got[0].Reason)
		}
		if got[0].UseCount != 3 {
			t.Errorf("use count = %d, want 3", got[0].UseCount)
		}
		if got[0].AveragePoints != 5 {
			t.Errorf("average = %d, want 5", got[0].AveragePoints)
		}
	})

	t.Run("ranks by use count then truncates", func(t *testing.T) {
		entries := []models.PointEntry{
			entryAt(1, "Homework", 5, base),
			entryAt(2, "Homework", 5, base.Add(time.Minute)),
			entryAt(3, "Homework", 5, base.Add(2*time.Minute)),
			// Cleaning used less often but more recently
			entryAt(4, "Cleaning", 3, base.Add(time.Hour)),
		}

		got := aggregateSuggestions(entries, 1)
		if len(got) != 1 {
			t.Fatalf("got %d suggestions, want 1", len(got))
		}
		if got[0].Reason != "Homework" {
			t.Errorf("top suggestion = %q, want Homework (higher use count)", got[0].Reason)
		}
	})

	t.Run("ties break by recency", func(t *testing.T) {
		entries := []models.PointEntry{
			entryAt(1, "Reading", 2, base),
			entryAt(2, "Tidying", 3, base.Add(time.Hour)),
		}

		got := aggregateSuggestions(entries, 10)
		if len(got) != 2 {
			t.Fatalf("got %d suggestions, want 2", len(got))
		}
		if got[0].Reason != "Tidying" || got[1].Reason != "Reading" {
			t.Errorf("order = [%s, %s], want [Tidying, Reading]", got[0].Reason, got[1].Reason)
		}
	})

	t.Run("rounds the mean half to even", func(t *testing.T) {
		entries := []models.PointEntry{
			entryAt(1, "Chores", 1, base),
			entryAt(2, "Chores", 2, base.Add(time.Minute)),
			entryAt(3, "Dishes", 2, base),
			entryAt(4, "Dishes", 3, base.Add(time.Minute)),
		}

		got := aggregateSuggestions(entries, 10)
		for _, s := range got {
			switch s.Reason {
			case "Chores":
				if s.AveragePoints != 2 {
					t.Errorf("Chores average = %d, want 2 (1.5 rounds to even)", s.AveragePoints)
				}
			case "Dishes":
				if s.AveragePoints != 2 {
					t.Errorf("Dishes average = %d, want 2 (2.5 rounds to even)", s.AveragePoints)
				}
			}
		}
	})

	t.Run("skips blank reasons", func(t *testing.T) {
		entries := []models.PointEntry{
			entryAt(1, "   ", 5, base),
			entryAt(2, "Homework", 5, base),
		}

		got := aggregateSuggestions(entries, 10)
		if len(got) != 1 {
			t.Fatalf("got %d suggestions, want 1", len(got))
		}
	})
}
