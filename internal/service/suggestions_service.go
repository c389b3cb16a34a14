package service

import (
	"math"
	"sort"
	"strings"

	"kiddierewards/internal/models"
	"kiddierewards/internal/repository"
	"kiddierewards/internal/validation"
)

// SuggestionsService derives reason suggestions from a family's ledger so
// parents can re-award common reasons with a tap.
type SuggestionsService struct {
	entryRepo *repository.PointEntryRepository
}

// NewSuggestionsService creates a new suggestions service
func NewSuggestionsService(entryRepo *repository.PointEntryRepository) *SuggestionsService {
	return &SuggestionsService{entryRepo: entryRepo}
}

// Suggestion is one aggregated reason with its usage stats
type Suggestion struct {
	Reason        string `json:"reason"`
	AveragePoints int    `json:"averagePoints"`
	UseCount      int    `json:"useCount"`
}

// Suggest aggregates active non-reset entries of the actor's family into
// ranked reason suggestions, optionally filtered by a case-insensitive
// substring. limit must be positive.
func (s *SuggestionsService) Suggest(actor *models.MemberContext, labelFilter string, limit int) ([]Suggestion, error) {
	if limit <= 0 {
		return nil, validation.Error{Field: "limit", Message: "limit must be positive"}
	}

	filter := strings.ToLower(strings.TrimSpace(labelFilter))
	entries, err := s.entryRepo.ActiveEntriesForFamily(actor.FamilyID, filter)
	if err != nil {
		return nil, err
	}

	return aggregateSuggestions(entries, limit), nil
}

type suggestionGroup struct {
	label    string // casing of the most recent use
	sum      int
	count    int
	latest   int64 // CreatedAt in unix nanos of the most recent use
	latestID int64 // tie-break for entries created in the same instant
}

// aggregateSuggestions groups entries by trimmed, case-insensitive reason.
// Each group keeps the most recently used exact casing as its label and the
// rounded mean point value. Groups rank by usage count, then recency.
func aggregateSuggestions(entries []models.PointEntry, limit int) []Suggestion {
	groups := make(map[string]*suggestionGroup)

	for _, entry := range entries {
		label := strings.TrimSpace(entry.Reason)
		if label == "" {
			continue
		}
		key := strings.ToLower(label)

		g, ok := groups[key]
		if !ok {
			g = &suggestionGroup{}
			groups[key] = g
		}

		g.sum += entry.Points
		g.count++

		at := entry.CreatedAt.UnixNano()
		if at > g.latest || (at == g.latest && entry.ID > g.latestID) {
			g.latest = at
			g.latestID = entry.ID
			g.label = label
		}
	}

	ordered := make([]*suggestionGroup, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}

	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].count != ordered[j].count {
			return ordered[i].count > ordered[j].count
		}
		return ordered[i].latest > ordered[j].latest
	})

	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	suggestions := make([]Suggestion, 0, len(ordered))
	for _, g := range ordered {
		suggestions = append(suggestions, Suggestion{
			Reason:        g.label,
			AveragePoints: int(math.RoundToEven(float64(g.sum) / float64(g.count))),
			UseCount:      g.count,
		})
	}

	return suggestions
}
