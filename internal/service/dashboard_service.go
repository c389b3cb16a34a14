package service

import (
	"fmt"
	"time"

	"kiddierewards/internal/models"
	"kiddierewards/internal/repository"
)

// HistoryPageSize is the number of ledger rows shown per dashboard page
const HistoryPageSize = 10

// DashboardService aggregates the parent dashboard: per-child balances,
// family-wide stats and the paginated ledger.
type DashboardService struct {
	entryRepo  *repository.PointEntryRepository
	memberRepo *repository.MemberRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(entryRepo *repository.PointEntryRepository, memberRepo *repository.MemberRepository) *DashboardService {
	return &DashboardService{
		entryRepo:  entryRepo,
		memberRepo: memberRepo,
	}
}

// ChildSummary is one child with their current balance
type ChildSummary struct {
	Member models.Member
	Totals models.PointsTotals
}

// Dashboard is everything the parent dashboard page renders
type Dashboard struct {
	Children      []ChildSummary
	TotalPlus     int
	TotalMinus    int
	WeeklyNet     int
	History       []models.HistoryEntry
	Page          int
	TotalPages    int
	FilterChildID int64
}

// clampPage forces a page number into [1, totalPages]
func clampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// GetDashboard builds the dashboard for the actor's family. filterChildID
// narrows the history to one child; pass 0 for everyone. An unknown filter
// or out-of-range page is clamped rather than rejected.
func (s *DashboardService) GetDashboard(actor *models.MemberContext, page int, filterChildID int64) (*Dashboard, error) {
	children, err := s.memberRepo.ListChildren(actor.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}

	summaries := make([]ChildSummary, 0, len(children))
	validFilter := false
	for _, child := range children {
		totals, err := s.entryRepo.TotalsForChild(child.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to compute totals: %w", err)
		}
		summaries = append(summaries, ChildSummary{Member: child, Totals: *totals})
		if child.ID == filterChildID {
			validFilter = true
		}
	}
	if !validFilter {
		filterChildID = 0
	}

	count, err := s.entryRepo.CountHistory(actor.FamilyID, filterChildID)
	if err != nil {
		return nil, fmt.Errorf("failed to count history: %w", err)
	}

	totalPages := (count + HistoryPageSize - 1) / HistoryPageSize
	if totalPages < 1 {
		totalPages = 1
	}
	page = clampPage(page, totalPages)

	history, err := s.entryRepo.HistoryPage(actor.FamilyID, filterChildID, HistoryPageSize, (page-1)*HistoryPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	totalPlus, totalMinus, err := s.entryRepo.FamilyTotals(actor.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute family totals: %w", err)
	}

	weekStart := time.Now().UTC().Add(-7 * 24 * time.Hour)
	weeklyNet, err := s.entryRepo.FamilyNetSince(actor.FamilyID, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to compute weekly net: %w", err)
	}

	return &Dashboard{
		Children:      summaries,
		TotalPlus:     totalPlus,
		TotalMinus:    totalMinus,
		WeeklyNet:     weeklyNet,
		History:       history,
		Page:          page,
		TotalPages:    totalPages,
		FilterChildID: filterChildID,
	}, nil
}
