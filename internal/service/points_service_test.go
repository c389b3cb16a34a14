package service

import (
	"reflect"
	"testing"

	"kiddierewards/internal/models"
	"kiddierewards/internal/validation"
)

func TestNormalizePoints(t *testing.T) {
	tests := []struct {
		name      string
		entryType models.PointEntryType
		points    int
		want      int
		wantErr   bool
	}{
		{"good point stays positive", models.EntryGoodPoint, 5, 5, false},
		{"good point flips negative input", models.EntryGoodPoint, -5, 5, false},
		{"bonus stays positive", models.EntryBonus, 10, 10, false},
		{"bad point flips to negative", models.EntryBadPoint, 3, -3, false},
		{"bad point keeps negative input", models.EntryBadPoint, -3, -3, false},
		{"reward flips to negative", models.EntryReward, 20, -20, false},
		{"zero rejected for good point", models.EntryGoodPoint, 0, 0, true},
		{"zero rejected for reward", models.EntryReward, 0, 0, true},
		{"unknown type rejected", models.PointEntryType("mystery"), 5, 0, true},
		{"reset passes through as zero", models.EntryReset, 42, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizePoints(tt.entryType, tt.points)
			if tt.wantErr {
				if err == nil {
					t.Fatal("normalizePoints() expected error, got nil")
				}
				if !validation.IsValidationError(err) {
					t.Errorf("normalizePoints() error = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalizePoints() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("normalizePoints() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDedupeIDs(t *testing.T) {
	tests := []struct {
		name string
		ids  []int64
		want []int64
	}{
		{"empty", []int64{}, []int64{}},
		{"no duplicates", []int64{1, 2, 3}, []int64{1, 2, 3}},
		{"duplicates removed, order kept", []int64{3, 1, 3, 2, 1}, []int64{3, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dedupeIDs(tt.ids)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("dedupeIDs(%v) = %v, want %v", tt.ids, got, tt.want)
			}
		})
	}
}
