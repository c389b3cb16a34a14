package service

import "testing"

func TestClampPage(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		totalPages int
		want       int
	}{
		{"in range", 2, 5, 2},
		{"below range", 0, 5, 1},
		{"negative", -3, 5, 1},
		{"above range", 9, 5, 5},
		{"single page", 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampPage(tt.page, tt.totalPages); got != tt.want {
				t.Errorf("clampPage(%d, %d) = %d, want %d", tt.page, tt.totalPages, got, tt.want)
			}
		})
	}
}
