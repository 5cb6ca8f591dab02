package rank

import (
	"reflect"
	"testing"
)

func TestSelectTop(t *testing.T) {
	intBelow := func(a, b int) bool { return a < b }

	tests := []struct {
		name  string
		items []int
		n     int
		want  []int
	}{
		{"empty input", nil, 3, []int{}},
		{"zero requested", []int{1, 2}, 0, []int{}},
		{"single best", []int{3, 9, 1}, 1, []int{9}},
		{"partial selection", []int{5, 1, 4, 2, 3}, 3, []int{5, 4, 3}},
		{"capped to input size", []int{2, 7}, 5, []int{7, 2}},
		{"already sorted descending", []int{9, 8, 7, 6}, 2, []int{9, 8}},
		{"ascending input", []int{1, 2, 3, 4, 5, 6}, 4, []int{6, 5, 4, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectTop(tt.items, tt.n, intBelow)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("selectTop() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectTopMatchesRepeatedMaxExtraction(t *testing.T) {
	scores := []FileScore{
		{ID: "f", Score: 0.2},
		{ID: "b", Score: 0.9},
		{ID: "a", Score: 0.2},
		{ID: "d", Score: 0},
		{ID: "c", Score: 0.9},
		{ID: "e", Score: 0.5},
	}

	got := selectTop(scores, len(scores), fileRanksBelow)

	// reference: pick the best remaining item until none are left
	remaining := append([]FileScore(nil), scores...)
	var want []FileScore
	for len(remaining) > 0 {
		best := 0
		for i := range remaining {
			if fileRanksBelow(remaining[best], remaining[i]) {
				best = i
			}
		}
		want = append(want, remaining[best])
		remaining = append(remaining[:best], remaining[best+1:]...)
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("selectTop() = %v, want %v", got, want)
	}
}
