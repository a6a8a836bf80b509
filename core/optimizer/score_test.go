package optimizer

import (
	"math"
	"testing"

	"github.com/kilianp07/procsched/core/model"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name        string
		total       int
		unscheduled []int
		want        float64
	}{
		{"all scheduled", 4, nil, 1},
		{"none", 0, nil, 0},
		{"one routine missed", 2, []int{5}, 0.48},
		{"one urgent missed", 2, []int{1}, 0.4},
		{"all urgent missed", 1, []int{1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var missed []model.ProcedureRequest
			for _, p := range tt.unscheduled {
				missed = append(missed, model.ProcedureRequest{Priority: p})
			}
			if got := Score(tt.total, missed); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("expected %v got %v", tt.want, got)
			}
		})
	}
}
