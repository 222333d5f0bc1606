package stepgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatStepList(t *testing.T) {
	tests := []struct {
		name     string
		ordinals []int
		want     string
	}{
		{"empty", nil, ""},
		{"single", []int{3}, "Step 3"},
		{"pair", []int{2, 3}, "Steps 2 and 3"},
		{"triple keeps oxford comma", []int{3, 4, 5}, "Steps 3, 4, and 5"},
		{"four", []int{1, 2, 4, 7}, "Steps 1, 2, 4, and 7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatStepList(tt.ordinals))
		})
	}
}
