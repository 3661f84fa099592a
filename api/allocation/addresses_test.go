package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAddresses(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]interface{}
		want []string
	}{
		{
			name: "cleaning and placeholder drop",
			doc: map[string]interface{}{
				"address_priority_1": "3. 12 Oak Street",
				"address_priority_2": "0",
				"address_priority_3": "560064.0",
			},
			want: []string{"12 Oak Street", "560064"},
		},
		{
			name: "dedupe keeps first-seen order",
			doc: map[string]interface{}{
				"address_priority_1": "12 Oak Street",
				"address_priority_2": "45 Lake Road",
				"address_priority_3": "12 Oak Street",
			},
			want: []string{"12 Oak Street", "45 Lake Road"},
		},
		{
			name: "dash and empty dropped",
			doc: map[string]interface{}{
				"address_priority_1": "-",
				"address_priority_2": "  ",
				"address_priority_3": "77 Hill View",
			},
			want: []string{"77 Hill View"},
		},
		{
			name: "numeric cell prints as integer",
			doc: map[string]interface{}{
				"address_priority_1": 560064.0,
			},
			want: []string{"560064"},
		},
		{
			name: "case-insensitive key prefix",
			doc: map[string]interface{}{
				"ADDRESS":       "HQ Lane",
				"CUSTOMER NAME": "Someone",
			},
			want: []string{"HQ Lane"},
		},
		{
			name: "no address fields",
			doc:  map[string]interface{}{"SEGMENT": "Rural"},
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractAddresses(tt.doc))
		})
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		assigned int
		want     AssignmentSummaryStats
	}{
		{
			name: "partial coverage", total: 10, assigned: 4,
			want: AssignmentSummaryStats{TotalCases: 10, AssignedCases: 4, UnassignedCases: 6, AssignedPercent: 40.0},
		},
		{
			name: "rounding to two places", total: 3, assigned: 1,
			want: AssignmentSummaryStats{TotalCases: 3, AssignedCases: 1, UnassignedCases: 2, AssignedPercent: 33.33},
		},
		{
			name: "empty portfolio", total: 0, assigned: 0,
			want: AssignmentSummaryStats{},
		},
		{
			name: "full coverage", total: 5, assigned: 5,
			want: AssignmentSummaryStats{TotalCases: 5, AssignedCases: 5, UnassignedCases: 0, AssignedPercent: 100.0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, summarize(tt.total, tt.assigned))
		})
	}
}
