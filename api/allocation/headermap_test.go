package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "already clean", header: "segment", want: "segment"},
		{name: "uppercase with spaces", header: " Loan Number ", want: "loannumber"},
		{name: "underscores", header: "loan_number", want: "loannumber"},
		{name: "punctuation", header: "POS (IN CR)", want: "posincr"},
		{name: "slash", header: "ASHV DA/PTC", want: "ashvdaptc"},
		{name: "digits survive", header: "address_priority_1", want: "addresspriority1"},
		{name: "empty", header: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeader(tt.header))
		})
	}
}

func TestResolveHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{name: "exact", header: "LOAN NUMBER", want: "LOAN NUMBER", ok: true},
		{name: "alias", header: "Loan No", want: "LOAN NUMBER", ok: true},
		{name: "spacing drift", header: "  customer_name ", want: "CUSTOMER NAME", ok: true},
		{name: "pos variant", header: "POS AMT", want: "POS Amt", ok: true},
		{name: "unknown dropped", header: "RANDOM COLUMN", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveHeader(tt.header)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestResolveHeaderRow(t *testing.T) {
	cols := ResolveHeaderRow([]string{"Loan Number", "junk", "SEGMENT", "", "NPA Date"})
	assert.Equal(t, map[int]string{
		0: "LOAN NUMBER",
		2: "SEGMENT",
		4: "NPA DATE",
	}, cols)
}
