package visit

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySnapshot(t *testing.T) {
	t.Run("case-insensitive field matching", func(t *testing.T) {
		v := &VisitLog{}
		applySnapshot(v, "LN-1", map[string]interface{}{
			"segment":       "Rural",
			"Product":       "Tractor Loan",
			"STATE":         "KA",
			"Customer Name": "R. Sharma",
			"pos_amt":       125000.0,
			"EMI":           "9,500",
			"OPENING BKT":   "B2",
		})
		assert.Equal(t, "LN-1", v.LoanNumber)
		assert.Equal(t, "Rural", v.Segment)
		assert.Equal(t, "Tractor Loan", v.Product)
		assert.Equal(t, "KA", v.State)
		assert.Equal(t, "R. Sharma", v.CustomerName)
		require.NotNil(t, v.PosAmount)
		assert.True(t, v.PosAmount.Equal(decimal.NewFromInt(125000)))
		require.NotNil(t, v.Emi)
		assert.True(t, v.Emi.Equal(decimal.NewFromInt(9500)))
		assert.Equal(t, "B2", v.Bucket)
	})

	t.Run("fallback keys", func(t *testing.T) {
		v := &VisitLog{}
		applySnapshot(v, "LN-2", map[string]interface{}{
			"POS (IN CR)":   "1.25",
			"BKT TAG":       "X4",
			"BORROWER NAME": "S. Kumar",
		})
		require.NotNil(t, v.PosAmount)
		assert.Equal(t, "1.25", v.PosAmount.String())
		assert.Equal(t, "X4", v.Bucket)
		assert.Equal(t, "S. Kumar", v.CustomerName)
	})

	t.Run("nil document keeps visit recordable", func(t *testing.T) {
		v := &VisitLog{}
		applySnapshot(v, "LN-3", nil)
		assert.Equal(t, "LN-3", v.LoanNumber)
		assert.Empty(t, v.Segment)
		assert.Nil(t, v.PosAmount)
	})
}

func TestValidAssessment(t *testing.T) {
	tests := []struct {
		name           string
		disp           string
		contactability string
		residence      string
		classification string
		wantField      string
		wantOK         bool
	}{
		{name: "all valid", disp: "PTP", contactability: "CONTACTED_AT_RESIDENCE", residence: "AVAILABLE", classification: "NORMAL", wantOK: true},
		{name: "blanks allowed except disp", disp: "PAID", wantOK: true},
		{name: "missing disp", disp: "", wantField: "disp", wantOK: false},
		{name: "unknown disp", disp: "MAYBE", wantField: "disp", wantOK: false},
		{name: "unknown contactability", disp: "NC", contactability: "SOMETIMES", wantField: "contactability", wantOK: false},
		{name: "unknown residence", disp: "NC", residence: "GONE", wantField: "residence_status", wantOK: false},
		{name: "unknown classification", disp: "NC", classification: "ODD", wantField: "classification_code", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, ok := ValidAssessment(tt.disp, tt.contactability, tt.residence, tt.classification)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantField, field)
		})
	}
}
