package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceCell(t *testing.T) {
	tests := []struct {
		name      string
		canonical string
		raw       string
		want      interface{}
		present   bool
	}{
		{name: "blank is absent", canonical: "SEGMENT", raw: "   ", present: false},
		{name: "plain string", canonical: "SEGMENT", raw: "Rural", want: "Rural", present: true},
		{name: "number", canonical: "EMI", raw: "12500.50", want: 12500.50, present: true},
		{name: "number with commas", canonical: "POS Amt", raw: "1,25,000", want: 125000.0, present: true},
		{name: "bool true", canonical: "Warrant", raw: "TRUE", want: true, present: true},
		{name: "bool false", canonical: "Warrant", raw: "false", want: false, present: true},
		{name: "excel date serial", canonical: "NPA DATE", raw: "45292", want: "2024-01-01", present: true},
		{name: "serial on non-date stays numeric", canonical: "EMI", raw: "45292", want: 45292.0, present: true},
		{name: "iso date", canonical: "NPA DATE", raw: "2023-06-15", want: "2023-06-15", present: true},
		{name: "dd-mm-yyyy date", canonical: "DISBURSAL DATE", raw: "15-06-2023", want: "2023-06-15", present: true},
		{name: "unparseable date falls back to string", canonical: "NPA DATE", raw: "mid June", want: "mid June", present: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := CoerceCell(tt.canonical, tt.raw)
			assert.Equal(t, tt.present, ok)
			if tt.present {
				assert.Equal(t, tt.want, v.JSON())
			}
		})
	}
}

func TestApplyBackfill(t *testing.T) {
	doc := map[string]interface{}{
		"LOAN NUMBER": "LN-1",
		"CASE NO":     " ",
	}
	ApplyBackfill(doc)
	assert.Equal(t, "PENDING-ALLOCATION", doc["CASE NO"])
	assert.Equal(t, "0000 0000 0000", doc["BANK A/C NO"])

	// Idempotent: a second pass and populated fields stay untouched.
	doc["CASE NO"] = "C-77"
	ApplyBackfill(doc)
	assert.Equal(t, "C-77", doc["CASE NO"])
	assert.Equal(t, "0000 0000 0000", doc["BANK A/C NO"])
}

func TestBuildRowDocument(t *testing.T) {
	cols := ResolveHeaderRow([]string{"Loan Number", "SEGMENT", "EMI", "ignored"})

	t.Run("loan number from float cell keeps integer identity", func(t *testing.T) {
		doc, loanNumber := BuildRowDocument(cols, []string{"560064123.0", "Rural", "9000", "x"})
		assert.Equal(t, "560064123", loanNumber)
		assert.Equal(t, "560064123", doc["LOAN NUMBER"])
		assert.Equal(t, "Rural", doc["SEGMENT"])
		assert.Equal(t, 9000.0, doc["EMI"])
	})

	t.Run("missing loan number yields empty identity", func(t *testing.T) {
		_, loanNumber := BuildRowDocument(cols, []string{"", "Rural", "9000"})
		assert.Equal(t, "", loanNumber)
	})

	t.Run("short row is tolerated", func(t *testing.T) {
		doc, loanNumber := BuildRowDocument(cols, []string{"LN-9"})
		assert.Equal(t, "LN-9", loanNumber)
		assert.NotContains(t, doc, "SEGMENT")
	})

	t.Run("backfill applied", func(t *testing.T) {
		doc, _ := BuildRowDocument(cols, []string{"LN-10", "Urban", "100"})
		assert.Equal(t, "PENDING-ALLOCATION", doc["CASE NO"])
	})
}
