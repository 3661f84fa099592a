package allocation

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"FieldCollect/internal/config"
)

// Kind tags a coerced cell value.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindDate
	KindBool
)

// Value is the canonical scalar stored in an allocation document:
// string, number, date or boolean. Keeping the union explicit keeps
// coercion testable instead of hiding it behind interface{} juggling.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Date time.Time
	Bool bool
}

// JSON returns the representation persisted inside the jsonb document.
func (v Value) JSON() interface{} {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindDate:
		return v.Date.Format("2006-01-02")
	case KindBool:
		return v.Bool
	default:
		return v.Str
	}
}

var dateLayouts = []string{"2006-01-02", "02-01-2006", "01/02/2006", "2 Jan 2006", "2006/01/02"}

// Excel stores dates as day serials; anything in this window is a
// plausible calendar value (1954..2064) when the field is date-typed.
const (
	minDateSerial = 20000
	maxDateSerial = 60000
)

// CoerceCell converts one raw cell into a canonical Value. The second
// return is false when the cell is blank or cannot be coerced — the
// caller treats that as "absent" and the row continues.
func CoerceCell(canonical, raw string) (Value, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Value{}, false
	}

	switch strings.ToLower(s) {
	case "true":
		return Value{Kind: KindBool, Bool: true}, true
	case "false":
		return Value{Kind: KindBool, Bool: false}, true
	}

	if n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
		if dateFields[canonical] && n >= minDateSerial && n <= maxDateSerial {
			if t, err := excelize.ExcelDateToTime(n, false); err == nil {
				return Value{Kind: KindDate, Date: t}, true
			}
		}
		return Value{Kind: KindNumber, Num: n}, true
	}

	if dateFields[canonical] {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return Value{Kind: KindDate, Date: t}, true
			}
		}
	}

	return Value{Kind: KindString, Str: s}, true
}

// ApplyBackfill fills business-mandated placeholders for fields the
// sheet omitted or blanked. Idempotent: populated fields are never
// touched, so re-ingestion cannot overwrite real data with placeholders.
func ApplyBackfill(doc map[string]interface{}) {
	for field, placeholder := range config.DefaultBackfill {
		v, ok := doc[field]
		if !ok {
			doc[field] = placeholder
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			doc[field] = placeholder
		}
	}
}

// BuildRowDocument coerces one data row into its attribute document and
// extracts the loan number. An empty loan number means the row has no
// resolvable identity and must be skipped.
func BuildRowDocument(cols map[int]string, row []string) (map[string]interface{}, string) {
	doc := make(map[string]interface{}, len(cols))
	loanNumber := ""
	for idx, canonical := range cols {
		if idx >= len(row) {
			continue
		}
		v, ok := CoerceCell(canonical, row[idx])
		if !ok {
			continue
		}
		if canonical == LoanNumberField {
			// Loan numbers are identities, never numbers: a sheet cell
			// like 560064123.0 must not round-trip through float form.
			loanNumber = numericIdentity(v)
			doc[canonical] = loanNumber
			continue
		}
		doc[canonical] = v.JSON()
	}
	ApplyBackfill(doc)
	return doc, loanNumber
}

func numericIdentity(v Value) string {
	if v.Kind == KindNumber && v.Num == float64(int64(v.Num)) {
		return strconv.FormatInt(int64(v.Num), 10)
	}
	if v.Kind == KindNumber {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Str
}
