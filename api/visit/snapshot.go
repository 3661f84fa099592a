package visit

import (
	"strings"

	"github.com/shopspring/decimal"
)

// keyIndex is a case/punctuation-insensitive view over an allocation
// document. Built once per document so snapshotting probes the index
// instead of rescanning the map per field.
type keyIndex map[string]interface{}

func normalizeKey(k string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(k) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func buildKeyIndex(doc map[string]interface{}) keyIndex {
	idx := make(keyIndex, len(doc))
	for k, v := range doc {
		idx[normalizeKey(k)] = v
	}
	return idx
}

func (idx keyIndex) str(keys ...string) string {
	for _, k := range keys {
		if v, ok := idx[normalizeKey(k)]; ok {
			if s, isStr := v.(string); isStr && s != "" {
				return s
			}
		}
	}
	return ""
}

func (idx keyIndex) dec(keys ...string) *decimal.Decimal {
	for _, k := range keys {
		v, ok := idx[normalizeKey(k)]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			d := decimal.NewFromFloat(t)
			return &d
		case string:
			if d, err := decimal.NewFromString(strings.ReplaceAll(t, ",", "")); err == nil {
				return &d
			}
		}
	}
	return nil
}

// applySnapshot copies the allocation's descriptive attributes into the
// visit's snapshot fields. A nil document is fine: the visit is still
// recorded with the snapshot left empty, portfolio metadata being
// missing is never a reason to lose a visit.
func applySnapshot(v *VisitLog, loanNumber string, doc map[string]interface{}) {
	v.LoanNumber = loanNumber
	if doc == nil {
		return
	}
	idx := buildKeyIndex(doc)
	v.Segment = idx.str("SEGMENT")
	v.Product = idx.str("PRODUCT")
	v.State = idx.str("STATE")
	v.Branch = idx.str("BRANCH")
	v.Location = idx.str("LOCATION")
	v.CustomerName = idx.str("CUSTOMER NAME", "BORROWER NAME")
	v.PosAmount = idx.dec("POS Amt", "POS (IN CR)")
	v.Emi = idx.dec("EMI")
	v.Bucket = idx.str("OPENING BKT", "BKT TAG")
}
