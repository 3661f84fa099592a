package allocation

import "strings"

// LoanNumberField is the canonical identity field every upsert keys on.
const LoanNumberField = "LOAN NUMBER"

// canonicalHeaders maps a normalized header token to the canonical field
// name stored in the allocation document. Bank exports drift in casing,
// spacing and punctuation, so resolution goes through NormalizeHeader;
// headers outside this allow-list are silently dropped.
var canonicalHeaders = map[string]string{
	"loannumber":           LoanNumberField,
	"loanno":               LoanNumberField,
	"segment":              "SEGMENT",
	"product":              "PRODUCT",
	"zone":                 "ZONE",
	"state":                "STATE",
	"branch":               "BRANCH",
	"location":             "LOCATION",
	"customername":         "CUSTOMER NAME",
	"borrowername":         "BORROWER NAME",
	"posamt":               "POS Amt",
	"posincr":              "POS (IN CR)",
	"emi":                  "EMI",
	"emioverdue":           "Emi Overdue",
	"countofemidue":        "Count Of Emi Due",
	"bkttag":               "BKT TAG",
	"openingbkt":           "OPENING BKT",
	"securitization":       "SECURITIZATION",
	"ashvdaptc":            "ASHV DA/PTC",
	"warrant":              "Warrant",
	"coapplicant1name":     "Co_Applicant1_Name",
	"coapplicant1mobileno": "Co_Applicant1_Mobile_No",
	"phone1":               "phone_1",
	"phone2":               "phone_2",
	"phone3":               "phone_3",
	"addresspriority1":     "address_priority_1",
	"addresspriority2":     "address_priority_2",
	"addresspriority3":     "address_priority_3",
	"addresspriority4":     "address_priority_4",
	"caseno":               "CASE NO",
	"bankacno":             "BANK A/C NO",
	"npadate":              "NPA DATE",
	"disbursaldate":        "DISBURSAL DATE",
}

// dateFields marks canonical fields whose numeric cells are Excel date
// serials rather than amounts.
var dateFields = map[string]bool{
	"NPA DATE":       true,
	"DISBURSAL DATE": true,
}

// NormalizeHeader lowercases a raw header and strips every
// non-alphanumeric rune, so " Loan Number ", "LOANNUMBER" and
// "loan_number" all collapse to the same token.
func NormalizeHeader(header string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(header) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ResolveHeader maps a raw spreadsheet header to its canonical field
// name. The second return is false for headers outside the allow-list.
func ResolveHeader(header string) (string, bool) {
	canonical, ok := canonicalHeaders[NormalizeHeader(header)]
	return canonical, ok
}

// ResolveHeaderRow maps column index -> canonical field for one header
// row. Unrecognized columns are simply absent from the result.
func ResolveHeaderRow(headerRow []string) map[int]string {
	cols := make(map[int]string)
	for i, h := range headerRow {
		if canonical, ok := ResolveHeader(h); ok {
			cols[i] = canonical
		}
	}
	return cols
}
