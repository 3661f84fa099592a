package allocation

import (
	"encoding/json"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"FieldCollect/api"
	"FieldCollect/api/constants"
)

var addressSerialPrefix = regexp.MustCompile(`^\d+\.\s*`)

// ExtractAddresses pulls every address-like field out of an allocation
// document, cleans the bank export artifacts and returns the usable
// values in priority order. Artifacts handled: numeric cells rendered
// with a trailing ".0", serial prefixes like "3. ", and the "", "0" and
// "-" placeholders banks use for empty address slots.
func ExtractAddresses(doc map[string]interface{}) []string {
	keys := make([]string, 0, 4)
	for k := range doc {
		if strings.HasPrefix(strings.ToLower(k), "address") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		s := cleanAddress(doc[k])
		if s == "" || s == "0" || s == "-" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func cleanAddress(v interface{}) string {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case float64:
		// Pincode-style cells come back as floats; 560064.0 must print
		// as 560064.
		if t == float64(int64(t)) {
			s = strconv.FormatInt(int64(t), 10)
		} else {
			s = strconv.FormatFloat(t, 'f', -1, 64)
		}
	default:
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".0")
	s = addressSerialPrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// VisitAddresses returns the cleaned visit addresses for one loan,
// restricted to the executive the case is assigned to. Not-found and
// not-yours are distinct failures on purpose: executives report both
// and support needs to tell them apart.
func VisitAddresses(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			LoanNumber       string `json:"loan_number"`
			FieldExecutiveID int64  `json:"field_executive_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LoanNumber == "" || req.FieldExecutiveID == 0 {
			api.RespondWithError(w, http.StatusBadRequest, "loan_number and field_executive_id required")
			return
		}
		a, err := GetByLoanNumber(r.Context(), pool, req.LoanNumber)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if a == nil {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrLoanNotFound)
			return
		}
		if a.FieldExecutiveID == nil || *a.FieldExecutiveID != req.FieldExecutiveID {
			api.RespondWithError(w, http.StatusForbidden, constants.ErrUnauthorizedAccess)
			return
		}
		api.RespondWithPayload(w, true, "", ExtractAddresses(a.AllocationData))
	}
}
