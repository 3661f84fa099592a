package allocation

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"FieldCollect/api"
	"FieldCollect/api/constants"
)

// Statuses a field executive may move a case to. Assignment statuses
// are manager-side and never reachable from here.
var executiveTargets = map[string]bool{
	StatusVisited:          true,
	StatusPromiseToPay:     true,
	StatusPaymentCollected: true,
	StatusNotReachable:     true,
}

// UpdateVisitStatus is the quick status path: the executive reports an
// outcome without filing a full visit log. Authorization is ownership —
// only the assigned executive may move the case.
func UpdateVisitStatus(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			LoanNumber       string          `json:"loan_number"`
			FieldExecutiveID int64           `json:"field_executive_id"`
			Status           string          `json:"status"`
			Amount           decimal.Decimal `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LoanNumber == "" || req.FieldExecutiveID == 0 {
			api.RespondWithError(w, http.StatusBadRequest, "loan_number, field_executive_id and status required")
			return
		}
		if !executiveTargets[req.Status] {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidVisitStatus)
			return
		}
		if req.Status == StatusPaymentCollected && !req.Amount.IsPositive() {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrAmountRequired)
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

		now := time.Now()
		_, err = pool.Exec(r.Context(), `
			UPDATE loan_allocation
			SET status = $2, last_visited_at = $3, visit_count = visit_count + 1, updated_at = now()
			WHERE id = $1
		`, a.ID, req.Status, now)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.LogInfo("status: loan %s -> %s by executive %d", req.LoanNumber, req.Status, req.FieldExecutiveID)
		api.RespondWithPayload(w, true, "", map[string]interface{}{
			"loan_number":     req.LoanNumber,
			"status":          req.Status,
			"last_visited_at": now,
			"visit_count":     a.VisitCount + 1,
		})
	}
}
