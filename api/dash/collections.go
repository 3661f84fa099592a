package dash

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"FieldCollect/api"
)

// DashboardStats is the bank-admin rollup: portfolio value from the
// allocation documents plus collection totals by approval state.
type DashboardStats struct {
	TotalCaseValue        decimal.Decimal `json:"totalCaseValue"`
	TotalCollection       decimal.Decimal `json:"totalCollection"`
	TodayCollection       decimal.Decimal `json:"todayCollection"`
	YesterdayCollection   decimal.Decimal `json:"yesterdayCollection"`
	PendingForApproval    decimal.Decimal `json:"pendingForApproval"`
	TotalUnapprovedCash   decimal.Decimal `json:"totalUnapprovedCash"`
	CashPendingForDeposit decimal.Decimal `json:"cashPendingForDeposit"`
}

// posKeys are probed in order against each allocation document before
// falling back to a case-insensitive scan. Portfolio exports disagree
// on what the outstanding-balance column is called.
var posKeys = []string{"POS_Amt", "POS Amt", "POS", "pos_amt", "pos Amt", "Amt"}

// ExtractPos pulls the outstanding balance out of one allocation
// document. Nil when the document has no usable POS field.
func ExtractPos(doc map[string]interface{}) *decimal.Decimal {
	if doc == nil {
		return nil
	}
	for _, k := range posKeys {
		if v, ok := doc[k]; ok {
			if d := toDecimal(v); d != nil {
				return d
			}
		}
	}
	for k, v := range doc {
		if strings.EqualFold(k, "POS_Amt") || strings.EqualFold(k, "POS Amt") {
			if d := toDecimal(v); d != nil {
				return d
			}
		}
	}
	return nil
}

func toDecimal(v interface{}) *decimal.Decimal {
	switch t := v.(type) {
	case float64:
		d := decimal.NewFromFloat(t)
		return &d
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", ""))
		if s == "" {
			return nil
		}
		if d, err := decimal.NewFromString(s); err == nil {
			return &d
		}
	}
	return nil
}

func decodeDoc(data []byte) map[string]interface{} {
	if len(data) == 0 {
		return nil
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	return doc
}

func totalCaseValue(ctx context.Context, pool *pgxpool.Pool) (decimal.Decimal, error) {
	rows, err := pool.Query(ctx, `SELECT allocation_data FROM loan_allocation`)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return decimal.Zero, err
		}
		doc := decodeDoc(data)
		if d := ExtractPos(doc); d != nil {
			total = total.Add(*d)
		}
	}
	return total, rows.Err()
}

func approvedCollectionByDate(ctx context.Context, pool *pgxpool.Pool, date time.Time) (decimal.Decimal, error) {
	return sumAmounts(ctx, pool, `
		SELECT COALESCE(sum(amount), 0) FROM visit_log
		WHERE collection_status = 'APPROVED' AND amount > 0 AND visit_date = $1
	`, date.Format("2006-01-02"))
}

func sumAmounts(ctx context.Context, pool *pgxpool.Pool, query string, args ...interface{}) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// CollectionDashboard computes the bank-admin stats. Any single failing
// aggregate fails the whole response; there is no partially-right money
// dashboard.
func CollectionDashboard(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		stats := DashboardStats{}
		var err error

		if stats.TotalCaseValue, err = totalCaseValue(ctx, pool); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		today := time.Now()
		if stats.TodayCollection, err = approvedCollectionByDate(ctx, pool, today); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if stats.YesterdayCollection, err = approvedCollectionByDate(ctx, pool, today.AddDate(0, 0, -1)); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if stats.TotalCollection, err = sumAmounts(ctx, pool, `
			SELECT COALESCE(sum(amount), 0) FROM visit_log
			WHERE collection_status = 'APPROVED' AND amount > 0
		`); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if stats.PendingForApproval, err = sumAmounts(ctx, pool, `
			SELECT COALESCE(sum(amount), 0) FROM visit_log
			WHERE collection_status = 'PENDING_APPROVAL' AND amount > 0
		`); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		stats.TotalUnapprovedCash = stats.PendingForApproval
		if stats.CashPendingForDeposit, err = sumAmounts(ctx, pool, `
			SELECT COALESCE(sum(amount), 0) FROM visit_log
			WHERE collection_status = 'APPROVED' AND amount > 0 AND deposited_at IS NULL
		`); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", stats)
	}
}
