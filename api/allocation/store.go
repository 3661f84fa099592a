package allocation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Allocation lifecycle statuses.
const (
	StatusUnassigned       = "UNASSIGNED"
	StatusAssigned         = "ASSIGNED"
	StatusVisited          = "VISITED"
	StatusPromiseToPay     = "PROMISE_TO_PAY"
	StatusPaymentCollected = "PAYMENT_COLLECTED"
	StatusNotReachable     = "NOT_REACHABLE"
)

// Allocation is one loan case under collection. AllocationData is the
// schemaless attribute document keyed by canonical field name; new
// spreadsheet columns land there without a schema migration.
type Allocation struct {
	ID               int64                  `json:"id"`
	LoanNumber       string                 `json:"loan_number"`
	AllocationData   map[string]interface{} `json:"allocation_data"`
	FieldExecutiveID *int64                 `json:"field_executive_id"`
	Status           string                 `json:"status"`
	AssignedAt       *time.Time             `json:"assigned_at"`
	LastVisitedAt    *time.Time             `json:"last_visited_at"`
	VisitCount       int                    `json:"visit_count"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

const allocationColumns = `
	id, loan_number, allocation_data, field_executive_id, status,
	assigned_at, last_visited_at, visit_count, created_at, updated_at`

// Upsert inserts a new allocation for the loan number or, when one
// already exists, replaces its attribute document wholesale and bumps
// updated_at. Status, assignment and visit fields are untouched on
// update, so re-ingestion never resets case progress. The ON CONFLICT
// clause is what makes concurrent ingestion of overlapping files safe:
// the unique index on loan_number serializes the insert-vs-update
// decision inside Postgres.
func Upsert(ctx context.Context, pool *pgxpool.Pool, loanNumber string, doc map[string]interface{}) (int64, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return 0, err
	}
	var id int64
	err = pool.QueryRow(ctx, `
		INSERT INTO loan_allocation (loan_number, allocation_data, status, visit_count, created_at, updated_at)
		VALUES ($1, $2, 'UNASSIGNED', 0, now(), now())
		ON CONFLICT (loan_number) DO UPDATE
		SET allocation_data = EXCLUDED.allocation_data, updated_at = now()
		RETURNING id
	`, loanNumber, data).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetByLoanNumber fetches one allocation by its business key
// (case-sensitive exact match). Returns (nil, nil) when absent.
func GetByLoanNumber(ctx context.Context, pool *pgxpool.Pool, loanNumber string) (*Allocation, error) {
	row := pool.QueryRow(ctx, `SELECT `+allocationColumns+` FROM loan_allocation WHERE loan_number = $1`, loanNumber)
	return scanAllocation(row)
}

// GetByID fetches one allocation by store identity. Returns (nil, nil)
// when absent.
func GetByID(ctx context.Context, pool *pgxpool.Pool, id int64) (*Allocation, error) {
	row := pool.QueryRow(ctx, `SELECT `+allocationColumns+` FROM loan_allocation WHERE id = $1`, id)
	return scanAllocation(row)
}

// List returns one page of allocations ordered by id, plus the total
// row count for pagination stats.
func List(ctx context.Context, pool *pgxpool.Pool, limit, offset int) ([]*Allocation, int, error) {
	total := 0
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM loan_allocation`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := pool.Query(ctx, `SELECT `+allocationColumns+` FROM loan_allocation ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*Allocation, 0, limit)
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// ListByExecutive returns the allocations currently assigned to one
// field executive, restricted to actionable statuses.
func ListByExecutive(ctx context.Context, pool *pgxpool.Pool, executiveID int64) ([]*Allocation, error) {
	rows, err := pool.Query(ctx, `
		SELECT `+allocationColumns+` FROM loan_allocation
		WHERE field_executive_id = $1
		  AND status = ANY($2)
		ORDER BY id
	`, executiveID, []string{StatusAssigned, StatusVisited, StatusPromiseToPay})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Allocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAllocation(row pgx.Row) (*Allocation, error) {
	var (
		a    Allocation
		data []byte
	)
	err := row.Scan(&a.ID, &a.LoanNumber, &data, &a.FieldExecutiveID, &a.Status,
		&a.AssignedAt, &a.LastVisitedAt, &a.VisitCount, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &a.AllocationData); err != nil {
			return nil, err
		}
	}
	return &a, nil
}
