package allocation

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"FieldCollect/api"
)

// AssignmentSummaryStats is the manager dashboard rollup.
type AssignmentSummaryStats struct {
	TotalCases      int     `json:"totalCases"`
	AssignedCases   int     `json:"assignedCases"`
	UnassignedCases int     `json:"unassignedCases"`
	AssignedPercent float64 `json:"assignedPercent"`
}

func summarize(total, assigned int) AssignmentSummaryStats {
	s := AssignmentSummaryStats{
		TotalCases:      total,
		AssignedCases:   assigned,
		UnassignedCases: total - assigned,
	}
	if total > 0 {
		s.AssignedPercent = math.Round(float64(assigned)/float64(total)*100*100) / 100
	}
	return s
}

// AssignAllocations assigns a batch of allocation ids to one field
// executive. Each id is an independent update: ids that do not exist
// are skipped and reported, never failed — managers paste id lists from
// spreadsheets and stale ids are routine.
func AssignAllocations(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID           string  `json:"user_id"`
			AllocationIDs    []int64 `json:"allocation_ids"`
			FieldExecutiveID int64   `json:"field_executive_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.AllocationIDs) == 0 || req.FieldExecutiveID == 0 {
			api.RespondWithError(w, http.StatusBadRequest, "allocation_ids and field_executive_id required")
			return
		}

		assigned := make([]int64, 0, len(req.AllocationIDs))
		skipped := make([]int64, 0)
		for _, id := range req.AllocationIDs {
			var updatedID int64
			err := pool.QueryRow(r.Context(), `
				UPDATE loan_allocation
				SET field_executive_id = $2, status = 'ASSIGNED', assigned_at = now(), updated_at = now()
				WHERE id = $1
				RETURNING id
			`, id, req.FieldExecutiveID).Scan(&updatedID)
			if err == pgx.ErrNoRows {
				skipped = append(skipped, id)
				continue
			}
			if err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, err.Error())
				return
			}
			assigned = append(assigned, updatedID)
		}
		api.LogInfo("assignment: executive %d received %d cases (%d skipped) by user %s",
			req.FieldExecutiveID, len(assigned), len(skipped), req.UserID)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":     true,
			"assignedIds": assigned,
			"skippedIds":  skipped,
		})
	}
}

// UnassignAllocation detaches an allocation from its executive and
// returns it to the unassigned pool. Unassigning an already-unassigned
// case is a no-op success.
func UnassignAllocation(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AllocationID int64 `json:"allocation_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AllocationID == 0 {
			api.RespondWithError(w, http.StatusBadRequest, "allocation_id required")
			return
		}
		// No-op when the allocation does not exist.
		_, err := pool.Exec(r.Context(), `
			UPDATE loan_allocation
			SET field_executive_id = NULL, status = 'UNASSIGNED', assigned_at = NULL, updated_at = now()
			WHERE id = $1
		`, req.AllocationID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

// ReassignAllocation moves one case to a different executive in a
// single update, so there is no window where the case is unassigned.
func ReassignAllocation(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AllocationID     int64 `json:"allocation_id"`
			FieldExecutiveID int64 `json:"field_executive_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AllocationID == 0 || req.FieldExecutiveID == 0 {
			api.RespondWithError(w, http.StatusBadRequest, "allocation_id and field_executive_id required")
			return
		}
		tag, err := pool.Exec(r.Context(), `
			UPDATE loan_allocation
			SET field_executive_id = $2, status = 'ASSIGNED', assigned_at = now(), updated_at = now()
			WHERE id = $1
		`, req.AllocationID, req.FieldExecutiveID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if tag.RowsAffected() == 0 {
			api.RespondWithError(w, http.StatusNotFound, "Allocation not found")
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

// AssignmentSummary reports portfolio assignment coverage.
func AssignmentSummary(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var total, assigned int
		err := pool.QueryRow(r.Context(), `
			SELECT count(*), count(field_executive_id) FROM loan_allocation
		`).Scan(&total, &assigned)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", summarize(total, assigned))
	}
}

// MyAllocations lists the caseload of one field executive, restricted
// to statuses they can still act on.
func MyAllocations(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			FieldExecutiveID int64 `json:"field_executive_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FieldExecutiveID == 0 {
			api.RespondWithError(w, http.StatusBadRequest, "field_executive_id required")
			return
		}
		rows, err := ListByExecutive(r.Context(), pool, req.FieldExecutiveID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", rows)
	}
}
