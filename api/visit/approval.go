package visit

import (
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"FieldCollect/api"
	"FieldCollect/api/constants"
)

// PendingCollections is the approver's queue: every visit with declared
// cash still waiting on a decision.
func PendingCollections(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		visits, err := ListByCollectionStatus(r.Context(), pool, CollectionPendingApproval)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if visits == nil {
			visits = []*VisitLog{}
		}
		api.RespondWithPayload(w, true, "", visits)
	}
}

// ApproveCollection moves PENDING_APPROVAL -> APPROVED. A visit in any
// other state comes back as a no-eligible-transition result, not an
// error, matching how approvers double-click.
func ApproveCollection(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			VisitID    int64  `json:"visit_id"`
			ApprovedBy string `json:"approved_by"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VisitID == 0 || req.ApprovedBy == "" {
			api.RespondWithError(w, http.StatusBadRequest, "visit_id and approved_by required")
			return
		}
		v, err := Transition(r.Context(), pool, req.VisitID, Precondition(ActionApprove),
			`collection_status = 'APPROVED', approved_by = $3, approved_at = now()`, req.ApprovedBy)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if v == nil {
			api.RespondWithResult(w, false, constants.ErrNoEligibleTransition)
			return
		}
		api.LogInfo("collection: visit %d approved by %s", v.ID, req.ApprovedBy)
		api.RespondWithPayload(w, true, "", v)
	}
}

// RejectCollection moves PENDING_APPROVAL -> REJECTED with a reason.
func RejectCollection(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			VisitID    int64  `json:"visit_id"`
			RejectedBy string `json:"rejected_by"`
			Reason     string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VisitID == 0 || req.RejectedBy == "" {
			api.RespondWithError(w, http.StatusBadRequest, "visit_id and rejected_by required")
			return
		}
		v, err := Transition(r.Context(), pool, req.VisitID, Precondition(ActionReject),
			`collection_status = 'REJECTED', approved_by = $3, approved_at = now(), rejection_reason = $4`,
			req.RejectedBy, req.Reason)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if v == nil {
			api.RespondWithResult(w, false, constants.ErrNoEligibleTransition)
			return
		}
		api.LogInfo("collection: visit %d rejected by %s", v.ID, req.RejectedBy)
		api.RespondWithPayload(w, true, "", v)
	}
}

// MarkDeposited moves APPROVED -> DEPOSITED once the cash reaches the
// bank.
func MarkDeposited(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			VisitID     int64  `json:"visit_id"`
			DepositedBy string `json:"deposited_by"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VisitID == 0 || req.DepositedBy == "" {
			api.RespondWithError(w, http.StatusBadRequest, "visit_id and deposited_by required")
			return
		}
		v, err := Transition(r.Context(), pool, req.VisitID, Precondition(ActionDeposit),
			`collection_status = 'DEPOSITED', deposited_by = $3, deposited_at = now()`, req.DepositedBy)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if v == nil {
			api.RespondWithResult(w, false, constants.ErrNoEligibleTransition)
			return
		}
		api.LogInfo("collection: visit %d deposited by %s", v.ID, req.DepositedBy)
		api.RespondWithPayload(w, true, "", v)
	}
}
