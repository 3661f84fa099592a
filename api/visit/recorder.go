package visit

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"FieldCollect/api"
	"FieldCollect/api/allocation"
	"FieldCollect/api/constants"
	"FieldCollect/internal/config"
)

// CreateVisit records one field visit. Multipart because the executive
// app ships an optional photo with the form. Ordering is deliberate:
// the photo is persisted before the row so the two land together or not
// at all, and the duplicate guard is the insert itself hitting the
// unique index rather than a racy pre-check.
func CreateVisit(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Failed to parse multipart form")
			return
		}

		createdBy := r.FormValue("created_by")
		userID := r.FormValue("user_id")
		if createdBy == "" || userID == "" {
			api.RespondWithError(w, http.StatusBadRequest, "created_by and user_id required")
			return
		}

		v := &VisitLog{
			CreatedBy:          createdBy,
			UserID:             userID,
			Disp:               r.FormValue("disp"),
			Contactability:     r.FormValue("contactability"),
			ResidenceStatus:    r.FormValue("residence_status"),
			ClassificationCode: r.FormValue("classification_code"),
			OfficeStatus:       r.FormValue("office_status"),
			ReasonForDefault:   r.FormValue("reason_for_default"),
			Projection:         r.FormValue("projection"),
			CustomerProfile:    r.FormValue("customer_profile"),
			Feedback:           r.FormValue("feedback"),
			GeoAddress:         r.FormValue("geo_address"),
		}
		if field, ok := ValidAssessment(v.Disp, v.Contactability, v.ResidenceStatus, v.ClassificationCode); !ok {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid assessment value for "+field)
			return
		}

		v.VisitDate = dateOnly(time.Now())
		if s := r.FormValue("visit_date"); s != "" {
			d, err := time.Parse("2006-01-02", s)
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest, "visit_date must be YYYY-MM-DD")
				return
			}
			v.VisitDate = d
		}
		if s := r.FormValue("ptp_date"); s != "" {
			d, err := time.Parse("2006-01-02", s)
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest, "ptp_date must be YYYY-MM-DD")
				return
			}
			v.PtpDate = &d
		}
		if s := r.FormValue("amount"); s != "" {
			amt, err := decimal.NewFromString(s)
			if err != nil || amt.IsNegative() {
				api.RespondWithError(w, http.StatusBadRequest, "amount must be a non-negative number")
				return
			}
			v.Amount = &amt
		}
		v.Latitude = formFloat(r, "latitude")
		v.Longitude = formFloat(r, "longitude")
		v.GpsAccuracy = formFloat(r, "gps_accuracy")
		v.GpsAltitude = formFloat(r, "gps_altitude")
		if v.Latitude != nil || v.Longitude != nil {
			now := time.Now()
			v.GpsCapturedAt = &now
		}

		// Resolve the allocation. An explicit id wins; otherwise the
		// loan number must resolve because the visit row needs the
		// allocation identity for its duplicate guard.
		var alloc *allocation.Allocation
		var err error
		if s := r.FormValue("allocation_id"); s != "" {
			id, convErr := strconv.ParseInt(s, 10, 64)
			if convErr != nil {
				api.RespondWithError(w, http.StatusBadRequest, "allocation_id must be numeric")
				return
			}
			v.AllocationID = id
			alloc, err = allocation.GetByID(ctx, pool, id)
			if err == nil && alloc == nil {
				api.RespondWithError(w, http.StatusNotFound, constants.ErrAllocationNotFound)
				return
			}
		} else if loanNumber := r.FormValue("loan_number"); loanNumber != "" {
			alloc, err = allocation.GetByLoanNumber(ctx, pool, loanNumber)
			if err == nil && alloc == nil {
				api.RespondWithError(w, http.StatusNotFound, constants.ErrLoanNotFound)
				return
			}
			if alloc != nil {
				v.AllocationID = alloc.ID
			}
		} else {
			api.RespondWithError(w, http.StatusBadRequest, "allocation_id or loan_number required")
			return
		}
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}

		// Snapshot is best-effort: a sparse or oddly-spelled document
		// still records the visit, just with snapshot fields left empty.
		applySnapshot(v, alloc.LoanNumber, alloc.AllocationData)

		if v.Amount != nil && v.Amount.IsPositive() {
			now := time.Now()
			v.CollectionStatus = CollectionPendingApproval
			v.SubmittedAt = &now
		}

		if file, _, ferr := r.FormFile("image"); ferr == nil {
			photo, rerr := io.ReadAll(file)
			file.Close()
			if rerr != nil {
				api.RespondWithError(w, http.StatusBadRequest, constants.ErrPhotoStoreFailed)
				return
			}
			path, serr := StorePhoto(v.AllocationID, photo)
			if serr != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrPhotoStoreFailed)
				return
			}
			v.VisitImagePath = path
		}

		if err := Insert(ctx, pool, v); err != nil {
			RemovePhoto(v.VisitImagePath)
			if err == ErrDuplicate {
				api.RespondWithError(w, http.StatusConflict, constants.ErrDuplicateVisit)
				return
			}
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.LogInfo("visit: allocation %d visited by %s on %s", v.AllocationID, v.CreatedBy, v.VisitDate.Format("2006-01-02"))
		api.RespondWithPayload(w, true, "", v)
	}
}

// dateOnly collapses a timestamp to its calendar day in the clock's own
// zone. The once-per-day duplicate guard keys on this value, so the day
// must follow local wall-clock, not the UTC boundary: an early-morning
// visit in Asia/Kolkata is still today's visit, not yesterday's.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func formFloat(r *http.Request, key string) *float64 {
	s := r.FormValue(key)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// VisitsByAllocation lists the visit history of one allocation.
func VisitsByAllocation(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.URL.Query().Get("allocation_id"), 10, 64)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "allocation_id must be numeric")
			return
		}
		visits, err := ListByAllocation(r.Context(), pool, id)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", visits)
	}
}
