package visit

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicate reports that a visit already exists for the same
// allocation, date and recorder. Detection rides on the unique index,
// so concurrent double-submits cannot both land.
var ErrDuplicate = errors.New("duplicate visit")

const visitColumns = `
	id, allocation_id, visit_date, created_by, user_id,
	loan_number, segment, product, state, branch, location, customer_name, pos_amount, emi, bucket,
	disp, contactability, residence_status, classification_code, office_status, reason_for_default,
	projection, customer_profile, feedback,
	amount, ptp_date,
	latitude, longitude, gps_accuracy, gps_altitude, gps_captured_at, geo_address,
	visit_image_path,
	collection_status, approved_by, approved_at, rejection_reason, deposited_by, deposited_at, submitted_at,
	created_at`

func Insert(ctx context.Context, pool *pgxpool.Pool, v *VisitLog) error {
	err := pool.QueryRow(ctx, `
		INSERT INTO visit_log (
			allocation_id, visit_date, created_by, user_id,
			loan_number, segment, product, state, branch, location, customer_name, pos_amount, emi, bucket,
			disp, contactability, residence_status, classification_code, office_status, reason_for_default,
			projection, customer_profile, feedback,
			amount, ptp_date,
			latitude, longitude, gps_accuracy, gps_altitude, gps_captured_at, geo_address,
			visit_image_path,
			collection_status, submitted_at,
			created_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20,
			$21, $22, $23,
			$24, $25,
			$26, $27, $28, $29, $30, $31,
			$32,
			NULLIF($33, ''), $34,
			now()
		)
		RETURNING id, created_at
	`,
		v.AllocationID, v.VisitDate, v.CreatedBy, v.UserID,
		v.LoanNumber, v.Segment, v.Product, v.State, v.Branch, v.Location, v.CustomerName, v.PosAmount, v.Emi, v.Bucket,
		v.Disp, v.Contactability, v.ResidenceStatus, v.ClassificationCode, v.OfficeStatus, v.ReasonForDefault,
		v.Projection, v.CustomerProfile, v.Feedback,
		v.Amount, v.PtpDate,
		v.Latitude, v.Longitude, v.GpsAccuracy, v.GpsAltitude, v.GpsCapturedAt, v.GeoAddress,
		v.VisitImagePath,
		v.CollectionStatus, v.SubmittedAt,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return mapInsertError(err)
	}
	return nil
}

// mapInsertError turns a unique-index violation from the daily visit
// index into ErrDuplicate. Everything else passes through unchanged.
func mapInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

// GetByID returns (nil, nil) when absent.
func GetByID(ctx context.Context, pool *pgxpool.Pool, id int64) (*VisitLog, error) {
	row := pool.QueryRow(ctx, `SELECT `+visitColumns+` FROM visit_log WHERE id = $1`, id)
	return scanVisit(row)
}

// ListByAllocation returns every visit against one allocation, newest
// first.
func ListByAllocation(ctx context.Context, pool *pgxpool.Pool, allocationID int64) ([]*VisitLog, error) {
	rows, err := pool.Query(ctx, `
		SELECT `+visitColumns+` FROM visit_log WHERE allocation_id = $1 ORDER BY visit_date DESC, id DESC
	`, allocationID)
	if err != nil {
		return nil, err
	}
	return collectVisits(rows)
}

// ListByCollectionStatus drives the approval queue and dashboard
// breakdowns.
func ListByCollectionStatus(ctx context.Context, pool *pgxpool.Pool, status string) ([]*VisitLog, error) {
	rows, err := pool.Query(ctx, `
		SELECT `+visitColumns+` FROM visit_log WHERE collection_status = $1 ORDER BY submitted_at, id
	`, status)
	if err != nil {
		return nil, err
	}
	return collectVisits(rows)
}

// Transition applies one guarded collection-status move. The WHERE
// clause carries the precondition, so two racing approvers cannot both
// win: the second update matches zero rows and comes back (nil, nil).
func Transition(ctx context.Context, pool *pgxpool.Pool, id int64, from string, set string, args ...interface{}) (*VisitLog, error) {
	query := `UPDATE visit_log SET ` + set + ` WHERE id = $1 AND collection_status = $2 RETURNING ` + visitColumns
	allArgs := append([]interface{}{id, from}, args...)
	row := pool.QueryRow(ctx, query, allArgs...)
	return scanVisit(row)
}

func collectVisits(rows pgx.Rows) ([]*VisitLog, error) {
	defer rows.Close()
	var out []*VisitLog
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanVisit(row pgx.Row) (*VisitLog, error) {
	var (
		v VisitLog

		segment, product, state, branch, location, customerName, bucket       *string
		disp, contactability, residenceStatus, classificationCode             *string
		officeStatus, reasonForDefault, projection, customerProfile, feedback *string
		geoAddress, visitImagePath, collectionStatus, approvedBy              *string
		rejectionReason, depositedBy                                          *string
	)
	err := row.Scan(
		&v.ID, &v.AllocationID, &v.VisitDate, &v.CreatedBy, &v.UserID,
		&v.LoanNumber, &segment, &product, &state, &branch, &location, &customerName, &v.PosAmount, &v.Emi, &bucket,
		&disp, &contactability, &residenceStatus, &classificationCode, &officeStatus, &reasonForDefault,
		&projection, &customerProfile, &feedback,
		&v.Amount, &v.PtpDate,
		&v.Latitude, &v.Longitude, &v.GpsAccuracy, &v.GpsAltitude, &v.GpsCapturedAt, &geoAddress,
		&visitImagePath,
		&collectionStatus, &approvedBy, &v.ApprovedAt, &rejectionReason, &depositedBy, &v.DepositedAt, &v.SubmittedAt,
		&v.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v.Segment = deref(segment)
	v.Product = deref(product)
	v.State = deref(state)
	v.Branch = deref(branch)
	v.Location = deref(location)
	v.CustomerName = deref(customerName)
	v.Bucket = deref(bucket)
	v.Disp = deref(disp)
	v.Contactability = deref(contactability)
	v.ResidenceStatus = deref(residenceStatus)
	v.ClassificationCode = deref(classificationCode)
	v.OfficeStatus = deref(officeStatus)
	v.ReasonForDefault = deref(reasonForDefault)
	v.Projection = deref(projection)
	v.CustomerProfile = deref(customerProfile)
	v.Feedback = deref(feedback)
	v.GeoAddress = deref(geoAddress)
	v.VisitImagePath = deref(visitImagePath)
	v.CollectionStatus = deref(collectionStatus)
	v.ApprovedBy = deref(approvedBy)
	v.RejectionReason = deref(rejectionReason)
	v.DepositedBy = deref(depositedBy)
	return &v, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
