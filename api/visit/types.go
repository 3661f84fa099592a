package visit

import (
	"time"

	"github.com/shopspring/decimal"
)

// Collection lifecycle of the cash declared on a visit. Entry is always
// PENDING_APPROVAL; APPROVED and REJECTED are the two exits from there,
// and DEPOSITED is terminal.
const (
	CollectionPendingApproval = "PENDING_APPROVAL"
	CollectionApproved        = "APPROVED"
	CollectionRejected        = "REJECTED"
	CollectionDeposited       = "DEPOSITED"
)

// Approval actions on a pending collection.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionDeposit = "deposit"
)

// collectionPreconditions maps each action to the only status it may
// fire from. REJECTED and DEPOSITED are terminal.
var collectionPreconditions = map[string]string{
	ActionApprove: CollectionPendingApproval,
	ActionReject:  CollectionPendingApproval,
	ActionDeposit: CollectionApproved,
}

// Precondition returns the collection status an action requires. The
// store's guarded update carries this as its WHERE condition.
func Precondition(action string) string {
	return collectionPreconditions[action]
}

// CanTransition reports whether an action is eligible from the current
// collection status. This mirrors the guard the store applies, so the
// state machine stays decidable without a database round trip.
func CanTransition(current, action string) bool {
	from, ok := collectionPreconditions[action]
	return ok && current == from
}

// Dispositions a field executive may report for a visit.
var dispositions = map[string]bool{
	"PAID": true,
	"PTP":  true,
	"BPTP": true,
	"RTP":  true,
	"NC":   true,
	"SFD":  true,
}

var contactabilities = map[string]bool{
	"CONTACTED_AT_RESIDENCE":     true,
	"CONTACTABLE_AT_BOTH_PLACES": true,
	"NON_CONTACTABLE":            true,
	"CONTACTED_AT_OFFICE":        true,
	"CONTACTABLE_ON_PHONE_ONLY":  true,
}

var residenceStatuses = map[string]bool{
	"AVAILABLE":                         true,
	"LOCKED":                            true,
	"SHIFTED_NEW_ADDRESS_NOT_AVAILABLE": true,
	"AVAILABLE_AND_RESIDING":            true,
	"RESIDING":                          true,
	"ADDRESS_NOT_TRACED":                true,
	"ONLY_FAMILY_MEMBERS_RESIDING":      true,
}

var classificationCodes = map[string]bool{
	"NORMAL":     true,
	"SKIP":       true,
	"DISPUTE":    true,
	"SETTLEMENT": true,
	"DECEASED":   true,
	"FRAUD":      true,
}

// VisitLog is one field visit against an allocation. The Segment..Bucket
// block is a snapshot of the allocation document taken at visit time, so
// later re-ingestion cannot rewrite historical reporting.
type VisitLog struct {
	ID           int64     `json:"id"`
	AllocationID int64     `json:"allocation_id"`
	VisitDate    time.Time `json:"visit_date"`
	CreatedBy    string    `json:"created_by"`
	UserID       string    `json:"user_id"`

	LoanNumber   string           `json:"loan_number"`
	Segment      string           `json:"segment"`
	Product      string           `json:"product"`
	State        string           `json:"state"`
	Branch       string           `json:"branch"`
	Location     string           `json:"location"`
	CustomerName string           `json:"customer_name"`
	PosAmount    *decimal.Decimal `json:"pos_amount"`
	Emi          *decimal.Decimal `json:"emi"`
	Bucket       string           `json:"bucket"`

	Disp               string `json:"disp"`
	Contactability     string `json:"contactability"`
	ResidenceStatus    string `json:"residence_status"`
	ClassificationCode string `json:"classification_code"`
	OfficeStatus       string `json:"office_status"`
	ReasonForDefault   string `json:"reason_for_default"`
	Projection         string `json:"projection"`
	CustomerProfile    string `json:"customer_profile"`
	Feedback           string `json:"feedback"`

	Amount  *decimal.Decimal `json:"amount"`
	PtpDate *time.Time       `json:"ptp_date"`

	Latitude      *float64   `json:"latitude"`
	Longitude     *float64   `json:"longitude"`
	GpsAccuracy   *float64   `json:"gps_accuracy"`
	GpsAltitude   *float64   `json:"gps_altitude"`
	GpsCapturedAt *time.Time `json:"gps_captured_at"`
	GeoAddress    string     `json:"geo_address"`

	VisitImagePath string `json:"visit_image_path"`

	CollectionStatus string     `json:"collection_status,omitempty"`
	ApprovedBy       string     `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	RejectionReason  string     `json:"rejection_reason,omitempty"`
	DepositedBy      string     `json:"deposited_by,omitempty"`
	DepositedAt      *time.Time `json:"deposited_at,omitempty"`
	SubmittedAt      *time.Time `json:"submitted_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ValidAssessment checks the four closed-enumeration assessment codes.
// Blank is allowed for all but disposition; a present value must be in
// its enumeration.
func ValidAssessment(disp, contactability, residence, classification string) (string, bool) {
	if !dispositions[disp] {
		return "disp", false
	}
	if contactability != "" && !contactabilities[contactability] {
		return "contactability", false
	}
	if residence != "" && !residenceStatuses[residence] {
		return "residence_status", false
	}
	if classification != "" && !classificationCodes[classification] {
		return "classification_code", false
	}
	return "", true
}
