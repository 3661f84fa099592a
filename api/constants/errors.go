package constants

// Caller-visible rejection reasons. Handlers return these verbatim so
// calling code (and tests) can branch on the specific failure instead
// of parsing free-form messages.
const (
	ErrLoanNotFound         = "Loan not found"
	ErrAllocationNotFound   = "Allocation not found"
	ErrUnauthorizedAccess   = "Unauthorized access"
	ErrDuplicateVisit       = "Visit already logged for today"
	ErrInvalidVisitStatus   = "Invalid visit status"
	ErrAmountRequired       = "Amount required for PAYMENT_COLLECTED"
	ErrNoEligibleTransition = "Not found or invalid collection status"
	ErrPhotoStoreFailed     = "Failed to store visit image"
	ErrUserSessionInvalid   = "Invalid user session"
)
