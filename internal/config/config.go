package config

const (
	DefaultTimeZone = "Asia/Kolkata"

	// Upload handling
	MaxUploadBytes = 32 << 20
	VisitPhotoDir  = "./uploads/visit"

	// Cron Configuration Constants
	DefaultPtpSchedule       = "0 8 * * *" // daily morning scan for promise-to-pay follow-ups
	DefaultRetentionSchedule = "30 2 * * *"
	UploadErrorRetentionDays = 90
)

// DefaultBackfill maps canonical fields to the business-mandated
// placeholder used when the sheet omits or blanks that field. Backfill
// only fills absent fields, so re-ingesting the same file never
// overwrites a populated value.
var DefaultBackfill = map[string]string{
	"CASE NO":     "PENDING-ALLOCATION",
	"BANK A/C NO": "0000 0000 0000",
}
