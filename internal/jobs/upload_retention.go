package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"FieldCollect/internal/config"
	"FieldCollect/internal/logger"
)

type RetentionConfig struct {
	Schedule      string
	TimeZone      string
	RetentionDays int
}

func NewDefaultRetentionConfig() *RetentionConfig {
	return &RetentionConfig{
		Schedule:      config.DefaultRetentionSchedule,
		TimeZone:      config.DefaultTimeZone,
		RetentionDays: config.UploadErrorRetentionDays,
	}
}

// RunUploadRetentionScheduler starts the nightly purge of aged
// ingestion bookkeeping. Allocations and visits are never touched by
// retention, only the upload audit trail.
func RunUploadRetentionScheduler(cfg *RetentionConfig, db *pgxpool.Pool) error {
	if cfg.Schedule == "" {
		cfg.Schedule = config.DefaultRetentionSchedule
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = config.DefaultTimeZone
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = config.UploadErrorRetentionDays
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(cfg.Schedule, func() {
		if err := PurgeExpiredUploadRecords(db, cfg.RetentionDays); err != nil {
			if logger.GlobalLogger != nil {
				logger.GlobalLogger.LogAudit(fmt.Sprintf("Upload retention job failed: %v", err))
			}
		}
	})
	if err != nil {
		return fmt.Errorf("unable to schedule upload retention job: %v", err)
	}

	c.Start()
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("Upload retention scheduler started")
	}
	return nil
}

// PurgeExpiredUploadRecords deletes upload errors older than the
// retention window, then upload_file rows with no surviving errors and
// the same age.
func PurgeExpiredUploadRecords(db *pgxpool.Pool, retentionDays int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := fmt.Sprintf("%d days", retentionDays)
	errTag, err := db.Exec(ctx, `
		DELETE FROM upload_error WHERE created_at < now() - $1::interval
	`, cutoff)
	if err != nil {
		return err
	}
	fileTag, err := db.Exec(ctx, `
		DELETE FROM upload_file f
		WHERE f.uploaded_at < now() - $1::interval
		  AND NOT EXISTS (SELECT 1 FROM upload_error e WHERE e.upload_file_id = f.id)
	`, cutoff)
	if err != nil {
		return err
	}
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(fmt.Sprintf("Upload retention job done: %d errors, %d files purged",
			errTag.RowsAffected(), fileTag.RowsAffected()))
	}
	return nil
}
