package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"FieldCollect/api/notification"
	"FieldCollect/internal/config"
	"FieldCollect/internal/logger"
)

type PtpConfig struct {
	Schedule string
	TimeZone string
}

func NewDefaultPtpConfig() *PtpConfig {
	return &PtpConfig{
		Schedule: config.DefaultPtpSchedule,
		TimeZone: config.DefaultTimeZone,
	}
}

// RunPtpReminderScheduler starts the morning job that turns every
// promise-to-pay falling due today into a notification for the
// executive who took the promise.
func RunPtpReminderScheduler(cfg *PtpConfig, db *pgxpool.Pool) error {
	if cfg.Schedule == "" {
		cfg.Schedule = config.DefaultPtpSchedule
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = config.DefaultTimeZone
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(cfg.Schedule, func() {
		if err := ProcessPtpReminders(db); err != nil {
			if logger.GlobalLogger != nil {
				logger.GlobalLogger.LogAudit(fmt.Sprintf("PTP reminder job failed: %v", err))
			}
		}
	})
	if err != nil {
		return fmt.Errorf("unable to schedule PTP reminder job: %v", err)
	}

	c.Start()
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("PTP reminder scheduler started")
	}
	return nil
}

// ProcessPtpReminders finds visits whose ptp_date is today and writes a
// follow-up notification per visit. The anti-join keeps the job
// idempotent across restarts within the same day.
func ProcessPtpReminders(db *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	rows, err := db.Query(ctx, `
		SELECT v.id, v.user_id, v.loan_number, la.id
		FROM visit_log v
		JOIN loan_allocation la ON la.id = v.allocation_id
		WHERE v.ptp_date = current_date
		  AND v.user_id <> ''
		  AND NOT EXISTS (
			SELECT 1 FROM notifications n
			WHERE n.user_id = v.user_id
			  AND n.kind = 'PTP_FOLLOWUP'
			  AND n.body LIKE '%visit ' || v.id || '.%'
			  AND n.created_at::date = current_date
		  )
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	type reminder struct {
		visitID      int64
		userID       string
		loanNumber   string
		allocationID int64
	}
	var due []reminder
	for rows.Next() {
		var rem reminder
		if err := rows.Scan(&rem.visitID, &rem.userID, &rem.loanNumber, &rem.allocationID); err != nil {
			return err
		}
		due = append(due, rem)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	sent := 0
	for _, rem := range due {
		n := &notification.Notification{
			UserID: rem.userID,
			Kind:   "PTP_FOLLOWUP",
			Title:  "Promise to pay due today",
			Body: fmt.Sprintf("Loan %s (allocation %d) promised payment today, from visit %d. Follow up.",
				rem.loanNumber, rem.allocationID, rem.visitID),
		}
		if err := notification.Insert(ctx, db, n); err != nil {
			if logger.GlobalLogger != nil {
				logger.GlobalLogger.LogAudit(fmt.Sprintf("PTP reminder insert failed for visit %d: %v", rem.visitID, err))
			}
			continue
		}
		sent++
	}
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(fmt.Sprintf("PTP reminder job done: %d due, %d notified", len(due), sent))
	}
	return nil
}
