package jobs

import (
	"fmt"
	"log"

	"FieldCollect/internal/logger"
	"FieldCollect/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CronService struct {
	config map[string]interface{}
	db     *pgxpool.Pool
}

func NewCronService(cfg map[string]interface{}, db *pgxpool.Pool) serviceiface.Service {
	return &CronService{
		config: cfg,
		db:     db,
	}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	ptpConfig := NewDefaultPtpConfig()
	if s.config != nil {
		if schedule, ok := s.config["ptp_schedule"].(string); ok && schedule != "" {
			ptpConfig.Schedule = schedule
		}
	}
	if err := RunPtpReminderScheduler(ptpConfig, s.db); err != nil {
		return fmt.Errorf("failed to start PTP reminder scheduler: %v", err)
	}
	log.Println("Cron service started — PTP Reminder scheduled")

	retentionConfig := NewDefaultRetentionConfig()
	if s.config != nil {
		if schedule, ok := s.config["retention_schedule"].(string); ok && schedule != "" {
			retentionConfig.Schedule = schedule
		}
		if days, ok := s.config["retention_days"].(int); ok && days > 0 {
			retentionConfig.RetentionDays = days
		}
	}
	if err := RunUploadRetentionScheduler(retentionConfig, s.db); err != nil {
		return fmt.Errorf("failed to start upload retention scheduler: %v", err)
	}
	log.Println("Cron service started — Upload Retention scheduled")

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("Cron service started with PTP reminder and upload retention jobs")
	}
	return nil
}

func (s *CronService) Stop() error {
	log.Println("Cron service stopped.")
	return nil
}
