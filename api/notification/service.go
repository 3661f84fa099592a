package notification

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"FieldCollect/internal/serviceiface"
)

type NotificationService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewNotificationService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &NotificationService{config: cfg, pool: pool}
}

func (s *NotificationService) Name() string {
	return "notification"
}

func (s *NotificationService) Start() error {
	go StartNotificationService(s.pool)
	return nil
}

func (s *NotificationService) Stop() error {
	return nil
}
