package dash

import (
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"FieldCollect/internal/serviceiface"
)

type DashService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewDashService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &DashService{config: cfg, pool: pool}
}

func (s *DashService) Name() string {
	return "dash"
}

func (s *DashService) Start() error {
	go StartDashService(s.pool)
	return nil
}

func (s *DashService) Stop() error {
	return nil
}

func StartDashService(pool *pgxpool.Pool) {
	mux := http.NewServeMux()
	mux.HandleFunc("/dash/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Dash Service is active"))
	})
	mux.HandleFunc("/dash/collections", CollectionDashboard(pool))

	log.Println("Dash Service started on :6443")
	err := http.ListenAndServe(":6443", mux)
	if err != nil {
		log.Fatalf("Dash Service failed: %v", err)
	}
}
