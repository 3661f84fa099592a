package visit

import (
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"FieldCollect/internal/serviceiface"
)

type VisitService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewVisitService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &VisitService{config: cfg, pool: pool}
}

func (s *VisitService) Name() string {
	return "visit"
}

func (s *VisitService) Start() error {
	go StartVisitService(s.pool)
	return nil
}

func (s *VisitService) Stop() error {
	return nil
}

func StartVisitService(pool *pgxpool.Pool) {
	mux := http.NewServeMux()
	mux.HandleFunc("/visit/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Visit Service is active"))
	})
	mux.HandleFunc("/visit/create", CreateVisit(pool))
	mux.HandleFunc("/visit/by-allocation", VisitsByAllocation(pool))
	mux.HandleFunc("/visit/pending-collections", PendingCollections(pool))
	mux.HandleFunc("/visit/approve", ApproveCollection(pool))
	mux.HandleFunc("/visit/reject", RejectCollection(pool))
	mux.HandleFunc("/visit/deposit", MarkDeposited(pool))

	log.Println("Visit Service started on :6343")
	err := http.ListenAndServe(":6343", mux)
	if err != nil {
		log.Fatalf("Visit Service failed: %v", err)
	}
}
