package allocation

import (
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"FieldCollect/internal/serviceiface"
)

type AllocationService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewAllocationService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &AllocationService{config: cfg, pool: pool}
}

func (s *AllocationService) Name() string {
	return "allocation"
}

func (s *AllocationService) Start() error {
	go StartAllocationService(s.pool)
	return nil
}

func (s *AllocationService) Stop() error {
	return nil
}

func StartAllocationService(pool *pgxpool.Pool) {
	mux := http.NewServeMux()
	mux.HandleFunc("/allocation/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Allocation Service is active"))
	})
	mux.HandleFunc("/allocation/upload", UploadAllocations(pool))
	mux.HandleFunc("/allocation/get", GetAllocationHandler(pool))
	mux.HandleFunc("/allocation/list", ListAllocationsHandler(pool))
	mux.HandleFunc("/allocation/my-cases", MyAllocations(pool))
	mux.HandleFunc("/allocation/assign", AssignAllocations(pool))
	mux.HandleFunc("/allocation/unassign", UnassignAllocation(pool))
	mux.HandleFunc("/allocation/reassign", ReassignAllocation(pool))
	mux.HandleFunc("/allocation/assignment-summary", AssignmentSummary(pool))
	mux.HandleFunc("/allocation/visit-addresses", VisitAddresses(pool))
	mux.HandleFunc("/allocation/update-status", UpdateVisitStatus(pool))

	log.Println("Allocation Service started on :6243")
	err := http.ListenAndServe(":6243", mux)
	if err != nil {
		log.Fatalf("Allocation Service failed: %v", err)
	}
}
