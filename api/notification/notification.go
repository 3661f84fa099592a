package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"FieldCollect/api"
)

const notificationPort = "9111"

// Notification is one actionable message for a user, typically a PTP
// follow-up raised by the scheduler.
type Notification struct {
	ID        int64      `json:"id"`
	UserID    string     `json:"user_id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"read_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// Insert writes one notification. Exposed for the cron jobs as well as
// the HTTP surface.
func Insert(ctx context.Context, pool *pgxpool.Pool, n *Notification) error {
	return pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, kind, title, body, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING id, created_at
	`, n.UserID, n.Kind, n.Title, n.Body).Scan(&n.ID, &n.CreatedAt)
}

// ListForUser returns a user's notifications, newest first.
func ListForUser(ctx context.Context, pool *pgxpool.Pool, userID string) ([]*Notification, error) {
	rows, err := pool.Query(ctx, `
		SELECT id, user_id, kind, title, body, read_at, created_at
		FROM notifications WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func listHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			api.RespondWithError(w, http.StatusBadRequest, "user_id required")
			return
		}
		out, err := ListForUser(r.Context(), pool, userID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.RespondWithPayload(w, true, "", out)
	}
}

func markReadHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID int64 `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
			api.RespondWithError(w, http.StatusBadRequest, "id required")
			return
		}
		_, err := pool.Exec(r.Context(), `UPDATE notifications SET read_at = now() WHERE id = $1 AND read_at IS NULL`, req.ID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		api.RespondWithResult(w, true, "")
	}
}

func StartNotificationService(pool *pgxpool.Pool) {
	if pool == nil {
		user := os.Getenv("DB_USER")
		pass := os.Getenv("DB_PASSWORD")
		host := os.Getenv("DB_HOST")
		port := os.Getenv("DB_PORT")
		name := os.Getenv("DB_NAME")
		if user != "" && pass != "" && host != "" && port != "" && name != "" {
			dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, port, name)
			var err error
			pool, err = pgxpool.New(context.Background(), dsn)
			if err != nil {
				log.Fatalf("failed to connect to pgxpool DB: %v", err)
			}
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/notification/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Notification Service is active"))
	})
	mux.HandleFunc("/notification/list", listHandler(pool))
	mux.HandleFunc("/notification/mark-read", markReadHandler(pool))

	log.Printf("Notification Service started on :%s", notificationPort)
	if err := http.ListenAndServe(":"+notificationPort, mux); err != nil {
		log.Fatalf("Notification Service failed: %v", err)
	}
}
