package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dulchik/mailbot/store"
)

const defaultLimit = 50

// Records lists cached emails.
type Records interface {
	Recent(ctx context.Context, limit int) ([]store.EmailRecord, error)
	Count(ctx context.Context) (int64, error)
}

// NewServer returns an http.Handler that serves the health check and the
// cached email API.
func NewServer(recs Records) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("bot is alive"))
	})

	mux.HandleFunc("GET /api/emails", func(w http.ResponseWriter, r *http.Request) {
		limit := defaultLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = n
		}
		em, err := recs.Recent(r.Context(), limit)
		if err != nil {
			slog.Error("list cached emails", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		total, err := recs.Count(r.Context())
		if err != nil {
			slog.Error("count cached emails", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if em == nil {
			em = []store.EmailRecord{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"emails": em,
			"total":  total,
		})
	})

	return mux
}
