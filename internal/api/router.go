package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/orafadelg/surveyqr/internal/logger"
)

func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	r.Use(corsMiddleware, loggingMiddleware)

	r.HandleFunc("/link", h.handleLink).Methods(http.MethodPost)
	r.HandleFunc("/qr", h.handleQR).Methods(http.MethodGet)
	r.HandleFunc("/batch", h.handleBatch).Methods(http.MethodPost)
	r.HandleFunc("/job/{id}", h.handleJobStatus).Methods(http.MethodGet)
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info("request received",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote_addr", r.RemoteAddr),
		)
		next.ServeHTTP(w, r)
	})
}
