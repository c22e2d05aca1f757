// Package api wires the heyfastq HTTP handlers into a chi router.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/heyfastq/heyfastq-go/api/handlers"
	"github.com/heyfastq/heyfastq-go/api/middleware"
)

// NewRouter returns the server's routes with request logging through log.
func NewRouter(log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/kscore", handlers.KScoreHandler)
		r.Post("/kmers", handlers.KmersHandler)
		r.Post("/quality/qvals", handlers.QValsHandler)
		r.Post("/reads/{op}", handlers.ReadsHandler)
	})

	return r
}
