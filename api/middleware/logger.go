// Package middleware holds HTTP middleware shared by the heyfastq server.
package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Logger logs every request through the standard logrus logger.
func Logger(next http.Handler) http.Handler {
	return NewLogger(logrus.StandardLogger())(next)
}

// NewLogger returns middleware that logs method, path, status, size,
// duration and request id of every request.
func NewLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				entry := log.WithFields(logrus.Fields{
					"method":     r.Method,
					"path":       r.URL.Path,
					"status":     status,
					"bytes":      ww.BytesWritten(),
					"duration":   time.Since(start).String(),
					"request_id": chimiddleware.GetReqID(r.Context()),
				})
				if status >= http.StatusInternalServerError {
					entry.Warn("request failed")
					return
				}
				entry.Info("request")
			}()

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}
