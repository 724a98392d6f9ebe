package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// quietPaths are polled by probes and scrapers and only logged at debug.
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// Logging returns middleware that logs all HTTP requests.
func Logging(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			sw := newStatusWriter(w)

			next.ServeHTTP(sw, r)

			entry := logger.WithFields(logrus.Fields{
				"method":        r.Method,
				"path":          r.URL.Path,
				"status":        sw.statusCode,
				"duration_ms":   time.Since(start).Milliseconds(),
				"bytes_written": sw.bytesWritten,
				"remote_addr":   r.RemoteAddr,
				"user_agent":    r.UserAgent(),
			})

			if quietPaths[r.URL.Path] {
				entry.Debug("HTTP request completed")

				return
			}

			entry.Info("HTTP request completed")
		})
	}
}
