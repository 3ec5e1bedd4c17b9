// internal/middleware/logging.go
package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// LogMiddleware logs each HTTP request's method, path, duration and
// remote address through the injected logrus logger.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
				"remote":   r.RemoteAddr,
			}).Info("HTTP request")
		})
	}
}

// LogWebSocketConnect logs a realtime client connecting to a namespace.
func LogWebSocketConnect(logger *logrus.Logger, remoteAddr, namespace string) {
	logger.WithFields(logrus.Fields{
		"remote":    remoteAddr,
		"namespace": namespace,
	}).Info("WebSocket connected")
}

// LogWebSocketDisconnect logs a realtime client disconnecting.
func LogWebSocketDisconnect(logger *logrus.Logger, remoteAddr, namespace string, err error) {
	fields := logrus.Fields{
		"remote":    remoteAddr,
		"namespace": namespace,
	}
	if err != nil {
		fields["error"] = err
	}
	logger.WithFields(fields).Info("WebSocket disconnected")
}
