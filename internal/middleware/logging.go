// internal/middleware/logging.go

package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// LogMiddleware writes one Info entry per finished request, tagged with the
// chi request id so it can be matched against handler logs.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			began := time.Now()
			rec := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(rec, r)
			logger.WithFields(requestFields(r)).WithFields(logrus.Fields{
				"status":   rec.Status(),
				"bytes":    rec.BytesWritten(),
				"duration": time.Since(began),
			}).Info("HTTP Request")
		})
	}
}

func requestFields(r *http.Request) logrus.Fields {
	return logrus.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"remote":     r.RemoteAddr,
		"request_id": chimw.GetReqID(r.Context()),
	}
}

// LogWebSocketConnect records a completed game socket handshake.
func LogWebSocketConnect(logger *logrus.Logger, remoteAddr string, path string) {
	socketEntry(logger, remoteAddr, path).Info("WebSocket connected")
}

// LogWebSocketDisconnect records the end of a game socket. A nil err means the
// page closed it cleanly.
func LogWebSocketDisconnect(logger *logrus.Logger, remoteAddr string, path string, err error) {
	entry := socketEntry(logger, remoteAddr, path)
	if err != nil {
		entry = entry.WithField("error", err)
	}
	entry.Info("WebSocket disconnected")
}

func socketEntry(logger *logrus.Logger, remoteAddr, path string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{"remote": remoteAddr, "path": path})
}
