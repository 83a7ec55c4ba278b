package admin

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Mutating admin calls move money, so each one leaves an audit line with
// the request body (capped) and the response status.
const auditBodyCap = 1024

// AuditMiddleware logs every POST/DELETE request passing through the admin
// surface. Reads are not audited.
func AuditMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	auditLogger := logger.With("component", "admin_audit")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodDelete {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		operator, _, _ := r.BasicAuth()
		body := captureBody(r)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		auditLogger.Info("admin API audit",
			"request_id", uuid.NewString(),
			"operator", operator,
			"remote_addr", r.RemoteAddr,
			"method", r.Method,
			"path", r.URL.Path,
			"body_summary", body,
			"response_status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// captureBody reads up to auditBodyCap bytes for the audit line and puts
// the read bytes back so the handler still sees them.
func captureBody(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, auditBodyCap+1))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if len(raw) > auditBodyCap {
		return string(raw[:auditBodyCap]) + "...(truncated)"
	}
	return string(raw)
}

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.status = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	sr.written = true
	return sr.ResponseWriter.Write(b)
}
