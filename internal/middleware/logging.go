package middleware

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	maxLoggedBody   = 4 << 10
)

// Logging writes one access log line per request. Failed responses also
// carry the code and message of the error envelope.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		started := time.Now()
		rec := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		attrs := []slog.Attr{
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Int("bytes", rec.written),
			slog.Int64("duration_ms", time.Since(started).Milliseconds()),
			slog.String("client_ip", extractClientIP(r)),
		}
		if rec.status >= http.StatusBadRequest {
			attrs = append(attrs, failureAttrs(r, rec.body.Bytes())...)
		}

		slog.LogAttrs(context.Background(), levelForStatus(rec.status), "request", attrs...)
	})
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func failureAttrs(r *http.Request, body []byte) []slog.Attr {
	var attrs []slog.Attr
	if r.URL.RawQuery != "" {
		attrs = append(attrs, slog.String("query", r.URL.RawQuery))
	}

	var envelope struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	}
	if len(body) == 0 || json.Unmarshal(body, &envelope) != nil || envelope.Message == "" {
		return attrs
	}

	if envelope.Code != "" {
		attrs = append(attrs, slog.String("error_code", envelope.Code))
	}
	attrs = append(attrs, slog.String("error_message", envelope.Message))
	if envelope.Details != "" {
		attrs = append(attrs, slog.String("error_details", envelope.Details))
	}
	return attrs
}

// recordingWriter tracks status and size, and keeps the head of error bodies.
type recordingWriter struct {
	http.ResponseWriter
	status      int
	written     int
	body        bytes.Buffer
	wroteHeader bool
}

func (rw *recordingWriter) WriteHeader(statusCode int) {
	if rw.wroteHeader {
		return
	}
	rw.status = statusCode
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	if rw.status >= http.StatusBadRequest && rw.body.Len() < maxLoggedBody {
		rw.body.Write(b[:min(len(b), maxLoggedBody-rw.body.Len())])
	}

	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}

func (rw *recordingWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (rw *recordingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}
