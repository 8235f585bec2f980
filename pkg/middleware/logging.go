package middleware

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/gracewave/gracewave/pkg/configuration"
	"github.com/gracewave/gracewave/pkg/constants"
)

type LoggerOptions struct {
	LogRequestBody  bool
	LogResponseBody bool
	MaxBodyLength   int
}

func DefaultLoggerOptions() LoggerOptions {
	return LoggerOptions{
		LogRequestBody:  true,
		LogResponseBody: false,
		MaxBodyLength:   512,
	}
}

type responseCaptureWriter struct {
	http.ResponseWriter
	statusCode    int
	statusWritten bool
	body          *bytes.Buffer
}

func (w *responseCaptureWriter) WriteHeader(code int) {
	if !w.statusWritten {
		w.statusCode = code
		w.statusWritten = true
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *responseCaptureWriter) Status() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

func (w *responseCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseCaptureWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *responseCaptureWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("underlying ResponseWriter does not implement http.Hijacker")
}

func wrapResponseWriter(w http.ResponseWriter) *responseCaptureWriter {
	return &responseCaptureWriter{ResponseWriter: w, body: &bytes.Buffer{}}
}

func getRealIP(r *http.Request, conf *configuration.Configuration) string {
	if len(r.Header.Get(conf.RealIPHeader)) > 0 {
		return r.Header.Get(conf.RealIPHeader)
	}
	return r.RemoteAddr
}

func getRequestID(r *http.Request, conf *configuration.Configuration) string {
	if len(r.Header.Get(conf.RequestIDHeader)) > 0 {
		return r.Header.Get(conf.RequestIDHeader)
	}
	return uuid.New().String()
}

func shouldLogBody(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.Contains(contentType, "application/json") ||
		strings.Contains(contentType, "application/x-www-form-urlencoded")
}

func truncateBody(b []byte, maxLen int) string {
	if maxLen > 0 && len(b) > maxLen {
		return string(b[:maxLen]) + "..."
	}
	return string(b)
}

// WithLogger attaches a request-scoped logrus entry to the context, logs
// request start/completion, and recovers panics into a stable 500 response.
func WithLogger(logger *logrus.Logger, opts LoggerOptions) mux.MiddlewareFunc {
	conf := configuration.Use()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				start := time.Now()
				requestID := getRequestID(r, conf)

				fieldsLogger := logger.WithFields(logrus.Fields{
					"request-id": requestID,
					"path":       r.RequestURI,
					"method":     r.Method,
				})

				fieldsLogger.WithFields(logrus.Fields{
					"host":       r.Host,
					"ip":         getRealIP(r, conf),
					"user-agent": r.UserAgent(),
				}).Info("request started")

				isMutatingMethod := r.Method == http.MethodPost ||
					r.Method == http.MethodPut ||
					r.Method == http.MethodPatch ||
					r.Method == http.MethodDelete

				if isMutatingMethod && opts.LogRequestBody && r.Body != nil && shouldLogBody(r.Header.Get("Content-Type")) {
					bodyBuf := new(bytes.Buffer)
					if _, err := bodyBuf.ReadFrom(r.Body); err != nil {
						fieldsLogger.WithError(err).Error("failed to read request-body")
						http.Error(w, "failed to read request-body", http.StatusInternalServerError)
						return
					}
					r.Body = newReplayBody(bodyBuf.Bytes())
					fieldsLogger.WithField("request-body", truncateBody(bodyBuf.Bytes(), opts.MaxBodyLength)).Info("request-body captured")
				}

				ctx := context.WithValue(r.Context(), constants.LoggerKey, fieldsLogger)
				ctx = context.WithValue(ctx, constants.RequestStart, start)

				w.Header().Set("X-Request-Id", requestID)
				r.Header.Set(conf.RequestIDHeader, requestID)

				wrappedWriter := wrapResponseWriter(w)

				defer func() {
					if recovered := recover(); recovered != nil {
						fieldsLogger.WithFields(logrus.Fields{
							"panic":    recovered,
							"stack":    string(debug.Stack()),
							"duration": time.Since(start),
						}).Error("panic recovered in request handler")

						if !wrappedWriter.statusWritten {
							wrappedWriter.Header().Set("Content-Type", "application/json")
							wrappedWriter.WriteHeader(http.StatusInternalServerError)
							_ = json.NewEncoder(wrappedWriter).Encode(map[string]any{
								"code":    "INTERNAL_SERVER_ERROR",
								"message": "internal server error",
								"meta": map[string]string{
									"request_id": requestID,
									"path":       r.URL.Path,
								},
							})
						}
					}
				}()

				next.ServeHTTP(wrappedWriter, r.WithContext(ctx))

				statusCode := wrappedWriter.Status()
				fieldsLogger.WithFields(logrus.Fields{
					"duration":     time.Since(start),
					"completed":    true,
					"status-code":  statusCode,
					"status-class": statusCode / 100,
				}).Info("request completed")

				if opts.LogResponseBody && shouldLogBody(wrappedWriter.Header().Get("Content-Type")) {
					fieldsLogger.WithField("response-body", truncateBody(wrappedWriter.body.Bytes(), opts.MaxBodyLength)).Info("response-body captured")
				}
			},
		)
	}
}

type replayBody struct {
	*bytes.Reader
}

func newReplayBody(b []byte) *replayBody {
	return &replayBody{Reader: bytes.NewReader(b)}
}

func (replayBody) Close() error { return nil }
