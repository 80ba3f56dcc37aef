package httpserver

import (
	"context"
	"net/http"
	"time"

	"fxrates-ingest/internal/infrastructure/logx"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	headerRequestID = "X-Request-ID"
	headerTraceID   = "X-Trace-Id"
)

type idsKey struct{}

// requestIDs travel in the request context for logging.
type requestIDs struct {
	request string
	trace   string
}

func idsFrom(ctx context.Context) requestIDs {
	ids, _ := ctx.Value(idsKey{}).(requestIDs)
	return ids
}

func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Use(correlate)
	r.Use(recoverer())
	r.Use(accessLog())

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if s.ping != nil {
			if err := s.ping(r.Context()); err != nil {
				writeError(w, http.StatusServiceUnavailable, "db not ready")
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	})

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Get("/currencies", s.ListCurrencies)
	r.Route("/pairs", func(r chi.Router) {
		r.Get("/", s.ListPairs)
		r.Post("/", s.AddPair)
		r.Get("/{id}/rates", s.ListRates)
		r.Get("/{id}/history", s.GetHistory)
	})
	r.Post("/rates/fetch", s.FetchRate)
	r.Post("/ticks", s.RunTick)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// correlate echoes inbound request and trace ids or mints new ones.
func correlate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := requestIDs{request: r.Header.Get(headerRequestID), trace: r.Header.Get(headerTraceID)}
		if ids.request == "" {
			ids.request = uuid.NewString()
		}
		if ids.trace == "" {
			ids.trace = uuid.NewString()
		}
		w.Header().Set(headerRequestID, ids.request)
		w.Header().Set(headerTraceID, ids.trace)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), idsKey{}, ids)))
	})
}

func recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				logx.L().Error("http_panic_recovered",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.String("request_id", idsFrom(r.Context()).request),
				)
				writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder captures what the handler wrote for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}

func accessLog() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			began := time.Now()
			rw := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rw, r)

			var pattern string
			if rc := chi.RouteContext(r.Context()); rc != nil {
				pattern = rc.RoutePattern()
			}
			ids := idsFrom(r.Context())
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("route", pattern),
				zap.String("path", r.URL.Path),
				zap.Int("status", rw.status),
				zap.Int("bytes", rw.written),
				zap.Duration("took", time.Since(began)),
				zap.String("request_id", ids.request),
				zap.String("trace_id", ids.trace),
			}
			if rw.status >= http.StatusInternalServerError {
				logx.L().Warn("http_request", fields...)
				return
			}
			logx.L().Info("http_request", fields...)
		})
	}
}
