package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// RequestLogger stores a request-scoped zerolog logger in the context and logs each request
// once it completes. It must run after middleware.RequestID.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		logger := log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
		ctx := logger.WithContext(r.Context())
		r = r.WithContext(ctx)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		log.Ctx(ctx).Info().
			Str("method", r.Method).
			Str("endpoint", r.URL.Path).
			Int("status", status).
			Int64("latency", time.Since(start).Milliseconds()).
			Msg("Request processed")
	})
}

// UnaryLogger is the gRPC counterpart of RequestLogger. Each call gets a fresh request id.
func UnaryLogger(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()

	logger := log.With().Str("request_id", uuid.NewString()).Logger()
	ctx = logger.WithContext(ctx)

	resp, err := handler(ctx, req)

	log.Ctx(ctx).Info().
		Str("method", info.FullMethod).
		Str("code", status.Code(err).String()).
		Int64("latency", time.Since(start).Milliseconds()).
		Msg("RPC processed")
	return resp, err
}
