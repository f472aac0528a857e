package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/marketplace/internal/pkg/interceptors"
	"github.com/jcmexdev/marketplace/internal/pkg/interceptors/constants"
)

// AttachTracingMetadata moves the chi request id and the client idempotency
// key into the context so outbound HTTP and gRPC calls can forward them.
func AttachTracingMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		idempotencyKey := r.Header.Get(constants.HeaderXIdempotencyKey)

		ctx := interceptors.WithRequestMetadata(r.Context(), requestID, idempotencyKey)
		w.Header().Set(constants.HeaderXRequestId, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// NewRouter returns a chi router with the middleware stack every service uses
// and the liveness endpoint mounted.
func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(AttachTracingMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.NotFound(NotFound)
	r.Get("/health", Health)
	return r
}

// ForwardRequestID copies the current request id onto an outbound request.
func ForwardRequestID(req *http.Request) {
	if id := interceptors.RequestID(req.Context()); id != "unknown" {
		req.Header.Set(middleware.RequestIDHeader, id)
	}
}
