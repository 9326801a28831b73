package httpapi

import (
	"net/http"

	"github.com/matchpulse/collector/internal/platform/logging"
)

func NewRouter(
	handler *Handler,
	logger *logging.Logger,
	corsAllowedOrigins []string,
	internalJobToken string,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.Handle("POST /internal/collect", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.TriggerCollect)))
	mux.Handle("POST /internal/collect-all", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.TriggerCollectAll)))
	mux.Handle("GET /internal/quality", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.GetQuality)))

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
