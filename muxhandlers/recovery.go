package muxhandlers

import (
	"net/http"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/vitalvas/reroute/mux"
)

// RecoveryConfig configures the Recovery middleware behaviour.
type RecoveryConfig struct {
	// Logger receives an Error entry for every recovered panic, enriched
	// by LoggerFromRequest. Defaults to the logrus standard logger.
	Logger log.FieldLogger

	// LogFunc is an optional callback invoked with the request and the
	// recovered value when a panic occurs. It runs in addition to Logger.
	LogFunc func(r *http.Request, err any)

	// Stack adds the goroutine stack trace to the log entry.
	Stack bool
}

// RecoveryMiddleware returns a middleware that recovers from panics in
// downstream handlers. When a panic occurs it logs the value, returns
// 500 Internal Server Error to the client and optionally invokes LogFunc.
func RecoveryMiddleware(cfg RecoveryConfig) mux.MiddlewareFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					entry := LoggerFromRequest(r, logger).WithField("panic", err)
					if cfg.Stack {
						entry = entry.WithField("stack", string(debug.Stack()))
					}
					entry.Error("recovered from handler panic")

					if cfg.LogFunc != nil {
						cfg.LogFunc(r, err)
					}

					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
