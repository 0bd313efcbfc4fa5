package muxhandlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/vitalvas/reroute/mux"
)

// Log field names added by LoggerFromRequest.
const (
	LogFieldRequestID = "request_id"
	LogFieldRoute     = "route"
	LogFieldPath      = "path"
)

// RouteOptionRequestID is the route option that turns request ids off for
// a route when set to a false value.
const RouteOptionRequestID = "request_id"

const defaultRequestIDHeader = "X-Request-ID"

type (
	requestIDKey     struct{}
	requestLoggerKey struct{}
)

// RequestIDFromContext returns the request id stored by RequestIDMiddleware,
// or an empty string.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// LoggerFromContext returns the request logger stored by
// RequestIDMiddleware. Without one it returns the logrus standard logger.
func LoggerFromContext(ctx context.Context) log.FieldLogger {
	if l, ok := ctx.Value(requestLoggerKey{}).(log.FieldLogger); ok {
		return l
	}
	return log.StandardLogger()
}

// LoggerFromRequest returns base enriched with the request path, the
// request id and the id of the matched route, when known. A nil base falls
// back to the logrus standard logger.
func LoggerFromRequest(r *http.Request, base log.FieldLogger) log.FieldLogger {
	if base == nil {
		base = log.StandardLogger()
	}

	fields := log.Fields{LogFieldPath: r.URL.Path}
	if id := RequestIDFromContext(r.Context()); id != "" {
		fields[LogFieldRequestID] = id
	}
	if route := mux.CurrentRoute(r); route != nil {
		fields[LogFieldRoute] = route.ID()
	}

	return base.WithFields(fields)
}

// RequestIDConfig configures RequestIDMiddleware.
type RequestIDConfig struct {
	// HeaderName is the request and response header carrying the id.
	// Defaults to "X-Request-ID".
	HeaderName string

	// RouteHeaderName, when set, names a response header that receives the
	// id of the matched route.
	RouteHeaderName string

	// GenerateFunc returns a new id for the request. Defaults to
	// GenerateUUIDv4.
	GenerateFunc func(r *http.Request) string

	// TrustIncoming reuses an id sent by the client.
	TrustIncoming bool

	// Logger is the base of the request logger stored in the context.
	// Defaults to the logrus standard logger.
	Logger log.FieldLogger
}

// RequestIDMiddleware assigns every routed request an id. The id is set on
// the request and response headers and stored in the context together
// with a request logger carrying the id and the matched route. Routes
// whose "request_id" option is false are passed through untouched.
func RequestIDMiddleware(cfg RequestIDConfig) mux.MiddlewareFunc {
	if cfg.HeaderName == "" {
		cfg.HeaderName = defaultRequestIDHeader
	}
	if cfg.GenerateFunc == nil {
		cfg.GenerateFunc = GenerateUUIDv4
	}
	if cfg.Logger == nil {
		cfg.Logger = log.StandardLogger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := mux.CurrentRoute(r)
			if !requestIDEnabled(route) {
				next.ServeHTTP(w, r)
				return
			}

			if route != nil && cfg.RouteHeaderName != "" {
				w.Header().Set(cfg.RouteHeaderName, route.ID())
			}

			var id string
			if cfg.TrustIncoming {
				id = r.Header.Get(cfg.HeaderName)
			}
			if id == "" {
				id = cfg.GenerateFunc(r)
			}

			ctx := r.Context()
			if id != "" {
				r.Header.Set(cfg.HeaderName, id)
				w.Header().Set(cfg.HeaderName, id)
				ctx = context.WithValue(ctx, requestIDKey{}, id)
			}
			r = r.WithContext(ctx)
			r = r.WithContext(context.WithValue(ctx, requestLoggerKey{}, LoggerFromRequest(r, cfg.Logger)))

			next.ServeHTTP(w, r)
		})
	}
}

func requestIDEnabled(route *mux.Route) bool {
	if route == nil {
		return true
	}
	v, ok := route.Option(RouteOptionRequestID)
	if !ok {
		return true
	}
	switch value := v.(type) {
	case bool:
		return value
	case string:
		b, err := strconv.ParseBool(value)
		return err != nil || b
	default:
		f, ok := numeric(v)
		return !ok || f != 0
	}
}

// GenerateUUIDv4 returns a random UUID (RFC 9562 section 5.4).
func GenerateUUIDv4(_ *http.Request) string {
	return uuid.New().String()
}

// GenerateUUIDv7 returns a time-ordered UUID (RFC 9562 section 5.7), so ids
// sort by creation time.
func GenerateUUIDv7(_ *http.Request) string {
	return uuid.Must(uuid.NewV7()).String()
}
