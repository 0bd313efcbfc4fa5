package muxhandlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/vitalvas/reroute/mux"
)

// CacheForever is the lifetime applied when a route sets "cache" to true.
const CacheForever = 365 * 24 * time.Hour

// Keys of a map-valued "cache" route option.
const (
	CacheKeyMaxAge  = "max_age"
	CacheKeyPublic  = "public"
	CacheKeyPrivate = "private"
	CacheKeyNoStore = "no_store"
)

// RouteCacheConfig configures the RouteCache middleware behaviour.
type RouteCacheConfig struct {
	// Logger receives a Warn entry when a route carries a "cache" option
	// that is neither a scalar nor a map. Defaults to the logrus standard
	// logger.
	Logger log.FieldLogger

	// Now returns the reference time for the Expires header. Defaults to
	// time.Now.
	Now func() time.Time
}

// cachePolicy is the parsed form of a route "cache" option.
type cachePolicy struct {
	maxAge  time.Duration
	public  bool
	private bool
	noStore bool
}

func (p cachePolicy) cacheControl() string {
	if p.noStore {
		return "no-store"
	}

	parts := make([]string, 0, 2)
	switch {
	case p.private:
		parts = append(parts, "private")
	case p.public:
		parts = append(parts, "public")
	}
	parts = append(parts, "max-age="+strconv.FormatInt(int64(p.maxAge/time.Second), 10))

	return strings.Join(parts, ", ")
}

// parseCachePolicy interprets a route "cache" option. A truthy scalar means
// cache forever, a falsy scalar disables the middleware for the route.
func parseCachePolicy(v any) (cachePolicy, bool, error) {
	switch value := v.(type) {
	case nil:
		return cachePolicy{}, false, nil
	case bool:
		return foreverPolicy(), value, nil
	case string:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return cachePolicy{}, false, fmt.Errorf("cache option %q is not a boolean", value)
		}
		return foreverPolicy(), b, nil
	case map[string]any:
		opts := mux.Options(value)
		policy := cachePolicy{
			public:  truthy(value[CacheKeyPublic]),
			private: truthy(value[CacheKeyPrivate]),
			noStore: truthy(value[CacheKeyNoStore]),
		}
		if opts.Has(CacheKeyMaxAge) {
			secs, ok := opts.Float(CacheKeyMaxAge)
			if !ok || secs < 0 {
				return cachePolicy{}, false, fmt.Errorf("cache option max_age %v is not a non-negative number", value[CacheKeyMaxAge])
			}
			policy.maxAge = time.Duration(secs * float64(time.Second))
		}
		return policy, true, nil
	default:
		if f, ok := numeric(v); ok {
			return foreverPolicy(), f != 0, nil
		}
		return cachePolicy{}, false, fmt.Errorf("cache option of type %T is not supported", v)
	}
}

func foreverPolicy() cachePolicy {
	return cachePolicy{maxAge: CacheForever, public: true}
}

func truthy(v any) bool {
	switch value := v.(type) {
	case bool:
		return value
	case string:
		b, _ := strconv.ParseBool(value)
		return b
	default:
		f, ok := numeric(v)
		return ok && f != 0
	}
}

// numeric reports the value of any Go number kind. Decoded definitions and
// restored snapshots do not agree on integer widths.
func numeric(v any) (float64, bool) {
	if _, isString := v.(string); isString {
		return 0, false
	}
	return mux.Options{"n": v}.Float("n")
}

// RouteCacheMiddleware returns a middleware that sets Cache-Control and
// Expires response headers from the "cache" option of the matched route.
// Headers already set by the handler are left alone, and only 2xx
// responses are marked cacheable.
func RouteCacheMiddleware(cfg RouteCacheConfig) mux.MiddlewareFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			match := mux.CurrentMatch(r)
			if match == nil {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := match.Option(mux.OptionCache)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			policy, enabled, err := parseCachePolicy(raw)
			if err != nil {
				LoggerFromRequest(r, logger).WithError(err).Warn("invalid route cache setting")
			}
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(&routeCacheResponseWriter{
				ResponseWriter: w,
				policy:         policy,
				now:            now,
			}, r)
		})
	}
}

// routeCacheResponseWriter intercepts WriteHeader to set Cache-Control and
// Expires before flushing headers.
type routeCacheResponseWriter struct {
	http.ResponseWriter
	policy      cachePolicy
	now         func() time.Time
	wroteHeader bool
}

func (cw *routeCacheResponseWriter) WriteHeader(statusCode int) {
	if cw.wroteHeader {
		return
	}

	cw.wroteHeader = true

	if statusCode >= 200 && statusCode < 300 {
		h := cw.Header()

		if h.Get("Cache-Control") == "" {
			h.Set("Cache-Control", cw.policy.cacheControl())
		}

		if h.Get("Expires") == "" && !cw.policy.noStore {
			h.Set("Expires", cw.now().UTC().Add(cw.policy.maxAge).Format(http.TimeFormat))
		}
	}

	cw.ResponseWriter.WriteHeader(statusCode)
}

func (cw *routeCacheResponseWriter) Write(b []byte) (int, error) {
	if !cw.wroteHeader {
		cw.WriteHeader(http.StatusOK)
	}

	return cw.ResponseWriter.Write(b)
}

// Unwrap returns the underlying ResponseWriter for middleware compatibility.
func (cw *routeCacheResponseWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}
