// Package muxhandlers provides HTTP middleware handlers for the mux router.
//
// # Request ID Middleware
//
// RequestIDMiddleware gives every routed request an id header and stores it
// in the request context along with a request logger carrying the id and
// the matched route. RouteHeaderName echoes the matched route id, and a
// route can opt out with a false "request_id" option:
//
//	r.HandleFunc("GET:health", health, mux.Options{"request_id": false})
//	r.Use(muxhandlers.RequestIDMiddleware(muxhandlers.RequestIDConfig{
//	    GenerateFunc:    muxhandlers.GenerateUUIDv7,
//	    RouteHeaderName: "X-Route",
//	    Logger:          logger,
//	}))
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    muxhandlers.LoggerFromContext(r.Context()).Info("serving")
//	}
//
// # Recovery Middleware
//
// RecoveryMiddleware turns handler panics into 500 responses and logs them
// at Error level with the request fields attached.
//
//	r.Use(muxhandlers.RecoveryMiddleware(muxhandlers.RecoveryConfig{
//	    Logger: logger,
//	}))
//
// # Route Cache Middleware
//
// RouteCacheMiddleware reads the "cache" option of the matched route and
// sets Cache-Control and Expires on successful responses. A true value
// caches for a year, a map selects max_age (seconds), public, private and
// no_store:
//
//	r.HandleFunc("GET:logo.png", logo, mux.Options{"cache": true})
//	r.HandleFunc("GET:news", news, mux.Options{
//	    "cache": map[string]any{"max_age": 300, "public": true},
//	})
//	r.Use(muxhandlers.RouteCacheMiddleware(muxhandlers.RouteCacheConfig{}))
package muxhandlers
