package mux

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

var endpointCounts = []int{5, 10, 50, 100, 500}

var noopHandler = http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {})

func noopMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
	})
}

// nopResponseWriter discards all output to avoid measuring response writing overhead.
type nopResponseWriter struct {
	h http.Header
}

func newNopResponseWriter() *nopResponseWriter {
	return &nopResponseWriter{h: make(http.Header)}
}

func (w *nopResponseWriter) Header() http.Header        { return w.h }
func (w *nopResponseWriter) Write(b []byte) (int, error) { return len(b), nil }
func (w *nopResponseWriter) WriteHeader(int)             {}

// --- Route setup ---

func setupSimple(b *testing.B, n int) *Router {
	r := newTestRouter(b)
	for i := range n {
		p := fmt.Sprintf("resource-%d", i)
		mustAddBench(b, r, "GET:"+p)
		mustAddBench(b, r, "POST:"+p)
		mustAddBench(b, r, "GET:"+p+"/list")
		mustAddBench(b, r, "PUT:"+p+"/update")
		mustAddBench(b, r, "DELETE:"+p+"/remove")
	}
	return r
}

func setupTyped(b *testing.B, n int) *Router {
	r := newTestRouter(b)
	r.Use(noopMiddleware)
	for i := range n {
		p := fmt.Sprintf("resource-%d", i)
		mustAddBench(b, r, "GET:"+p+"/{int id}")
		mustAddBench(b, r, "POST:"+p)
		mustAddBench(b, r, "GET:"+p+"/{int id}/details/({comma_list fields})")
		mustAddBench(b, r, "PUT:"+p+"/{int id}")
		mustAddBench(b, r, "DELETE:"+p+"/{int id}")
	}
	return r
}

func setupModel(b *testing.B, n int) *Router {
	r := newTestRouter(b).SetResolver(ResolverFunc(func(_ context.Context, typeName, raw string) (Model, error) {
		return testModel{id: raw, typ: typeName}, nil
	}))
	r.Use(noopMiddleware, noopMiddleware, noopMiddleware)
	for i := range n {
		p := fmt.Sprintf("api/v1/resource-%d", i)
		if _, err := r.Handle("GET:"+p+"/{Widget widget}/{action}", noopHandler, Options{
			OptionClasses: []any{"Widget"},
			OptionActions: []any{fmt.Sprintf("act-%d", i)},
		}); err != nil {
			b.Fatal(err)
		}
		mustAddBench(b, r, "POST:"+p)
		mustAddBench(b, r, "PUT:"+p+"/{Widget widget}")
	}
	return r
}

func mustAddBench(b *testing.B, r *Router, pattern string) {
	if _, err := r.Handle(pattern, noopHandler, nil); err != nil {
		b.Fatal(err)
	}
}

// --- Benchmark harness ---

type benchConfig struct {
	name    string
	setup   func(*testing.B, int) *Router
	request func(int) *http.Request
	miss    *http.Request
}

func benchmarkRouter(b *testing.B, configs []benchConfig) {
	b.Helper()
	for _, cfg := range configs {
		for _, n := range endpointCounts {
			b.Run(fmt.Sprintf("Setup/%s/%d", cfg.name, n), func(b *testing.B) {
				for b.Loop() {
					cfg.setup(b, n)
				}
			})
		}

		for _, n := range endpointCounts {
			b.Run(fmt.Sprintf("Dispatch_First/%s/%d", cfg.name, n), func(b *testing.B) {
				router := cfg.setup(b, n)
				req := cfg.request(0)
				w := newNopResponseWriter()
				b.ResetTimer()
				for b.Loop() {
					router.ServeHTTP(w, req)
				}
			})

			b.Run(fmt.Sprintf("Dispatch_Last/%s/%d", cfg.name, n), func(b *testing.B) {
				router := cfg.setup(b, n)
				req := cfg.request(n - 1)
				w := newNopResponseWriter()
				b.ResetTimer()
				for b.Loop() {
					router.ServeHTTP(w, req)
				}
			})

			b.Run(fmt.Sprintf("Dispatch_Miss/%s/%d", cfg.name, n), func(b *testing.B) {
				router := cfg.setup(b, n)
				w := newNopResponseWriter()
				b.ResetTimer()
				for b.Loop() {
					router.ServeHTTP(w, cfg.miss)
				}
			})
		}
	}
}

func BenchmarkForwardDispatch(b *testing.B) {
	benchmarkRouter(b, []benchConfig{
		{
			name:    "Simple",
			setup:   setupSimple,
			request: func(i int) *http.Request { return httptest.NewRequest(http.MethodGet, fmt.Sprintf("/resource-%d", i), nil) },
			miss:    httptest.NewRequest(http.MethodGet, "/no-such-route", nil),
		},
		{
			name:    "Typed",
			setup:   setupTyped,
			request: func(i int) *http.Request { return httptest.NewRequest(http.MethodGet, fmt.Sprintf("/resource-%d/42", i), nil) },
			miss:    httptest.NewRequest(http.MethodGet, "/no-such-route/42", nil),
		},
		{
			name:  "Model",
			setup: setupModel,
			request: func(i int) *http.Request {
				return httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/resource-%d/42/act-%d", i, i), nil)
			},
			miss: httptest.NewRequest(http.MethodGet, "/api/v1/no-such-route/42", nil),
		},
	})
}

func BenchmarkReverseDispatch(b *testing.B) {
	widget := testModel{id: "42", typ: "Gadget"}

	for _, n := range endpointCounts {
		r := setupModel(b, n)

		b.Run(fmt.Sprintf("First/%d", n), func(b *testing.B) {
			for b.Loop() {
				_, _ = r.GetRoute("act-0", widget, nil)
			}
		})

		b.Run(fmt.Sprintf("Last/%d", n), func(b *testing.B) {
			action := fmt.Sprintf("act-%d", n-1)
			for b.Loop() {
				_, _ = r.GetRoute(action, widget, nil)
			}
		})

		b.Run(fmt.Sprintf("Miss/%d", n), func(b *testing.B) {
			for b.Loop() {
				_, _ = r.GetRoute("no-such-action", widget, nil)
			}
		})
	}
}

func BenchmarkSnapshotRestore(b *testing.B) {
	for _, n := range endpointCounts {
		src := setupTyped(b, n)
		blob, err := src.Snapshot("bench")
		if err != nil {
			b.Fatal(err)
		}

		b.Run(fmt.Sprintf("Snapshot/%d", n), func(b *testing.B) {
			for b.Loop() {
				_, _ = src.Snapshot("bench")
			}
		})

		b.Run(fmt.Sprintf("Restore/%d", n), func(b *testing.B) {
			for b.Loop() {
				if err := newTestRouter(b).Restore(blob, "bench"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
