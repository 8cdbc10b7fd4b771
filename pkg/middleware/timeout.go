package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	pkgerrors "github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/errors"
	"github.com/Oumayma-stack/indexationWeb-OumaymaHMIDICH/pkg/logger"
)

// Timeout bounds each request with a deadline. A request that misses the
// deadline gets the service's standard error envelope with the status
// mapped from ErrTimeout, unless the handler already started writing.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			gw := &guardedWriter{ResponseWriter: w}
			done := make(chan struct{})
			go func() {
				defer close(done)
				next.ServeHTTP(gw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if !gw.claimTimeout() {
					return
				}
				logger.FromContext(r.Context()).Warn("request deadline exceeded",
					"method", r.Method,
					"path", r.URL.Path,
					"timeout", timeout,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(pkgerrors.HTTPStatusCode(pkgerrors.ErrTimeout))
				json.NewEncoder(w).Encode(map[string]string{"error": "request timed out"})
			}
		})
	}
}

// guardedWriter hands the response to exactly one side. Once the timeout
// path claims it, late handler writes are discarded; once the handler has
// written, the timeout path backs off.
type guardedWriter struct {
	http.ResponseWriter
	mu    sync.Mutex
	owner int // 0 unclaimed, 1 handler, 2 timeout
}

func (gw *guardedWriter) claimTimeout() bool {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if gw.owner != 0 {
		return false
	}
	gw.owner = 2
	return true
}

func (gw *guardedWriter) handlerOwns() bool {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if gw.owner == 2 {
		return false
	}
	gw.owner = 1
	return true
}

func (gw *guardedWriter) WriteHeader(code int) {
	if gw.handlerOwns() {
		gw.ResponseWriter.WriteHeader(code)
	}
}

func (gw *guardedWriter) Write(b []byte) (int, error) {
	if !gw.handlerOwns() {
		return len(b), nil
	}
	return gw.ResponseWriter.Write(b)
}
