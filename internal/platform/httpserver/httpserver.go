// Package httpserver builds the process's HTTP server with timeouts tuned to
// the auth endpoints it fronts.
package httpserver

import (
	"net/http"
	"time"
)

// Server timeouts. Write stays above the 30s middleware timeout so slow
// handlers are answered by the middleware, not cut off mid-response. Bodies
// here are small JSON credentials, so reads are kept short.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 35 * time.Second
	idleTimeout       = 2 * time.Minute
)

// New builds the HTTP server for the given address and root handler.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
