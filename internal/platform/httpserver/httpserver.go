package httpserver

import (
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	idleTimeout       = 60 * time.Second
	// writeSlack covers encoding the response after the handler budget ends.
	writeSlack = 5 * time.Second
)

// New builds the HTTP server. The write timeout follows the handler budget
// so a slow confirmation dispatch is never cut off mid-response.
func New(addr string, handler http.Handler, requestTimeout time.Duration) *http.Server {
	writeTimeout := 30 * time.Second
	if requestTimeout > 0 {
		writeTimeout = requestTimeout + writeSlack
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
