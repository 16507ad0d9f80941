package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// StartHTTP starts the HTTP server in the background and returns it so the
// caller can shut it down.
func StartHTTP(host string, port int, handler http.Handler, onErr func(error)) *http.Server {
	srv := &http.Server{
		Addr:    net.JoinHostPort(host, fmt.Sprintf("%d", port)),
		Handler: handler,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if onErr != nil {
				onErr(err)
			}
		}
	}()
	return srv
}

func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
