// Package pprofserver exposes the runtime profiling endpoints on a loopback-only listener.
package pprofserver

import (
	"context"
	"github.com/myrjola/sentinels/internal/errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"
	"time"
)

func Handle(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
}

func newServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	Handle(mux)
	return mux
}

// ListenAndServe serves pprof at the IPv6 loopback address ::1 and given port until ctx is done.
func ListenAndServe(ctx context.Context, port string, logger *slog.Logger) error {
	addr := net.JoinHostPort("::1", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "pprof listen", slog.String("addr", addr))
	}
	return Serve(ctx, listener, logger)
}

// Serve serves pprof on listener until ctx is done.
func Serve(ctx context.Context, listener net.Listener, logger *slog.Logger) error {
	srv := &http.Server{
		Handler:           newServeMux(),
		ReadHeaderTimeout: time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
	go func() {
		<-ctx.Done()
		if err := srv.Close(); err != nil {
			logger.LogAttrs(context.Background(), slog.LevelError, "close pprof server", errors.SlogError(err))
		}
	}()

	logger.LogAttrs(ctx, slog.LevelInfo, "starting pprof server", slog.String("pprofAddr", listener.Addr().String()))
	if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "pprof serve")
	}
	return nil
}
