package main

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/common/version"
	"go.uber.org/zap"
)

// newDebugRouter builds the optional debug HTTP surface (-debug.addr):
// /debug/version and /debug/config.
func newDebugRouter(opts *globalOptions) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/debug/version", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(version.Print(appName) + "\n"))
	})
	r.HandleFunc("/debug/config", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "transport.endpoint: %s\nbuffer.capacity: %d\nlogging.level: %s\n",
			opts.cfg.Transport.Endpoint, opts.cfg.Buffer.Capacity, opts.cfg.Logging.Level)
	})
	return r
}

// serveDebug starts the debug router in the background when addr is
// non-empty; it is never joined on and never gates shutdown.
func serveDebug(addr string, opts *globalOptions) {
	if addr == "" {
		return
	}
	go func() {
		if err := http.ListenAndServe(addr, newDebugRouter(opts)); err != nil { //nolint:gosec
			opts.logger.Warn("debug server exited", zap.Error(err))
		}
	}()
}
