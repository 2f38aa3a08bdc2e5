// Package pprofutil exposes the runtime profiler over HTTP when asked for via
// the environment. Off by default, loopback only unless explicitly opened up.
package pprofutil

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"strings"
	"sync"
	"time"
)

const defaultAddr = "127.0.0.1:6061"

var startOnce sync.Once

// StartFromEnv starts the pprof HTTP server when CLIPPER_PPROF=1 and returns
// immediately otherwise. The bind address comes from CLIPPER_PPROF_ADDR and
// must be a loopback address unless CLIPPER_PPROF_ALLOW_PUBLIC=1.
func StartFromEnv(logw io.Writer) error {
	if os.Getenv("CLIPPER_PPROF") != "1" {
		return nil
	}
	var err error
	startOnce.Do(func() {
		addr := strings.TrimSpace(os.Getenv("CLIPPER_PPROF_ADDR"))
		if addr == "" {
			addr = defaultAddr
		}
		if os.Getenv("CLIPPER_PPROF_ALLOW_PUBLIC") != "1" && !isLoopbackBind(addr) {
			err = fmt.Errorf("refusing non-loopback pprof bind %s without CLIPPER_PPROF_ALLOW_PUBLIC=1", addr)
			return
		}
		err = start(addr, logw)
	})
	return err
}

func start(addr string, logw io.Writer) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("pprof listen: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	if logw != nil {
		fmt.Fprintf(logw, "pprof enabled: http://%s/debug/pprof/\n", ln.Addr())
	}
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		_ = srv.Serve(ln)
	}()
	return nil
}

func isLoopbackBind(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(host), "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
