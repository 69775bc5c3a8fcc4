package monitor

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/lsds/halo/srcs/go/log"
)

var (
	serverMu sync.Mutex
	server   *http.Server
)

// StartServer serves the default monitor on /metrics of port.
func StartServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", defaultMonitor)
	srv := &http.Server{
		Addr:    net.JoinHostPort("0.0.0.0", strconv.Itoa(port)),
		Handler: mux,
	}
	serverMu.Lock()
	server = srv
	serverMu.Unlock()
	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server on %s: %v", srv.Addr, err)
		}
	}()
}

func StopServer() {
	serverMu.Lock()
	defer serverMu.Unlock()
	if server != nil {
		server.Close()
		server = nil
	}
}
