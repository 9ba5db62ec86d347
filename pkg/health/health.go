package health

import (
	"net/http"
	"time"

	process "github.com/s-larionov/process-manager"
)

func NewHealthCheckServer(address, path string, handler http.HandlerFunc) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc(path, handler)

	return &http.Server{
		Addr:         address,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// DefaultHandler reports liveness of the process. The manager is accepted to
// keep the door open for per-worker checks without changing call sites.
func DefaultHandler(_ *process.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
