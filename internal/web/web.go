// Package web is the HTTP front of the session server: the osu! client
// long-polls a single POST endpoint, authenticating with the osu-token
// header after the initial login.
package web

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FireRedz/gulag/internal/bancho"
	"github.com/FireRedz/gulag/internal/config"
	"github.com/FireRedz/gulag/internal/metrics"
)

// maxBodySize bounds a request body; the client never legitimately
// sends more than a spectate frame burst.
const maxBodySize = 4 << 20

// Server serves the bancho endpoint and the metrics listener.
type Server struct {
	cfg *config.Config
	srv *bancho.Server
}

// NewServer wires the HTTP front over the session server.
func NewServer(cfg *config.Config, srv *bancho.Server) *Server {
	return &Server{cfg: cfg, srv: srv}
}

// Run serves the bancho endpoint until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleBancho)

	httpSrv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutCtx)
	}()

	slog.Info("bancho endpoint listening", "addr", s.cfg.Addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("bancho endpoint: %w", err)
	}
	return nil
}

// RunMetrics serves the Prometheus endpoint until ctx is cancelled.
func (s *Server) RunMetrics(ctx context.Context) error {
	if s.cfg.MetricsAddr == "" {
		<-ctx.Done()
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	httpSrv := &http.Server{
		Addr:              s.cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutCtx)
	}()

	slog.Info("metrics endpoint listening", "addr", s.cfg.MetricsAddr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics endpoint: %w", err)
	}
	return nil
}

// handleBancho serves one client request: a login handshake when no
// osu-token header is present, a session request otherwise. The wire
// contract is HTTP 200 with a packet body for every protocol outcome.
func (s *Server) handleBancho(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		// Browsers end up here; be polite.
		fmt.Fprintf(w, "running gulag on %s", s.cfg.Domain)
		return
	}

	start := time.Now()
	defer func() {
		metrics.RequestDuration.Observe(time.Since(start).Seconds())
	}()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		slog.Warn("request body read", "err", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var resp []byte
	token := r.Header.Get("osu-token")
	if token == "" {
		resp, token = s.srv.Login(r.Context(), body, clientIP(r))
	} else {
		resp = s.srv.HandleRequest(r.Context(), token, body)
	}

	w.Header().Set("cho-token", token)
	s.writeBody(w, r, resp)
}

// writeBody sends resp, gzipped when configured and accepted.
func (s *Server) writeBody(w http.ResponseWriter, r *http.Request, resp []byte) {
	if s.cfg.GzipLevel > 0 && len(resp) > 0 &&
		strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		w.Header().Set("Content-Encoding", "gzip")
		gz, err := gzip.NewWriterLevel(w, s.cfg.GzipLevel)
		if err == nil {
			_, _ = gz.Write(resp)
			_ = gz.Close()
			return
		}
		slog.Warn("gzip writer", "err", err)
	}
	_, _ = w.Write(resp)
}

// clientIP prefers the forwarding headers the HTTPS front sets.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i != -1 {
			return strings.TrimSpace(fwd[:i])
		}
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
