// tetrawell-server serves the game over SSH. Every connection gets its own
// well. Build:
//
//	go build -o tetrawell-server ./cmd/server
//
// Usage:
//
//	./tetrawell-server [-port 2222] [-key server_host_key] [-metrics :9100] [-config path]
//
// Connect with:
//
//	ssh -t -p 2222 localhost
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	gossh "github.com/gliderlabs/ssh"
	xssh "golang.org/x/crypto/ssh"

	"tetrawell/internal/config"
	"tetrawell/internal/game"
	"tetrawell/internal/metrics"
	internalssh "tetrawell/internal/ssh"
)

func main() {
	cfgPath := flag.String("config", "", "Path to the YAML config (default: $TETRAWELL_CONFIG or the XDG config dir)")
	port := flag.Int("port", 0, "SSH server port (overrides server.port)")
	keyFile := flag.String("key", "", "Path to the PEM-encoded host key, generated if absent (overrides server.host_key)")
	metricsAddr := flag.String("metrics", "", "Address for the Prometheus /metrics endpoint (overrides server.metrics_addr)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	applyFlags(cfg, *port, *keyFile, *metricsAddr)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid flags", "error", err)
		os.Exit(1)
	}

	signer, err := loadOrCreateHostKey(cfg.Server.HostKey, logger)
	if err != nil {
		logger.Error("host key", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Server.MetricsAddr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.Server.MetricsAddr, logger); err != nil {
				logger.Error("metrics server", "error", err)
			}
		}()
	}

	h := newHandler(*cfg, logger, m)
	srv := &gossh.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: h.handleSession,
		// Accept PTY requests from any client.
		PtyCallback: func(_ gossh.Context, _ gossh.Pty) bool { return true },
		// No authentication: anyone who can reach the port may play.
		HostSigners: []gossh.Signer{signer},
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	logger.Info("tetrawell SSH server listening", "port", cfg.Server.Port, "max_sessions", cfg.Server.MaxSessions)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, gossh.ErrServerClosed) {
		logger.Error("ssh server", "error", err)
		os.Exit(1)
	}
}

// applyFlags copies non-zero flag values over the loaded config.
func applyFlags(cfg *config.Config, port int, keyFile, metricsAddr string) {
	if port != 0 {
		cfg.Server.Port = port
	}
	if keyFile != "" {
		cfg.Server.HostKey = keyFile
	}
	if metricsAddr != "" {
		cfg.Server.MetricsAddr = metricsAddr
	}
}

// ─── sessions ───────────────────────────────────────────────────────────────

// handler runs one independent game per SSH session, up to a fixed number
// at a time.
type handler struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	slots   chan struct{}
}

func newHandler(cfg config.Config, logger *slog.Logger, m *metrics.Metrics) *handler {
	return &handler{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		slots:   make(chan struct{}, cfg.Server.MaxSessions),
	}
}

// acquire reserves a session slot without blocking.
func (h *handler) acquire() bool {
	select {
	case h.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

func (h *handler) release() { <-h.slots }

// handleSession is the gliderlabs SSH handler for one connection. It blocks
// for the duration of the game so the SSH session stays open.
func (h *handler) handleSession(s gossh.Session) {
	log := h.logger.With("remote", s.RemoteAddr().String(), "user", s.User())
	if !h.acquire() {
		h.metrics.SessionRefused()
		log.Warn("session refused: server full")
		fmt.Fprintln(s, "The server is full. Try again later.")
		return
	}
	defer h.release()

	screen, err := internalssh.OpenScreen(s)
	if errors.Is(err, internalssh.ErrNoPTY) {
		fmt.Fprintf(s, "This game requires a PTY. Connect with: ssh -t -p %d <host>\n", h.cfg.Server.Port)
		return
	}
	if err != nil {
		log.Warn("screen setup failed", "error", err)
		fmt.Fprintf(s, "Terminal setup failed: %v\n", err)
		return
	}

	h.metrics.SessionOpened()
	defer h.metrics.SessionClosed()
	log.Info("session started")

	g := game.New(screen, h.cfg, log)
	g.Player = internalssh.SanitizeName(s.User())
	g.Recorder = h.metrics
	g.Run(s.Context())

	log.Info("session ended")
}

// ─── host key ───────────────────────────────────────────────────────────────

// loadOrCreateHostKey loads a PEM private key from path, or generates and
// persists a new ed25519 key if the file is absent or unreadable.
func loadOrCreateHostKey(path string, logger *slog.Logger) (gossh.Signer, error) {
	if data, err := os.ReadFile(path); err == nil {
		if signer, err := xssh.ParsePrivateKey(data); err == nil {
			logger.Info("loaded host key", "path", path)
			return signer, nil
		}
	}

	logger.Info("generating new ed25519 host key", "path", path)
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate host key: %w", err)
	}
	signer, err := xssh.NewSignerFromKey(key)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}
	// Persist for next run; failure only costs a new key next time.
	block, err := xssh.MarshalPrivateKey(key, "tetrawell server")
	if err != nil {
		logger.Warn("encode host key", "error", err)
		return signer, nil
	}
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		logger.Warn("save host key", "path", path, "error", err)
	}
	return signer, nil
}
