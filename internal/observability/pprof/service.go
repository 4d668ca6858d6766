package pprof

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	hpprof "net/http/pprof"
	"strings"
	"time"

	logx "slotwatch/pkg/logx"
)

const (
	prefix = "/debug/pprof/"

	readTimeout     = 10 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 2 * time.Second
)

var ErrInsecureBind = errors.New("pprof: non-loopback addr requires a token")

// Config controls the optional debug HTTP server. An empty Addr disables it.
type Config struct {
	Addr  string
	Token string
}

func (c Config) Enabled() bool { return strings.TrimSpace(c.Addr) != "" }

// Validate checks Addr and refuses a public bind without a token.
func (c Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	addr := strings.TrimSpace(c.Addr)
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return err
	}
	if strings.TrimSpace(c.Token) == "" && !isLoopbackAddr(addr) {
		return ErrInsecureBind
	}
	return nil
}

// Service serves /healthz and the pprof handlers.
//
// /healthz answers with the JSON encoding of Status().
type Service struct {
	cfg    Config
	status func() any
	log    logx.Logger

	addr chan string
}

func New(cfg Config, status func() any, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{cfg: cfg, status: status, log: log, addr: make(chan string, 1)}
}

// Addr returns the bound listen address once Run is serving.
func (s *Service) Addr(ctx context.Context) (string, error) {
	select {
	case a := <-s.addr:
		s.addr <- a
		return a, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Run listens and serves until ctx is done. A disabled service returns nil.
func (s *Service) Run(ctx context.Context) error {
	if !s.cfg.Enabled() {
		return nil
	}
	if err := s.cfg.Validate(); err != nil {
		s.log.Error("pprof refused to start", logx.String("addr", s.cfg.Addr), logx.Err(err))
		return err
	}
	addr := strings.TrimSpace(s.cfg.Addr)
	tok := strings.TrimSpace(s.cfg.Token)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler(tok),
		ReadHeaderTimeout: readTimeout,
		IdleTimeout:       idleTimeout,
	}
	go func() {
		<-ctx.Done()
		cctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(cctx)
	}()

	bound := ln.Addr().String()
	s.addr <- bound
	s.log.Info("pprof started", logx.String("addr", bound), logx.Bool("token_set", tok != ""))

	err = srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		s.log.Info("pprof stopped")
		return nil
	}
	return err
}

func (s *Service) handler(tok string) http.Handler {
	mux := http.NewServeMux()
	wrap := func(h http.HandlerFunc) http.HandlerFunc { return withAuth(tok, h) }

	mux.HandleFunc("/healthz", wrap(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var body any = map[string]string{"status": "ok"}
		if s.status != nil {
			body = s.status()
		}
		_ = json.NewEncoder(w).Encode(body)
	}))

	mux.HandleFunc(prefix, wrap(hpprof.Index))
	mux.HandleFunc(prefix+"cmdline", wrap(hpprof.Cmdline))
	mux.HandleFunc(prefix+"profile", wrap(hpprof.Profile))
	mux.HandleFunc(prefix+"symbol", wrap(hpprof.Symbol))
	mux.HandleFunc(prefix+"trace", wrap(hpprof.Trace))
	return mux
}

// withAuth accepts "Authorization: Bearer <token>" or ?token=<token>.
func withAuth(tok string, h http.HandlerFunc) http.HandlerFunc {
	if tok == "" {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("token"); got != "" {
			if got == tok {
				h(w, r)
				return
			}
			unauthorized(w)
			return
		}
		const p = "Bearer "
		if ah := r.Header.Get("Authorization"); strings.HasPrefix(ah, p) && strings.TrimSpace(strings.TrimPrefix(ah, p)) == tok {
			h(w, r)
			return
		}
		unauthorized(w)
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func isLoopbackAddr(addr string) bool {
	h, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	h = strings.TrimSpace(h)
	if h == "" {
		// all interfaces
		return false
	}
	if strings.EqualFold(h, "localhost") {
		return true
	}
	ip := net.ParseIP(h)
	return ip != nil && ip.IsLoopback()
}
