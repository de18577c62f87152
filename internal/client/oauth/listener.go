package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/codecampus/campus-cli/internal/logging"
	"github.com/go-chi/chi/v5"
)

// ErrAccessDenied is returned by Wait when the user refused consent.
var ErrAccessDenied = errors.New("access denied by user")

// Listener is a one-shot loopback HTTP server that receives the OAuth
// redirect and hands the authorization code to the waiting caller.
//
// A request with a wrong or missing state parameter is rejected and the
// listener keeps waiting; only a state-matching redirect settles the flow.
type Listener struct {
	state string
	log   logging.Logger

	srv  *http.Server
	addr string

	once    sync.Once
	outcome chan outcome
}

type outcome struct {
	code string
	err  error
}

// NewListener prepares a listener bound to 127.0.0.1:port. Port 0 picks a
// free port; the effective address is available after Start.
func NewListener(port int, state string, log logging.Logger) *Listener {
	l := &Listener{
		state:   state,
		log:     log.With("component", "oauth"),
		outcome: make(chan outcome, 1),
	}

	r := chi.NewRouter()
	r.Get("/callback", l.handleCallback)

	l.srv = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	l.addr = fmt.Sprintf("127.0.0.1:%d", port)
	return l
}

// Start binds the loopback socket and serves in the background.
func (l *Listener) Start() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("failed to bind loopback listener: %w", err)
	}
	l.addr = ln.Addr().String()

	go func() {
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.log.Error(context.Background(), "loopback server failed", "error", err)
		}
	}()
	return nil
}

// RedirectURI returns the callback URL to register with the consent request.
// Valid only after Start.
func (l *Listener) RedirectURI() string {
	return "http://" + l.addr + "/callback"
}

// Wait blocks until the redirect delivers a code, the user denies consent,
// or ctx ends.
func (l *Listener) Wait(ctx context.Context) (string, error) {
	select {
	case out := <-l.outcome:
		return out.code, out.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close shuts the loopback server down. Safe to call at any point after Start.
func (l *Listener) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return l.srv.Shutdown(ctx)
}

func (l *Listener) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("state") != l.state {
		l.log.Warn(r.Context(), "callback with mismatched state rejected")
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}

	if errCode := q.Get("error"); errCode != "" {
		l.deliver(outcome{err: fmt.Errorf("%w: %s", ErrAccessDenied, errCode)})
		renderPage(w, "Sign-in cancelled", "You can close this tab and return to the terminal.")
		return
	}

	code := q.Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	l.deliver(outcome{code: code})
	renderPage(w, "Signed in", "You can close this tab and return to the terminal.")
}

func (l *Listener) deliver(out outcome) {
	l.once.Do(func() { l.outcome <- out })
}

func renderPage(w http.ResponseWriter, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<html><head><title>%s</title></head><body><h1>%s</h1><p>%s</p></body></html>", title, title, body)
}
