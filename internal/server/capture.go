package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

// CaptureStatus is the position of a [PendingCapture] in its lifecycle.
type CaptureStatus int

const (
	StatusIdle CaptureStatus = iota
	StatusListening
	StatusTokenCaptured
	StatusDenied
	StatusBindFailed
	StatusFailed
)

func (s CaptureStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusListening:
		return "listening"
	case StatusTokenCaptured:
		return "token_captured"
	case StatusDenied:
		return "denied"
	case StatusBindFailed:
		return "bind_failed"
	default:
		return "failed"
	}
}

// CaptureConfig describes the application and the loopback address registered with the provider.
type CaptureConfig struct {
	ClientID string
	Scopes   []string
	AuthURL  string
	Host     string
	Port     int
	Observer Observer
}

// AuthorizationRequest is one implicit grant attempt.
type AuthorizationRequest struct {
	ClientID    string
	Scopes      []string
	RedirectURI string
	State       string
}

// URL builds the provider URL the user opens to authorize the request.
func (r AuthorizationRequest) URL(authURL string) string {
	conf := &oauth2.Config{
		ClientID:    r.ClientID,
		RedirectURL: r.RedirectURI,
		Scopes:      r.Scopes,
		Endpoint:    oauth2.Endpoint{AuthURL: authURL},
	}
	return conf.AuthCodeURL(r.State, oauth2.SetAuthURLParam("response_type", "token"))
}

// BindError is returned when the fixed loopback port cannot be bound.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("%v on %s: %v", shared.ErrListenerBind, e.Addr, e.Err)
}

func (e *BindError) Unwrap() []error {
	return []error{shared.ErrListenerBind, e.Err}
}

// PendingCapture owns the loopback listener for one [AuthorizationRequest].
type PendingCapture struct {
	Request AuthorizationRequest

	addr     string
	observer Observer
	listen   func(network, address string) (net.Listener, error)

	mu       sync.Mutex
	status   CaptureStatus
	listener net.Listener
	token    *CapturedToken
}

// Begin creates an [AuthorizationRequest] with a fresh state and returns the URL to open in a browser.
func Begin(cfg CaptureConfig) (string, *PendingCapture, error) {
	if cfg.ClientID == "" {
		return "", nil, fmt.Errorf("%w: client id", shared.ErrMissingCredentials)
	}

	state, err := shared.GenerateState()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	req := AuthorizationRequest{
		ClientID:    cfg.ClientID,
		Scopes:      append([]string(nil), cfg.Scopes...),
		RedirectURI: "http://" + addr + RedirectPath,
		State:       state,
	}

	pc := &PendingCapture{
		Request:  req,
		addr:     addr,
		observer: cfg.Observer,
		listen:   net.Listen,
	}
	return req.URL(cfg.AuthURL), pc, nil
}

// Status returns the current lifecycle state.
func (p *PendingCapture) Status() CaptureStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Listen binds the loopback address if it is not bound yet and returns the bound address.
//
// Calling Listen before opening the browser surfaces a busy port before the user is sent anywhere.
func (p *PendingCapture) Listen() (net.Addr, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.listener != nil {
		return p.listener.Addr(), nil
	}

	ln, err := p.listen("tcp", p.addr)
	if err != nil {
		p.status = StatusBindFailed
		return nil, &BindError{Addr: p.addr, Err: err}
	}

	p.listener = ln
	p.status = StatusListening
	p.observer.emit("listening for authorization redirect", "addr", ln.Addr().String())
	return ln.Addr(), nil
}

// Await serves the redirect until a token is captured, the provider denies access, the listener fails,
// or ctx ends. The listener is closed before Await returns.
func (p *PendingCapture) Await(ctx context.Context) (*CapturedToken, error) {
	if tok := p.captured(); tok != nil {
		return tok, nil
	}

	if _, err := p.Listen(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	ln := p.listener
	p.mu.Unlock()

	handler := NewImplicitGrantHandler(p.Request.State, p.observer)
	router := NewBasicRouter()
	router.Use(ObserveRequests(p.observer))
	router.Handler(handler)

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          log.New(io.Discard, "", 0),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("loopback listener: %w", err)
		}
		return nil
	})

	var res CaptureResult
	g.Go(func() error {
		defer shutdown(srv)

		select {
		case res = <-handler.Result():
			return res.Err
		case <-gctx.Done():
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("%w: waiting for authorization: %v", shared.ErrTimeout, err)
			}
			return nil
		}
	})

	err := g.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.listener = nil

	switch {
	case err == nil && res.Token != nil:
		p.status = StatusTokenCaptured
		p.token = res.Token
		return res.Token, nil
	case errors.Is(err, shared.ErrAuthorizationDenied):
		p.status = StatusDenied
	case err == nil:
		err = fmt.Errorf("loopback listener stopped before a token was captured")
		p.status = StatusFailed
	default:
		p.status = StatusFailed
	}
	return nil, err
}

func (p *PendingCapture) captured() *CapturedToken {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		srv.Close()
	}
}
