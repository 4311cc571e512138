package server

import (
	"crypto/subtle"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/spotx/internal/shared"
	"golang.org/x/oauth2"
)

const (
	// RedirectPath receives the provider redirect. The token is in the URL fragment, which browsers never send.
	RedirectPath = "/redirect"
	// TokenPath receives the fragment re-sent as a query string by the bridge page.
	TokenPath = "/token"
)

// bridgePage moves the fragment into the query string of a request to TokenPath.
const bridgePage = `<!DOCTYPE html>
<html><head><title>spotx</title></head>
<body><script>location.replace("token?" + location.hash.slice(1));</script>
<noscript>JavaScript is required to finish signing in.</noscript></body></html>
`

const closePage = `<!DOCTYPE html>
<html><head><title>spotx</title></head>
<body><script>close()</script>Thanks! You may now close this window.</body></html>
`

// CapturedToken is the access token extracted from a verified redirect.
type CapturedToken struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int // seconds, 0 when the provider omitted it
	State       string
	ReceivedAt  time.Time
}

// OAuth2 converts the captured token for use with [oauth2.StaticTokenSource].
func (t *CapturedToken) OAuth2() *oauth2.Token {
	tok := &oauth2.Token{AccessToken: t.AccessToken, TokenType: t.TokenType}
	if t.ExpiresIn > 0 {
		tok.Expiry = t.ReceivedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return tok
}

// DeniedError is returned when the provider redirects with an error parameter.
type DeniedError struct {
	Code        string
	Description string
}

func (e *DeniedError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("%v: %s", shared.ErrAuthorizationDenied, e.Code)
	}
	return fmt.Sprintf("%v: %s (%s)", shared.ErrAuthorizationDenied, e.Code, e.Description)
}

func (e *DeniedError) Unwrap() error {
	return shared.ErrAuthorizationDenied
}

// CaptureResult is the terminal outcome reported by an [ImplicitGrantHandler].
type CaptureResult struct {
	Token *CapturedToken
	Err   error
}

// ImplicitGrantHandler serves both steps of the browser redirect for one authorization request.
//
// Requests to TokenPath whose state does not match are rejected and the handler keeps waiting.
// The first request with a matching state is terminal: it either carries a token or an error.
type ImplicitGrantHandler struct {
	state    string
	observer Observer
	now      func() time.Time

	mu     sync.Mutex
	done   bool
	result chan CaptureResult
}

// NewImplicitGrantHandler creates a handler expecting the given state value.
func NewImplicitGrantHandler(state string, observer Observer) *ImplicitGrantHandler {
	return &ImplicitGrantHandler{
		state:    state,
		observer: observer,
		now:      time.Now,
		result:   make(chan CaptureResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *ImplicitGrantHandler) Routes() []string {
	return []string{RedirectPath, TokenPath}
}

// Result returns the channel receiving exactly one terminal [CaptureResult].
func (h *ImplicitGrantHandler) Result() <-chan CaptureResult {
	return h.result
}

// ServeHTTP dispatches the bridge and token steps. Any other path is 404.
func (h *ImplicitGrantHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case RedirectPath:
		h.observer.emit("serving redirect bridge")
		writeHTML(w, http.StatusOK, bridgePage)
	case TokenPath:
		h.serveToken(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *ImplicitGrantHandler) serveToken(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if !h.matchesState(query.Get("state")) {
		h.observer.emit("rejected redirect", "error", shared.ErrStateMismatch)
		writeHTML(w, http.StatusBadRequest, page("Authorization failed", "The request did not originate from this session."))
		return
	}

	var res CaptureResult
	if code := query.Get("error"); code != "" {
		res.Err = &DeniedError{Code: code, Description: query.Get("error_description")}
	} else if accessToken := query.Get("access_token"); accessToken != "" {
		res.Token = tokenFromQuery(query, h.now())
	} else {
		h.observer.emit("rejected redirect", "error", shared.ErrMissingToken)
		writeHTML(w, http.StatusBadRequest, page("Authorization failed", "No access token was received."))
		return
	}

	h.mu.Lock()
	if h.done {
		h.mu.Unlock()
		writeHTML(w, http.StatusGone, page("Already authorized", "This authorization has already been completed."))
		return
	}
	h.done = true
	h.mu.Unlock()

	if res.Err != nil {
		h.observer.emit("authorization denied", "error", res.Err)
		writeHTML(w, http.StatusOK, page("Authorization denied", "You may now close this window."))
	} else {
		h.observer.emit("received access token", "expires_in", res.Token.ExpiresIn)
		writeHTML(w, http.StatusOK, closePage)
	}

	h.result <- res
	close(h.result)
}

// matchesState rejects values outside the state alphabet before comparing.
func (h *ImplicitGrantHandler) matchesState(got string) bool {
	if got == "" || strings.ContainsFunc(got, func(r rune) bool { return !shared.IsStateCharacter(r) }) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.state)) == 1
}

func tokenFromQuery(q url.Values, now time.Time) *CapturedToken {
	expiresIn, _ := strconv.Atoi(q.Get("expires_in"))
	tokenType := q.Get("token_type")
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &CapturedToken{
		AccessToken: q.Get("access_token"),
		TokenType:   tokenType,
		ExpiresIn:   expiresIn,
		State:       q.Get("state"),
		ReceivedAt:  now,
	}
}

func page(title, body string) string {
	return fmt.Sprintf("<!DOCTYPE html>\n<html><head><title>%[1]s</title></head><body><h1>%[1]s</h1><p>%[2]s</p></body></html>\n",
		html.EscapeString(title), html.EscapeString(body))
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}
