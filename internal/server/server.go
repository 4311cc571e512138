// package server contains the loopback listener used to capture an OAuth2 implicit grant
package server

import (
	"net/http"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows which paths it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                                // Use adds middleware to the router's middleware stack
	Handle(path string, handler http.Handler, methods ...string) // Handle registers a handler for a path and its allowed methods
	Handler(handler Handler)                                     // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request)            // ServeHTTP implements http.Handler for the entire router
}

// Observer receives listener events as a message and key-value pairs, in the style of a structured logger.
//
// A nil Observer discards events.
type Observer func(msg string, kv ...any)

func (o Observer) emit(msg string, kv ...any) {
	if o != nil {
		o(msg, kv...)
	}
}

// ObserveRequests reports the method and path of every request reaching the router.
//
// Query strings are never reported since the token request carries the access token.
func ObserveRequests(o Observer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			o.emit("loopback request", "method", r.Method, "path", r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}
