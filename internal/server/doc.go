// Package server captures an OAuth2 implicit grant on a short-lived loopback listener.
//
// # Flow
//
// [Begin] creates an [AuthorizationRequest] with an unpredictable state value and returns the provider URL
// to open in a browser. [PendingCapture.Await] binds the fixed loopback address and serves until the
// redirect is resolved.
//
// The provider returns the access token in the URL fragment, which browsers never send to a server.
// The [ImplicitGrantHandler] therefore serves two steps:
//
//  1. RedirectPath answers with a script that re-navigates to TokenPath, moving the fragment into the query string.
//  2. TokenPath validates state, then reports either a [CapturedToken] or a [DeniedError].
//
// A request whose state does not match is answered with 400 and ignored; the capture keeps listening.
// Any other path is 404.
//
// # Lifecycle
//
// A capture moves from StatusIdle to StatusListening and ends in exactly one of StatusTokenCaptured,
// StatusDenied, StatusBindFailed or StatusFailed. There is no retry inside the package; callers bound the wait
// with a context and call [Begin] again to start over.
//
// # Router Infrastructure
//
// [BasicRouter] wraps [http.ServeMux] with middleware and method filtering. [ObserveRequests] reports each
// request path to an [Observer] without its query string.
package server
