// Package server provides HTTP routing, middleware, and OAuth handling for
// the CLI and web interfaces.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [Middleware] wraps handlers in reverse order (last added executes first),
// following the standard Go pattern. The [BasicRouter] implementation uses
// [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the authorization code callback for the CLI flow:
// when the user runs `amx auth`, a temporary HTTP server starts on localhost,
// handles the Google redirect, and shuts down after delivering the credential
// through a channel. State validation and replay rejection live in
// [auth.Session]; the handler only adapts the callback request to it.
//
// # Web Application
//
// [App] is the browser-facing front-end: a form that accepts an Apple Music
// playlist URL, the consent redirect round-trip, and a results page for the
// finished migration. Per-browser state (source URL, OAuth state, credential)
// is held in an in-memory cookie session store; restarting the server
// invalidates in-flight flows.
package server
